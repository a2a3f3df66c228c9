package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/tui"
	"github.com/felixgeelhaar/postify/internal/ux"
)

// CommandContext holds the persistent flags of one invocation
type CommandContext struct {
	ConfigPath string
	Home       string
	APIURL     string
	Storage    string
	Format     string
	LogLevel   string
	Verbose    bool
	NoColor    bool
	NoInput    bool
}

// NewCommandContext extracts the persistent flags from cmd
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	f := cmd.Flags()
	cc := &CommandContext{}

	var err error
	for name, dst := range map[string]*string{
		"config":    &cc.ConfigPath,
		"home":      &cc.Home,
		"api-url":   &cc.APIURL,
		"storage":   &cc.Storage,
		"format":    &cc.Format,
		"log-level": &cc.LogLevel,
	} {
		if *dst, err = f.GetString(name); err != nil {
			return nil, err
		}
	}
	for name, dst := range map[string]*bool{
		"verbose":  &cc.Verbose,
		"no-color": &cc.NoColor,
		"no-input": &cc.NoInput,
	} {
		if *dst, err = f.GetBool(name); err != nil {
			return nil, err
		}
	}

	if !ux.ValidFormat(cc.Format) {
		return nil, errors.NewConfigInvalidError("--format", cc.Format+" is not one of text, json, yaml")
	}
	cc.Format = strings.ToLower(cc.Format)
	if cc.Format == "" {
		cc.Format = ux.FormatText
	}
	if os.Getenv("NO_COLOR") != "" {
		cc.NoColor = true
	}
	return cc, nil
}

// Interactive reports whether prompts may be shown
func (cc *CommandContext) Interactive() bool {
	return !cc.NoInput && cc.Format == ux.FormatText && tui.ShouldPrompt()
}
