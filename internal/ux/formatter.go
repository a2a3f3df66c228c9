// Package ux formats command output and decorates errors for display.
package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter writes command results in one output format
type Formatter interface {
	Format(data interface{}) error
}

// TextRenderer is implemented by results that have a terminal rendering.
// JSON and YAML output use the value's fields instead.
type TextRenderer interface {
	RenderText(noColor bool) string
}

// FormatterOptions contains configuration for formatters
type FormatterOptions struct {
	// Writer is where output is written (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables styling in text output
	NoColor bool
	// Compact disables indentation for JSON and YAML
	Compact bool
}

// ValidFormat reports whether format names a supported formatter
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON, FormatYAML, "":
		return true
	}
	return false
}

// NewFormatter creates a formatter based on the format string
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return &JSONFormatter{opts: opts}, nil
	case FormatYAML:
		return &YAMLFormatter{opts: opts}, nil
	case FormatText, "":
		return &TextFormatter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	opts *FormatterOptions
}

func (f *JSONFormatter) Format(data interface{}) error {
	encoder := json.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	opts *FormatterOptions
}

func (f *YAMLFormatter) Format(data interface{}) error {
	encoder := yaml.NewEncoder(f.opts.Writer)
	if !f.opts.Compact {
		encoder.SetIndent(2)
	}
	defer encoder.Close()
	return encoder.Encode(data)
}

// TextFormatter renders results for a terminal
type TextFormatter struct {
	opts *FormatterOptions
}

// Format writes a TextRenderer, a fmt.Stringer or a string. Other values
// are rejected so a missing renderer is noticed rather than dumped as JSON.
func (f *TextFormatter) Format(data interface{}) error {
	var out string
	switch v := data.(type) {
	case TextRenderer:
		out = v.RenderText(f.opts.NoColor)
	case string:
		out = v
	case fmt.Stringer:
		out = v.String()
	default:
		return fmt.Errorf("text output is not available for %T, use --format json", data)
	}

	_, err := fmt.Fprintln(f.opts.Writer, strings.TrimRight(out, "\n"))
	return err
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*YAMLFormatter)(nil)
	_ Formatter = (*TextFormatter)(nil)
)
