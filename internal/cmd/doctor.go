package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/health"
	"github.com/felixgeelhaar/postify/internal/tui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the API, session storage and stored session",
	Long: `Check that postify can work: the API answers, the session storage
accepts writes, and the stored session (if any) is usable.

Exits non-zero when a check is unhealthy.`,
	Args: cobra.NoArgs,
	RunE: runE(runDoctor),
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// DoctorView is a health report for display
type DoctorView struct {
	health.Report `yaml:",inline"`
}

func (v DoctorView) RenderText(noColor bool) string {
	s := tui.StylesFor(noColor)
	var b strings.Builder

	for _, e := range v.Entries {
		mark := s.Success.Render("ok  ")
		switch e.Result.Status {
		case health.StatusDegraded:
			mark = s.Accent.Render("warn")
		case health.StatusUnhealthy:
			mark = s.Error.Render("fail")
		}
		b.WriteString(fmt.Sprintf("%s  %-8s %s %s\n", mark, e.Name, e.Result.Message,
			s.Muted.Render(e.Result.Latency.Round(time.Millisecond).String())))
	}
	return b.String()
}

func runDoctor(ctx context.Context, app *App, args []string) error {
	m := health.NewManager()
	m.AddChecker(health.NewAPIChecker(app.client))
	m.AddChecker(health.NewStorageChecker(app.storage, app.cfg.Storage.Driver))
	m.AddChecker(health.NewSessionChecker(app.session))

	report := m.Check(ctx)
	if err := app.print(DoctorView{Report: report}); err != nil {
		return err
	}

	if report.Status == health.StatusUnhealthy {
		for _, e := range report.Entries {
			if e.Result.Status == health.StatusUnhealthy && e.Name == "api" {
				return errors.New(errors.ErrCodeNetUnreachable, e.Result.Message).
					WithSuggestion("Make sure the Postify backend is running and POSTIFY_API_URL points at it")
			}
		}
		return errors.New(errors.ErrCodeStorageOpen, "session storage is not usable").
			WithSuggestion("Check storage settings with 'postify config show'")
	}
	return nil
}
