package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/postify/internal/api"
	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/navigation"
	"github.com/felixgeelhaar/postify/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in, log out and manage your account",
	Long: `Manage your Postify session.

The session token is kept in the configured storage (by default
~/.postify/session.json) and sent with every request that needs it. If the
server rejects it, the session is cleared and you are asked to log in again.

Subcommands:
  login     Log in with email and password, or store an existing token
  logout    End the session
  register  Create an account
  status    Show the session state`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Postify",
	Long: `Log in with your email and password.

After logging in you are taken to the page you were trying to open, or to
your dashboard if there was none. In a terminal missing credentials are
prompted for.

Examples:
  postify auth login
  postify auth login --email ada@example.com --password '...'
  postify auth login --token "$POSTIFY_TOKEN"`,
	Args: cobra.NoArgs,
	RunE: runE(runAuthLogin),
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the session",
	Args:  cobra.NoArgs,
	RunE:  runE(runAuthLogout),
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Postify account",
	Long: `Create a Postify account. You log in afterwards with 'postify auth login'.

Examples:
  postify auth register
  postify auth register --name Ada --email ada@example.com \
    --password '...' --confirm-password '...' --agree`,
	Args: cobra.NoArgs,
	RunE: runE(runAuthRegister),
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether you are logged in",
	Args:  cobra.NoArgs,
	RunE:  runE(runAuthStatus),
}

func init() {
	authLoginCmd.Flags().String("email", "", "email address")
	authLoginCmd.Flags().String("password", "", "password")
	authLoginCmd.Flags().String("token", "", "store an existing session token instead of logging in")

	authRegisterCmd.Flags().String("name", "", "display name")
	authRegisterCmd.Flags().String("email", "", "email address")
	authRegisterCmd.Flags().String("password", "", "password")
	authRegisterCmd.Flags().String("confirm-password", "", "password again")
	authRegisterCmd.Flags().Bool("agree", false, "agree to the terms of service (see 'postify open /terms')")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authStatusCmd)

	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(ctx context.Context, app *App, args []string) error {
	var (
		dec navigation.Decision
		err error
	)

	if token := app.flagString("token"); token != "" {
		dec, err = app.gate.CompleteLogin(ctx, token)
		if err != nil {
			return err
		}
		app.notify("Session token stored")
	} else {
		email := app.flagString("email")
		password := app.flagString("password")

		if email == "" || password == "" {
			if !app.interactive() {
				return errors.New(errors.ErrCodeAuthInputRequired, "email and password are required").
					WithSuggestion("Pass --email and --password, or run in a terminal to be prompted")
			}
			creds, perr := tui.PromptLogin(ctx, email)
			if perr != nil {
				return perr
			}
			email, password = creds.Email, creds.Password
		}

		dec, err = app.login(ctx, email, password)
		if err != nil {
			return err
		}
	}

	return app.render(ctx, dec.Destination)
}

func runAuthLogout(ctx context.Context, app *App, args []string) error {
	was := app.session.IsAuthenticated()

	dec, err := app.gate.Logout(ctx)
	if err != nil {
		return err
	}

	if was {
		app.notify("Logged out")
	} else {
		app.notify("Not logged in")
	}
	return app.render(ctx, dec.Destination)
}

func runAuthRegister(ctx context.Context, app *App, args []string) error {
	reg := tui.Registration{
		Name:            app.flagString("name"),
		Email:           app.flagString("email"),
		Password:        app.flagString("password"),
		ConfirmPassword: app.flagString("confirm-password"),
		AgreeToTerms:    app.flagBool("agree"),
	}

	if reg.Name == "" && reg.Email == "" && reg.Password == "" && app.interactive() {
		prompted, err := tui.PromptRegister(ctx)
		if err != nil {
			return err
		}
		reg = prompted
	}

	if err := reg.Validate(); err != nil {
		return err
	}

	err := app.client.Register(ctx, api.RegisterInput{
		Name:     reg.Name,
		Email:    strings.TrimSpace(reg.Email),
		Password: reg.Password,
	})
	if err != nil {
		return err
	}

	app.notify("Account created. Please log in.")
	dec := app.gate.Navigate(ctx, app.gate.Routes().LoginPath)
	return app.render(ctx, dec.Destination)
}

// StatusView describes the local session
type StatusView struct {
	Authenticated   bool   `json:"authenticated" yaml:"authenticated"`
	UserID          string `json:"userId,omitempty" yaml:"userId,omitempty"`
	ExpiresAt       string `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	PendingRedirect string `json:"pendingRedirect,omitempty" yaml:"pendingRedirect,omitempty"`
	APIURL          string `json:"apiUrl" yaml:"apiUrl"`
	Storage         string `json:"storage" yaml:"storage"`
}

func (v StatusView) RenderText(noColor bool) string {
	s := tui.StylesFor(noColor)
	var b strings.Builder

	if v.Authenticated {
		b.WriteString(s.Success.Render("Logged in"))
		if v.UserID != "" {
			b.WriteString(" as user " + v.UserID)
		}
	} else {
		b.WriteString(s.Error.Render("Not logged in"))
	}
	b.WriteString("\n")

	rows := [][2]string{
		{"API", v.APIURL},
		{"Storage", v.Storage},
	}
	if v.ExpiresAt != "" {
		rows = append(rows, [2]string{"Token expires", v.ExpiresAt})
	}
	if v.PendingRedirect != "" {
		rows = append(rows, [2]string{"After login", v.PendingRedirect})
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", s.Muted.Render(r[0]), r[1]))
	}
	return b.String()
}

func runAuthStatus(ctx context.Context, app *App, args []string) error {
	v := StatusView{
		Authenticated: app.session.IsAuthenticated(),
		APIURL:        app.cfg.API.BaseURL,
		Storage:       app.cfg.Storage.Driver,
	}

	if claims, err := app.session.Claims(); err == nil {
		v.UserID = claims.UserID
		if claims.ExpiresAt != nil {
			v.ExpiresAt = claims.ExpiresAt.Time.Format("2006-01-02 15:04 MST")
		}
	}
	if pending, ok := app.gate.PendingRedirect(ctx); ok {
		v.PendingRedirect = pending
	}

	return app.print(v)
}
