package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/postify/internal/errors"
)

// Credentials is the result of the login prompt
type Credentials struct {
	Email    string
	Password string
}

// Registration is the result of the register prompt
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AgreeToTerms    bool
}

// Validate checks the registration the same way the web form does
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errors.New(errors.ErrCodeAuthInputRequired, "name, email and password are required")
	}
	if r.Password != r.ConfirmPassword {
		return errors.New(errors.ErrCodeAuthPasswordMatch, "passwords do not match")
	}
	if !r.AgreeToTerms {
		return errors.New(errors.ErrCodeAuthInputRequired, "you must agree to the terms of service").
			WithSuggestion("Read them with 'postify open /legal'")
	}
	return nil
}

// NewPost is the result of the create-post prompt
type NewPost struct {
	Title   string
	Content string
	Tags    string
}

// ErrAborted is returned when the user cancels a prompt
var ErrAborted = fmt.Errorf("prompt cancelled: %w", context.Canceled)

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

func matches(password *string) func(string) error {
	return func(s string) error {
		if s != *password {
			return fmt.Errorf("passwords do not match")
		}
		return nil
	}
}

func runForm(ctx context.Context, form *huh.Form) error {
	err := form.WithTheme(huh.ThemeCharm()).RunWithContext(ctx)
	if stderrors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// LoginForm builds the login form. Values are written into c.
func LoginForm(c *Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&c.Email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(required("password")),
		).Title("Log in to Postify"),
	)
}

// PromptLogin asks for email and password
func PromptLogin(ctx context.Context, email string) (Credentials, error) {
	c := Credentials{Email: email}
	if err := runForm(ctx, LoginForm(&c)); err != nil {
		return Credentials{}, err
	}
	c.Email = strings.TrimSpace(c.Email)
	return c, nil
}

// RegisterForm builds the sign-up form
func RegisterForm(r *Registration) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&r.Name).Validate(required("name")),
			huh.NewInput().Title("Email").Value(&r.Email).Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&r.Password).
				Validate(required("password")),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&r.ConfirmPassword).
				Validate(matches(&r.Password)),
			huh.NewConfirm().
				Title("I agree to the Terms of Service").
				Value(&r.AgreeToTerms).
				Validate(func(v bool) error {
					if !v {
						return fmt.Errorf("you must agree to the terms")
					}
					return nil
				}),
		).Title("Create your Postify account"),
	)
}

// PromptRegister asks for the account details
func PromptRegister(ctx context.Context) (Registration, error) {
	var r Registration
	if err := runForm(ctx, RegisterForm(&r)); err != nil {
		return Registration{}, err
	}
	return r, nil
}

// CreatePostForm builds the new-post form
func CreatePostForm(p *NewPost) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&p.Title).Validate(required("title")),
			huh.NewText().
				Title("Content").
				Lines(10).
				Value(&p.Content).
				Validate(required("content")),
			huh.NewInput().
				Title("Tags").
				Description("Comma separated, e.g. go, cli").
				Value(&p.Tags),
		).Title("New post"),
	)
}

// PromptCreatePost asks for the post fields, starting from p
func PromptCreatePost(ctx context.Context, p NewPost) (NewPost, error) {
	if err := runForm(ctx, CreatePostForm(&p)); err != nil {
		return NewPost{}, err
	}
	return p, nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(ctx context.Context, message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Affirmative("Yes").
			Negative("No").
			Value(&confirmed),
	))

	if err := runForm(ctx, form); err != nil {
		return false, err
	}
	return confirmed, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ciEnvVars disable prompting when any of them is set
var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"BUILDKITE",
	"POSTIFY_NO_PROMPT",
}

// ShouldPrompt returns true if prompts should be shown. Prompts are
// disabled in CI, when POSTIFY_NO_PROMPT is set, or when stdin is not a
// terminal.
func ShouldPrompt() bool {
	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}
	return IsInteractive()
}
