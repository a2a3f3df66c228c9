package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/postify/internal/api"
	"github.com/felixgeelhaar/postify/internal/config"
	"github.com/felixgeelhaar/postify/internal/errors"
	"github.com/felixgeelhaar/postify/internal/log"
	"github.com/felixgeelhaar/postify/internal/navigation"
	"github.com/felixgeelhaar/postify/internal/session"
	"github.com/felixgeelhaar/postify/internal/storage"
	"github.com/felixgeelhaar/postify/internal/tui"
	"github.com/felixgeelhaar/postify/internal/ux"
	"github.com/felixgeelhaar/postify/internal/version"
	"github.com/felixgeelhaar/postify/internal/views"
)

// App is everything one command invocation works with. It is built from
// the flags and configuration before the command runs and closed after.
type App struct {
	cmd     *cobra.Command
	cc      *CommandContext
	cfg     *config.Config
	logger  *log.Logger
	storage storage.Storage
	session *session.Store
	gate    *navigation.Gate
	client  *api.Client
	views   *views.Registry

	out    io.Writer
	errOut io.Writer
}

// loadConfig reads the configuration and applies flag overrides
func loadConfig(cc *CommandContext) (*config.Config, error) {
	cfg, err := config.Load(config.Options{Path: cc.ConfigPath, Home: cc.Home})
	if err != nil {
		return nil, err
	}

	changed := false
	if cc.APIURL != "" {
		cfg.API.BaseURL = cc.APIURL
		changed = true
	}
	if cc.Storage != "" {
		cfg.Storage.Driver = cc.Storage
		changed = true
	}
	if cc.LogLevel != "" {
		cfg.Log.Level = cc.LogLevel
	}
	if cc.Verbose {
		cfg.Log.Level = "debug"
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.NewConfigInvalidError("log.level", err.Error())
	}
	return log.New(log.Config{
		Level:          level,
		Format:         log.ParseFormat(cfg.Log.Format),
		Output:         w,
		AddSource:      level == log.LevelDebug,
		ServiceName:    "postify",
		ServiceVersion: version.Version,
	}), nil
}

// newApp wires configuration, storage, session, gate, API client and
// views for cmd
func newApp(cmd *cobra.Command) (*App, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cc)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	log.SetDefaultLogger(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sess := session.New(st, logger)
	sess.Initialize(ctx)

	routes := navigation.DefaultRoutes()
	routes.LoginPath = cfg.Navigation.LoginPath
	routes.DefaultLanding = cfg.Navigation.DefaultLanding
	routes.Gated = cfg.Navigation.Gated
	gate := navigation.NewGate(sess, st, routes, logger)

	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithLogger(logger),
		api.WithTokenSource(sess),
		api.WithUnauthorizedHandler(func(ctx context.Context) {
			gate.HandleUnauthorized(ctx)
		}),
	)

	logger.Debug("app ready",
		"api_url", cfg.API.BaseURL,
		"storage", cfg.Storage.Driver,
		"authenticated", sess.IsAuthenticated())

	return &App{
		cmd:     cmd,
		cc:      cc,
		cfg:     cfg,
		logger:  logger,
		storage: st,
		session: sess,
		gate:    gate,
		client:  client,
		views:   views.NewRegistry(client, sess),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}, nil
}

// Close releases the storage driver
func (a *App) Close() error {
	return a.storage.Close()
}

// runE adapts an App-based command body to cobra. Errors are classified
// into coded errors before they reach main.
func runE(fn func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := app.Close(); cerr != nil {
				app.logger.WithError(cerr).Warn("failed to close storage")
			}
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := fn(ctx, app, args); err != nil {
			return app.fail(err)
		}
		return nil
	}
}

func (a *App) fail(err error) error {
	err = ux.EnhanceError(api.Classify(err, a.cfg.API.BaseURL))
	a.logger.WithError(err).Debug("command failed")
	return err
}

// print writes a result in the selected output format
func (a *App) print(v interface{}) error {
	f, err := ux.NewFormatter(a.cc.Format, &ux.FormatterOptions{
		Writer:  a.out,
		NoColor: a.cc.NoColor,
	})
	if err != nil {
		return err
	}
	return f.Format(v)
}

// notify writes a status line to stderr so stdout only carries results
func (a *App) notify(format string, args ...interface{}) {
	fmt.Fprintln(a.errOut, tui.RenderNotice(tui.StylesFor(a.cc.NoColor), fmt.Sprintf(format, args...)))
}

func (a *App) interactive() bool {
	return a.cc.Interactive()
}

func (a *App) flagString(name string) string {
	v, _ := a.cmd.Flags().GetString(name)
	return v
}

func (a *App) flagBool(name string) bool {
	v, _ := a.cmd.Flags().GetBool(name)
	return v
}
