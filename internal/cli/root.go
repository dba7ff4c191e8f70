// Package cli implements the plasmid command line.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/plasmid-browser/internal/config"
	"github.com/tOgg1/plasmid-browser/internal/loader"
	"github.com/tOgg1/plasmid-browser/internal/logging"
	"github.com/tOgg1/plasmid-browser/internal/session"
)

// Flags that override configuration keys.
var flagKeys = map[string]string{
	"endpoint":     "endpoint.url",
	"token":        "auth.id_token",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"theme":        "browse.theme",
	"metrics-addr": "browse.metrics_addr",
	"page-size":    "browse.page_size",
}

type app struct {
	loader *config.Loader
	cfg    *config.Config

	// isTTY reports whether the browser can take over the terminal.
	isTTY func() bool
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(version).ExecuteContext(ctx)
}

func newRootCmd(version string) *cobra.Command {
	a := &app{
		loader: config.NewLoader(),
		isTTY:  hasTTY,
	}

	cmd := &cobra.Command{
		Use:   "plasmid",
		Short: "Browse the lab plasmid inventory",
		Long: "plasmid signs in with an id token, loads the plasmid inventory from the\n" +
			"data endpoint, and lets you search, filter, sort and page through it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.config/plasmid/config.yaml)")
	flags.String("endpoint", "", "data endpoint URL")
	flags.String("token", "", "id token to sign in with")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	cmd.AddCommand(
		newBrowseCmd(a),
		newQueryCmd(a),
		newMembersCmd(a),
	)
	return cmd
}

// setup loads configuration with flag overrides and initializes logging.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if path, _ := flags.GetString("config"); path != "" {
		a.loader.SetConfigFile(path)
	}
	v := a.loader.Viper()
	for name, key := range flagKeys {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}

	cfg, err := a.loader.Load()
	if err != nil {
		return &ExitError{Code: ExitCodeUsage, Err: err}
	}
	a.cfg = cfg

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cmd.ErrOrStderr(),
		EnableCaller: cfg.Logging.EnableCaller,
	})
	logger := logging.Component("cli")
	if used := a.loader.ConfigFileUsed(); used != "" {
		logger.Debug().Str("config", used).Msg("loaded config file")
	}
	cmd.SetContext(logging.WithContext(cmd.Context(), logger))
	return nil
}

func (a *app) newClient() *loader.Client {
	return loader.NewClient(a.cfg.Endpoint.URL, a.cfg.Endpoint.Timeout,
		loader.WithTokenParam(a.cfg.Endpoint.TokenParam))
}

// signIn completes the gate with the configured token.
func (a *app) signIn() (*session.Gate, bool, error) {
	token, err := a.cfg.IDToken()
	if err != nil {
		return nil, false, Exitf(ExitCodeFailure, "%v", err)
	}
	gate := session.NewGate()
	changed, err := gate.Complete(session.Credentials{Token: token})
	if errors.Is(err, session.ErrEmptyToken) {
		return nil, false, notSignedInError()
	}
	if err != nil {
		return nil, false, err
	}
	return gate, changed, nil
}

// loadDataset signs in and performs one load.
func (a *app) loadDataset(cmd *cobra.Command) (*loader.Loader, error) {
	if err := a.cfg.RequireEndpoint(); err != nil {
		return nil, missingEndpointError(err)
	}
	gate, changed, err := a.signIn()
	if err != nil {
		return nil, err
	}

	ldr := loader.New(a.newClient(), nil)
	if !changed {
		return ldr, nil
	}
	creds, _ := gate.Credentials()
	logger := logging.FromContext(cmd.Context())
	if creds.Identity != "" {
		logger.Debug().Str("identity", creds.Identity).Msg("signed in")
	}
	if err := ldr.Load(cmd.Context(), creds.Token); err != nil {
		return nil, Exitf(ExitCodeFailure, "load dataset: %v", err)
	}
	return ldr, nil
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
