package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tOgg1/plasmid-browser/internal/browser"
	"github.com/tOgg1/plasmid-browser/internal/loader"
	"github.com/tOgg1/plasmid-browser/internal/logging"
	"github.com/tOgg1/plasmid-browser/internal/session"
)

const metricsShutdownTimeout = 2 * time.Second

func newBrowseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ui"},
		Short:   "Open the interactive plasmid browser",
		Long: "Open the interactive plasmid browser.\n\n" +
			"Without a configured token the browser starts at the sign-in prompt.\n" +
			"Logs go to logging.file when set and are discarded otherwise.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBrowse(cmd)
		},
	}
	cmd.Flags().String("theme", "", "color theme (default, high-contrast)")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while browsing")
	return cmd
}

func (a *app) runBrowse(cmd *cobra.Command) error {
	if !a.isTTY() {
		return noTTYError()
	}
	if err := a.cfg.RequireEndpoint(); err != nil {
		return missingEndpointError(err)
	}

	closeLog, err := a.initBrowseLogging()
	if err != nil {
		return Exitf(ExitCodeFailure, "%v", err)
	}
	defer closeLog()

	token, err := a.cfg.IDToken()
	if err != nil {
		return Exitf(ExitCodeFailure, "%v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := loader.NewMetrics(registry)
	stopMetrics, err := serveMetrics(a.cfg.Browse.MetricsAddr, registry)
	if err != nil {
		return Exitf(ExitCodeFailure, "start metrics server: %v", err)
	}
	defer stopMetrics()

	ldr := loader.New(a.newClient(), metrics)
	return browser.Run(session.NewGate(), ldr, browser.Config{
		ClientID:    a.cfg.Auth.ClientID,
		Theme:       a.cfg.Browse.Theme,
		PageSize:    a.cfg.Browse.PageSize,
		Credentials: session.Credentials{Token: token},
	})
}

// initBrowseLogging moves logging off the terminal the browser draws on.
func (a *app) initBrowseLogging() (func(), error) {
	if a.cfg.Logging.File == "" {
		logging.Init(logging.Config{Level: "disabled"})
		return func() {}, nil
	}
	f, err := logging.OpenFile(a.cfg.Logging.File)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:        a.cfg.Logging.Level,
		Format:       "json",
		Output:       f,
		EnableCaller: a.cfg.Logging.EnableCaller,
	})
	return func() { _ = f.Close() }, nil
}

// serveMetrics exposes registry on addr until the returned stop func runs.
// An empty addr serves nothing.
func serveMetrics(addr string, registry *prometheus.Registry) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger := logging.Component("metrics")
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	}, nil
}
