package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/lrs-signal/internal/config"
	"github.com/rxtech-lab/lrs-signal/internal/dashboard"
	"github.com/rxtech-lab/lrs-signal/internal/logger"
	"github.com/rxtech-lab/lrs-signal/internal/report"
	"github.com/rxtech-lab/lrs-signal/internal/server"
	"github.com/rxtech-lab/lrs-signal/internal/version"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata/provider"
)

// loadConfig reads the config file and environment, then applies flags that were set explicitly.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.StringSlice("env-file")...)
	if err != nil {
		return nil, err
	}

	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFlagOverrides(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("ticker") {
		cfg.Ticker = cmd.String("ticker")
	}

	if cmd.IsSet("window") {
		cfg.Window = int(cmd.Int("window"))
	}

	if cmd.IsSet("lookback") {
		cfg.LookbackYears = int(cmd.Int("lookback"))
	}

	if cmd.IsSet("provider") {
		cfg.Provider = provider.ProviderType(strings.ToLower(cmd.String("provider")))
	}

	if cmd.IsSet("snapshot-dir") {
		cfg.SnapshotDir = cmd.String("snapshot-dir")
	}

	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}

	if cmd.IsSet("addr") {
		cfg.ServerAddr = cmd.String("addr")
	}
}

// newService wires the market data client and the report service for cfg.
func newService(cfg *config.Config, log *logger.Logger, onProgress provider.OnFetchProgress) (*report.Service, *marketdata.Client, error) {
	client, err := marketdata.NewClient(cfg.ClientConfig(), log, onProgress)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create market data client: %w", err)
	}

	return report.NewService(client, cfg.Ticker, cfg.LookbackYears, log), client, nil
}

func signalAction(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q, expected text or json", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel, "stderr")
	if err != nil {
		return err
	}
	defer log.Sync()

	var onProgress provider.OnFetchProgress

	progress := newProgressReporter(cmd.Root().ErrWriter)
	if !cmd.Bool("no-progress") {
		onProgress = progress.OnProgress
	}

	service, _, err := newService(cfg, log, onProgress)
	if err != nil {
		return err
	}

	rep, err := service.Build(ctx, cfg.Window)
	progress.Finish()

	if err != nil {
		return explainError(err)
	}

	return writeReport(cmd.Root().Writer, rep, format, int(cmd.Int("rows")), cmd.Bool("overlay"))
}

// writeReport renders rep to w in the given format.
func writeReport(w io.Writer, rep *report.Report, format string, rows int, withOverlay bool) error {
	if format == "json" {
		data, err := report.RenderJSON(rep, withOverlay)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	}

	_, err := fmt.Fprint(w, report.RenderText(rep, rows))

	return err
}

// explainError prefixes domain errors with a message meant for the terminal.
func explainError(err error) error {
	var insufficient *errors.InsufficientDataError
	if errors.As(err, &insufficient) {
		return fmt.Errorf("%s: %w", report.InsufficientMessage(insufficient), err)
	}

	if errors.IsDataUnavailableError(err) {
		return fmt.Errorf("could not fetch price data, check your connection and credentials: %w", err)
	}

	return err
}

func dashboardAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewNopLogger()
	if path := cmd.String("log-file"); path != "" {
		log, err = logger.NewLoggerWithLevel(cfg.LogLevel, path)
		if err != nil {
			return err
		}
	}
	defer log.Sync()

	service, client, err := newService(cfg, log, nil)
	if err != nil {
		return err
	}

	refresh := func() { client.Refresh(cfg.Ticker, cfg.LookbackYears) }
	model := dashboard.NewModel(service, cfg.Ticker, cfg.Window, refresh)

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	service, _, err := newService(cfg, log, nil)
	if err != nil {
		return err
	}

	srv := server.NewServer(service, cfg.Ticker, cfg.Window, log)
	if err := srv.Start(cfg.ServerAddr); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutting down", zap.String("address", srv.Address()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schemaJSON, err := config.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, schemaJSON)

	return err
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		credentials := "none"
		if len(info.Credentials) > 0 {
			credentials = strings.Join(info.Credentials, ", ")
		}

		fmt.Fprintf(w, "%-8s %s - %s (credentials: %s)\n", info.Name, info.DisplayName, info.Description, credentials)
	}

	return nil
}

func versionAction(_ context.Context, cmd *cli.Command) error {
	_, err := fmt.Fprintf(cmd.Root().Writer, "lrs %s\n", version.GetVersion())

	return err
}
