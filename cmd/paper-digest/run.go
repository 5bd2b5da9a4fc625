// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/config"
	"github.com/pdiddy/paper-digest/internal/extract"
	"github.com/pdiddy/paper-digest/internal/history"
	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/internal/metrics"
	"github.com/pdiddy/paper-digest/internal/notify"
	"github.com/pdiddy/paper-digest/internal/oracle"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/retrieve"
	"github.com/pdiddy/paper-digest/pkg/types"
)

func runDigest(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	boot := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))

	cfg, err := config.Load(viper.GetViper(), cfgFile, boot)
	if err != nil {
		level.Error(boot).Log("msg", "configuration error", "err", err)
		return err
	}

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		level.Error(boot).Log("msg", "configuration error", "err", err)
		return err
	}
	defer closer.Close()

	runID := uuid.NewString()
	logger = log.With(logger, "run", runID)
	if used := viper.ConfigFileUsed(); used != "" {
		level.Debug(logger).Log("msg", "using config file", "path", used)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller, err := buildController(ctx, cfg, logger)
	if err != nil {
		level.Error(logger).Log("msg", "configuration error", "err", err)
		return err
	}

	level.Info(logger).Log("msg", "starting run", "query", cfg.SearchQuery, "retriever", cfg.Retriever, "oracle", cfg.Oracle.Backend)
	report := controller.Run(ctx, retrievalRequest(cfg, time.Now()))
	report.RunID = runID

	// Bookkeeping must survive an interrupted run.
	recordRun(context.WithoutCancel(ctx), cfg, report, logger)
	return nil
}

// buildController wires the pipeline collaborators selected by cfg.
func buildController(ctx context.Context, cfg types.Config, logger log.Logger) (*pipeline.Controller, error) {
	retriever, err := retrieve.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	backend, err := oracle.NewBackend(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating oracle backend")
	}
	oracleClient := oracle.NewClient(backend, oracle.Options{
		Retries:    cfg.Oracle.Retries,
		Timeout:    cfg.Oracle.Timeout,
		RetryDelay: cfg.Oracle.RetryDelay,
	}, logger)

	var extractor pipeline.Extractor
	if cfg.ExtractFullText {
		x, err := extract.New(ctx, cfg.Extraction, logger)
		if err != nil {
			return nil, errors.Wrap(err, "creating text extractor")
		}
		extractor = x
	}

	notifier := notify.New(cfg.EmailServiceHost, cfg.EmailServicePort, cfg.Notify.Timeout, logger)

	return pipeline.New(pipeline.SettingsFromConfig(cfg), pipeline.Deps{
		Retriever: retriever,
		Oracle:    oracleClient,
		Extractor: extractor,
		Notifier:  notifier,
		Logger:    logger,
	}), nil
}

// retrievalRequest covers the lookback window ending now.
func retrievalRequest(cfg types.Config, now time.Time) types.RetrievalRequest {
	return types.RetrievalRequest{
		SearchQuery: cfg.SearchQuery,
		OutputDir:   cfg.OutputDir,
		Start:       now.AddDate(0, 0, -cfg.LookbackDays),
	}
}

// recordRun writes the optional run history and metrics textfile. Failures
// are logged only.
func recordRun(ctx context.Context, cfg types.Config, report pipeline.Report, logger log.Logger) {
	if cfg.HistoryDB != "" {
		if err := history.RecordReport(ctx, cfg.HistoryDB, report); err != nil {
			level.Warn(logger).Log("msg", "recording run history failed", "err", err)
		}
	}
	if cfg.MetricsFile != "" {
		m := metrics.New()
		m.Observe(report)
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			level.Warn(logger).Log("msg", "writing metrics failed", "err", err)
		}
	}
}
