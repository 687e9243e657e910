package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/yt-dataset/captions"
	"github.com/nijaru/yt-dataset/config"
	"github.com/nijaru/yt-dataset/db"
	"github.com/nijaru/yt-dataset/links"
	"github.com/nijaru/yt-dataset/logger"
	"github.com/nijaru/yt-dataset/middleware"
	"github.com/nijaru/yt-dataset/pipeline"
	"github.com/nijaru/yt-dataset/summary"
	"github.com/nijaru/yt-dataset/ytdlp"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	if err := config.ValidateConfig(cfg); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	logFile, err := logger.Setup(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list, err := links.Load(cfg.InputPath)
	if err != nil {
		logrus.WithError(err).Error("Failed to read links, nothing to process")
		list = []string{}
	}
	entries := links.Batch(list, cfg.BatchStart, cfg.BatchEnd)

	batchEnd := cfg.BatchEnd
	if batchEnd <= 0 || batchEnd > len(list) {
		batchEnd = len(list)
	}

	var journal pipeline.Journal
	if cfg.JournalPath != "" {
		j, err := db.Open(cfg.JournalPath)
		if err != nil {
			logrus.WithError(err).Error("Failed to open run journal, continuing without it")
		} else {
			defer func() {
				if err := j.Close(); err != nil {
					logrus.WithError(err).Error("Failed to close run journal")
				}
			}()
			journal = j
		}
	}

	processor := pipeline.NewProcessor(
		ytdlp.NewFetcher(ytdlp.Options{
			BinaryPath:     cfg.YtDlpPath,
			Language:       cfg.CaptionLanguage,
			Format:         cfg.CaptionFormat,
			CredentialPath: cfg.CredentialPath,
			Timeout:        cfg.FetchTimeout,
		}),
		captions.NewClient(middleware.NewClient(cfg.HTTPTimeout)),
		summary.NewService(summary.Config{
			APIKey:           cfg.APIKey,
			BaseURL:          cfg.APIBaseURL,
			ModelID:          cfg.ModelID,
			Language:         cfg.SummaryLanguage,
			Timeout:          cfg.SummaryTimeout,
			RateLimit:        cfg.SummaryRateLimit,
			RateInterval:     cfg.SummaryRateInterval,
			VerifyLanguage:   cfg.VerifySummaryLanguage,
			ExpectedLanguage: cfg.CaptionLanguage,
		}),
		pipeline.Options{
			Language:   cfg.CaptionLanguage,
			Format:     cfg.CaptionFormat,
			OutputPath: cfg.OutputPath,
			MinMinutes: cfg.MinMinutes,
			MaxMinutes: cfg.MaxMinutes,
		},
	)

	logrus.WithField("output", cfg.OutputPath).Info("Records will be appended to output file")

	runner := pipeline.NewRunner(processor, pipeline.NewPacer(cfg.LinkDelay, cfg.ErrorDelay), journal)
	runner.Run(ctx, entries, cfg.BatchStart, batchEnd)
}
