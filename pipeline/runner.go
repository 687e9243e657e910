package pipeline

import (
	"context"

	"github.com/nijaru/yt-dataset/db"
	"github.com/nijaru/yt-dataset/links"
	"github.com/sirupsen/logrus"
)

type LinkProcessor interface {
	Process(ctx context.Context, entry links.Entry) Outcome
}

// Journal receives every outcome of a run and reports the per-status totals
// at the end. A nil Journal disables journaling.
type Journal interface {
	StartRun(ctx context.Context, batchStart, batchEnd, linkCount int) (string, error)
	RecordOutcome(ctx context.Context, runID string, o db.Outcome) error
	FinishRun(ctx context.Context, runID string) error
	CountByStatus(ctx context.Context, runID string) (map[string]int, error)
}

// Report tallies the outcomes of one batch.
type Report struct {
	Processed int
	Counts    map[Status]int
}

type Runner struct {
	processor LinkProcessor
	pacer     *Pacer
	journal   Journal
}

func NewRunner(processor LinkProcessor, pacer *Pacer, journal Journal) *Runner {
	return &Runner{
		processor: processor,
		pacer:     pacer,
		journal:   journal,
	}
}

// Run processes the batch one link at a time. It stops early only when ctx is
// cancelled; individual link failures never end the batch.
func (r *Runner) Run(ctx context.Context, entries []links.Entry, batchStart, batchEnd int) Report {
	report := Report{Counts: make(map[Status]int)}
	runID := r.startRun(ctx, batchStart, batchEnd, len(entries))

	logrus.WithFields(logrus.Fields{
		"start": batchStart,
		"end":   batchEnd,
		"links": len(entries),
		"run":   runID,
	}).Info("Starting batch")

	for _, entry := range entries {
		if ctx.Err() != nil {
			logrus.WithError(ctx.Err()).Warn("Batch interrupted")
			break
		}

		logger := logrus.WithFields(logrus.Fields{
			"index": entry.Index,
			"url":   entry.URL,
		})
		logger.Info("Processing link")

		outcome := r.processor.Process(ctx, entry)
		report.Processed++
		report.Counts[outcome.Status]++
		logOutcome(logger, outcome)
		r.recordOutcome(ctx, runID, entry, outcome)

		if err := r.pacer.Wait(ctx, outcome); err != nil {
			logrus.WithError(err).Warn("Batch interrupted")
			break
		}
	}

	r.finishRun(runID)

	counts := r.finalCounts(runID, report)
	logrus.WithFields(logrus.Fields{
		"processed":           report.Processed,
		"run":                 runID,
		"recorded":            counts[StatusRecorded],
		"duration_rejected":   counts[StatusDurationRejected],
		"track_missing":       counts[StatusTrackMissing],
		"caption_unavailable": counts[StatusCaptionUnavailable],
		"empty_transcript":    counts[StatusEmptyTranscript],
		"errored":             counts[StatusErrored],
	}).Info("Batch finished")

	return report
}

// finalCounts prefers the journal's totals for the run so the log matches
// what was persisted. It falls back to the in-memory tally when there is no
// journal or the query fails.
func (r *Runner) finalCounts(runID string, report Report) map[Status]int {
	if r.journal == nil || runID == "" {
		return report.Counts
	}
	stored, err := r.journal.CountByStatus(context.Background(), runID)
	if err != nil {
		logrus.WithError(err).Error("Failed to read journal counts, using in-memory tally")
		return report.Counts
	}
	counts := make(map[Status]int, len(stored))
	for status, n := range stored {
		counts[Status(status)] = n
	}
	return counts
}

func logOutcome(logger *logrus.Entry, o Outcome) {
	logger = logger.WithField("video_id", o.VideoID)
	switch {
	case o.Status == StatusRecorded:
		logger.Info("Record appended")
	case o.Skipped():
		logger.WithFields(logrus.Fields{
			"status": o.Status,
			"reason": o.Reason,
		}).Info("Skipping link")
	default:
		logger.WithError(o.Err).Error("Error while processing link, skipping")
	}
}

func (r *Runner) startRun(ctx context.Context, batchStart, batchEnd, count int) string {
	if r.journal == nil {
		return ""
	}
	runID, err := r.journal.StartRun(ctx, batchStart, batchEnd, count)
	if err != nil {
		logrus.WithError(err).Error("Failed to start journal run")
		return ""
	}
	return runID
}

func (r *Runner) recordOutcome(ctx context.Context, runID string, entry links.Entry, o Outcome) {
	if r.journal == nil || runID == "" {
		return
	}
	err := r.journal.RecordOutcome(context.WithoutCancel(ctx), runID, db.Outcome{
		Index:   entry.Index,
		URL:     entry.URL,
		VideoID: o.VideoID,
		Status:  string(o.Status),
		Reason:  o.Reason,
	})
	if err != nil {
		logrus.WithError(err).WithField("index", entry.Index).Error("Failed to journal outcome")
	}
}

func (r *Runner) finishRun(runID string) {
	if r.journal == nil || runID == "" {
		return
	}
	// The run context may already be cancelled at this point.
	if err := r.journal.FinishRun(context.Background(), runID); err != nil {
		logrus.WithError(err).Error("Failed to finish journal run")
	}
}
