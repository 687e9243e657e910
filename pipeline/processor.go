package pipeline

import (
	"context"
	"fmt"

	"github.com/nijaru/yt-dataset/captions"
	"github.com/nijaru/yt-dataset/dataset"
	"github.com/nijaru/yt-dataset/links"
	"github.com/nijaru/yt-dataset/utils"
	"github.com/nijaru/yt-dataset/validation"
	"github.com/nijaru/yt-dataset/ytdlp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type InfoFetcher interface {
	Fetch(ctx context.Context, url string) (*ytdlp.VideoInfo, error)
}

type CaptionFetcher interface {
	Fetch(ctx context.Context, url string) (*captions.Payload, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

type Options struct {
	Language   string
	Format     string
	OutputPath string
	MinMinutes int
	MaxMinutes int
}

type Processor struct {
	fetcher    InfoFetcher
	captions   CaptionFetcher
	summarizer Summarizer
	opts       Options

	ValidateFunc func(url string) error
	AppendFunc   func(path string, rec dataset.Record) error
}

func NewProcessor(fetcher InfoFetcher, captionFetcher CaptionFetcher, summarizer Summarizer, opts Options) *Processor {
	return &Processor{
		fetcher:      fetcher,
		captions:     captionFetcher,
		summarizer:   summarizer,
		opts:         opts,
		ValidateFunc: validation.ValidateURL,
		AppendFunc:   dataset.Append,
	}
}

// Process runs every stage for one link. Failures never escape: they come back
// as a StatusErrored outcome and no record is written for the link.
func (p *Processor) Process(ctx context.Context, entry links.Entry) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Errorf("panic: %v", r)
			outcome = Outcome{Status: StatusErrored, VideoID: outcome.VideoID, Reason: err.Error(), Err: err}
		}
	}()

	outcome, err := p.process(ctx, entry)
	if err != nil {
		return Outcome{Status: StatusErrored, VideoID: outcome.VideoID, Reason: err.Error(), Err: err}
	}
	return outcome
}

func (p *Processor) process(ctx context.Context, entry links.Entry) (Outcome, error) {
	if err := p.ValidateFunc(entry.URL); err != nil {
		return Outcome{}, err
	}

	info, err := p.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		return Outcome{}, err
	}
	logger := logrus.WithFields(logrus.Fields{
		"index":    entry.Index,
		"video_id": info.ID,
	})

	if minutes := info.Minutes(); !p.durationInRange(minutes) {
		return skip(StatusDurationRejected, info.ID,
			fmt.Sprintf("duration %d min outside %d-%d", minutes, p.opts.MinMinutes, p.opts.MaxMinutes)), nil
	}

	track, err := info.ResolveTrack(p.opts.Language, p.opts.Format)
	switch {
	case errors.Is(err, ytdlp.ErrNoSubtitles):
		return skip(StatusTrackMissing, info.ID,
			fmt.Sprintf("no subtitle info in %q", p.opts.Language)), nil
	case errors.Is(err, ytdlp.ErrNoFormat):
		return skip(StatusTrackMissing, info.ID,
			fmt.Sprintf("no %s subtitles in %q", p.opts.Format, p.opts.Language)), nil
	case err != nil:
		return Outcome{VideoID: info.ID}, err
	}

	payload, err := p.captions.Fetch(ctx, track.URL)
	if errors.Is(err, captions.ErrUnavailable) {
		return skip(StatusCaptionUnavailable, info.ID,
			fmt.Sprintf("failed to fetch subtitles (status %d)", captions.StatusCode(err))), nil
	}
	if err != nil {
		return Outcome{VideoID: info.ID}, err
	}

	transcript := captions.Assemble(payload)
	if utils.IsBlank(transcript) {
		return skip(StatusEmptyTranscript, info.ID, "subtitles are empty"), nil
	}

	logger.WithFields(logrus.Fields{
		"chars":   len([]rune(transcript)),
		"preview": utils.Truncate(transcript, 60),
	}).Info("Subtitles fetched, generating summary")

	summaryText, err := p.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return Outcome{VideoID: info.ID}, err
	}

	rec := dataset.Record{Text: transcript, Summary: summaryText}
	if err := p.AppendFunc(p.opts.OutputPath, rec); err != nil {
		return Outcome{VideoID: info.ID}, err
	}

	return Outcome{Status: StatusRecorded, VideoID: info.ID}, nil
}

func (p *Processor) durationInRange(minutes int) bool {
	return minutes >= p.opts.MinMinutes && minutes <= p.opts.MaxMinutes
}
