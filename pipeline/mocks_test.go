package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/nijaru/yt-dataset/captions"
	"github.com/nijaru/yt-dataset/db"
	"github.com/nijaru/yt-dataset/links"
	"github.com/nijaru/yt-dataset/ytdlp"
)

type MockInfoFetcher struct {
	FetchFunc func(ctx context.Context, url string) (*ytdlp.VideoInfo, error)
}

func (m *MockInfoFetcher) Fetch(ctx context.Context, url string) (*ytdlp.VideoInfo, error) {
	return m.FetchFunc(ctx, url)
}

type MockCaptionFetcher struct {
	FetchFunc func(ctx context.Context, url string) (*captions.Payload, error)
}

func (m *MockCaptionFetcher) Fetch(ctx context.Context, url string) (*captions.Payload, error) {
	return m.FetchFunc(ctx, url)
}

type MockSummarizer struct {
	SummarizeFunc func(ctx context.Context, transcript string) (string, error)
}

func (m *MockSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	return m.SummarizeFunc(ctx, transcript)
}

type MockProcessor struct {
	ProcessFunc func(ctx context.Context, entry links.Entry) Outcome
}

func (m *MockProcessor) Process(ctx context.Context, entry links.Entry) Outcome {
	return m.ProcessFunc(ctx, entry)
}

type MockJournal struct {
	mu       sync.Mutex
	Started  int
	Finished int
	Counted  int
	Outcomes []db.Outcome
	CountErr error
}

func (m *MockJournal) StartRun(ctx context.Context, batchStart, batchEnd, linkCount int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started++
	return "run-1", nil
}

func (m *MockJournal) RecordOutcome(ctx context.Context, runID string, o db.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, o)
	return nil
}

func (m *MockJournal) FinishRun(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Finished++
	return nil
}

func (m *MockJournal) CountByStatus(ctx context.Context, runID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counted++
	if m.CountErr != nil {
		return nil, m.CountErr
	}
	counts := make(map[string]int)
	for _, o := range m.Outcomes {
		counts[o.Status]++
	}
	return counts, nil
}

// recordingSleeper captures pacer delays instead of sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}
