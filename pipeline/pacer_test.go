package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestPacer_Delay(t *testing.T) {
	pacer := NewPacer(10*time.Second, 5*time.Second)

	tests := []struct {
		status Status
		want   time.Duration
	}{
		{StatusRecorded, 10 * time.Second},
		{StatusDurationRejected, 10 * time.Second},
		{StatusTrackMissing, 10 * time.Second},
		{StatusCaptionUnavailable, 10 * time.Second},
		{StatusEmptyTranscript, 10 * time.Second},
		{StatusErrored, 5 * time.Second},
	}

	for _, tt := range tests {
		if got := pacer.Delay(Outcome{Status: tt.status}); got != tt.want {
			t.Errorf("Delay(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestPacer_WaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := NewPacer(time.Hour, time.Hour).Wait(ctx, Outcome{Status: StatusRecorded})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if time.Since(start) > time.Second {
		t.Error("wait did not return promptly after cancellation")
	}
}

func TestPacer_WaitSleeps(t *testing.T) {
	err := NewPacer(20*time.Millisecond, 0).Wait(context.Background(), Outcome{Status: StatusRecorded})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
