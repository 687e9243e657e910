package pipeline

// Status is the terminal state of one link's iteration.
type Status string

const (
	StatusRecorded           Status = "recorded"
	StatusDurationRejected   Status = "duration_rejected"
	StatusTrackMissing       Status = "track_missing"
	StatusCaptionUnavailable Status = "caption_unavailable"
	StatusEmptyTranscript    Status = "empty_transcript"
	StatusErrored            Status = "errored"
)

// Outcome is what processing a link produced. Err is set only for
// StatusErrored.
type Outcome struct {
	Status  Status
	VideoID string
	Reason  string
	Err     error
}

// Skipped reports whether the link ended in one of the skip states.
func (o Outcome) Skipped() bool {
	switch o.Status {
	case StatusDurationRejected, StatusTrackMissing, StatusCaptionUnavailable, StatusEmptyTranscript:
		return true
	}
	return false
}

func skip(status Status, videoID, reason string) Outcome {
	return Outcome{Status: status, VideoID: videoID, Reason: reason}
}
