package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrFetch       = errors.New("video info fetch failed")
	ErrNoSubtitles = errors.New("no subtitle info for language")
	ErrNoFormat    = errors.New("no subtitle track in requested format")
)

// Track is one caption rendition listed by yt-dlp.
type Track struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

type VideoInfo struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Duration          float64            `json:"duration"`
	AutomaticCaptions map[string][]Track `json:"automatic_captions"`
	Subtitles         map[string][]Track `json:"subtitles"`
}

// Minutes returns the whole minutes of the video duration. A missing or null
// duration reads as 0.
func (v *VideoInfo) Minutes() int {
	return int(v.Duration) / 60
}

// ResolveTrack picks the caption track for lang, preferring automatic captions
// over manual subtitles, and returns the first entry whose ext equals format.
func (v *VideoInfo) ResolveTrack(lang, format string) (Track, error) {
	tracks := v.AutomaticCaptions[lang]
	if len(tracks) == 0 {
		tracks = v.Subtitles[lang]
	}
	if len(tracks) == 0 {
		return Track{}, errors.Wrapf(ErrNoSubtitles, "language %q", lang)
	}

	for _, track := range tracks {
		if track.Ext == format {
			return track, nil
		}
	}
	return Track{}, errors.Wrapf(ErrNoFormat, "no %s track in %q", format, lang)
}

type Options struct {
	BinaryPath     string
	Language       string
	Format         string
	CredentialPath string
	Timeout        time.Duration
}

type Fetcher struct {
	opts        Options
	ExecuteFunc func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewFetcher(opts Options) *Fetcher {
	if opts.BinaryPath == "" {
		opts.BinaryPath = "yt-dlp"
	}
	return &Fetcher{
		opts:        opts,
		ExecuteFunc: executeCommand,
	}
}

// Fetch asks yt-dlp for the metadata and caption listings of url without
// downloading media.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*VideoInfo, error) {
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	logrus.WithField("url", url).Debug("Fetching video info")

	output, err := f.ExecuteFunc(ctx, f.opts.BinaryPath, f.buildArgs(url)...)
	if err != nil {
		return nil, errors.Wrapf(ErrFetch, "%s: %v", url, err)
	}

	var info VideoInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, errors.Wrapf(ErrFetch, "error parsing video info for %s: %v", url, err)
	}
	if info.ID == "" {
		return nil, errors.Wrapf(ErrFetch, "video info for %s has no id", url)
	}

	return &info, nil
}

func (f *Fetcher) buildArgs(url string) []string {
	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		"--sub-langs", f.opts.Language,
		"--sub-format", f.opts.Format,
		"-o", "%(id)s.%(ext)s",
	}
	if f.opts.CredentialPath != "" {
		args = append(args, "--cookies", f.opts.CredentialPath)
	}
	return append(args, url)
}

func executeCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Errorf("error executing %s: %v (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
