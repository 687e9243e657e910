package validation

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidURL = errors.New("invalid URL")

// ValidateURL rejects links that cannot be handed to the fetcher at all: blank
// tokens, unparseable URLs and http(s) URLs without a host. Scheme-less links
// and bare video IDs pass through; the fetcher decides whether they resolve.
// It does not contact the remote server.
func ValidateURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return errors.Wrap(ErrInvalidURL, "URL is required")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrapf(ErrInvalidURL, "invalid URL format: %v", err)
	}

	if (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") && parsedURL.Host == "" {
		return errors.Wrap(ErrInvalidURL, "URL must have a host")
	}

	// Check for YouTube-specific parameters
	if strings.HasSuffix(parsedURL.Hostname(), "youtube.com") && parsedURL.Path == "/watch" {
		if parsedURL.Query().Get("v") == "" {
			return errors.Wrap(ErrInvalidURL, "YouTube URL must contain a valid video ID")
		}
	}

	return nil
}
