package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nijaru/yt-dataset/utils"
	"github.com/pkg/errors"
)

var (
	ErrUnavailable = errors.New("caption payload unavailable")
	ErrMalformed   = errors.New("malformed caption payload")
)

// Payload is the json3 caption document: timed events holding text segments.
type Payload struct {
	Events []Event `json:"events"`
}

type Event struct {
	Segs []Segment `json:"segs"`
}

type Segment struct {
	UTF8 string `json:"utf8"`
}

type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient}
}

// StatusCode extracts the HTTP status carried by an ErrUnavailable error.
func StatusCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (e *statusError) Is(target error) bool {
	return target == ErrUnavailable
}

// Fetch downloads and decodes the caption payload at url. A non-200 response
// yields an error matching ErrUnavailable; an undecodable body yields
// ErrMalformed.
func (c *Client) Fetch(ctx context.Context, url string) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating caption request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error fetching captions")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%v", err)
	}
	return &payload, nil
}

// Assemble flattens every segment of every event, in order, into one line of
// text. Newlines inside a segment become spaces and blank segments are dropped.
func Assemble(p *Payload) string {
	if p == nil {
		return ""
	}

	var parts []string
	for _, event := range p.Events {
		for _, seg := range event.Segs {
			text := strings.TrimSpace(utils.FlattenLine(seg.UTF8))
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}
