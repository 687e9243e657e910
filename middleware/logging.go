package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingTransport logs every outbound request with its status and latency.
type LoggingTransport struct {
	Next http.RoundTripper
}

func NewLoggingTransport(next http.RoundTripper) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &LoggingTransport{Next: next}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logrus.WithFields(logrus.Fields{
		"method": req.Method,
		"host":   req.URL.Host,
		"path":   req.URL.Path,
	})

	resp, err := t.Next.RoundTrip(req)
	latency := time.Since(start)
	if err != nil {
		logger.WithError(err).WithField("latency", latency).Error("Request failed")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"latency": latency,
		"size":    resp.ContentLength,
	}).Debug("Request completed")
	return resp, nil
}

// NewClient returns an http.Client that logs through LoggingTransport.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewLoggingTransport(nil),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Allow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
