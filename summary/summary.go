package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pemistahl/lingua-go"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrEmptyResponse = errors.New("empty summary response")

const promptTemplate = `You are an expert at summarising %[1]s lectures into concise yet complete summaries.
Summarise the following %[1]s lecture into a clear summary in %[1]s,
keeping the important points intact. Do not shorten too much,
but also avoid excessive detail. Maintain a natural %[1]s teaching style and use only %[1]s words; do not mix in words from any other language. Write the whole summary in paragraphs.

Story:
%[2]s
`

type Config struct {
	APIKey       string
	BaseURL      string
	ModelID      string
	Language     string
	Timeout      time.Duration
	RateLimit    int
	RateInterval time.Duration
	// VerifyLanguage enables a post-check that the summary is written in
	// ExpectedLanguage (an ISO 639-1 code). Mismatches are only logged.
	VerifyLanguage   bool
	ExpectedLanguage string
}

type Service struct {
	client   *openai.Client
	config   Config
	limiter  *rate.Limiter
	detector lingua.LanguageDetector
}

func NewService(cfg Config) *Service {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	s := &Service{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.RateInterval), cfg.RateLimit),
	}
	if cfg.VerifyLanguage {
		s.detector = lingua.NewLanguageDetectorBuilder().FromAllLanguages().Build()
	}
	return s
}

// BuildPrompt embeds the transcript in the fixed summarization prompt.
func BuildPrompt(language, transcript string) string {
	return fmt.Sprintf(promptTemplate, language, transcript)
}

// Summarize makes a single chat completion call for the transcript. It does
// not retry.
func (s *Service) Summarize(ctx context.Context, transcript string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "rate limiter wait")
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: s.config.ModelID,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(s.config.Language, transcript),
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "error creating chat completion")
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.Wrapf(ErrEmptyResponse, "model %s", s.config.ModelID)
	}

	text := resp.Choices[0].Message.Content
	if s.detector != nil {
		s.checkLanguage(text)
	}
	return text, nil
}

func (s *Service) checkLanguage(text string) {
	want := languageFromCode(s.config.ExpectedLanguage)
	if want == lingua.Unknown {
		logrus.WithField("language", s.config.ExpectedLanguage).Warn("Cannot verify summary language for unsupported code")
		return
	}

	got, ok := s.detector.DetectLanguageOf(text)
	if !ok || got != want {
		logrus.WithFields(logrus.Fields{
			"expected": want.String(),
			"detected": got.String(),
		}).Warn("Summary language does not match caption language")
	}
}

func languageFromCode(code string) lingua.Language {
	for _, lang := range lingua.AllLanguages() {
		if strings.EqualFold(lang.IsoCode639_1().String(), code) {
			return lang
		}
	}
	return lingua.Unknown
}
