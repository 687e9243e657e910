package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pemistahl/lingua-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, content string, gotPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if gotPrompt != nil && len(req.Messages) > 0 {
			*gotPrompt = req.Messages[0].Content
		}

		choices := []map[string]any{}
		if content != "" {
			choices = append(choices, map[string]any{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   req.Model,
			"choices": choices,
		})
	}))
}

func testConfig(baseURL string) Config {
	return Config{
		APIKey:    "test-key",
		BaseURL:   baseURL + "/v1/",
		ModelID:   "test-model",
		Language:  "Telugu",
		RateLimit: 1,
	}
}

func TestSummarize(t *testing.T) {
	var prompt string
	server := newChatServer(t, "SUMMARY", &prompt)
	defer server.Close()

	service := NewService(testConfig(server.URL))
	text, err := service.Summarize(context.Background(), "lecture transcript")
	require.NoError(t, err)

	assert.Equal(t, "SUMMARY", text)
	assert.Contains(t, prompt, "Story:\nlecture transcript")
	assert.Contains(t, prompt, "summary in Telugu")
}

func TestSummarize_EmptyResponse(t *testing.T) {
	server := newChatServer(t, "", nil)
	defer server.Close()

	_, err := NewService(testConfig(server.URL)).Summarize(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestSummarize_APIError(t *testing.T) {
	server := newChatServer(t, "SUMMARY", nil)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.APIKey = "wrong"
	_, err := NewService(cfg).Summarize(context.Background(), "x")
	assert.Error(t, err)
}

func TestSummarize_CancelledContext(t *testing.T) {
	server := newChatServer(t, "SUMMARY", nil)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(testConfig(server.URL)).Summarize(ctx, "x")
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Hindi", "పాఠం")
	assert.True(t, strings.HasSuffix(prompt, "Story:\nపాఠం\n"))
	assert.Equal(t, 0, strings.Count(prompt, "%!"))
}

func TestLanguageFromCode(t *testing.T) {
	assert.Equal(t, lingua.Telugu, languageFromCode("te"))
	assert.Equal(t, lingua.English, languageFromCode("EN"))
	assert.Equal(t, lingua.Unknown, languageFromCode("xx"))
}

func TestSummarize_VerifyLanguage(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected string
		warning  string
	}{
		{
			name:     "mismatch is logged",
			reply:    "This lecture explains the basic ideas of algebra and shows how to solve simple equations step by step.",
			expected: "te",
			warning:  "Summary language does not match caption language",
		},
		{
			name:     "unsupported code is logged",
			reply:    "This lecture explains the basic ideas of algebra.",
			expected: "xx",
			warning:  "Cannot verify summary language for unsupported code",
		},
		{
			name:     "matching language",
			reply:    "ఈ పాఠంలో బీజగణితం యొక్క ప్రాథమిక భావనలను వివరించారు మరియు సమీకరణాలను ఎలా పరిష్కరించాలో చూపించారు.",
			expected: "te",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := test.NewGlobal()
			defer hook.Reset()

			server := newChatServer(t, tt.reply, nil)
			defer server.Close()

			cfg := testConfig(server.URL)
			cfg.VerifyLanguage = true
			cfg.ExpectedLanguage = tt.expected

			text, err := NewService(cfg).Summarize(context.Background(), "lecture transcript")
			require.NoError(t, err)
			assert.Equal(t, tt.reply, text)

			var warnings []string
			for _, entry := range hook.AllEntries() {
				if entry.Level == logrus.WarnLevel {
					warnings = append(warnings, entry.Message)
				}
			}
			if tt.warning == "" {
				assert.Empty(t, warnings)
				return
			}
			assert.Equal(t, []string{tt.warning}, warnings)
		})
	}
}
