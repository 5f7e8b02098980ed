package summary_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/service/fetcher"
	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/darkkaiser/morning-brief/internal/service/provider/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Everything(ctx context.Context, q news.Query) ([]news.Article, error) {
	args := m.Called(ctx, q)
	articles, _ := args.Get(0).([]news.Article)
	return articles, args.Error(1)
}

var headlines = []news.Article{
	{Title: "Fed holds rates", Source: "Reuters"},
	{Title: "Regional lender merger", Source: "American Banker"},
}

func newSearcher() *mockSearcher {
	m := &mockSearcher{}
	m.On("Everything", mock.Anything, news.Query{
		Q:       news.BankingQuery,
		Domains: []string{"reuters.com"},
		Limit:   6,
	}).Return(headlines, nil)
	return m
}

func newTestClient(t *testing.T, apiKey string, searcher summary.Searcher, h http.HandlerFunc) *summary.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return summary.NewClient(fetcher.New(fetcher.Config{DisableLogging: true}), searcher, summary.Config{
		BaseURL:        srv.URL,
		APIKey:         apiKey,
		Model:          "gpt-4o-mini",
		MaxTokens:      250,
		Limit:          6,
		FinanceDomains: []string{"reuters.com"},
	})
}

func TestBanking_LocalSummary(t *testing.T) {
	t.Parallel()

	searcher := newSearcher()
	client := newTestClient(t, "", searcher, func(w http.ResponseWriter, r *http.Request) {
		t.Error("API 키가 없으면 OpenAI를 호출하지 않는다")
	})

	digest, err := client.Banking(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "(local) Banking headlines:\n- Fed holds rates (Reuters)\n- Regional lender merger (American Banker)", digest.Summary)
	assert.Equal(t, headlines, digest.Items)
	assert.Equal(t, summary.SourceLocal, digest.Source)
	searcher.AssertExpectations(t)
}

func TestBanking_OpenAI(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "sk-test", newSearcher(), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxTokens int `json:"max_tokens"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Equal(t, 250, body.MaxTokens)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Contains(t, body.Messages[1].Content, "- Fed holds rates (Reuters)")
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Rates steady; lenders consolidate.  "}}]}`))
	})

	digest, err := client.Banking(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rates steady; lenders consolidate.", digest.Summary)
	assert.Equal(t, summary.SourceOpenAI, digest.Source)
	assert.Len(t, digest.Items, 2)
}

func TestBanking_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		expected apperrors.ErrorType
	}{
		{"인증 실패", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }, apperrors.Unauthorized},
		{"서버 오류", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }, apperrors.Unavailable},
		{"빈 choices", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"choices":[]}`)) }, apperrors.ParsingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTestClient(t, "sk-test", newSearcher(), tt.handler).Banking(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.expected), err.Error())
		})
	}
}

func TestBanking_SearchFailure(t *testing.T) {
	t.Parallel()

	searchErr := apperrors.New(apperrors.Unauthorized, "NEWSAPI_API_KEY가 설정되지 않았습니다")
	m := &mockSearcher{}
	m.On("Everything", mock.Anything, mock.Anything).Return(nil, searchErr)

	_, err := newTestClient(t, "sk-test", m, nil).Banking(context.Background())
	assert.True(t, errors.Is(err, searchErr))
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	d := summary.Unavailable()
	assert.Equal(t, "Banking news unavailable", d.Summary)
	assert.Empty(t, d.Items)
}
