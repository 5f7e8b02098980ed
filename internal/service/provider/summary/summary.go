// Package summary 은행/금융 헤드라인을 모아 요약합니다.
// OpenAI API 키가 있으면 chat completions API로 요약하고, 없으면 헤드라인 목록으로 대신합니다.
package summary

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/service/fetcher"
	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/tidwall/gjson"
)

const (
	// UnavailableSummary 조회 실패 시 사용하는 요약 문구
	UnavailableSummary = "Banking news unavailable"

	SourceLocal  = "local"
	SourceOpenAI = "openai"

	systemPrompt = "You are a concise banking/markets analyst. Be factual and include the 'so what'."
	userPrompt   = "Summarize these banking headlines in 4–6 sentences, including risks and opportunities:\n"
)

// Digest 금융 뉴스 요약과 요약에 사용된 기사 목록입니다.
type Digest struct {
	Summary string         `json:"summary"`
	Items   []news.Article `json:"items"`
	Source  string         `json:"source,omitempty"`
}

// Unavailable 조회 실패 시 사용하는 기본값을 반환합니다.
func Unavailable() Digest {
	return Digest{Summary: UnavailableSummary, Items: []news.Article{}}
}

// Searcher 금융 헤드라인 검색에 필요한 뉴스 클라이언트의 기능입니다.
type Searcher interface {
	Everything(ctx context.Context, q news.Query) ([]news.Article, error)
}

// Config Client 생성 옵션입니다.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	MaxTokens      int
	Limit          int
	FinanceDomains []string
}

// Client 금융 뉴스 요약 클라이언트
type Client struct {
	fetcher  fetcher.Fetcher
	searcher Searcher
	cfg      Config
}

// NewClient 새로운 Client를 생성합니다.
func NewClient(f fetcher.Fetcher, searcher Searcher, cfg Config) *Client {
	return &Client{fetcher: f, searcher: searcher, cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

// Banking 금융 헤드라인을 검색하여 요약합니다.
func (c *Client) Banking(ctx context.Context) (Digest, error) {
	articles, err := c.searcher.Everything(ctx, news.Query{
		Q:       news.BankingQuery,
		Domains: c.cfg.FinanceDomains,
		Limit:   c.cfg.Limit,
	})
	if err != nil {
		return Digest{}, err
	}

	bullets := Bullets(articles)

	if c.cfg.APIKey == "" {
		return Digest{Summary: "(local) Banking headlines:\n" + bullets, Items: articles, Source: SourceLocal}, nil
	}

	text, err := c.complete(ctx, bullets)
	if err != nil {
		return Digest{}, err
	}

	return Digest{Summary: text, Items: articles, Source: SourceOpenAI}, nil
}

// Bullets 기사 목록을 "- 제목 (출처)" 형식의 줄 목록으로 변환합니다.
func Bullets(articles []news.Article) string {
	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("- %s (%s)", a.Title, a.Source))
	}
	return strings.Join(lines, "\n")
}

func (c *Client) complete(ctx context.Context, bullets string) (string, error) {
	req, err := fetcher.NewRequest(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", nil, http.Header{
		"Authorization": {"Bearer " + c.cfg.APIKey},
	}, chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt + bullets},
		},
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	resp, err := fetcher.ReadAll(c.fetcher, req)
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", apperrors.Wrap(resp.StatusError(), apperrors.Unauthorized, "OpenAI 인증에 실패했습니다")
	case !resp.OK():
		return "", apperrors.Wrap(resp.StatusError(), apperrors.Unavailable, "OpenAI 요약 요청이 실패했습니다")
	}

	content := gjson.GetBytes(resp.Body, "choices.0.message.content")
	if !content.Exists() {
		return "", apperrors.New(apperrors.ParsingFailed, "OpenAI 응답에 요약 결과(choices)가 없습니다")
	}

	return strings.TrimSpace(content.String()), nil
}
