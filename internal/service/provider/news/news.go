// Package news NewsAPI로 지역, 세계, 금융 뉴스 헤드라인을 조회합니다.
package news

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/service/fetcher"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/tidwall/gjson"
)

// component 로그에 기록되는 컴포넌트 식별자
const component = "provider.news"

const (
	// WorldFallbackQuery 헤드라인 조회가 요금제 제한으로 거부되었을 때 대신 사용하는 검색어
	WorldFallbackQuery = "world news OR global news"

	// BankingQuery 은행/금융 뉴스 검색어
	BankingQuery = `(bank OR banking OR "interest rates" OR mortgage OR lender OR FDIC OR Basel OR regulation)`

	maxEverythingPageSize   = 50
	maxTopHeadlinesPageSize = 20
)

// blockedSources 결과에서 제외하는 뉴스 출처 이름
var blockedSources = []string{
	"Yahoo Entertainment",
	"Slashdot.org",
	"ETFDailyNews.com",
	"ETFDailyNews",
	"Daily Mail",
}

// Article 뉴스 기사 하나의 요약 정보입니다.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Query Everything 검색 조건입니다.
type Query struct {
	Q       string
	Domains []string
	Limit   int
}

// Config Client 생성 옵션입니다.
type Config struct {
	BaseURL      string
	APIKey       string
	LocalDomains []string
	WorldSources []string
}

// Client NewsAPI 클라이언트
type Client struct {
	fetcher fetcher.Fetcher
	cfg     Config
}

// NewClient 새로운 Client를 생성합니다.
func NewClient(f fetcher.Fetcher, cfg Config) *Client {
	return &Client{fetcher: f, cfg: cfg}
}

// Everything /v2/everything 엔드포인트로 기사를 검색합니다.
//
// 요청한 개수의 3배(최대 50)를 받아온 뒤 제목이 비었거나, 이미 나온 제목이거나, 차단된 출처인 기사를
// 걸러내고 앞에서부터 q.Limit개를 반환합니다.
func (c *Client) Everything(ctx context.Context, q Query) ([]Article, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":        {q.Q},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {strconv.Itoa(min(q.Limit*3, maxEverythingPageSize))},
		"searchIn": {"title,description"},
	}
	if len(q.Domains) > 0 {
		params.Set("domains", strings.Join(q.Domains, ","))
	}

	resp, err := c.get(ctx, "/v2/everything", params)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.Wrapf(resp.StatusError(), apperrors.Unauthorized, "NewsAPI auth failed: %s", fetcher.Truncate(string(resp.Body), fetcher.BodySnippetLength))
	case !resp.OK():
		return nil, apperrors.Wrap(resp.StatusError(), apperrors.Unavailable, "NewsAPI 검색 요청이 실패했습니다")
	}

	return parseArticles(resp.Body, q.Limit, true)
}

// TopHeadlines /v2/top-headlines 엔드포인트로 지정한 출처의 헤드라인을 조회합니다.
// 401, 426 응답은 요금제 제한으로 보고 Restricted 에러를 반환합니다.
func (c *Client) TopHeadlines(ctx context.Context, sources []string, limit int) ([]Article, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, "/v2/top-headlines", url.Values{
		"sources":  {strings.Join(sources, ",")},
		"pageSize": {strconv.Itoa(min(limit, maxTopHeadlinesPageSize))},
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusUpgradeRequired:
		return nil, apperrors.Wrap(resp.StatusError(), apperrors.Restricted, "현재 요금제로는 지정한 출처의 헤드라인을 조회할 수 없습니다")
	case !resp.OK():
		return nil, apperrors.Wrap(resp.StatusError(), apperrors.Unavailable, "NewsAPI 헤드라인 요청이 실패했습니다")
	}

	return parseArticles(resp.Body, limit, false)
}

// World 주요 통신사 헤드라인을 조회합니다. 요금제 제한으로 거부되면 일반 검색으로 대체합니다.
func (c *Client) World(ctx context.Context, limit int) ([]Article, error) {
	articles, err := c.TopHeadlines(ctx, c.cfg.WorldSources, limit)
	if err == nil {
		return articles, nil
	}
	if !apperrors.Is(err, apperrors.Restricted) {
		return nil, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"sources": c.cfg.WorldSources,
		"error":   err,
	}).Info("헤드라인 조회가 제한되어 일반 검색으로 대체합니다")

	return c.Everything(ctx, Query{Q: WorldFallbackQuery, Limit: limit})
}

// Local 도시 이름으로 허용된 지역 언론사 도메인의 기사를 검색합니다.
func (c *Client) Local(ctx context.Context, city string, limit int) ([]Article, error) {
	return c.Everything(ctx, Query{Q: city, Domains: c.cfg.LocalDomains, Limit: limit})
}

func (c *Client) requireKey() error {
	if c.cfg.APIKey == "" {
		return apperrors.New(apperrors.Unauthorized, "NEWSAPI_API_KEY가 설정되지 않았습니다")
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*fetcher.Response, error) {
	req, err := fetcher.NewRequest(ctx, http.MethodGet, c.cfg.BaseURL+path, params, http.Header{
		"X-Api-Key": {c.cfg.APIKey},
	}, nil)
	if err != nil {
		return nil, err
	}

	return fetcher.ReadAll(c.fetcher, req)
}

// parseArticles 응답의 articles 배열을 Article 목록으로 변환합니다.
// filter가 true이면 중복 제목과 차단된 출처를 제외합니다.
func parseArticles(body []byte, limit int, filter bool) ([]Article, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperrors.New(apperrors.ParsingFailed, "NewsAPI 응답이 올바른 JSON 형식이 아닙니다")
	}

	articles := make([]Article, 0, max(limit, 0))
	seen := make(map[string]struct{})

	gjson.GetBytes(body, "articles").ForEach(func(_, a gjson.Result) bool {
		if len(articles) >= limit {
			return false
		}

		title := strings.TrimSpace(a.Get("title").String())
		source := a.Get("source.name").String()
		if title == "" {
			return true
		}
		if filter {
			if _, dup := seen[title]; dup || slices.Contains(blockedSources, source) {
				return true
			}
			seen[title] = struct{}{}
		}

		articles = append(articles, Article{
			Title:       title,
			Source:      source,
			URL:         a.Get("url").String(),
			PublishedAt: a.Get("publishedAt").String(),
		})
		return true
	})

	return articles, nil
}
