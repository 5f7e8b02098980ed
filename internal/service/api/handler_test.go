package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/darkkaiser/morning-brief/internal/pkg/version"
	"github.com/darkkaiser/morning-brief/internal/service/brief"
	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/darkkaiser/morning-brief/internal/service/provider/summary"
	"github.com/darkkaiser/morning-brief/internal/service/provider/weather"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context) *brief.Brief {
	args := m.Called(ctx)
	return args.Get(0).(*brief.Brief)
}

func (m *mockGenerator) Section(ctx context.Context, name string) (any, bool) {
	args := m.Called(ctx, name)
	return args.Get(0), args.Bool(1)
}

func (m *mockGenerator) SectionNames() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func sampleBrief() *brief.Brief {
	return &brief.Brief{
		RunID:       "run-1",
		City:        "seattle",
		GeneratedAt: time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC),
		FetchTime:   1500 * time.Millisecond,
		Weather:     weather.Report{City: "seattle", HighC: 12.5, LowC: 4, Available: true},
		Local: []news.Article{
			{Title: "Ferry <delays>", Source: "The Seattle Times", URL: "https://seattletimes.com/a"},
		},
		World:   []news.Article{},
		Banking: summary.Digest{Summary: "Rates held steady.", Items: []news.Article{}, Source: summary.SourceLocal},
	}
}

func newTestServer(g Generator) *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{})
	SetupRoutes(e, NewHandler(g, version.Info{Version: "v1.0.0", Commit: "abc1234"}))
	return e
}

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNewHandler_NilGenerator(t *testing.T) {
	assert.Panics(t, func() { NewHandler(nil, version.Info{}) })
}

func TestHealthHandler(t *testing.T) {
	g := &mockGenerator{}
	e := newTestServer(g)

	rec := serve(e, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var got HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "v1.0.0", got.Version.Version)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	g.AssertNotCalled(t, "Generate", mock.Anything)
}

func TestBriefHTMLHandler(t *testing.T) {
	g := &mockGenerator{}
	g.On("Generate", mock.Anything).Return(sampleBrief()).Once()
	e := newTestServer(g)

	rec := serve(e, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "Seattle")
	assert.Contains(t, rec.Body.String(), "Ferry &lt;delays&gt;")
	assert.NotContains(t, rec.Body.String(), "Ferry <delays>")
	g.AssertExpectations(t)
}

func TestBriefTextHandler(t *testing.T) {
	g := &mockGenerator{}
	g.On("Generate", mock.Anything).Return(sampleBrief()).Once()
	e := newTestServer(g)

	rec := serve(e, "/brief.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1. Ferry <delays> (The Seattle Times) - https://seattletimes.com/a")
	assert.NotContains(t, rec.Body.String(), "<p>")
}

func TestBriefJSONHandler(t *testing.T) {
	g := &mockGenerator{}
	g.On("Generate", mock.Anything).Return(sampleBrief()).Once()
	e := newTestServer(g)

	rec := serve(e, "/brief.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var got brief.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "2024-03-01T07:00:00Z", got.GeneratedAt)
	assert.InDelta(t, 1.5, got.FetchTimeSeconds, 0.001)
	assert.Len(t, got.Local, 1)
	assert.Equal(t, "Rates held steady.", got.Banking.Summary)
}

func TestSectionHandlers(t *testing.T) {
	g := &mockGenerator{}
	g.On("SectionNames").Return([]string{"weather", "seattle_news"})
	g.On("Section", mock.Anything, "weather").Return(weather.Unavailable("seattle"), true)
	g.On("Section", mock.Anything, "sports").Return(nil, false)
	e := newTestServer(g)

	t.Run("목록", func(t *testing.T) {
		rec := serve(e, "/sections")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `["weather","seattle_news"]`, rec.Body.String())
	})

	t.Run("단일 섹션", func(t *testing.T) {
		rec := serve(e, "/sections/weather")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name":"weather","value":{"city":"seattle","high_c":0,"low_c":0,"available":false}}`, rec.Body.String())
	})

	t.Run("알 수 없는 섹션", func(t *testing.T) {
		rec := serve(e, "/sections/sports")
		require.Equal(t, http.StatusNotFound, rec.Code)

		var got ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, http.StatusNotFound, got.ResultCode)
		assert.Contains(t, got.Message, "sports")
	})
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	e := newTestServer(&mockGenerator{})

	rec := serve(e, "/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "요청한 리소스를 찾을 수 없습니다", got.Message)
}

func TestHTTPServer_PanicBecomes500(t *testing.T) {
	g := &mockGenerator{}
	g.On("Generate", mock.Anything).Run(func(mock.Arguments) { panic("boom") })
	e := newTestServer(g)

	rec := serve(e, "/")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, http.StatusInternalServerError, got.ResultCode)
}

func TestHTTPServer_SecurityHeaders(t *testing.T) {
	e := newTestServer(&mockGenerator{})

	rec := serve(e, "/healthz")
	assert.Empty(t, rec.Header().Get(echo.HeaderServer))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
}
