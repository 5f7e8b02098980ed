package brief

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/service/cache"
	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/darkkaiser/morning-brief/internal/service/provider/summary"
	"github.com/darkkaiser/morning-brief/internal/service/provider/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 3, 1, 7, 5, 0, 0, time.UTC)

// =============================================================================
// Fakes
// =============================================================================

type fakeWeather struct {
	calls atomic.Int32
	err   error
}

func (f *fakeWeather) Forecast(_ context.Context, city string) (weather.Report, error) {
	f.calls.Add(1)
	if f.err != nil {
		return weather.Report{}, f.err
	}
	return weather.Report{City: city, HighC: 15, LowC: 5, Available: true}, nil
}

type fakeNews struct {
	localErr error
}

func (f *fakeNews) Local(_ context.Context, city string, limit int) ([]news.Article, error) {
	if f.localErr != nil {
		return nil, f.localErr
	}
	return []news.Article{{Title: city + " ferry update", Source: "The Seattle Times", URL: "https://seattletimes.com/1"}}[:min(limit, 1)], nil
}

func (f *fakeNews) World(context.Context, int) ([]news.Article, error) {
	return []news.Article{
		{Title: "Summit opens", Source: "BBC News", URL: "https://bbc.co.uk/1"},
		{Title: "Markets <rally>", Source: "Reuters", URL: "https://reuters.com/2?a=1&b=2"},
	}, nil
}

type fakeSummary struct{}

func (fakeSummary) Banking(context.Context) (summary.Digest, error) {
	panic("unexpected nil pointer")
}

func newTestService(w *fakeWeather, n *fakeNews, c *cache.Cache) *Service {
	return NewService(Options{
		City:           "new york",
		MaxParallelism: 2,
		Limits:         Limits{Local: 5, World: 3},
		Clock:          func() time.Time { return testTime },
	}, Sources{Weather: w, News: n, Summary: fakeSummary{}}, c)
}

func sampleBrief() *Brief {
	return &Brief{
		RunID:       "run-1",
		City:        "seattle",
		GeneratedAt: testTime,
		FetchTime:   1500 * time.Millisecond,
		Weather:     weather.Report{City: "seattle", HighC: 15, LowC: 5, Available: true},
		Local:       []news.Article{{Title: "Ferry <update>", Source: "KING 5", URL: "https://king5.com/1"}},
		World:       nil,
		Banking: summary.Digest{
			Summary: "(local) Banking headlines:\n- Fed holds rates (Reuters)",
			Items:   []news.Article{{Title: "Fed holds rates", Source: "Reuters"}},
		},
	}
}

// =============================================================================
// Tasks / Service
// =============================================================================

func TestLocalTaskName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "seattle_news", LocalTaskName("Seattle"))
	assert.Equal(t, "new_york_news", LocalTaskName("New York"))
	assert.Equal(t, "san_francisco_news", LocalTaskName("san francisco"))
}

func TestService_Generate(t *testing.T) {
	t.Parallel()

	w := &fakeWeather{err: apperrors.New(apperrors.NotFound, "City not found: new york")}
	svc := newTestService(w, &fakeNews{}, nil)

	b := svc.Generate(context.Background())

	assert.NotEmpty(t, b.RunID)
	assert.Equal(t, "New York", b.DisplayCity())
	assert.Equal(t, testTime, b.GeneratedAt)
	assert.Equal(t, weather.Report{City: "new york"}, b.Weather, "실패한 날씨는 기본값")
	assert.Len(t, b.Local, 1)
	assert.Len(t, b.World, 2)
	assert.Equal(t, summary.UnavailableSummary, b.Banking.Summary, "패닉은 기본값으로 대체")
	assert.ElementsMatch(t, []string{TaskWeather, TaskBanking}, b.Failed())
	assert.Equal(t, []string{TaskWeather, "new_york_news", TaskWorld, TaskBanking}, svc.SectionNames())
}

func TestService_Generate_UsesCache(t *testing.T) {
	t.Parallel()

	w := &fakeWeather{}
	c := cache.New(cache.NewMemoryStore(), cache.Options{Enabled: true, Window: time.Hour, Clock: func() time.Time { return testTime }})
	svc := newTestService(w, &fakeNews{}, c)

	first := svc.Generate(context.Background())
	second := svc.Generate(context.Background())

	assert.EqualValues(t, 1, w.calls.Load())
	assert.Equal(t, first.Weather, second.Weather)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestService_Section(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeWeather{}, &fakeNews{localErr: errors.New("timeout")}, nil)

	v, ok := svc.Section(context.Background(), "new_york_news")
	require.True(t, ok)
	assert.Equal(t, []news.Article{}, v, "실패하면 기본값")

	v, ok = svc.Section(context.Background(), TaskBanking)
	require.True(t, ok)
	assert.Equal(t, summary.Unavailable(), v)

	_, ok = svc.Section(context.Background(), "sports")
	assert.False(t, ok)
}

// =============================================================================
// Rendering
// =============================================================================

func TestRenderConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderConsole(&buf, sampleBrief()))
	out := buf.String()

	assert.Contains(t, out, "📍 City: Seattle")
	assert.Contains(t, out, "🔧 Dev Mode: OFF")
	assert.Contains(t, out, "⏱️ All data fetched in 1.5 seconds")
	assert.Contains(t, out, "📰 MORNING BRIEF (2024-03-01)")
	assert.Contains(t, out, "   High: 59.0°F (15.0°C)")
	assert.Contains(t, out, "   Low:  41.0°F (5.0°C)")
	assert.Contains(t, out, "📍 Top 1 Seattle Stories:\n1. Ferry <update>\n   📰 KING 5\n   🔗 https://king5.com/1")
	assert.Contains(t, out, "🌍 Top 0 World Stories:\n   No World news available")
	assert.Contains(t, out, "🏦 Banking Summary:\n   (local) Banking headlines:\n   - Fed holds rates (Reuters)")

	b := sampleBrief()
	b.Weather = weather.Unavailable("seattle")
	buf.Reset()
	require.NoError(t, RenderConsole(&buf, b))
	assert.Contains(t, buf.String(), "⚠️ Weather data unavailable for Seattle")
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	html, err := RenderHTML(sampleBrief())
	require.NoError(t, err)

	assert.Contains(t, html, "<h2>Morning Brief — 2024-03-01</h2>")
	assert.Contains(t, html, "<strong>Seattle:</strong> High 59.0°F / Low 41.0°F")
	assert.Contains(t, html, `<li><a href="https://king5.com/1">Ferry &lt;update&gt;</a> <em>(KING 5)</em></li>`)
	assert.Contains(t, html, "<li><em>No articles available</em></li>")
	assert.Contains(t, html, "(local) Banking headlines:<br/>- Fed holds rates (Reuters)")
	assert.Contains(t, html, "Generated in 1.5 seconds • 2 articles processed")

	b := sampleBrief()
	b.Weather = weather.Unavailable("seattle")
	b.Banking.Summary = "<script>alert(1)</script>"
	html, err = RenderHTML(b)
	require.NoError(t, err)
	assert.Contains(t, html, "<em>Weather data temporarily unavailable</em>")
	assert.NotContains(t, html, "<script>")
}

func TestSubject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Morning Brief — Seattle & World (2024-03-01)", sampleBrief().Subject())
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	html, err := RenderHTML(sampleBrief())
	require.NoError(t, err)

	text, err := PlainText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Morning Brief — 2024-03-01\n\nSeattle Weather\nSeattle: High 59.0°F / Low 41.0°F\n(High 15.0°C / Low 5.0°C)")
	assert.Contains(t, text, "1. Ferry <update> (KING 5) - https://king5.com/1")
	assert.Contains(t, text, "Top World Stories\n1. No articles available")
	assert.Contains(t, text, "(local) Banking headlines:\n- Fed holds rates (Reuters)")
	assert.NotContains(t, text, "<li>")
}

// =============================================================================
// Snapshot
// =============================================================================

func TestWriteSnapshot(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "snapshots")
	path, err := WriteSnapshot(dir, sampleBrief())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "morning_2024-03-01_0705.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, 1.5, got["fetch_time_seconds"])
	assert.Contains(t, got, "weather")
	assert.Contains(t, got, "local")
	assert.Contains(t, got, "world")
	assert.Contains(t, got, "banking")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "임시 파일이 남지 않는다")
}
