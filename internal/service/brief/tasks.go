package brief

import (
	"context"

	"github.com/darkkaiser/morning-brief/internal/service/cache"
	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/darkkaiser/morning-brief/internal/service/provider/summary"
	"github.com/darkkaiser/morning-brief/internal/service/provider/weather"
	"github.com/darkkaiser/morning-brief/internal/service/task"
	"github.com/iancoleman/strcase"
)

// 작업 이름. 캐시 키로도 사용된다.
const (
	TaskWeather = "weather"
	TaskWorld   = "world"
	TaskBanking = "banking"
)

// LocalTaskName 도시의 지역 뉴스 작업 이름을 반환합니다. (예: "New York" → "new_york_news")
func LocalTaskName(city string) string {
	return strcase.ToSnake(city) + "_news"
}

// Sources 작업이 사용하는 외부 조회 기능입니다.
type Sources struct {
	Weather interface {
		Forecast(ctx context.Context, city string) (weather.Report, error)
	}
	News interface {
		Local(ctx context.Context, city string, limit int) ([]news.Article, error)
		World(ctx context.Context, limit int) ([]news.Article, error)
	}
	Summary interface {
		Banking(ctx context.Context) (summary.Digest, error)
	}
}

// Limits 섹션별 기사 수입니다.
type Limits struct {
	Local int
	World int
}

// cached 작업 이름을 키로 캐시를 거쳐 fn을 호출하는 작업을 만듭니다.
func cached[T any](c *cache.Cache, name string, fallback T, fn func(context.Context) (T, error)) task.Task {
	return task.Typed(name, fallback, func(ctx context.Context) (T, error) {
		return cache.Fetch(ctx, c, name, fn)
	})
}

// Tasks 브리핑을 구성하는 작업 목록을 만듭니다. 각 작업은 캐시를 거쳐 실행되고 실패 시 기본값을 가집니다.
func Tasks(city string, limits Limits, src Sources, c *cache.Cache) []task.Task {
	return []task.Task{
		cached(c, TaskWeather, weather.Unavailable(city), func(ctx context.Context) (weather.Report, error) {
			return src.Weather.Forecast(ctx, city)
		}),
		cached(c, LocalTaskName(city), []news.Article{}, func(ctx context.Context) ([]news.Article, error) {
			return src.News.Local(ctx, city, limits.Local)
		}),
		cached(c, TaskWorld, []news.Article{}, func(ctx context.Context) ([]news.Article, error) {
			return src.News.World(ctx, limits.World)
		}),
		cached(c, TaskBanking, summary.Unavailable(), func(ctx context.Context) (summary.Digest, error) {
			return src.Summary.Banking(ctx)
		}),
	}
}
