package brief

import (
	"context"
	"time"

	"github.com/darkkaiser/morning-brief/internal/service/cache"
	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/darkkaiser/morning-brief/internal/service/provider/summary"
	"github.com/darkkaiser/morning-brief/internal/service/provider/weather"
	"github.com/darkkaiser/morning-brief/internal/service/task"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/google/uuid"
)

// Options Service 생성 옵션입니다.
type Options struct {
	City           string
	DevMode        bool
	MaxParallelism int
	Limits         Limits

	// Clock 현재 시각을 반환하는 함수. nil이면 time.Now를 사용한다.
	Clock func() time.Time
}

// Service 작업 목록을 실행하여 Brief를 생성합니다. 여러 고루틴에서 동시에 사용해도 안전합니다.
type Service struct {
	opts    Options
	sources Sources
	cache   *cache.Cache
	now     func() time.Time
}

// NewService 새로운 Service를 생성합니다. c가 nil이면 캐시를 사용하지 않습니다.
func NewService(opts Options, sources Sources, c *cache.Cache) *Service {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Service{opts: opts, sources: sources, cache: c, now: now}
}

// City 브리핑 대상 도시를 반환합니다.
func (s *Service) City() string {
	return s.opts.City
}

func (s *Service) tasks() []task.Task {
	return Tasks(s.opts.City, s.opts.Limits, s.sources, s.cache)
}

// Generate 모든 작업을 병렬로 실행하여 Brief를 생성합니다.
// 작업 실패는 기본값으로 대체되므로 항상 완전한 Brief를 반환합니다.
func (s *Service) Generate(ctx context.Context) *Brief {
	runID := uuid.NewString()
	logger := applog.WithComponentAndFields(component, applog.Fields{
		"run_id": runID,
		"city":   s.opts.City,
	})

	logger.Info("브리핑 생성 시작")

	start := s.now()
	bundle, completions := task.RunAll(ctx, s.tasks(), s.opts.MaxParallelism)
	elapsed := s.now().Sub(start)

	b := &Brief{
		RunID:       runID,
		City:        s.opts.City,
		DevMode:     s.opts.DevMode,
		GeneratedAt: start,
		FetchTime:   elapsed,
		Completions: completions,
	}
	b.Weather, _ = task.Value[weather.Report](bundle, TaskWeather)
	b.Local, _ = task.Value[[]news.Article](bundle, LocalTaskName(s.opts.City))
	b.World, _ = task.Value[[]news.Article](bundle, TaskWorld)
	b.Banking, _ = task.Value[summary.Digest](bundle, TaskBanking)

	logger.WithFields(applog.Fields{
		"elapsed":  elapsed.Round(time.Millisecond).String(),
		"articles": b.ArticleCount(),
		"failed":   b.Failed(),
	}).Info("브리핑 생성 완료")

	return b
}

// Section 이름에 해당하는 작업 하나만 실행하여 결과를 반환합니다. 실패하면 기본값을 반환합니다.
// 알 수 없는 이름이면 false를 반환합니다.
func (s *Service) Section(ctx context.Context, name string) (any, bool) {
	for _, t := range s.tasks() {
		if t.Name == name {
			return task.SafeFetch[any](ctx, t.Name, t.Fallback, t.Run), true
		}
	}
	return nil, false
}

// SectionNames 작업 이름 목록을 반환합니다.
func (s *Service) SectionNames() []string {
	tasks := s.tasks()

	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		names = append(names, t.Name)
	}
	return names
}
