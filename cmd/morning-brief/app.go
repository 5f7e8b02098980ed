package main

import (
	"fmt"
	"io"
	"time"

	"github.com/darkkaiser/morning-brief/internal/config"
	"github.com/darkkaiser/morning-brief/internal/pkg/version"
	"github.com/darkkaiser/morning-brief/internal/service/brief"
	"github.com/darkkaiser/morning-brief/internal/service/cache"
	"github.com/darkkaiser/morning-brief/internal/service/fetcher"
	"github.com/darkkaiser/morning-brief/internal/service/notification"
	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/darkkaiser/morning-brief/internal/service/provider/summary"
	"github.com/darkkaiser/morning-brief/internal/service/provider/weather"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"golang.org/x/time/rate"
)

const component = "main"

// setupLogging 설정에 맞춰 로그 시스템을 초기화합니다.
// 콘솔 로그는 표준 에러로 출력되므로 표준 출력에는 브리핑 본문만 남습니다.
func setupLogging(cfg *config.AppConfig) (io.Closer, error) {
	var logOpts applog.Options
	if cfg.Debug {
		logOpts = applog.NewDevelopmentConfig(config.AppName)
	} else {
		logOpts = applog.NewProductionConfig(config.AppName)
	}
	logOpts.Dir = cfg.Log.Dir

	closer, err := applog.Setup(logOpts)
	if err != nil {
		return nil, err
	}

	applog.SetDebugMode(cfg.Debug)

	applog.WithComponentAndFields(component, applog.Fields{
		"version": version.Get().String(),
		"env":     map[bool]string{true: "development", false: "production"}[cfg.Debug],
	}).Debug("로그 시스템 초기화 완료")

	return closer, nil
}

// bootstrap 설정을 로드하고 로그 시스템을 초기화합니다. 실패하면 exitFailure 종료 코드를 갖는 에러를 반환합니다.
func bootstrap(o *options) (*config.AppConfig, io.Closer, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, &exitError{code: exitFailure, err: fmt.Errorf("환경설정 로드 실패: %w", err)}
	}

	closer, err := setupLogging(cfg)
	if err != nil {
		return nil, nil, &exitError{code: exitFailure, err: fmt.Errorf("로그 시스템 초기화 실패: %w", err)}
	}

	for _, warning := range cfg.VerifyRecommendations() {
		applog.WithComponent(component).Warn(warning)
	}

	return cfg, closer, nil
}

// app 설정으로부터 조립한 실행 단위 구성 요소입니다.
type app struct {
	cfg     *config.AppConfig
	cache   *cache.Cache
	brief   *brief.Service
	email   *notification.EmailNotifier
	limiter *rate.Limiter
}

// newApp 외부 API 클라이언트, 캐시, 브리핑 서비스, 메일 발송기를 조립합니다.
//
// 모든 외부 API 호출은 하나의 속도 제한기를 공유하며, API별로 제한 시간만 다르게 적용합니다.
// forceCache가 true이면 캐시가 비활성 설정이어도 메모리 캐시를 사용합니다. (미리보기 서버)
func newApp(cfg *config.AppConfig, forceCache bool) *app {
	a := &app{
		cfg:     cfg,
		cache:   openCache(cfg, forceCache),
		limiter: fetcher.NewLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
	}

	weatherClient := weather.NewClient(a.newFetcher(cfg.Weather.Timeout), cfg.Weather.GeocodingURL, cfg.Weather.ForecastURL)

	newsClient := news.NewClient(a.newFetcher(cfg.News.Timeout), news.Config{
		BaseURL:      cfg.News.BaseURL,
		APIKey:       cfg.News.APIKey,
		LocalDomains: cfg.News.LocalDomains,
		WorldSources: cfg.News.WorldSources,
	})

	summaryClient := summary.NewClient(a.newFetcher(cfg.Summary.Timeout), newsClient, summary.Config{
		BaseURL:        cfg.Summary.BaseURL,
		APIKey:         cfg.Summary.APIKey,
		Model:          cfg.Summary.Model,
		MaxTokens:      cfg.Summary.MaxTokens,
		Limit:          cfg.News.BankingLimit,
		FinanceDomains: cfg.News.FinanceDomains,
	})

	a.brief = brief.NewService(brief.Options{
		City:           cfg.City,
		DevMode:        cfg.DevMode,
		MaxParallelism: cfg.Orchestrator.MaxParallelism,
		Limits: brief.Limits{
			Local: cfg.News.LocalLimit,
			World: cfg.News.WorldLimit,
		},
	}, brief.Sources{
		Weather: weatherClient,
		News:    newsClient,
		Summary: summaryClient,
	}, a.cache)

	a.email = a.newEmail()

	return a
}

func (a *app) newEmail() *notification.EmailNotifier {
	return notification.NewEmailNotifier(a.newFetcher(a.cfg.Email.Timeout), notification.EmailConfig{
		BaseURL:  a.cfg.Email.BaseURL,
		APIKey:   a.cfg.Email.APIKey,
		From:     a.cfg.Email.From,
		FromName: a.cfg.Email.FromName,
		To:       a.cfg.Email.To,
	})
}

func (a *app) newFetcher(timeout time.Duration) fetcher.Fetcher {
	return fetcher.New(fetcher.Config{
		Timeout:   timeout,
		MaxBytes:  a.cfg.HTTP.MaxBodyBytes,
		UserAgent: a.cfg.HTTP.UserAgent,
		Limiter:   a.limiter,
	})
}

// newTelegram 텔레그램 발송이 설정된 경우에만 TelegramNotifier를 생성합니다.
func (a *app) newTelegram() (*notification.TelegramNotifier, error) {
	if !a.cfg.Telegram.Configured() {
		return nil, nil
	}
	return notification.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Email.Timeout)
}

func (a *app) Close() error {
	return a.cache.Close()
}

// openCache 설정에 맞는 캐시를 엽니다. 경로가 비어 있으면 메모리 저장소를 사용합니다.
//
// SQLite 저장소를 열 수 없으면 경고를 남기고 메모리 저장소로 대체합니다.
// 캐시 문제로 브리핑 생성이 중단되지 않아야 합니다.
func openCache(cfg *config.AppConfig, force bool) *cache.Cache {
	if !cfg.CacheEnabled() && !force {
		return cache.New(nil, cache.Options{})
	}

	var store cache.Store = cache.NewMemoryStore()
	if cfg.CacheEnabled() && cfg.Cache.Path != "" {
		s, err := cache.OpenSQLiteStore(cfg.Cache.Path)
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"path":  cfg.Cache.Path,
				"error": err,
			}).Warn("캐시 저장소를 열 수 없어 메모리 캐시로 대체합니다")
		} else {
			store = s
		}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"window": cfg.Cache.Window.String(),
		"path":   cfg.Cache.Path,
	}).Debug("캐시 사용")

	return cache.New(store, cache.Options{Enabled: true, Window: cfg.Cache.Window})
}

// printf 표준 출력 등 사용자에게 보여주는 출력에 쓰기 실패는 무시한다.
func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
