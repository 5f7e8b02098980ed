package config

import (
	"fmt"
	"time"
)

const (
	// DefaultCity 날씨와 지역 뉴스 조회에 사용하는 기본 도시
	DefaultCity = "Seattle"

	// DefaultMaxParallelism 작업 오케스트레이터의 기본 동시 실행 수
	DefaultMaxParallelism = 4

	// DefaultCacheWindow 캐시 항목의 기본 유효 기간
	DefaultCacheWindow = 30 * time.Minute

	// DefaultCachePath 캐시 저장소(SQLite) 파일의 기본 경로. 빈 값으로 설정하면 메모리 저장소를 사용한다.
	DefaultCachePath = ".cache/morning-brief.db"
)

var (
	// DefaultLocalDomains 지역 뉴스 검색 시 허용하는 도메인 목록 (기본 도시: Seattle)
	DefaultLocalDomains = []string{
		"seattletimes.com", "king5.com", "kiro7.com", "komonews.com", "seattlepi.com",
		"geekwire.com", "crosscut.com", "q13fox.com", "mynorthwest.com", "seattlemet.com",
	}

	// DefaultWorldSources 세계 뉴스 헤드라인을 조회할 NewsAPI 소스 ID 목록
	DefaultWorldSources = []string{"bbc-news", "reuters", "associated-press"}

	// DefaultFinanceDomains 은행/금융 뉴스 검색 시 허용하는 도메인 목록
	DefaultFinanceDomains = []string{
		"reuters.com", "wsj.com", "ft.com", "bloomberg.com",
		"cnbc.com", "marketwatch.com", "americanbanker.com", "bankrate.com",
	}
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug   bool   `json:"debug"`
	DevMode bool   `json:"dev_mode"`
	City    string `json:"city" validate:"required"`

	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Cache        CacheConfig        `json:"cache"`
	Snapshot     SnapshotConfig     `json:"snapshot"`
	Weather      WeatherConfig      `json:"weather"`
	News         NewsConfig         `json:"news"`
	Summary      SummaryConfig      `json:"summary"`
	Email        EmailConfig        `json:"email"`
	Telegram     TelegramConfig     `json:"telegram"`
	HTTP         HTTPConfig         `json:"http"`
	Preview      PreviewConfig      `json:"preview"`
	Log          LogConfig          `json:"log"`
}

// CacheEnabled 캐시 사용 여부를 반환합니다. 개발 모드(DEV_MODE)에서는 항상 캐시를 사용합니다.
func (c *AppConfig) CacheEnabled() bool {
	return c.Cache.Enabled || c.DevMode
}

func (c *AppConfig) validate() error {
	return checkStruct(newValidator(), c, "AppConfig")
}

// VerifyRecommendations 필수는 아니지만 권장되는 설정의 누락 여부를 진단하여 경고 메시지 목록을 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.News.APIKey == "" {
		warnings = append(warnings, "NEWSAPI_API_KEY가 설정되지 않아 지역/세계/금융 뉴스가 모두 기본값으로 대체됩니다")
	}
	if c.Summary.APIKey == "" {
		warnings = append(warnings, "OPENAI_API_KEY가 설정되지 않아 금융 뉴스 요약 대신 헤드라인 목록을 사용합니다")
	}
	if c.Email.partiallyConfigured() {
		warnings = append(warnings, "메일 설정(SENDGRID_API_KEY, EMAIL_USER, EMAIL_TO)이 일부만 지정되어 메일 발송이 실패합니다")
	}
	if c.CacheEnabled() && c.Cache.Window < time.Minute {
		warnings = append(warnings, fmt.Sprintf("캐시 유효 기간(%s)이 너무 짧아 캐시 효과가 거의 없습니다", c.Cache.Window))
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		warnings = append(warnings, "TELEGRAM_BOT_TOKEN은 설정되었지만 TELEGRAM_CHAT_ID가 없어 텔레그램 발송을 건너뜁니다")
	}

	return warnings
}

// OrchestratorConfig 작업 오케스트레이터 설정
type OrchestratorConfig struct {
	MaxParallelism int `json:"max_parallelism" validate:"min=1,max=64"`
}

// CacheConfig 작업 결과 캐시 설정
type CacheConfig struct {
	Enabled bool          `json:"enabled"`
	Window  time.Duration `json:"window" validate:"gt=0"`
	Path    string        `json:"path"`
}

// SnapshotConfig 실행 결과를 JSON 파일로 저장하는 설정
type SnapshotConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir" validate:"required_if=Enabled true"`
}

// WeatherConfig 지오코딩/예보 API 설정
type WeatherConfig struct {
	GeocodingURL string        `json:"geocoding_url" validate:"required,url"`
	ForecastURL  string        `json:"forecast_url" validate:"required,url"`
	Timeout      time.Duration `json:"timeout" validate:"gt=0"`
}

// NewsConfig 뉴스 API 설정
type NewsConfig struct {
	APIKey         string        `json:"api_key"`
	BaseURL        string        `json:"base_url" validate:"required,url"`
	LocalLimit     int           `json:"local_limit" validate:"min=1,max=50"`
	WorldLimit     int           `json:"world_limit" validate:"min=1,max=20"`
	BankingLimit   int           `json:"banking_limit" validate:"min=1,max=50"`
	LocalDomains   []string      `json:"local_domains" validate:"dive,hostname_rfc1123"`
	WorldSources   []string      `json:"world_sources" validate:"min=1,dive,required"`
	FinanceDomains []string      `json:"finance_domains" validate:"dive,hostname_rfc1123"`
	Timeout        time.Duration `json:"timeout" validate:"gt=0"`
}

// SummaryConfig AI 요약 API 설정. APIKey가 비어 있으면 로컬 요약을 사용합니다.
type SummaryConfig struct {
	APIKey    string        `json:"api_key"`
	BaseURL   string        `json:"base_url" validate:"required,url"`
	Model     string        `json:"model" validate:"required"`
	MaxTokens int           `json:"max_tokens" validate:"min=1,max=4096"`
	Timeout   time.Duration `json:"timeout" validate:"gt=0"`
}

// EmailConfig 메일 발송(SendGrid) 설정
type EmailConfig struct {
	APIKey   string        `json:"api_key"`
	BaseURL  string        `json:"base_url" validate:"required,url"`
	From     string        `json:"from" validate:"omitempty,email"`
	FromName string        `json:"from_name"`
	To       string        `json:"to" validate:"omitempty,email"`
	Timeout  time.Duration `json:"timeout" validate:"gt=0"`
}

// Configured 메일 발송에 필요한 값이 모두 설정되었는지 여부를 반환합니다.
func (c *EmailConfig) Configured() bool {
	return c.APIKey != "" && c.From != "" && c.To != ""
}

func (c *EmailConfig) partiallyConfigured() bool {
	set := 0
	for _, v := range []string{c.APIKey, c.From, c.To} {
		if v != "" {
			set++
		}
	}
	return set > 0 && set < 3
}

// TelegramConfig 텔레그램 봇 알림 설정 (선택)
type TelegramConfig struct {
	BotToken string `json:"bot_token" validate:"omitempty,telegram_bot_token"`
	ChatID   int64  `json:"chat_id"`
}

// Configured 텔레그램 발송에 필요한 값이 모두 설정되었는지 여부를 반환합니다.
func (c *TelegramConfig) Configured() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// HTTPConfig 외부 API 호출에 공통으로 적용되는 HTTP 클라이언트 설정
type HTTPConfig struct {
	RateLimit    float64 `json:"rate_limit" validate:"min=0"` // 초당 최대 요청 수 (0: 제한 없음)
	RateBurst    int     `json:"rate_burst" validate:"min=1"`
	MaxBodyBytes int64   `json:"max_body_bytes" validate:"min=-1"` // 응답 본문 최대 크기 (0: 기본값, -1: 제한 없음)
	UserAgent    string  `json:"user_agent"`
}

// PreviewConfig 미리보기 HTTP 서버 설정
type PreviewConfig struct {
	Address string `json:"address" validate:"required,hostname_port"`
}

// LogConfig 로그 파일 설정
type LogConfig struct {
	Dir string `json:"dir"`
}
