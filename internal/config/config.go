package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName = "morning-brief"

	// DefaultFilename 별도 경로가 주어지지 않았을 때 탐색하는 설정 파일명입니다. 파일이 없으면 무시합니다.
	DefaultFilename = AppName + ".json"

	// DefaultEnvFilename 자격증명을 담는 dotenv 파일의 기본 경로입니다. 파일이 없으면 무시합니다.
	DefaultEnvFilename = ".env"

	// envPrefix 계층형 설정 키를 덮어쓰는 환경 변수의 접두사입니다.
	// 예: MORNING_CACHE__WINDOW=15m -> cache.window
	envPrefix = "MORNING_"
)

// credentialEnvKeys 접두사 없이 사용하는 환경 변수와 설정 키의 매핑입니다.
// 기존 배포 환경(crontab, .env)에서 사용하던 변수명을 그대로 인식하기 위해 유지합니다.
var credentialEnvKeys = map[string]string{
	"CITY":               "city",
	"DEV_MODE":           "dev_mode",
	"NEWSAPI_API_KEY":    "news.api_key",
	"OPENAI_API_KEY":     "summary.api_key",
	"SENDGRID_API_KEY":   "email.api_key",
	"EMAIL_USER":         "email.from",
	"EMAIL_TO":           "email.to",
	"TELEGRAM_BOT_TOKEN": "telegram.bot_token",
	"TELEGRAM_CHAT_ID":   "telegram.chat_id",
}

// LoadOptions 설정 로드 시 사용할 파일 경로와 실행 단위 덮어쓰기 값을 지정합니다.
type LoadOptions struct {
	// ConfigFile JSON 설정 파일 경로입니다. 명시된 경우 파일이 반드시 존재해야 합니다.
	ConfigFile string

	// EnvFile dotenv 파일 경로입니다. 빈 값이면 DefaultEnvFilename을 사용합니다.
	EnvFile string

	// Overrides 커맨드라인 플래그 등 가장 높은 우선순위로 적용할 값입니다. (예: "city": "Portland")
	Overrides map[string]any
}

// Load 설정을 계층적으로 로드하여 검증된 AppConfig를 반환합니다.
//
// 우선순위 (뒤쪽이 앞쪽을 덮어씀):
//  1. 기본값
//  2. JSON 설정 파일
//  3. dotenv 파일
//  4. 접두사 없는 자격증명 환경 변수 (NEWSAPI_API_KEY 등)
//  5. MORNING_ 접두사 환경 변수
//  6. Overrides
//
// 반환된 AppConfig는 실행 중 변경하지 않으며, 필요한 컴포넌트에 명시적으로 전달합니다.
func Load(opts LoadOptions) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드
	filename, required := opts.ConfigFile, true
	if filename == "" {
		filename, required = DefaultFilename, false
	}
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
		}
		if required {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
	}

	// 3. dotenv 파일 로드
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFilename
	}
	dotenv, err := readDotEnv(envFile)
	if err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(dotenv, "."), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "dotenv 설정 로드에 실패했습니다")
	}

	// 4. 자격증명 환경 변수 로드
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return credentialEnvKeys[s]
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 5. MORNING_ 접두사 환경 변수 로드
	if err := k.Load(env.Provider(envPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 6. 실행 단위 덮어쓰기
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, apperrors.Wrap(err, apperrors.System, "커맨드라인 설정 적용에 실패했습니다")
		}
	}

	var appConfig AppConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      true, // 구조체에 없는 키가 있으면 오타로 간주하여 에러를 발생시킨다.
			WeaklyTypedInput: true,
			Result:           &appConfig,
			TagName:          "json",
		},
	}
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 유효성 검증에 실패했습니다")
	}

	return &appConfig, nil
}

// normalizeEnvKey MORNING_ 접두사 환경 변수명을 koanf 키로 변환합니다.
// 이중 언더스코어(__)는 계층 구분자(.)로 변환합니다.
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

// readDotEnv dotenv 파일을 읽어 설정 키 맵으로 변환합니다.
// 프로세스 환경 변수는 변경하지 않으며, 인식하지 못하는 변수는 무시합니다.
func readDotEnv(filename string) (map[string]any, error) {
	vars, err := godotenv.Read(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("dotenv 파일을 읽을 수 없습니다: '%s'", filename))
	}

	out := make(map[string]any, len(vars))
	for name, value := range vars {
		switch {
		case credentialEnvKeys[name] != "":
			out[credentialEnvKeys[name]] = value
		case strings.HasPrefix(name, envPrefix):
			out[normalizeEnvKey(name)] = value
		}
	}

	return out, nil
}

// defaults 모든 설정 항목의 기본값입니다.
func defaults() map[string]any {
	return map[string]any{
		"debug":    false,
		"dev_mode": false,
		"city":     DefaultCity,

		"orchestrator.max_parallelism": DefaultMaxParallelism,

		"cache.enabled": false,
		"cache.window":  DefaultCacheWindow,
		"cache.path":    DefaultCachePath,

		"snapshot.enabled": false,
		"snapshot.dir":     ".",

		"weather.geocoding_url": "https://geocoding-api.open-meteo.com",
		"weather.forecast_url":  "https://api.open-meteo.com",
		"weather.timeout":       20 * time.Second,

		"news.api_key":         "",
		"news.base_url":        "https://newsapi.org",
		"news.local_limit":     5,
		"news.world_limit":     3,
		"news.banking_limit":   6,
		"news.local_domains":   DefaultLocalDomains,
		"news.world_sources":   DefaultWorldSources,
		"news.finance_domains": DefaultFinanceDomains,
		"news.timeout":         30 * time.Second,

		"summary.api_key":    "",
		"summary.base_url":   "https://api.openai.com",
		"summary.model":      "gpt-4o-mini",
		"summary.max_tokens": 250,
		"summary.timeout":    60 * time.Second,

		"email.api_key":   "",
		"email.base_url":  "https://api.sendgrid.com",
		"email.from":      "",
		"email.from_name": "Morning Brief",
		"email.to":        "",
		"email.timeout":   30 * time.Second,

		"telegram.bot_token": "",
		"telegram.chat_id":   0,

		"http.rate_limit":     0,
		"http.rate_burst":     1,
		"http.max_body_bytes": 0,
		"http.user_agent":     AppName,

		"preview.address": "127.0.0.1:8080",

		"log.dir": "logs",
	}
}

// CredentialEnvNames 진단(check-env)에 사용하는 자격증명 환경 변수 목록을 반환합니다.
func CredentialEnvNames() []string {
	return []string{
		"NEWSAPI_API_KEY",
		"OPENAI_API_KEY",
		"SENDGRID_API_KEY",
		"EMAIL_USER",
		"EMAIL_TO",
		"TELEGRAM_BOT_TOKEN",
		"TELEGRAM_CHAT_ID",
	}
}
