package log

// NewProductionConfig 운영 환경(스케줄러에 의한 무인 실행)에 맞춘 로그 설정을 반환합니다.
func NewProductionConfig(appName string) Options {
	return Options{
		Name:              appName,
		Level:             InfoLevel,
		MaxAge:            30,
		EnableCriticalLog: true,
		EnableVerboseLog:  false,
		EnableConsoleLog:  true, // 실패 원인을 즉시 확인할 수 있도록 Stderr로도 출력
		ReportCaller:      false,
	}
}

// NewDevelopmentConfig 개발 환경에 맞춘 로그 설정을 반환합니다.
func NewDevelopmentConfig(appName string) Options {
	return Options{
		Name:              appName,
		Level:             DebugLevel,
		MaxAge:            1,
		EnableCriticalLog: false,
		EnableVerboseLog:  true,
		EnableConsoleLog:  true,
		ReportCaller:      true,
		CallerPathPrefix:  "github.com/darkkaiser/morning-brief",
	}
}
