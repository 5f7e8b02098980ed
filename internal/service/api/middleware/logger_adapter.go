package middleware

import (
	"io"

	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/labstack/gommon/log"
)

// Logger Echo의 log.Logger 인터페이스를 애플리케이션 로거(logrus)로 위임하는 어댑터입니다.
// Echo 내부 로그(서버 시작 실패 등)도 애플리케이션 로그 파일에 함께 기록됩니다.
type Logger struct {
	*applog.Logger
}

// Output 현재 출력 Writer를 반환합니다.
func (l Logger) Output() io.Writer {
	return l.Logger.Out
}

func (l Logger) SetOutput(w io.Writer) {
	l.Logger.SetOutput(w)
}

func (l Logger) Prefix() string {
	return ""
}

func (l Logger) SetPrefix(string) {}

// Level 애플리케이션 로그 레벨을 Echo의 로그 레벨로 변환합니다.
// Echo에 대응하는 레벨이 없는 Trace/Fatal/Panic은 OFF로 취급합니다.
func (l Logger) Level() log.Lvl {
	switch l.Logger.Level {
	case applog.DebugLevel:
		return log.DEBUG
	case applog.InfoLevel:
		return log.INFO
	case applog.WarnLevel:
		return log.WARN
	case applog.ErrorLevel:
		return log.ERROR
	}

	return log.OFF
}

// SetLevel Echo의 로그 레벨을 애플리케이션 로그 레벨로 변환하여 설정합니다. log.OFF는 무시합니다.
func (l Logger) SetLevel(lvl log.Lvl) {
	switch lvl {
	case log.DEBUG:
		l.Logger.SetLevel(applog.DebugLevel)
	case log.INFO:
		l.Logger.SetLevel(applog.InfoLevel)
	case log.WARN:
		l.Logger.SetLevel(applog.WarnLevel)
	case log.ERROR:
		l.Logger.SetLevel(applog.ErrorLevel)
	}
}

func (l Logger) SetHeader(string) {}

func (l Logger) Print(i ...interface{}) {
	l.entry().Print(i...)
}

func (l Logger) Printf(format string, args ...interface{}) {
	l.entry().Printf(format, args...)
}

func (l Logger) Printj(j log.JSON) {
	l.entryWithJSON(j).Print()
}

func (l Logger) Debug(i ...interface{}) {
	l.entry().Debug(i...)
}

func (l Logger) Debugf(format string, args ...interface{}) {
	l.entry().Debugf(format, args...)
}

func (l Logger) Debugj(j log.JSON) {
	l.entryWithJSON(j).Debug()
}

func (l Logger) Info(i ...interface{}) {
	l.entry().Info(i...)
}

func (l Logger) Infof(format string, args ...interface{}) {
	l.entry().Infof(format, args...)
}

func (l Logger) Infoj(j log.JSON) {
	l.entryWithJSON(j).Info()
}

func (l Logger) Warn(i ...interface{}) {
	l.entry().Warn(i...)
}

func (l Logger) Warnf(format string, args ...interface{}) {
	l.entry().Warnf(format, args...)
}

func (l Logger) Warnj(j log.JSON) {
	l.entryWithJSON(j).Warn()
}

func (l Logger) Error(i ...interface{}) {
	l.entry().Error(i...)
}

func (l Logger) Errorf(format string, args ...interface{}) {
	l.entry().Errorf(format, args...)
}

func (l Logger) Errorj(j log.JSON) {
	l.entryWithJSON(j).Error()
}

func (l Logger) Fatal(i ...interface{}) {
	l.entry().Fatal(i...)
}

func (l Logger) Fatalf(format string, args ...interface{}) {
	l.entry().Fatalf(format, args...)
}

func (l Logger) Fatalj(j log.JSON) {
	l.entryWithJSON(j).Fatal()
}

func (l Logger) Panic(i ...interface{}) {
	l.entry().Panic(i...)
}

func (l Logger) Panicf(format string, args ...interface{}) {
	l.entry().Panicf(format, args...)
}

func (l Logger) Panicj(j log.JSON) {
	l.entryWithJSON(j).Panic()
}

func (l Logger) entry() *applog.Entry {
	return l.Logger.WithField("component", componentEcho)
}

func (l Logger) entryWithJSON(j log.JSON) *applog.Entry {
	return l.entry().WithFields(applog.Fields(j))
}
