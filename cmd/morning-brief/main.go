package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/darkkaiser/morning-brief/internal/config"
	"github.com/darkkaiser/morning-brief/internal/pkg/version"
	"github.com/spf13/cobra"
)

// 프로세스 종료 코드
const (
	exitOK = 0

	// exitFailure 설정 오류 등으로 브리핑을 만들지 못한 경우
	exitFailure = 1

	// exitDeliveryFailed 브리핑은 만들었지만 메일 발송에 실패한 경우
	exitDeliveryFailed = 2
)

// exitError 종료 코드를 지정하는 에러입니다.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// options 모든 명령이 공유하는 커맨드라인 옵션입니다.
type options struct {
	configFile string
	envFile    string
	city       string
	dev        bool
	noEmail    bool
}

// overrides 커맨드라인 옵션 중 설정을 덮어쓰는 값을 koanf 키로 반환합니다.
func (o *options) overrides() map[string]any {
	m := make(map[string]any)
	if o.city != "" {
		m["city"] = o.city
	}
	if o.dev {
		m["dev_mode"] = true
	}
	return m
}

func (o *options) loadConfig() (*config.AppConfig, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: o.configFile,
		EnvFile:    o.envFile,
		Overrides:  o.overrides(),
	})
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute 명령을 실행하고 프로세스 종료 코드를 반환합니다.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)

		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return exitFailure
	}

	return exitOK
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Morning Brief - 날씨, 뉴스, 금융 요약을 모아 아침 브리핑 메일을 보냅니다",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrief(cmd.Context(), o, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "JSON 설정 파일 경로 (기본값: ./"+config.DefaultFilename+", 없으면 무시)")
	flags.StringVar(&o.envFile, "env-file", "", "dotenv 파일 경로 (기본값: ./"+config.DefaultEnvFilename+")")
	flags.StringVar(&o.city, "city", "", "브리핑 대상 도시 (CITY 환경 변수보다 우선)")
	flags.BoolVar(&o.dev, "dev", false, "개발 모드 (캐시 사용)")
	flags.BoolVar(&o.noEmail, "no-email", false, "메일을 발송하지 않고 콘솔에만 출력")

	root.AddCommand(
		newRunCmd(o, stdout, stderr),
		newCheckEnvCmd(o, stdout),
		newTestEmailCmd(o, stdout),
		newPreviewCmd(o, stdout),
		newVersionCmd(stdout),
	)

	return root
}
