package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/darkkaiser/morning-brief/internal/config"
	"github.com/darkkaiser/morning-brief/internal/pkg/version"
	"github.com/darkkaiser/morning-brief/internal/service/api"
	"github.com/darkkaiser/morning-brief/internal/service/fetcher"
	"github.com/darkkaiser/morning-brief/internal/service/notification"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/spf13/cobra"
)

// =============================================================================
// check-env
// =============================================================================

func newCheckEnvCmd(o *options, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check-env",
		Short: "설정과 자격증명(마스킹) 상태를 점검합니다",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return &exitError{code: exitFailure, err: fmt.Errorf("환경설정 로드 실패: %w", err)}
			}

			return writeEnvReport(stdout, cfg)
		},
	}
}

// credentialValues 자격증명 환경 변수별로 화면에 표시할 값을 반환합니다. 비밀 값은 마스킹합니다.
func credentialValues(cfg *config.AppConfig) map[string]string {
	chatID := ""
	if cfg.Telegram.ChatID != 0 {
		chatID = strconv.FormatInt(cfg.Telegram.ChatID, 10)
	}

	return map[string]string{
		"NEWSAPI_API_KEY":    applog.MaskSensitiveData(cfg.News.APIKey),
		"OPENAI_API_KEY":     applog.MaskSensitiveData(cfg.Summary.APIKey),
		"SENDGRID_API_KEY":   applog.MaskSensitiveData(cfg.Email.APIKey),
		"EMAIL_USER":         cfg.Email.From,
		"EMAIL_TO":           cfg.Email.To,
		"TELEGRAM_BOT_TOKEN": applog.MaskSensitiveData(cfg.Telegram.BotToken),
		"TELEGRAM_CHAT_ID":   chatID,
	}
}

func writeEnvReport(w io.Writer, cfg *config.AppConfig) error {
	onOff := map[bool]string{true: "ON", false: "OFF"}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "City\t%s\n", cfg.City)
	fmt.Fprintf(tw, "Dev Mode\t%s\n", onOff[cfg.DevMode])
	fmt.Fprintf(tw, "Cache\t%s (window %s, path %q)\n", onOff[cfg.CacheEnabled()], cfg.Cache.Window, cfg.Cache.Path)
	fmt.Fprintf(tw, "Max Parallelism\t%d\n", cfg.Orchestrator.MaxParallelism)
	fmt.Fprintf(tw, "Email\t%s\n", onOff[cfg.Email.Configured()])
	fmt.Fprintf(tw, "Telegram\t%s\n", onOff[cfg.Telegram.Configured()])
	fmt.Fprintln(tw)

	values := credentialValues(cfg)
	for _, name := range config.CredentialEnvNames() {
		value := values[name]
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, value)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	warnings := cfg.VerifyRecommendations()
	if len(warnings) == 0 {
		printf(w, "\n✅ 권장 설정이 모두 갖춰져 있습니다\n")
		return nil
	}

	printf(w, "\n")
	for _, warning := range warnings {
		printf(w, "⚠️ %s\n", warning)
	}
	return nil
}

// =============================================================================
// test-email
// =============================================================================

func newTestEmailCmd(o *options, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "test-email",
		Short: "고정된 테스트 메일을 발송하여 SendGrid 설정을 확인합니다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, closer, err := bootstrap(o)
			if err != nil {
				return err
			}
			defer closer.Close()

			a := &app{cfg: cfg, limiter: fetcher.NewLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)}

			return sendTestEmail(cmd.Context(), a.newEmail(), stdout)
		},
	}
}

func sendTestEmail(ctx context.Context, n notification.Notifier, stdout io.Writer) error {
	msg := notification.Message{
		Subject: "SMTP test (SendGrid)",
		Text:    "Hello from Morning Brief",
		HTML:    "<p>Hello from Morning Brief</p>",
	}

	if err := n.Send(ctx, msg); err != nil {
		return &exitError{code: exitDeliveryFailed, err: err}
	}

	printf(stdout, "OK via SendGrid\n")
	return nil
}

// =============================================================================
// preview
// =============================================================================

func newPreviewCmd(o *options, stdout io.Writer) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "브리핑 HTML을 브라우저에서 확인할 수 있는 미리보기 서버를 실행합니다",
		Long: `미리보기 서버를 실행합니다. 종료하려면 Ctrl+C를 누르세요.

  GET /                브리핑 HTML (메일 본문과 동일)
  GET /brief.txt       메일 텍스트 본문
  GET /brief.json      스냅샷 JSON
  GET /sections/:name  섹션 하나만 조회
  GET /healthz         버전 정보`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, closer, err := bootstrap(o)
			if err != nil {
				return err
			}
			defer closer.Close()

			if addr != "" {
				cfg.Preview.Address = addr
			}

			a := newApp(cfg, true)
			defer a.Close()

			return servePreview(cmd.Context(), cfg, a, stdout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "수신 주소 (기본값: 설정의 preview.address)")

	return cmd
}

func servePreview(ctx context.Context, cfg *config.AppConfig, a *app, stdout io.Writer) error {
	svc := api.NewService(api.Config{
		Address: cfg.Preview.Address,
		Debug:   cfg.Debug,
	}, a.brief, version.Get())

	serviceStopWG := &sync.WaitGroup{}
	serviceStopWG.Add(1)
	if err := svc.Start(ctx, serviceStopWG); err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	addrCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if listenAddr, err := svc.Addr(addrCtx); err == nil {
		printf(stdout, "🌐 Preview server listening on http://%s\n", listenAddr)
	}

	serviceStopWG.Wait()

	if err := svc.Err(); err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	return nil
}

// =============================================================================
// version
// =============================================================================

func newVersionCmd(stdout io.Writer) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "버전 정보를 출력합니다",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := version.Get()
			if !asJSON {
				printf(stdout, "%s %s\n", config.AppName, info)
				return nil
			}

			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "JSON 형식으로 출력")

	return cmd
}
