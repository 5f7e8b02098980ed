package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/darkkaiser/morning-brief/internal/config"
	"github.com/darkkaiser/morning-brief/internal/service/brief"
	"github.com/darkkaiser/morning-brief/internal/service/notification"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	"github.com/spf13/cobra"
)

var rule = strings.Repeat("=", 50)

func newRunCmd(o *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "브리핑을 생성하여 콘솔에 출력하고 메일로 발송합니다 (기본 명령)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrief(cmd.Context(), o, stdout, stderr)
		},
	}
}

// runBrief 브리핑을 한 번 생성하여 출력하고 발송합니다.
//
// 개별 데이터 조회 실패는 기본값으로 대체되므로 브리핑 생성 자체는 실패하지 않습니다.
// 메일 발송에 실패하면 exitDeliveryFailed 종료 코드를 갖는 에러를 반환합니다.
// 텔레그램 발송과 스냅샷 저장 실패는 기록만 하고 종료 코드에 영향을 주지 않습니다.
func runBrief(ctx context.Context, o *options, stdout, stderr io.Writer) error {
	cfg, closer, err := bootstrap(o)
	if err != nil {
		return err
	}
	defer closer.Close()

	a := newApp(cfg, false)
	defer a.Close()

	printf(stdout, "🚀 Starting Morning Brief Generator...\n")

	b := a.brief.Generate(ctx)
	if err := brief.RenderConsole(stdout, b); err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	msg, err := newMessage(b)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	printf(stdout, "\n%s\n", rule)

	deliveryErr := a.sendEmail(ctx, o, msg, stdout, stderr)
	a.sendTelegram(ctx, msg)

	if cfg.Snapshot.Enabled {
		saveSnapshot(cfg, b, stdout)
	}

	printf(stdout, "%s\n✨ Morning Brief Complete!\n", rule)

	if deliveryErr != nil {
		return &exitError{code: exitDeliveryFailed, err: deliveryErr}
	}
	return nil
}

// newMessage 브리핑을 메일 제목, HTML 본문, 텍스트 대체 본문으로 변환합니다.
func newMessage(b *brief.Brief) (notification.Message, error) {
	htmlBody, err := brief.RenderHTML(b)
	if err != nil {
		return notification.Message{}, err
	}

	textBody, err := brief.PlainText(htmlBody)
	if err != nil {
		return notification.Message{}, err
	}

	return notification.Message{Subject: b.Subject(), Text: textBody, HTML: htmlBody}, nil
}

// sendEmail 메일을 발송합니다. --no-email이거나 메일 설정이 없으면 건너뛰며 이 경우 nil을 반환합니다.
func (a *app) sendEmail(ctx context.Context, o *options, msg notification.Message, stdout, stderr io.Writer) error {
	switch {
	case o.noEmail:
		printf(stdout, "📭 Email skipped (--no-email)\n")
		return nil

	case !a.cfg.Email.Configured():
		applog.WithComponent(component).Warn("메일 설정(SENDGRID_API_KEY, EMAIL_USER, EMAIL_TO)이 없어 메일 발송을 건너뜁니다")
		printf(stdout, "📭 Email skipped (not configured)\n")
		return nil
	}

	if err := a.email.Send(ctx, msg); err != nil {
		printf(stdout, "❌ Email failed: %v\n", err)
		printf(stderr, "   (Check your SENDGRID_API_KEY, EMAIL_USER, and EMAIL_TO in .env)\n")
		return fmt.Errorf("메일 발송 실패: %w", err)
	}

	printf(stdout, "✅ Email sent successfully!\n")
	return nil
}

// sendTelegram 텔레그램이 설정된 경우 요약을 발송합니다. 실패는 기록만 합니다.
func (a *app) sendTelegram(ctx context.Context, msg notification.Message) {
	tg, err := a.newTelegram()
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("텔레그램 발송기 생성 실패")
		return
	}
	if tg == nil {
		return
	}

	// 발송 실패는 TelegramNotifier가 기록한다.
	_ = tg.Send(ctx, msg)
}

func saveSnapshot(cfg *config.AppConfig, b *brief.Brief, stdout io.Writer) {
	path, err := brief.WriteSnapshot(cfg.Snapshot.Dir, b)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"dir":   cfg.Snapshot.Dir,
			"error": err,
		}).Error("스냅샷 저장 실패")
		return
	}

	printf(stdout, "💾 Saved snapshot: %s\n", path)
}
