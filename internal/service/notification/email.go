package notification

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/service/fetcher"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
)

const (
	// EmailNotifierID 메일 발송 채널 식별자
	EmailNotifierID = "email"

	defaultText = "Plain test body."
	defaultHTML = "<p>hi</p>"
)

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Notifier = (*EmailNotifier)(nil)

// EmailConfig SendGrid 발송 설정입니다.
type EmailConfig struct {
	BaseURL  string
	APIKey   string
	From     string
	FromName string
	To       string
}

// EmailNotifier SendGrid v3 Mail Send API로 메일을 발송합니다.
type EmailNotifier struct {
	fetcher fetcher.Fetcher
	cfg     EmailConfig
}

// NewEmailNotifier 새로운 EmailNotifier를 생성합니다.
func NewEmailNotifier(f fetcher.Fetcher, cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{fetcher: f, cfg: cfg}
}

func (n *EmailNotifier) ID() string {
	return EmailNotifierID
}

type (
	sgAddress struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	}
	sgPersonalization struct {
		To      []sgAddress `json:"to"`
		ReplyTo sgAddress   `json:"reply_to"`
	}
	sgContent struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	sgToggle struct {
		Enable     bool  `json:"enable"`
		EnableText *bool `json:"enable_text,omitempty"`
	}
	sgPayload struct {
		From             sgAddress           `json:"from"`
		Personalizations []sgPersonalization `json:"personalizations"`
		Subject          string              `json:"subject"`
		Content          []sgContent         `json:"content"`
		TrackingSettings struct {
			ClickTracking sgToggle `json:"click_tracking"`
			OpenTracking  sgToggle `json:"open_tracking"`
		} `json:"tracking_settings"`
		MailSettings struct {
			SandboxMode sgToggle `json:"sandbox_mode"`
		} `json:"mail_settings"`
	}
)

func (n *EmailNotifier) payload(msg Message) sgPayload {
	text, html := msg.Text, msg.HTML
	if text == "" {
		text = defaultText
	}
	if html == "" {
		html = defaultHTML
	}

	disabled := false

	var p sgPayload
	p.From = sgAddress{Email: n.cfg.From, Name: n.cfg.FromName}
	p.Personalizations = []sgPersonalization{{
		To:      []sgAddress{{Email: n.cfg.To}},
		ReplyTo: sgAddress{Email: n.cfg.From},
	}}
	p.Subject = msg.Subject
	p.Content = []sgContent{
		{Type: "text/plain", Value: text},
		{Type: "text/html", Value: html},
	}
	p.TrackingSettings.ClickTracking = sgToggle{Enable: false, EnableText: &disabled}
	p.TrackingSettings.OpenTracking = sgToggle{Enable: false}
	p.MailSettings.SandboxMode = sgToggle{Enable: false}

	return p
}

// Send 메일을 발송합니다.
// 자격증명이 없으면 네트워크 호출 없이 Unauthorized 에러를, 300 이상의 응답은 ExecutionFailed 에러를 반환합니다.
func (n *EmailNotifier) Send(ctx context.Context, msg Message) error {
	if n.cfg.APIKey == "" || n.cfg.From == "" || n.cfg.To == "" {
		return apperrors.New(apperrors.Unauthorized, "SENDGRID_API_KEY, EMAIL_USER, EMAIL_TO must be set")
	}

	req, err := fetcher.NewRequest(ctx, http.MethodPost, n.cfg.BaseURL+"/v3/mail/send", nil, http.Header{
		"Authorization": {"Bearer " + n.cfg.APIKey},
	}, n.payload(msg))
	if err != nil {
		return err
	}

	resp, err := fetcher.ReadAll(n.fetcher, req)
	if err != nil {
		return err
	}

	fields := applog.Fields{
		"notifier_id": n.ID(),
		"status_code": resp.StatusCode,
		"to":          n.cfg.To,
	}

	if resp.StatusCode >= 300 {
		body := fetcher.Truncate(string(resp.Body), fetcher.BodySnippetLength)
		applog.WithComponentAndFields(component, fields).Error("메일 발송 실패")
		return apperrors.New(apperrors.ExecutionFailed, fmt.Sprintf("SendGrid error %d: %s", resp.StatusCode, body))
	}

	applog.WithComponentAndFields(component, fields).Info("메일 발송 완료")

	return nil
}
