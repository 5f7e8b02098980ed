package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"
	"unicode/utf8"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	applog "github.com/darkkaiser/morning-brief/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const (
	// TelegramNotifierID 텔레그램 발송 채널 식별자
	TelegramNotifierID = "telegram"

	// maxTelegramMessageLength 텔레그램 메시지 본문의 최대 길이(문자 수)
	maxTelegramMessageLength = 4096

	// 텔레그램은 같은 채팅방에 초당 1건 정도의 발송을 권장한다.
	defaultTelegramRate  = rate.Limit(1)
	defaultTelegramBurst = 1

	truncatedSuffix = "\n…"
)

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Notifier = (*TelegramNotifier)(nil)

// botClient 텔레그램 봇 API 중 메시지 발송 기능만 추상화한 인터페이스입니다.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier 텔레그램 봇으로 브리핑 요약을 발송합니다.
type TelegramNotifier struct {
	client  botClient
	chatID  int64
	limiter *rate.Limiter
}

// NewTelegramNotifier 봇 토큰으로 텔레그램 API에 연결하여 TelegramNotifier를 생성합니다.
// 생성 시 봇 정보(getMe)를 조회하므로 토큰이 잘못되었으면 Unauthorized 에러를 반환합니다.
func NewTelegramNotifier(botToken string, chatID int64, timeout time.Duration) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unauthorized, "텔레그램 봇 API 연결에 실패했습니다. BotToken을 확인하세요")
	}

	return newTelegramNotifier(bot, chatID, rate.NewLimiter(defaultTelegramRate, defaultTelegramBurst)), nil
}

func newTelegramNotifier(client botClient, chatID int64, limiter *rate.Limiter) *TelegramNotifier {
	return &TelegramNotifier{client: client, chatID: chatID, limiter: limiter}
}

func (n *TelegramNotifier) ID() string {
	return TelegramNotifierID
}

// Send 제목을 굵게 표시한 요약 메시지를 발송합니다. HTML 파싱 오류(400)가 발생하면 일반 텍스트로 다시 보냅니다.
func (n *TelegramNotifier) Send(ctx context.Context, msg Message) error {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return apperrors.Wrap(err, apperrors.Timeout, "텔레그램 발송 대기 중 컨텍스트가 종료되었습니다")
		}
	}

	text := buildTelegramText(msg)

	err := n.send(text, tgbotapi.ModeHTML)

	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.Code == http.StatusBadRequest {
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
			"error":       err,
		}).Warn("HTML 메시지 발송 실패: 일반 텍스트로 재발송합니다")

		err = n.send(plainTelegramText(msg), "")
	}

	fields := applog.Fields{
		"notifier_id": n.ID(),
		"chat_id":     n.chatID,
	}
	if err != nil {
		fields["error"] = err
		applog.WithComponentAndFields(component, fields).Error("텔레그램 발송 실패")
		return apperrors.Wrap(err, apperrors.ExecutionFailed, "텔레그램 메시지 발송에 실패했습니다")
	}

	applog.WithComponentAndFields(component, fields).Info("텔레그램 발송 완료")

	return nil
}

func (n *TelegramNotifier) send(text, parseMode string) error {
	m := tgbotapi.NewMessage(n.chatID, text)
	m.ParseMode = parseMode
	m.DisableWebPagePreview = true

	_, err := n.client.Send(m)
	return err
}

// buildTelegramText "<b>제목</b>\n\n본문" 형식의 HTML 메시지를 만듭니다.
// 이스케이프된 문자열을 자르면 엔티티가 깨지므로, 본문 원문을 줄여 가며 최대 길이에 맞춘다.
func buildTelegramText(msg Message) string {
	header := fmt.Sprintf("<b>%s</b>\n\n", html.EscapeString(msg.Subject))

	body := []rune(msg.Text)
	keep := len(body)
	for {
		text := header + html.EscapeString(string(body[:keep]))
		if keep < len(body) {
			text += truncatedSuffix
		}

		excess := utf8.RuneCountInString(text) - maxTelegramMessageLength
		if excess <= 0 || keep == 0 {
			return text
		}
		keep = max(keep-excess, 0)
	}
}

func plainTelegramText(msg Message) string {
	return truncate(msg.Subject+"\n\n"+msg.Text, maxTelegramMessageLength-utf8.RuneCountInString(truncatedSuffix))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + truncatedSuffix
}
