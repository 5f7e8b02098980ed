package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type mockBotClient struct {
	mock.Mock
}

func (m *mockBotClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

func messageWithMode(mode string) any {
	return mock.MatchedBy(func(c tgbotapi.MessageConfig) bool {
		return c.ParseMode == mode && c.ChatID == 1234
	})
}

func TestTelegramNotifier_Send(t *testing.T) {
	t.Parallel()

	client := &mockBotClient{}
	client.On("Send", mock.MatchedBy(func(c tgbotapi.MessageConfig) bool {
		return c.ParseMode == tgbotapi.ModeHTML &&
			c.Text == "<b>Morning Brief — Seattle &amp; World</b>\n\nHigh 59.0°F &lt;sunny&gt;"
	})).Return(nil).Once()

	n := newTelegramNotifier(client, 1234, nil)
	err := n.Send(context.Background(), Message{Subject: "Morning Brief — Seattle & World", Text: "High 59.0°F <sunny>"})
	require.NoError(t, err)
	assert.Equal(t, TelegramNotifierID, n.ID())
	client.AssertExpectations(t)
}

func TestTelegramNotifier_Send_HTMLFallback(t *testing.T) {
	t.Parallel()

	client := &mockBotClient{}
	client.On("Send", messageWithMode(tgbotapi.ModeHTML)).Return(&tgbotapi.Error{Code: 400, Message: "can't parse entities"}).Once()
	client.On("Send", messageWithMode("")).Return(nil).Once()

	n := newTelegramNotifier(client, 1234, nil)
	require.NoError(t, n.Send(context.Background(), Message{Subject: "s", Text: "t"}))
	client.AssertExpectations(t)
}

func TestTelegramNotifier_Send_Failure(t *testing.T) {
	t.Parallel()

	client := &mockBotClient{}
	client.On("Send", mock.Anything).Return(errors.New("connection reset")).Once()

	n := newTelegramNotifier(client, 1234, nil)
	err := n.Send(context.Background(), Message{Subject: "s", Text: "t"})
	assert.True(t, apperrors.Is(err, apperrors.ExecutionFailed))
	client.AssertExpectations(t)
}

func TestTelegramNotifier_Send_RateLimitCanceled(t *testing.T) {
	t.Parallel()

	client := &mockBotClient{}
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := newTelegramNotifier(client, 1234, limiter)
	err := n.Send(ctx, Message{Subject: "s"})
	assert.True(t, apperrors.Is(err, apperrors.Timeout))
	client.AssertNotCalled(t, "Send", mock.Anything)
}

func TestBuildTelegramText_Truncates(t *testing.T) {
	t.Parallel()

	text := buildTelegramText(Message{Subject: "Brief", Text: strings.Repeat("<&>", 3000)})

	assert.LessOrEqual(t, utf8.RuneCountInString(text), maxTelegramMessageLength)
	assert.True(t, strings.HasSuffix(text, truncatedSuffix))
	assert.NotContains(t, strings.TrimSuffix(text, truncatedSuffix)[len("<b>Brief</b>\n\n"):], "<", "본문은 모두 이스케이프된다")

	short := buildTelegramText(Message{Subject: "Brief", Text: "ok"})
	assert.Equal(t, "<b>Brief</b>\n\nok", short)
}
