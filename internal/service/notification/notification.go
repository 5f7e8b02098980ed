// Package notification 완성된 브리핑을 메일(SendGrid)과 텔레그램으로 발송합니다.
package notification

import (
	"context"
)

// component 로그에 기록되는 컴포넌트 식별자
const component = "notification"

// Message 발송할 메시지입니다. 채널에 따라 Text와 HTML 중 필요한 본문을 사용합니다.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Notifier 하나의 발송 채널입니다.
type Notifier interface {
	ID() string
	Send(ctx context.Context, msg Message) error
}
