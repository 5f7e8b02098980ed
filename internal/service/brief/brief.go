// Package brief 날씨, 뉴스, 금융 요약 작업을 실행하여 하루 브리핑을 만들고,
// 콘솔 텍스트와 HTML 메일 본문으로 렌더링합니다.
package brief

import (
	"fmt"
	"time"

	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
	"github.com/darkkaiser/morning-brief/internal/service/provider/summary"
	"github.com/darkkaiser/morning-brief/internal/service/provider/weather"
	"github.com/darkkaiser/morning-brief/internal/service/task"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// component 로그에 기록되는 컴포넌트 식별자
const component = "brief"

const dateLayout = "2006-01-02"

var titleCaser = cases.Title(language.English)

// Brief 한 번의 실행으로 만들어진 브리핑입니다.
type Brief struct {
	RunID       string
	City        string
	DevMode     bool
	GeneratedAt time.Time
	FetchTime   time.Duration

	Weather weather.Report
	Local   []news.Article
	World   []news.Article
	Banking summary.Digest

	Completions []task.Completion
}

// DisplayCity 화면 표시용 도시 이름을 반환합니다. (예: "new york" → "New York")
func (b *Brief) DisplayCity() string {
	return titleCaser.String(b.City)
}

// Date 생성 날짜를 YYYY-MM-DD 형식으로 반환합니다.
func (b *Brief) Date() string {
	return b.GeneratedAt.Format(dateLayout)
}

// Subject 메일 제목을 반환합니다.
func (b *Brief) Subject() string {
	return fmt.Sprintf("Morning Brief — %s & World (%s)", b.DisplayCity(), b.Date())
}

// ArticleCount 브리핑에 사용된 기사 수를 반환합니다.
func (b *Brief) ArticleCount() int {
	return len(b.Local) + len(b.World) + len(b.Banking.Items)
}

// Failed 기본값으로 대체된 작업 이름 목록을 반환합니다.
func (b *Brief) Failed() []string {
	var names []string
	for _, c := range b.Completions {
		if !c.Succeeded() {
			names = append(names, c.Name)
		}
	}
	return names
}
