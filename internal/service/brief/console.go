package brief

import (
	"fmt"
	"io"
	"strings"

	"github.com/darkkaiser/morning-brief/internal/service/provider/news"
)

const rule = "=================================================="

// RenderConsole 브리핑을 콘솔 출력용 텍스트로 w에 씁니다.
func RenderConsole(w io.Writer, b *Brief) error {
	var sb strings.Builder

	devMode := "OFF"
	if b.DevMode {
		devMode = "ON (using cache)"
	}

	fmt.Fprintf(&sb, "📍 City: %s\n", b.DisplayCity())
	fmt.Fprintf(&sb, "🔧 Dev Mode: %s\n", devMode)
	fmt.Fprintf(&sb, "🆔 Run: %s\n", b.RunID)
	fmt.Fprintf(&sb, "⏱️ All data fetched in %.1f seconds\n", b.FetchTime.Seconds())

	fmt.Fprintf(&sb, "\n%s\n📰 MORNING BRIEF (%s)\n%s\n", rule, b.Date(), rule)

	if b.Weather.Available {
		fmt.Fprintf(&sb, "\n🌡️ %s Weather Today:\n", titleCaser.String(b.Weather.City))
		fmt.Fprintf(&sb, "   High: %.1f°F (%.1f°C)\n", b.Weather.HighF(), b.Weather.HighC)
		fmt.Fprintf(&sb, "   Low:  %.1f°F (%.1f°C)\n", b.Weather.LowF(), b.Weather.LowC)
	} else {
		fmt.Fprintf(&sb, "\n⚠️ Weather data unavailable for %s\n", b.DisplayCity())
	}

	writeStories(&sb, "📍", b.DisplayCity(), b.Local)
	writeStories(&sb, "🌍", "World", b.World)

	sb.WriteString("\n🏦 Banking Summary:\n")
	fmt.Fprintf(&sb, "   %s\n", strings.ReplaceAll(b.Banking.Summary, "\n", "\n   "))

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeStories(sb *strings.Builder, icon, label string, articles []news.Article) {
	fmt.Fprintf(sb, "\n%s Top %d %s Stories:\n", icon, len(articles), label)

	if len(articles) == 0 {
		fmt.Fprintf(sb, "   No %s news available\n", label)
		return
	}

	for i, a := range articles {
		fmt.Fprintf(sb, "%d. %s\n", i+1, a.Title)
		fmt.Fprintf(sb, "   📰 %s\n", a.Source)
		if a.URL != "" {
			fmt.Fprintf(sb, "   🔗 %s\n", a.URL)
		}
	}
}
