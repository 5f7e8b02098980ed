package brief

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
)

//go:embed templates/email.html
var templateFS embed.FS

var emailTemplate = template.Must(template.ParseFS(templateFS, "templates/email.html"))

// RenderHTML 브리핑을 메일 본문용 HTML로 렌더링합니다. 모든 값은 자동으로 이스케이프됩니다.
func RenderHTML(b *Brief) (string, error) {
	var buf bytes.Buffer

	data := struct {
		Brief       *Brief
		BankingHTML template.HTML
	}{
		Brief:       b,
		BankingHTML: lineBreaks(b.Banking.Summary),
	}

	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", apperrors.Wrap(err, apperrors.Internal, "메일 본문 렌더링에 실패했습니다")
	}

	return buf.String(), nil
}

// lineBreaks 텍스트를 이스케이프한 뒤 줄바꿈을 <br/>로 바꿉니다.
func lineBreaks(s string) template.HTML {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br/>"))
}
