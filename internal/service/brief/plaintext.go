package brief

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"golang.org/x/net/html"
)

// PlainText RenderHTML이 만든 HTML 본문을 메일의 text/plain 파트로 사용할 텍스트로 변환합니다.
//
// 제목(h2, h3)과 문단은 줄 단위로, 목록 항목은 "1. 제목 (출처) - 링크" 형식으로 변환합니다.
func PlainText(htmlBody string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ParsingFailed, "메일 본문 HTML을 해석할 수 없습니다")
	}

	var lines []string
	doc.Find("h2, h3, p, ol").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h2", "h3":
			lines = append(lines, "", collapse(s.Text()))
		case "p":
			lines = append(lines, paragraph(s)...)
		case "ol":
			s.Find("li").Each(func(i int, li *goquery.Selection) {
				line := fmt.Sprintf("%d. %s", i+1, collapse(li.Text()))
				if href, ok := li.Find("a").Attr("href"); ok && href != "" {
					line += " - " + href
				}
				lines = append(lines, line)
			})
		}
	})

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n", nil
}

// paragraph <br> 태그를 줄바꿈으로 보존하면서 문단 텍스트를 추출합니다.
func paragraph(s *goquery.Selection) []string {
	s.Find("br").ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})

	var out []string
	for _, line := range strings.Split(s.Text(), "\n") {
		if line = collapse(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
