package skills

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are removed from HTML job descriptions before text extraction.
const noiseSelectors = "nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

var whitespaceRun = regexp.MustCompile(`\s+`)

// PlainText reduces an HTML job description to whitespace-normalized text.
// Input without markup is returned with whitespace collapsed.
func PlainText(description string) (string, error) {
	if !strings.Contains(description, "<") {
		return cleanWhitespace(description), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(noiseSelectors).Remove()

	// Block elements would otherwise glue adjacent words together.
	doc.Find("p, li, br, div, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return cleanWhitespace(root.Text()), nil
}

func cleanWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
