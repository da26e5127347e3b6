// Package clipper imports schedule text from web pages such as course
// timetables or shift rosters.
package clipper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxChars bounds the imported text so it fits comfortably in a prompt.
const DefaultMaxChars = 8000

// Clipper handles fetching and extracting schedule text from URLs.
type Clipper struct {
	httpClient *http.Client
	maxChars   int
}

// NewClipper creates a new Clipper instance.
func NewClipper(timeout time.Duration) *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: timeout},
		maxChars:   DefaultMaxChars,
	}
}

// FetchScheduleText downloads url and returns its readable text, one block
// per line. Table rows become "cell | cell" lines.
func (c *Clipper) FetchScheduleText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ai-study-planner/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	text := extractText(doc)
	if text == "" {
		return "", fmt.Errorf("no readable text found at %s", url)
	}
	return truncate(text, c.maxChars), nil
}

func extractText(doc *goquery.Document) string {
	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, noscript, form, .ads, #ads").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, p, li, tr, pre").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li, tr").Length() > 0 {
			return
		}
		var line string
		switch goquery.NodeName(s) {
		case "tr":
			var cells []string
			s.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				if t := collapse(cell.Text()); t != "" {
					cells = append(cells, t)
				}
			})
			line = strings.Join(cells, " | ")
		case "li":
			if t := collapse(s.Text()); t != "" {
				line = "- " + t
			}
		default:
			line = collapse(s.Text())
		}
		if line != "" {
			lines = append(lines, line)
		}
	})

	if len(lines) == 0 {
		return collapse(doc.Find("body").Text())
	}
	return strings.Join(lines, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
