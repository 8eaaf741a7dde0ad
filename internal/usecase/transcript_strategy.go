package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/fathom-scraper/internal/repository"
)

// TextStrategy collects candidate transcript lines from a page. Strategies
// are tried in order and the first one returning lines wins.
type TextStrategy interface {
	Name() string
	Collect(ctx context.Context, page repository.Page) ([]string, error)
}

// CleanLine trims s and rejects empty strings and bracketed annotations such as "[inaudible]".
func CleanLine(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "[") {
		return "", false
	}
	return s, true
}

// cleanLines filters raw candidate strings through CleanLine.
func cleanLines(raw []string) []string {
	var lines []string
	for _, s := range raw {
		if line, ok := CleanLine(s); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// SelectorStrategy reads every element matching Selector from the live DOM.
// Hidden elements, as produced by virtualized lists, are read via textContent.
type SelectorStrategy struct {
	Label    string
	Selector string
}

func (s SelectorStrategy) Name() string { return s.Label }

func (s SelectorStrategy) Collect(ctx context.Context, page repository.Page) ([]string, error) {
	elements, err := page.Texts(ctx, s.Selector)
	if err != nil {
		return nil, err
	}
	raw := make([]string, 0, len(elements))
	for _, el := range elements {
		if el.Visible {
			raw = append(raw, el.InnerText)
		} else {
			raw = append(raw, el.TextContent)
		}
	}
	return cleanLines(raw), nil
}

// MarkupStrategy snapshots the container markup and reads the text of its
// leaf elements offline.
type MarkupStrategy struct {
	Container string
}

func (s MarkupStrategy) Name() string { return "markup-snapshot" }

func (s MarkupStrategy) Collect(ctx context.Context, page repository.Page) ([]string, error) {
	html, err := page.OuterHTML(ctx, s.Container)
	if err != nil {
		return nil, err
	}
	if html == "" {
		return nil, nil
	}
	return LeafTexts(html)
}

// LeafTexts returns the cleaned text of every element without element children.
func LeafTexts(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse transcript markup: %w", err)
	}
	doc.Find("script, style").Remove()

	var raw []string
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() == 0 {
			raw = append(raw, sel.Text())
		}
	})
	return cleanLines(raw), nil
}

// DefaultTranscriptStrategies returns the tiered strategy list for container.
func DefaultTranscriptStrategies(container string) []TextStrategy {
	return []TextStrategy{
		SelectorStrategy{
			Label:    "line-classes",
			Selector: fmt.Sprintf(`%[1]s div[class*="transcript-line"], %[1]s div[class*="transcript-text"], %[1]s div`, container),
		},
		SelectorStrategy{Label: "all-descendants", Selector: container + " *"},
		MarkupStrategy{Container: container},
	}
}
