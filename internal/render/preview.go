package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"adflow/internal/domain"

	"github.com/yuin/goldmark"
)

// AdTextHTML converts generated ad copy (which models often return as
// Markdown) to HTML. goldmark's default renderer omits raw HTML in the copy.
func AdTextHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Preview renders a standalone HTML fragment of the current ad.
func Preview(state domain.WorkflowState) (string, error) {
	var b strings.Builder
	b.WriteString(`<article class="ad-preview">`)
	if state.Product != nil {
		fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(state.Product.Title))
		if price := state.Product.Price.String(); price != "" {
			fmt.Fprintf(&b, `<p class="price">%s</p>`, html.EscapeString(price))
		}
	}
	if state.AdImage != nil {
		alt := "Generated Ad"
		fmt.Fprintf(&b, `<img src="%s" alt="%s">`, html.EscapeString(state.AdImage.URL), alt)
	}
	if state.AdText != nil {
		body, err := AdTextHTML(*state.AdText)
		if err != nil {
			return "", fmt.Errorf("render ad text: %w", err)
		}
		b.WriteString(`<div class="ad-text">`)
		b.WriteString(body)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</article>`)
	return b.String(), nil
}
