// Package render turns message bodies into terminal text. HTML bodies always
// pass through the bluemonday UGC policy before they are converted.
package render

import (
	"strings"
	"unicode"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var policy = bluemonday.UGCPolicy()

// Sanitize strips scripts, event handlers and other unsafe markup from s.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// Body returns the display text of d. The HTML body is preferred when
// present; plain text is used as is apart from terminal control characters.
func Body(d models.MessageDetail) string {
	if strings.TrimSpace(d.HTMLBody) != "" {
		if text, err := HTMLToText(Sanitize(d.HTMLBody)); err == nil && text != "" {
			return text
		}
	}
	return stripControl(normalizeNewlines(d.PlainTextBody))
}

// HTMLToText renders already sanitized HTML as plain lines. Links are kept
// as "label (url)".
func HTMLToText(s string) (string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(collapseSpace(stripControl(n.Data)))
			return
		case html.ElementNode:
			switch n.Data {
			case "head", "style", "script", "title":
				return
			case "br":
				b.WriteByte('\n')
				return
			case "hr":
				b.WriteString("\n-----\n")
				return
			case "p", "div", "section", "table", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					visit(c)
				}
				b.WriteString("\n\n")
				return
			case "li":
				b.WriteString("\n- ")
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					visit(c)
				}
				return
			case "td", "th":
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					visit(c)
				}
				b.WriteString("\t")
				return
			case "a":
				var inner strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					collectText(&inner, c)
				}
				label := strings.TrimSpace(collapseSpace(inner.String()))
				href := attr(n, "href")
				switch {
				case href == "" || href == label:
					b.WriteString(label)
				case label == "":
					b.WriteString(href)
				default:
					b.WriteString(label + " (" + href + ")")
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	return tidy(b.String()), nil
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(stripControl(n.Data))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// stripControl drops control characters other than newline and tab so that
// message content cannot emit terminal escape sequences.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// tidy trims each line and collapses runs of blank lines into one.
func tidy(s string) string {
	lines := strings.Split(normalizeNewlines(s), "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
