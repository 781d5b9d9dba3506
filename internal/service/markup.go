package service

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup removes HTML tags from model-supplied text and decodes
// entities. Script and style content is dropped. Plain text passes through.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil || doc == nil {
		return strings.TrimSpace(s)
	}

	skip := map[string]bool{"script": true, "style": true, "head": true, "title": true}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if skip[tag] {
				return
			}
			if tag == "br" {
				sb.WriteString(" ")
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}
