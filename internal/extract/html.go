package extract

import (
	"os"
	"strings"

	"golang.org/x/net/html"
)

// htmlText parses the DOM and returns the body element's text content,
// dropping markup and the contents of script and style elements.
func htmlText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return "", err
	}

	body := findElement(doc, "body")
	if body == nil {
		// Fragment without an explicit body; html.Parse normally synthesizes
		// one, but fall back to the whole document just in case.
		body = doc
	}

	var sb strings.Builder
	collectText(body, &sb)
	return strings.TrimSpace(sb.String()), nil
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
