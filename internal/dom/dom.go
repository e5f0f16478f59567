// Package dom is a thin read-only view over a parsed HTML tree. It exposes
// just the handful of accessors microdata extraction needs: element tests,
// attribute lookup, normalized tag names, ordered children, and an in-order
// text accessor that skips script content.
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Attr returns the value of the named attribute and whether it is present.
// Boolean attributes like itemscope are present with an empty value.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present on n.
func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// TagName returns the lower-cased tag name of an element node.
func TagName(n *html.Node) string {
	return strings.ToLower(n.Data)
}

// Children returns the direct children of n in document order, elements and
// non-elements alike.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Text returns all text contained in n and its descendants in document
// order. Text anywhere inside a script element is excluded; text between
// siblings of a script element is kept.
func Text(n *html.Node) string {
	var b strings.Builder
	collectText(&b, n)
	return b.String()
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode && TagName(n) == "script" {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}
