package dom

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Document is a parsed HTML page ready for traversal. BaseURL is carried for
// callers that want to resolve URI values later; traversal itself never
// resolves anything against it.
type Document struct {
	Root    *html.Node
	BaseURL string
}

// Parse reads already-decoded HTML text. The parser recovers from malformed
// markup, so any input yields a navigable tree.
func Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{Root: node}, nil
}

// ParseBytes decodes raw bytes under declaredEncoding and parses the result.
// When the label is unknown or decoding fails, the encoding the document
// itself declares is detected and tried once before giving up.
func ParseBytes(input []byte, declaredEncoding, baseURL string) (*Document, error) {
	decoded, err := decode(input, declaredEncoding)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, err
	}
	doc.BaseURL = baseURL
	return doc, nil
}

func decode(input []byte, label string) ([]byte, error) {
	if label != "" {
		if enc, err := htmlindex.Get(label); err == nil {
			if out, _, err := transform.Bytes(enc.NewDecoder(), input); err == nil {
				return out, nil
			}
		}
	}
	// The assumed encoding was missing, unknown, or failed. Fall back to the
	// document's own declaration (BOM, then meta prescan, then a guess).
	enc, name, _ := charset.DetermineEncoding(input, "")
	out, _, err := transform.Bytes(enc.NewDecoder(), input)
	if err != nil {
		return nil, fmt.Errorf("decode as %s: %w", name, err)
	}
	return out, nil
}
