package microdata

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/gomicrodata/internal/dom"
)

// propertySources maps a tag to the attribute its property value comes from.
var propertySources = map[string]string{
	"meta":   "content",
	"audio":  "src",
	"embed":  "src",
	"iframe": "src",
	"img":    "src",
	"source": "src",
	"video":  "src",
	"a":      "href",
	"area":   "href",
	"link":   "href",
	"object": "data",
	"time":   "datetime",
}

// Items returns every item reachable from n, in document order. An item
// reachable only as a nested property value of another item is emitted at
// top level as well; no de-duplication is performed.
func Items(n *html.Node) []*Item {
	var items []*Item
	if dom.IsElement(n) && dom.HasAttr(n, "itemscope") {
		item := itemFromNode(n)
		items = append(items, item)
		var nested []*Item
		unlinked := extract(n, item, &nested)
		items = append(items, nested...)
		for _, u := range unlinked {
			items = append(items, Items(u)...)
		}
		return items
	}
	for _, c := range dom.Children(n) {
		items = append(items, Items(c)...)
	}
	return items
}

// extract walks the subtree under n attributing properties to item. Every
// nested item it constructs is appended to nested in discovery order. The
// return value is the elements that begin a new item without an itemprop
// tying them to any item on the stack; the caller promotes those to
// top-level search roots.
func extract(n *html.Node, item *Item, nested *[]*Item) []*html.Node {
	var unlinked []*html.Node
	for _, c := range dom.Children(n) {
		prop, _ := dom.Attr(c, "itemprop")
		scoped := dom.HasAttr(c, "itemscope")
		switch {
		case prop != "" && scoped:
			// c roots an item owned by prop; its subtree belongs to the
			// child item, never to this one.
			child := itemFromNode(c)
			*nested = append(*nested, child)
			unlinked = append(unlinked, extract(c, child, nested)...)
			item.Add(prop, child)
		case prop != "":
			// itemprop may be a whitespace-separated name list; every name
			// receives the same value.
			v := propertyValue(c)
			for _, name := range strings.Fields(prop) {
				item.Add(name, v)
			}
			unlinked = append(unlinked, extract(c, item, nested)...)
		case scoped:
			// An item root with no relation to the current item.
			unlinked = append(unlinked, c)
		default:
			unlinked = append(unlinked, extract(c, item, nested)...)
		}
	}
	return unlinked
}

// propertyValue resolves the value an itemprop element contributes. Tags in
// propertySources read the mapped attribute, with href and src tagged as
// URIs; everything else uses the content attribute when present, otherwise
// the element's text. A mapped attribute that is absent yields nil, which is
// kept as a null property value.
func propertyValue(n *html.Node) Value {
	if attr, ok := propertySources[dom.TagName(n)]; ok {
		v, present := dom.Attr(n, attr)
		if !present {
			return nil
		}
		if attr == "href" || attr == "src" {
			return URI(v)
		}
		return Text(v)
	}
	if v, ok := dom.Attr(n, "content"); ok && v != "" {
		return Text(v)
	}
	return Text(dom.Text(n))
}

// FromDocument extracts every item in doc.
func FromDocument(doc *dom.Document) []*Item {
	return Items(doc.Root)
}

// FromReader parses UTF-8 HTML text from r and extracts its items.
func FromReader(r io.Reader) ([]*Item, error) {
	doc, err := dom.Parse(r)
	if err != nil {
		return nil, err
	}
	return Items(doc.Root), nil
}

// FromBytes decodes raw HTML bytes, using declaredEncoding as the assumed
// encoding when non-empty, and extracts the items.
func FromBytes(b []byte, declaredEncoding string) ([]*Item, error) {
	doc, err := dom.ParseBytes(b, declaredEncoding, "")
	if err != nil {
		return nil, err
	}
	return Items(doc.Root), nil
}
