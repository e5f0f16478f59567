// Package microdata extracts HTML microdata items (itemscope, itemtype,
// itemid, itemprop) from a parsed document tree into typed, named-property
// records, and renders them as JSON.
package microdata

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/gomicrodata/internal/dom"
)

// URI marks a string as a resource identifier rather than plain text.
type URI string

func (u URI) String() string { return string(u) }

// Value is one microdata property value: plain Text, a URI, or a nested
// *Item. A nil Value records a property whose source attribute was absent on
// the element; it is preserved and serialized as null.
type Value interface {
	microdataValue()
}

// Text is a plain-text property value.
type Text string

func (Text) microdataValue()  {}
func (URI) microdataValue()   {}
func (*Item) microdataValue() {}

// Item is a single microdata item: optional type URIs, an optional
// identifier, and named properties kept in first-seen order.
type Item struct {
	Types []URI
	ID    URI

	props map[string][]Value
	order []string
}

// NewItem builds an item from itemtype and itemid attribute values. itemtype
// may hold several whitespace-separated type URIs; empty values mean the
// attribute was absent.
func NewItem(itemtype, itemid string) *Item {
	it := &Item{props: make(map[string][]Value)}
	for _, t := range strings.Fields(itemtype) {
		it.Types = append(it.Types, URI(t))
	}
	it.ID = URI(itemid)
	return it
}

// itemFromNode constructs an Item from an element carrying itemscope.
// Reaching it with any other node is a bug in the traversal, not an input
// condition, so it panics.
func itemFromNode(n *html.Node) *Item {
	if !dom.HasAttr(n, "itemscope") {
		panic("microdata: element is not an item root")
	}
	itemtype, _ := dom.Attr(n, "itemtype")
	itemid, _ := dom.Attr(n, "itemid")
	return NewItem(itemtype, itemid)
}

// Add appends a value under name. A name seen for the first time goes to the
// end of the property order.
func (i *Item) Add(name string, v Value) {
	if _, ok := i.props[name]; !ok {
		i.order = append(i.order, name)
	}
	i.props[name] = append(i.props[name], v)
}

// Get returns the first value recorded under name.
func (i *Item) Get(name string) (Value, bool) {
	vs := i.props[name]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// GetAll returns every value recorded under name, in insertion order. The
// returned slice is the item's own; callers must not mutate it.
func (i *Item) GetAll(name string) []Value {
	return i.props[name]
}

// PropertyNames returns the property names in first-seen order.
func (i *Item) PropertyNames() []string {
	return append([]string(nil), i.order...)
}
