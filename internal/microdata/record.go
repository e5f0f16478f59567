package microdata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON renders the item as its record form: "type" when types are
// present, "id" when an identifier is present, then "properties". The object
// is assembled by hand because encoding/json sorts map keys, and property
// names must keep their first-seen order.
func (i *Item) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	if len(i.Types) > 0 {
		types := make([]string, len(i.Types))
		for k, t := range i.Types {
			types[k] = string(t)
		}
		enc, err := json.Marshal(types)
		if err != nil {
			return nil, err
		}
		b.WriteString(`"type":`)
		b.Write(enc)
		b.WriteByte(',')
	}
	if i.ID != "" {
		enc, err := json.Marshal(string(i.ID))
		if err != nil {
			return nil, err
		}
		b.WriteString(`"id":`)
		b.Write(enc)
		b.WriteByte(',')
	}
	b.WriteString(`"properties":{`)
	for k, name := range i.order {
		if k > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteString(":[")
		for j, v := range i.props[name] {
			if j > 0 {
				b.WriteByte(',')
			}
			enc, err := marshalValue(v)
			if err != nil {
				return nil, err
			}
			b.Write(enc)
		}
		b.WriteByte(']')
	}
	b.WriteString("}}")
	return b.Bytes(), nil
}

func marshalValue(v Value) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return []byte("null"), nil
	case Text:
		return json.Marshal(string(t))
	case URI:
		return json.Marshal(string(t))
	case *Item:
		return t.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown property value type %T", v)
	}
}

// Doc renders the output document for a set of items: {"items": [...]} with
// 2-space indentation.
func Doc(items []*Item) ([]byte, error) {
	if items == nil {
		items = []*Item{}
	}
	payload := struct {
		Items []*Item `json:"items"`
	}{Items: items}
	return json.MarshalIndent(payload, "", "  ")
}
