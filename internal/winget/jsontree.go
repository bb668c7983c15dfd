package winget

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// The structured listing is walked as a small tagged-variant tree instead of
// decoding into typed structs: the schema varies across winget versions and
// between the upgrade and export documents. encoding/json map decoding would
// lose field order, and order decides which duplicate id wins, so the tree is
// built from the token stream directly.

type nodeKind int

const (
	nodeScalar nodeKind = iota
	nodeObject
	nodeArray
)

type jsonField struct {
	name  string
	value *jsonNode
}

type jsonNode struct {
	kind   nodeKind
	fields []jsonField // object fields in document order
	items  []*jsonNode // array elements in document order
	scalar any         // string, json.Number, bool or nil
}

// field returns the named object field, nil when absent.
func (n *jsonNode) field(name string) *jsonNode {
	for _, f := range n.fields {
		if f.name == name {
			return f.value
		}
	}
	return nil
}

// stringField returns the first alias that resolves to a non-empty string.
func (n *jsonNode) stringField(aliases []string) string {
	for _, alias := range aliases {
		if v := n.field(alias); v != nil && v.kind == nodeScalar {
			if s, ok := v.scalar.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// parseJSONTree parses a single JSON document into an order-preserving tree.
func parseJSONTree(payload string) (*jsonNode, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	node, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func parseValue(dec *json.Decoder) (*jsonNode, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return &jsonNode{kind: nodeScalar, scalar: tok}, nil
	}
}

func parseObject(dec *json.Decoder) (*jsonNode, error) {
	node := &jsonNode{kind: nodeObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}

		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.fields = append(node.fields, jsonField{name: key, value: value})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return node, nil
}

func parseArray(dec *json.Decoder) (*jsonNode, error) {
	node := &jsonNode{kind: nodeArray}
	for dec.More() {
		item, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		node.items = append(node.items, item)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return node, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("unexpected end of document, want %q", want)
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("unexpected token %v, want %q", tok, want)
	}
	return nil
}
