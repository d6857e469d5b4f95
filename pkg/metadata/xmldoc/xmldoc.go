// Package xmldoc converts metadata documents between XML and generic maps.
//
// Text-only elements become strings, elements with children become maps and
// repeated siblings become lists. A lone child is never wrapped in a list, so
// consumers must accept both a scalar and a list wherever repetition is allowed.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrEmptyDocument = errors.New("empty metadata document")
	ErrMultipleRoots = errors.New("metadata document must have exactly one root element")

	namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)
)

type node struct {
	name     string
	children []*node
	text     strings.Builder
}

func (n *node) value() any {
	if len(n.children) == 0 {
		return strings.TrimSpace(n.text.String())
	}
	m := make(map[string]any, len(n.children))
	lists := make(map[string]bool)
	for _, c := range n.children {
		v := c.value()
		existing, seen := m[c.name]
		switch {
		case !seen:
			m[c.name] = v
		case lists[c.name]:
			m[c.name] = append(existing.([]any), v)
		default:
			m[c.name] = []any{existing, v}
			lists[c.name] = true
		}
	}
	return m
}

// Decode parses an XML document into {rootName: content}.
func Decode(data []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		stack []*node
		root  *node
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode metadata xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			switch {
			case len(stack) > 0:
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			case root != nil:
				return nil, ErrMultipleRoots
			default:
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, ErrEmptyDocument
	}
	return map[string]any{root.name: root.value()}, nil
}

// Encode renders {rootName: content} as an indented XML document. Map keys are
// written in sorted order; list order is preserved.
func Encode(doc map[string]any) ([]byte, error) {
	if len(doc) != 1 {
		return nil, ErrMultipleRoots
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "    ")
	for name, v := range doc {
		if err := encodeValue(enc, name, v, false); err != nil {
			return nil, err
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("encode metadata xml: %w", err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func encodeValue(enc *xml.Encoder, name string, v any, inList bool) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid element name %q", name)
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}

	switch val := v.(type) {
	case []any:
		if inList {
			return fmt.Errorf("nested lists are not supported under %q", name)
		}
		for _, item := range val {
			if err := encodeValue(enc, name, item, true); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, item := range val {
			if err := encodeValue(enc, name, item, true); err != nil {
				return err
			}
		}
		return nil
	case []map[string]any:
		for _, item := range val {
			if err := encodeValue(enc, name, item, true); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := encodeValue(enc, k, val[k], false); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case nil:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	default:
		return enc.EncodeElement(scalar(val), start)
	}
}

func scalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return fmt.Sprint(v)
	}
}
