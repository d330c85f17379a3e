// Package jsonfile implements reading and writing of flat JSON translation
// files, the format used by angular-translate and ngx-translate:
//
//	{
//	  "SAVE_CHANGES": "Save changes",
//	  "CANCEL": "Cancel"
//	}
//
// Member order is preserved. String members become catalog text entries;
// any other member (nested objects, numbers, arrays) is kept as an opaque
// entry holding its compacted raw JSON, so writing a file back never drops
// what was already there.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minios-linux/lokey/catalog"
)

// DefaultIndent is used when Marshal is called with an empty indent.
const DefaultIndent = "  "

var bom = []byte{0xEF, 0xBB, 0xBF}

// Parse parses a flat JSON object into a catalog.
// A document containing only whitespace is an empty catalog.
func Parse(data []byte) (*catalog.Catalog, error) {
	data = bytes.TrimPrefix(data, bom)
	c := catalog.New()
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing JSON: expected object, got %v", t)
	}

	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("parsing JSON: expected string key, got %T", kt)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing value of %q: %w", key, err)
		}

		entry, err := decodeMember(key, raw)
		if err != nil {
			return nil, err
		}
		c.Put(entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing JSON: unexpected data after top-level object")
	}

	return c, nil
}

func decodeMember(key string, raw json.RawMessage) (catalog.Entry, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return catalog.Entry{}, fmt.Errorf("parsing value of %q: %w", key, err)
		}
		return catalog.Entry{Key: key, Text: text}, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return catalog.Entry{}, fmt.Errorf("parsing value of %q: %w", key, err)
	}
	return catalog.Entry{Key: key, Opaque: json.RawMessage(buf.Bytes())}, nil
}

// Marshal writes the catalog as a JSON object in catalog order, one member
// per line, followed by a newline. HTML characters are not escaped.
func Marshal(c *catalog.Catalog, indent string) ([]byte, error) {
	if indent == "" {
		indent = DefaultIndent
	}
	if c.Len() == 0 {
		return []byte("{}\n"), nil
	}

	var b bytes.Buffer
	b.WriteString("{\n")

	entries := c.Entries()
	for i, e := range entries {
		k, err := quote(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := encodeValue(e, indent)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", e.Key, err)
		}

		b.WriteString(indent)
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		if i < len(entries)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString("}\n")
	return b.Bytes(), nil
}

func encodeValue(e catalog.Entry, indent string) (string, error) {
	if e.IsText() {
		return quote(e.Text)
	}

	raw, ok := e.Opaque.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(e.Opaque); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, indent, indent); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// quote returns s as a JSON string literal.
func quote(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
