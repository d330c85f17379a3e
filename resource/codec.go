package resource

import (
	"path/filepath"
	"strings"

	"github.com/minios-linux/lokey/catalog"
	"github.com/minios-linux/lokey/jsonfile"
	"github.com/minios-linux/lokey/propfile"
)

// Document is a decoded resource document.
type Document interface {
	// Catalog returns the entries read from the document.
	Catalog() *catalog.Catalog
	// Encode serializes c in the document's format and layout.
	Encode(c *catalog.Catalog) ([]byte, error)
	// Ordered reports whether Encode writes entries in catalog order.
	// Formats that keep their own layout ignore catalog ordering.
	Ordered() bool
}

// Codec decodes documents of one format.
type Codec interface {
	Name() string
	Decode(data []byte) (Document, error)
}

// JSON is the codec for flat JSON objects.
type JSON struct {
	// Indent is the per-level indentation (default two spaces).
	Indent string
}

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Decode implements Codec.
func (j JSON) Decode(data []byte) (Document, error) {
	c, err := jsonfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return &jsonDocument{catalog: c, indent: j.Indent}, nil
}

type jsonDocument struct {
	catalog *catalog.Catalog
	indent  string
}

func (d *jsonDocument) Catalog() *catalog.Catalog { return d.catalog }

func (d *jsonDocument) Encode(c *catalog.Catalog) ([]byte, error) {
	return jsonfile.Marshal(c, d.indent)
}

func (d *jsonDocument) Ordered() bool { return true }

// Properties is the codec for Java .properties bundles.
type Properties struct{}

// Name implements Codec.
func (Properties) Name() string { return "properties" }

// Decode implements Codec.
func (Properties) Decode(data []byte) (Document, error) {
	f, err := propfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return propDocument{f}, nil
}

type propDocument struct {
	*propfile.File
}

func (d propDocument) Encode(c *catalog.Catalog) ([]byte, error) {
	return d.Marshal(c)
}

func (propDocument) Ordered() bool { return false }

// CodecFor picks the codec for path by extension. Anything that is not a
// .properties file is treated as JSON.
func CodecFor(path, indent string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties":
		return Properties{}
	default:
		return JSON{Indent: indent}
	}
}

// Decode decodes data read from path, wrapping failures in *ParseError.
func Decode(codec Codec, path string, data []byte) (Document, error) {
	doc, err := codec.Decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return doc, nil
}
