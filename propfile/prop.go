// Package propfile implements reading and writing of Java .properties
// resource bundles.
//
// Format: one key=value entry per logical line. The separator may be '=',
// ':' or whitespace. Lines starting with '#' or '!' are comments; they and
// blank lines keep their position on write. A line ending in an odd number
// of backslashes continues on the next line. Keys and values use the usual
// escapes (\t \n \r \f \\ \uXXXX and escaped separators).
//
// Files are read and written as UTF-8. Only control characters are written
// as \uXXXX escapes.
package propfile

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/minios-linux/lokey/catalog"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

type lineKind int

const (
	lineBlank   lineKind = iota // blank / whitespace-only line
	lineComment                 // comment line (starts with # or !)
	lineEntry                   // key=value pair
)

type line struct {
	kind lineKind
	raw  string // original physical line(s), continuations joined by '\n'
	key  string // unescaped key for entries
	text string // value the raw entry lines decode to
}

// File is a parsed .properties document. Its catalog holds the entries;
// the layout of comments and blank lines is kept for Marshal.
type File struct {
	lines   []line
	catalog *catalog.Catalog
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses .properties content.
func Parse(data []byte) (*File, error) {
	f := &File{catalog: catalog.New()}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	physical := strings.Split(text, "\n")
	if len(physical) > 0 && physical[len(physical)-1] == "" {
		physical = physical[:len(physical)-1]
	}

	for i := 0; i < len(physical); i++ {
		raw := physical[i]
		trimmed := strings.TrimLeft(raw, " \t\f")

		switch {
		case trimmed == "":
			f.lines = append(f.lines, line{kind: lineBlank, raw: raw})
			continue
		case trimmed[0] == '#' || trimmed[0] == '!':
			f.lines = append(f.lines, line{kind: lineComment, raw: raw})
			continue
		}

		first := i
		logical := trimmed
		for continues(logical) && i+1 < len(physical) {
			i++
			logical = logical[:len(logical)-1] + strings.TrimLeft(physical[i], " \t\f")
		}
		if continues(logical) {
			logical = logical[:len(logical)-1]
		}

		rawKey, rawValue := splitEntry(logical)
		k, err := unescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("line %d: key: %w", i+1, err)
		}
		v, err := unescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("line %d: value of %q: %w", i+1, k, err)
		}

		if f.catalog.Has(k) {
			// Duplicate key: last value wins, first position is kept and
			// is rewritten on marshal.
			f.forget(k)
		} else {
			raw := strings.Join(physical[first:i+1], "\n")
			f.lines = append(f.lines, line{kind: lineEntry, raw: raw, key: k, text: v})
		}
		f.catalog.Set(k, v)
	}

	return f, nil
}

// forget drops the source lines of key so Marshal writes it afresh.
func (f *File) forget(key string) {
	for i := range f.lines {
		if f.lines[i].kind == lineEntry && f.lines[i].key == key {
			f.lines[i].raw = ""
		}
	}
}

// continues reports whether s ends in an odd number of backslashes.
func continues(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// splitEntry splits a logical line into its escaped key and value.
func splitEntry(s string) (key, value string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == '=' || c == ':' || c == ' ' || c == '\t' || c == '\f' {
			break
		}
		i++
	}
	if i > len(s) {
		i = len(s)
	}

	rest := strings.TrimLeft(s[i:], " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = strings.TrimLeft(rest[1:], " \t\f")
	}
	return s[:i], rest
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			r, err := hexRune(s, i+1)
			if err != nil {
				return "", err
			}
			i += 4
			if utf16.IsSurrogate(r) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if low, err := hexRune(s, i+3); err == nil {
					if pair := utf16.DecodeRune(r, low); pair != '\uFFFD' {
						r = pair
						i += 6
					}
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

func hexRune(s string, at int) (rune, error) {
	if at+4 > len(s) {
		return 0, fmt.Errorf("malformed \\uxxxx escape")
	}
	n, err := strconv.ParseUint(s[at:at+4], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed \\uxxxx escape %q", s[at:at+4])
	}
	return rune(n), nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Catalog returns the entries of the file.
func (f *File) Catalog() *catalog.Catalog {
	return f.catalog
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal writes c using the layout of f: comments and blank lines stay in
// place, entries whose text is unchanged keep their source lines, changed
// entries are rewritten where they were, and keys f did not have are
// appended in catalog order. Keys absent from c are dropped.
func (f *File) Marshal(c *catalog.Catalog) ([]byte, error) {
	var b strings.Builder
	written := make(map[string]bool, c.Len())

	for _, ln := range f.lines {
		switch ln.kind {
		case lineBlank, lineComment:
			b.WriteString(ln.raw)
			b.WriteByte('\n')
		case lineEntry:
			text, ok := c.Text(ln.key)
			if !ok {
				continue
			}
			if ln.raw != "" && text == ln.text {
				b.WriteString(ln.raw)
				b.WriteByte('\n')
			} else {
				writeEntry(&b, ln.key, text)
			}
			written[ln.key] = true
		}
	}

	for _, e := range c.Entries() {
		if written[e.Key] {
			continue
		}
		if !e.IsText() {
			return nil, fmt.Errorf("properties entry %q has no text value", e.Key)
		}
		writeEntry(&b, e.Key, e.Text)
	}

	return []byte(b.String()), nil
}

// Marshal writes c as a new .properties document.
func Marshal(c *catalog.Catalog) ([]byte, error) {
	return (&File{}).Marshal(c)
}

func writeEntry(b *strings.Builder, key, value string) {
	b.WriteString(escape(key, true))
	b.WriteByte('=')
	b.WriteString(escape(value, false))
	b.WriteByte('\n')
}

func escape(s string, isKey bool) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case ' ':
			if isKey || i == 0 {
				b.WriteString(`\ `)
			} else {
				b.WriteByte(' ')
			}
		case '=', ':':
			if isKey {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case '#', '!':
			if isKey && i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
