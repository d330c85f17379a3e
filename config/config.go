// Package config handles .lokey.yaml configuration file support.
//
// The file lives in the project root. Every field is optional:
//
//	resource: src/assets/i18n/en.json
//	template: "{{ '{key}' | translate }}"
//	sort_keys: false
//	max_suffix: 2
//	fold_accents: false
//	indent: "  "
//	format_command: [npx, prettier, --write]
//	candidates: ["*.json", "*.properties"]
//
// A .env file next to it, or the process environment, may override the
// resource, template and sort settings through LOKEY_RESOURCE,
// LOKEY_TEMPLATE and LOKEY_SORT_KEYS. The process environment wins over
// .env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".lokey.yaml"

// EnvFileName is the optional dotenv file read from the project root.
const EnvFileName = ".env"

// KeyPlaceholder marks where the translation key goes in Template.
const KeyPlaceholder = "{key}"

// DefaultTemplate is an angular-translate pipe expression.
const DefaultTemplate = "{{ '" + KeyPlaceholder + "' | translate }}"

// Environment overrides.
const (
	EnvResource = "LOKEY_RESOURCE"
	EnvTemplate = "LOKEY_TEMPLATE"
	EnvSortKeys = "LOKEY_SORT_KEYS"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the .lokey.yaml structure.
type File struct {
	// Resource is the default translation document, relative to the root.
	Resource string `yaml:"resource,omitempty"`
	// Template is the text that replaces a localized selection.
	Template string `yaml:"template,omitempty"`
	// SortKeys writes documents with keys in sorted order.
	SortKeys bool `yaml:"sort_keys,omitempty"`
	// MaxSuffix is the highest disambiguation suffix tried (default 2).
	MaxSuffix int `yaml:"max_suffix,omitempty"`
	// FoldAccents strips accents before deriving keys.
	FoldAccents bool `yaml:"fold_accents,omitempty"`
	// Indent is the JSON indentation (default two spaces).
	Indent string `yaml:"indent,omitempty"`
	// FormatCommand runs after each write with the document path appended.
	FormatCommand []string `yaml:"format_command,omitempty"`
	// Candidates are file name globs offered when picking a document.
	Candidates []string `yaml:"candidates,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *File {
	return &File{
		Template:  DefaultTemplate,
		MaxSuffix: 2,
		Indent:    "  ",
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads .lokey.yaml and .env from rootDir, applies environment
// overrides and defaults, and validates the result. Missing files are not
// an error.
func Load(rootDir string) (*File, error) {
	f := Default()

	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	env, err := readEnv(filepath.Join(rootDir, EnvFileName))
	if err != nil {
		return nil, err
	}
	if v := env(EnvResource); v != "" {
		f.Resource = v
	}
	if v := env(EnvTemplate); v != "" {
		f.Template = v
	}
	if v := env(EnvSortKeys); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvSortKeys, err)
		}
		f.SortKeys = b
	}

	// Defaults for fields the file set to zero values.
	if f.Template == "" {
		f.Template = DefaultTemplate
	}
	if f.MaxSuffix == 0 {
		f.MaxSuffix = 2
	}
	if f.Indent == "" {
		f.Indent = "  "
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// readEnv returns a lookup that prefers the process environment over the
// dotenv file at path.
func readEnv(path string) (func(string) string, error) {
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		dotenv = map[string]string{}
	}
	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}, nil
}

// Validate checks field values.
func (f *File) Validate() error {
	if !strings.Contains(f.Template, KeyPlaceholder) {
		return fmt.Errorf("template %q does not contain %s", f.Template, KeyPlaceholder)
	}
	if f.MaxSuffix < 2 {
		return fmt.Errorf("max_suffix must be at least 2, got %d", f.MaxSuffix)
	}
	if strings.Trim(f.Indent, " \t") != "" {
		return fmt.Errorf("indent %q must contain only spaces and tabs", f.Indent)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// Render returns the replacement text for key.
func (f *File) Render(key string) string {
	return strings.ReplaceAll(f.Template, KeyPlaceholder, key)
}

// ResourcePath returns the configured resource resolved against rootDir,
// or "" when none is configured.
func (f *File) ResourcePath(rootDir string) string {
	if f.Resource == "" {
		return ""
	}
	if filepath.IsAbs(f.Resource) {
		return f.Resource
	}
	return filepath.Join(rootDir, f.Resource)
}
