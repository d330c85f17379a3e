package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvResource, "")
	t.Setenv(EnvTemplate, "")
	t.Setenv(EnvSortKeys, "")
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	clearEnv(t)
	f, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(f, Default()) {
		t.Fatalf("Load() = %+v, want defaults %+v", f, Default())
	}
	if got := f.Render("SAVE"); got != "{{ 'SAVE' | translate }}" {
		t.Fatalf("Render() = %q", got)
	}
}

func TestLoadFileAndDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	write(t, dir, FileName, `
resource: src/assets/i18n/en.json
template: "{{ t('{key}') }}"
sort_keys: true
max_suffix: 9
format_command: [npx, prettier, --write]
`)

	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Render("OK") != "{{ t('OK') }}" {
		t.Fatalf("Render() = %q", f.Render("OK"))
	}
	if !f.SortKeys || f.MaxSuffix != 9 || f.Indent != "  " {
		t.Fatalf("unexpected config: %+v", f)
	}
	if want := filepath.Join(dir, "src/assets/i18n/en.json"); f.ResourcePath(dir) != want {
		t.Fatalf("ResourcePath() = %q, want %q", f.ResourcePath(dir), want)
	}
	if !reflect.DeepEqual(f.FormatCommand, []string{"npx", "prettier", "--write"}) {
		t.Fatalf("FormatCommand = %v", f.FormatCommand)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	write(t, dir, FileName, "resource: a.json\n")
	write(t, dir, EnvFileName, "LOKEY_RESOURCE=b.json\nLOKEY_SORT_KEYS=true\n")

	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Resource != "b.json" || !f.SortKeys {
		t.Fatalf(".env override not applied: %+v", f)
	}

	t.Setenv(EnvResource, "/abs/c.json")
	f, err = Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.ResourcePath(dir) != "/abs/c.json" {
		t.Fatalf("process env should win over .env: %q", f.ResourcePath(dir))
	}
}

func TestLoadValidation(t *testing.T) {
	tests := map[string]string{
		"template without placeholder": "template: \"{{ 'KEY' | translate }}\"\n",
		"max_suffix too small":         "max_suffix: 1\n",
		"bad indent":                   "indent: \"xx\"\n",
		"invalid yaml":                 "resource: [unclosed\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			write(t, dir, FileName, content)
			if _, err := Load(dir); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	t.Run("bad sort env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvSortKeys, "maybe")
		_, err := Load(t.TempDir())
		if err == nil || !strings.Contains(err.Error(), EnvSortKeys) {
			t.Fatalf("Load() = %v, want %s error", err, EnvSortKeys)
		}
	})
}

func TestResourcePathEmpty(t *testing.T) {
	if got := Default().ResourcePath("/root"); got != "" {
		t.Fatalf("ResourcePath() = %q, want empty", got)
	}
}
