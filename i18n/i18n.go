// Package i18n translates lokey's own messages.
//
// Catalogs are gettext .po files embedded under locales/<lang>/LC_MESSAGES
// and read with gotext. Until Init is called every function passes its
// message through untranslated:
//
//	i18n.Init("") // LANGUAGE, LC_ALL, LC_MESSAGES, then LANG
//	msg := i18n.Tf("Added %s to %s.", key, path)
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "lokey"

var po *gotext.Locale

// localeVars are consulted in gettext order.
var localeVars = []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"}

// Init loads the catalog for lang, or for the environment's language when
// lang is empty. A language without a catalog leaves messages untranslated.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates msgid.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// Tf translates format and fills in args.
func Tf(format string, args ...any) string {
	if po == nil {
		return fmt.Sprintf(format, args...)
	}
	return po.Get(format, args...)
}

// Nf picks the plural form of a message for n and fills in args. Without a
// catalog the English rule applies: singular for 1, plural otherwise.
func Nf(singular, plural string, n int, args ...any) string {
	if po == nil {
		if n == 1 {
			return fmt.Sprintf(singular, args...)
		}
		return fmt.Sprintf(plural, args...)
	}
	return po.GetN(singular, plural, n, args...)
}

func detectLanguage() string {
	for _, name := range localeVars {
		if lang := localeName(os.Getenv(name)); lang != "" {
			return lang
		}
	}
	return "en"
}

// localeName reduces a locale variable to a catalog name: the first entry
// of a LANGUAGE list without its encoding. C and POSIX mean no translation.
func localeName(val string) string {
	val, _, _ = strings.Cut(val, ":")
	val, _, _ = strings.Cut(val, ".")
	if val == "C" || val == "POSIX" {
		return ""
	}
	return val
}
