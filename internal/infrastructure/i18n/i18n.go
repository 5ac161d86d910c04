// Package i18n renders notification titles and messages from embedded TOML
// bundles. French is the default language.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

//go:embed locales/*.toml
var locales embed.FS

// Translator looks up messages by id with a fallback to the default language.
type Translator struct {
	bundle      *goi18n.Bundle
	defaultLang language.Tag
}

// New loads the embedded bundles. defaultLocale may be empty ("fr").
func New(defaultLocale string) (*Translator, error) {
	def := language.French
	if defaultLocale != "" {
		tag, err := language.Parse(defaultLocale)
		if err != nil {
			return nil, fmt.Errorf("i18n: locale %q: %w", defaultLocale, err)
		}
		def = tag
	}

	bundle := goi18n.NewBundle(def)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(locales, f); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", f, err)
		}
	}
	return &Translator{bundle: bundle, defaultLang: def}, nil
}

// Languages lists the loaded bundle languages.
func (t *Translator) Languages() []language.Tag {
	return t.bundle.LanguageTags()
}

// Translate returns the localized message, or id itself when no bundle has it.
func (t *Translator) Translate(lang, id string, data map[string]string) string {
	loc := goi18n.NewLocalizer(t.bundle, lang, t.defaultLang.String())
	lc := &goi18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		lc.TemplateData = data
	}
	msg, err := loc.Localize(lc)
	if err != nil {
		return id
	}
	return msg
}

// Render builds the title and body of a notification. Failure notifications
// carry message ids in their Operation and Reason values; those are
// translated before being substituted.
func (t *Translator) Render(lang string, n domain.Notification) (title, message string) {
	data := n.Data
	if n.Kind == domain.NotifyError {
		data = make(map[string]string, len(n.Data))
		for k, v := range n.Data {
			data[k] = v
		}
		if op := data["Operation"]; op != "" {
			data["Operation"] = t.Translate(lang, op+".title", nil)
		}
		if r := data["Reason"]; r != "" {
			data["Reason"] = t.Translate(lang, r, nil)
		}
	}
	title = t.Translate(lang, n.Event+".title", nil)
	message = strings.TrimSpace(t.Translate(lang, n.Event, data))
	return title, message
}
