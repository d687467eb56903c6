package i18n

import (
	"embed"
	"encoding/json"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
)

//go:embed locales/*.json
var localeFS embed.FS

// I18nSupport localizes interviewer-facing messages.
type I18nSupport struct {
	bundle *i18n.Bundle
}

// NewI18nSupport loads the embedded en/ja message files.
func NewI18nSupport(defaultLang string) (*I18nSupport, error) {
	bundle := i18n.NewBundle(language.MustParse(defaultLang))
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, name := range []string{"locales/en.json", "locales/ja.json"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, name); err != nil {
			return nil, err
		}
	}

	return &I18nSupport{bundle: bundle}, nil
}

// T returns the translation for key in the given language, falling back to
// the key itself so a missing message never blanks the interviewer's speech.
func (i *I18nSupport) T(languageTag, key string, templateData map[string]interface{}) string {
	localizer := i18n.NewLocalizer(i.bundle, languageTag)

	translation, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: templateData,
	})
	if err != nil {
		logger.Debug("missing translation: " + key)
		return key
	}
	return translation
}
