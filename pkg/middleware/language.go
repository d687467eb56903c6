package middleware

import (
	"github.com/gin-gonic/gin"
)

// Supported interview languages. Anything else falls back to the default.
var supportedLanguages = map[string]bool{"en": true, "ja": true}

// LanguageMiddleware resolves the request language from the ?lang query or
// Accept-Language header and stashes it in the gin context.
func LanguageMiddleware(defaultLang string) gin.HandlerFunc {
	if !supportedLanguages[defaultLang] {
		defaultLang = "ja"
	}
	return func(c *gin.Context) {
		lang := c.DefaultQuery("lang", "")
		if lang == "" {
			lang = c.DefaultQuery("language", "")
		}
		if lang == "" {
			accept := c.GetHeader("Accept-Language")
			if len(accept) >= 2 {
				lang = accept[:2]
			}
		}
		if !supportedLanguages[lang] {
			lang = defaultLang
		}
		c.Set("lang", lang)
		c.Next()
	}
}

// RequestLanguage reads the language resolved by LanguageMiddleware.
func RequestLanguage(c *gin.Context) string {
	if lang, ok := c.Get("lang"); ok {
		return lang.(string)
	}
	return "ja"
}
