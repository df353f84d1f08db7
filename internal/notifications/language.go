// internal/notifications/language.go
package notifications

// Language is the internal lowercase language tag used by the editing model.
type Language string

const (
	LangEN Language = "en"
	LangFR Language = "fr"
	LangDE Language = "de"
	LangIT Language = "it"
	LangES Language = "es"
	LangNL Language = "nl"
	LangSV Language = "sv"
	LangNO Language = "no"
)

// Languages is the closed catalog of supported languages, in presentation order.
// Every RecipientConfig template map carries exactly this set of keys.
var Languages = []Language{LangEN, LangFR, LangDE, LangIT, LangES, LangNL, LangSV, LangNO}

// externalCodes maps the internal tag to the persistence-layer code. The
// mapping is not a plain uppercase transform: Dutch persists as NL-BE.
var externalCodes = map[Language]string{
	LangEN: "EN",
	LangFR: "FR",
	LangDE: "DE",
	LangIT: "IT",
	LangES: "ES",
	LangNL: "NL-BE",
	LangSV: "SV",
	LangNO: "NO",
}

var internalTags = func() map[string]Language {
	m := make(map[string]Language, len(externalCodes))
	for tag, code := range externalCodes {
		m[code] = tag
	}
	return m
}()

// ExternalCode returns the persistence-layer code for an internal tag. The
// map is total on the internal side, so this cannot fail for catalog members.
func ExternalCode(lang Language) string {
	return externalCodes[lang]
}

// InternalLanguage resolves a persistence-layer code back to the internal tag.
// Unknown codes return ok=false; callers log and skip rather than fail a decode.
func InternalLanguage(code string) (Language, bool) {
	lang, ok := internalTags[code]
	return lang, ok
}

// KnownLanguage reports whether lang is a member of the catalog.
func KnownLanguage(lang Language) bool {
	_, ok := externalCodes[lang]
	return ok
}
