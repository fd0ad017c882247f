package models

import "strings"

// Language selects the wording of user-facing messages and summaries
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

// ParseLanguage maps a language tag such as "zh-CN" or an Accept-Language header to a
// supported language. Anything that is not Chinese falls back to English.
func ParseLanguage(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if strings.HasPrefix(tag, "zh") {
		return LanguageChinese
	}
	return LanguageEnglish
}
