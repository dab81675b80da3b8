package metadata

import (
	"strings"

	"golang.org/x/text/language"
)

const defaultLanguage = "fr-FR"

// normalizeLanguage turns user supplied tags like "fr", "en_gb" or "pt-br"
// into the language-REGION form the media database expects. A bare language
// gets its most likely region.
func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return defaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return defaultLanguage
	}
	base, conf := tag.Base()
	if conf == language.No {
		return defaultLanguage
	}
	region, _ := tag.Region()
	return base.String() + "-" + region.String()
}
