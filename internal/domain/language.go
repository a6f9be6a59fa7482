package domain

// DefaultLanguage is the ISO 639-2 code used when no language is requested.
const DefaultLanguage = "eng"

// IsoLanguage maps an ISO 639-2 code to its 639-1 short code and its labels
// in the catalog's UI languages.
type IsoLanguage struct {
	ID        int
	Code      string
	ShortCode string
	Labels    map[string]string
}

// Label returns the label in lang, falling back to the English label and
// finally to the code itself.
func (l IsoLanguage) Label(lang string) string {
	if label, ok := l.Labels[lang]; ok && label != "" {
		return label
	}
	if label, ok := l.Labels[DefaultLanguage]; ok && label != "" {
		return label
	}
	return l.Code
}
