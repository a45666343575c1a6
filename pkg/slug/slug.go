package slug

import (
	"regexp"
	"strconv"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Product titles from the catalog are mostly English but occasionally carry
// Latin accents or typographic punctuation.
var transliterate = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"ç", "c", "è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n", "ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u", "ğ", "g", "ş", "s", "ß", "ss",
	"&", " and ", "'", "", "’", "",
)

// Generate creates a URL-friendly slug, e.g. "Classic Red Pullover Hoodie"
// becomes "classic-red-pullover-hoodie".
func Generate(name string) string {
	s := transliterate.Replace(strings.ToLower(strings.TrimSpace(name)))
	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// WithID appends id so that two products sharing a title still get
// distinct, reversible slugs: "classic-sneaker-7".
func WithID(name string, id int) string {
	base := Generate(name)
	if base == "" {
		return strconv.Itoa(id)
	}
	return base + "-" + strconv.Itoa(id)
}

// ParseID extracts the trailing id from a slug built by WithID. A bare
// number is accepted too.
func ParseID(s string) (int, bool) {
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		s = s[i+1:]
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
