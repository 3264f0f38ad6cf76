package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that NFD does not decompose into an ASCII base.
var foldReplacer = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ß", "ss",
	"æ", "ae", "Æ", "ae",
	"œ", "oe", "Œ", "oe",
	"ø", "o", "Ø", "o",
	"ł", "l", "Ł", "l",
	"đ", "d", "Đ", "d",
)

// Slugify converts free text into the lower-kebab ASCII form used for every
// surface slug, device slug and legacy redirect target.
//
//	Slugify("iPhone 13 Pro")  // "iphone-13-pro"
//	Slugify("Réparation")     // "reparation"
//	Slugify("Kırık Ekran")    // "kirik-ekran"
func Slugify(value string) string {
	folded := foldReplacer.Replace(value)
	// transform chains carry state, build one per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, folded)
	if err != nil {
		stripped = folded
	}

	var b strings.Builder
	b.Grow(len(stripped))
	lastWasDash := false
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteByte('-')
				lastWasDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// IsSlug reports whether value is already in canonical slug form.
func IsSlug(value string) bool {
	return value != "" && Slugify(value) == value
}
