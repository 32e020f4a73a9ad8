// Package passgen maps raw derived key bytes onto human-typable passwords
// using character-class templates.
//
// A pattern key (c16, n4, ...) names a family of template skeletons. The
// first key byte picks a skeleton from the family, every following byte
// picks one character from the alphabet of that position's class. The
// mapping is pure: the same key bytes and pattern always give the same
// password.
package passgen

// Base character sets. The uppercase classes are case-mapped from these,
// the compound classes are unions in the order declared below.
const (
	alphaVowels       = "aeiou"
	alphaConsonants   = "bcdfghjklmnpqrstvwxyz"
	alphaVowelsUp     = "AEIOU"
	alphaConsonantsUp = "BCDFGHJKLMNPQRSTVWXYZ"
	alphaDigits       = "0123456789"
	alphaSymbols      = "!#$%*@"

	alphaAlpha       = alphaVowelsUp + alphaConsonantsUp + alphaVowels + alphaConsonants
	alphaAny         = alphaAlpha + alphaDigits + alphaSymbols
	alphaAnyNoSymbol = alphaAlpha + alphaDigits
)

// classes maps a template token to its alphabet.
var classes = map[byte]string{
	'v': alphaVowels,
	'c': alphaConsonants,
	'V': alphaVowelsUp,
	'C': alphaConsonantsUp,
	'A': alphaAlpha,
	'a': alphaAlpha,
	'n': alphaDigits,
	'o': alphaSymbols,
	'x': alphaAny,
	'y': alphaAnyNoSymbol,
	' ': " ",
}

// patternOrder lists the pattern keys in declared order. The first entry is
// the default for services that carry no pattern.
var patternOrder = []string{"c16", "c12", "c8", "y16", "n6", "n5", "n4"}

// patterns maps a pattern key to its template set. The c families bias
// toward pronounceable consonant/vowel runs with digit and symbol slots; the
// y16 skeletons are the c16 ones with the symbol slots widened to the
// no-symbol class. Template lengths within a family are uniform and encoded
// in the key name.
var patterns = map[string][]string{
	"c16": {
		"CvcvnoCvcvCvcvno",
		"CvcvCvcvnoCvcvno",
		"CvcvnoCvcvnoCvcv",
		"CvccnoCvcvCvcvno",
	},
	"c12": {
		"CvcnoCvcvCvc",
		"CvcvCvcnoCvc",
		"CvcCvcnoCvcv",
		"CvcvnoCvcCvc",
	},
	"c8": {
		"CvcnCvcv",
		"CvcvCvcn",
		"CvcnoCvc",
		"CvcCvcno",
	},
	"y16": {
		"CvcvnyCvcvCvcvny",
		"CvcvCvcvnyCvcvny",
		"CvcvnyCvcvnyCvcv",
		"CvccnyCvcvCvcvny",
	},
	"n6": {"nnnnnn"},
	"n5": {"nnnnn"},
	"n4": {"nnnn"},
}

// DefaultPattern is the pattern used when a service doesn't name one.
func DefaultPattern() string {
	return patternOrder[0]
}

// Patterns returns the known pattern keys in declared order.
func Patterns() []string {
	return append([]string(nil), patternOrder...)
}

// Known reports whether key names a declared pattern family.
func Known(key string) bool {
	_, ok := patterns[key]
	return ok
}

// TemplatesFor returns the template set for a pattern key.
func TemplatesFor(key string) ([]string, error) {
	set, ok := patterns[key]
	if !ok {
		return nil, errUnknown(key)
	}

	return append([]string(nil), set...), nil
}

// AlphabetFor returns the alphabet for a single template class token.
func AlphabetFor(class byte) (string, error) {
	alphabet, ok := classes[class]
	if !ok {
		return "", errUnknownClass(class)
	}

	return alphabet, nil
}
