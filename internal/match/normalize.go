package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent lower-cases an identifier and drops separators, so that
// "partner_id", "PartnerID" and "partner-id" all normalize to "partnerid".
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// StripRelationSuffix normalizes s and removes a trailing "ids" or "id"
// token, as carried by relational attribute names.
func StripRelationSuffix(s string) string {
	tokens := TokenizeIdent(s)
	if len(tokens) > 1 {
		switch tokens[len(tokens)-1] {
		case "id", "ids":
			tokens = tokens[:len(tokens)-1]
		}
	}

	return strings.Join(tokens, "")
}

// TokenizeIdent splits an identifier into lowercase tokens at separators
// and camel-case boundaries:
//   - "partner_id" -> ["partner", "id"]
//   - "childIDs" -> ["child", "ids"]
//   - "HTMLBody" -> ["html", "body"]
func TokenizeIdent(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsToken reports whether a camel-case token starts at position i.
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]

	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	// End of an acronym: "HTMLBody" splits before 'B', but a plural "s"
	// stays attached as in "IDs".
	if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return !(runes[i+1] == 's' && (i+2 == len(runes) || !unicode.IsLower(runes[i+2])))
	}

	return false
}
