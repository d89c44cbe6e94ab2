package matching

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	phonePattern = regexp.MustCompile(`\+?254\d{9}|\b0\d{9}\b`)
	// Paybill lines carry the payer after "Acc." or "A/C".
	accountNamePattern = regexp.MustCompile(`(?i)\b(?:acc\.|acc\b|a/c)\s*([a-z][a-z\s]+)`)
)

// NormalizePhone converts 07XXXXXXXX, 7XXXXXXXX, +2547XXXXXXXX and 2547XXXXXXXX into the
// 254XXXXXXXXX form. It returns "" for anything else.
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	switch {
	case len(digits) == 10 && digits[0] == '0':
		return "254" + digits[1:]
	case len(digits) == 9:
		return "254" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "254"):
		return digits
	}
	return ""
}

// ExtractPhones returns the distinct normalized phone numbers found in text, in order of appearance.
func ExtractPhones(text string) []string {
	seen := map[string]bool{}
	var phones []string
	for _, raw := range phonePattern.FindAllString(text, -1) {
		p := NormalizePhone(raw)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		phones = append(phones, p)
	}
	return phones
}

// NormalizeName lowercases, drops punctuation and digits, and sorts the words so that
// "KAMAU John" and "john kamau" compare equal.
func NormalizeName(name string) string {
	return strings.Join(nameTokens(name), " ")
}

func nameTokens(name string) []string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	sort.Strings(words)
	return words
}

// ExtractPayerName returns the name written after an account marker, or "".
func ExtractPayerName(particulars string) string {
	m := accountNamePattern.FindStringSubmatch(particulars)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// tokens splits particulars into upper-cased alphanumeric words.
func tokens(text string) []string {
	return strings.FieldsFunc(strings.ToUpper(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsAllWords reports whether every word of name occurs in text. Single-word names
// never match this way.
func containsAllWords(text, name string) bool {
	words := nameTokens(name)
	if len(words) < 2 {
		return false
	}
	present := map[string]bool{}
	for _, w := range nameTokens(text) {
		present[w] = true
	}
	for _, w := range words {
		if !present[w] {
			return false
		}
	}
	return true
}
