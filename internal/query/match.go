package query

import (
	"strings"
	"unicode"
)

// Words splits text into lowercase runs of letters and digits.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContainsPhrase reports whether phrase occurs in text on word boundaries,
// so "hi" does not match "this" and "fee" does not match "feet".
func ContainsPhrase(text, phrase string) bool {
	needle := Words(phrase)
	if len(needle) == 0 {
		return false
	}
	return containsSeq(Words(text), needle)
}

// ContainsAny reports whether any of the phrases occurs in text.
func ContainsAny(text string, phrases ...string) bool {
	if len(phrases) == 0 {
		return false
	}
	hay := Words(text)
	for _, p := range phrases {
		if needle := Words(p); len(needle) > 0 && containsSeq(hay, needle) {
			return true
		}
	}
	return false
}

func containsSeq(hay, needle []string) bool {
	if len(needle) > len(hay) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, w := range needle {
			if hay[i+j] != w {
				continue outer
			}
		}
		return true
	}
	return false
}

// SignificantWords returns the words longer than three characters, used for
// substring keyword retrieval.
func SignificantWords(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, w := range Words(text) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

var stopwords = map[string]struct{}{
	"what": {}, "when": {}, "where": {}, "which": {}, "does": {}, "that": {}, "this": {},
	"with": {}, "from": {}, "there": {}, "their": {}, "about": {}, "have": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "tell": {}, "please": {}, "your": {}, "know": {},
}
