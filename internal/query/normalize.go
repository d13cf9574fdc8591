// Package query turns raw message text into canonical form and expands it
// for retrieval.
package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var punctuationFolder = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'", "\u2032", "'",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`, "\u2033", `"`,
	"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-", "\u2014", "-", "\u2015", "-", "\u2212", "-",
	"\u2026", "...",
	"\u00a0", " ", "\u2009", " ", "\u202f", " ",
	"\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "",
)

// Normalize lowercases and trims raw text, folds typographic punctuation to
// ASCII, collapses whitespace, maps spelling variants to canonical tokens and
// maps button payloads to the query they represent. It never fails and
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	fields := strings.Fields(Fold(raw))
	for i, f := range fields {
		fields[i] = canonicalize(f)
	}
	out := strings.Join(fields, " ")

	if mapped, ok := buttonPayloads[out]; ok {
		return mapped
	}
	return out
}

// Fold lowercases raw, folds typographic punctuation to ASCII and collapses
// whitespace. Unlike Normalize it keeps the words the asker typed.
func Fold(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(punctuationFolder.Replace(raw))), " ")
}

// Canonical returns the canonical spelling of a single lowercase word, or
// the word itself when it has no variant mapping.
func Canonical(word string) string {
	if mapped, ok := canonicalTokens[word]; ok {
		return mapped
	}
	return word
}

// canonicalize replaces the word core of a token, keeping surrounding punctuation.
func canonicalize(token string) string {
	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	start := strings.IndexFunc(token, isWord)
	if start < 0 {
		return token
	}
	end := strings.LastIndexFunc(token, isWord)
	_, size := utf8.DecodeRuneInString(token[end:])
	end += size

	core := token[start:end]
	if mapped, ok := canonicalTokens[core]; ok {
		return token[:start] + mapped + token[end:]
	}
	return token
}
