// Package skills derives normalized skill sets and keywords from free text and lists.
package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minKeywordLength is the shortest token kept as a keyword; shorter tokens are noise.
const minKeywordLength = 3

// DefaultVocabulary is the known technical and office skill list used when no
// vocabulary is configured.
var DefaultVocabulary = []string{
	"javascript", "python", "java", "c++", "react", "angular", "vue",
	"node.js", "express", "django", "spring", "sql", "mongodb", "redis",
	"docker", "kubernetes", "aws", "azure", "git", "jenkins", "ci/cd",
	"html", "css", "typescript", "php", "laravel", "symfony",
	"rest api", "graphql", "microservices", "agile", "scrum",
	"machine learning", "deep learning", "nlp", "data analysis",
	"excel", "powerpoint", "word", "office", "crm", "erp", "sap",
	"go", "rust", "c#", ".net", "postgresql", "mysql", "kafka", "terraform", "linux",
}

// Extractor finds known skills by exact phrase lookup and falls back to keyword
// extraction for text outside the vocabulary. An Extractor is immutable and safe
// for concurrent use.
type Extractor struct {
	vocabulary []string
}

// NewExtractor returns an Extractor over the given vocabulary. A nil or empty
// vocabulary selects DefaultVocabulary.
func NewExtractor(vocabulary []string) *Extractor {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	return &Extractor{vocabulary: NormalizeAll(vocabulary)}
}

// Vocabulary returns a copy of the normalized vocabulary.
func (e *Extractor) Vocabulary() []string {
	return append([]string(nil), e.vocabulary...)
}

// KnownSkills returns vocabulary entries found in text, in vocabulary order.
// A skill only matches on word boundaries, so "java" does not match "javascript".
func (e *Extractor) KnownSkills(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, skill := range e.vocabulary {
		if containsPhrase(lower, skill) {
			found = append(found, skill)
		}
	}
	return found
}

// Extract returns known skills followed by keywords from the rest of the text.
// Words that are part of a matched skill are not repeated as keywords.
// Empty text yields an empty set.
func (e *Extractor) Extract(text string) []string {
	known := e.KnownSkills(text)
	covered := make(map[string]bool)
	for _, skill := range known {
		for _, w := range Tokenize(skill) {
			covered[w] = true
		}
	}

	out := make([]string, 0, len(known))
	out = append(out, known...)
	for _, kw := range ExtractKeywords(text) {
		if !covered[kw] {
			out = append(out, kw)
		}
	}
	return NormalizeAll(out)
}

// FromList normalizes a structured skill list. Entries holding several skills
// ("Go, Docker") are split on commas, semicolons and pipes.
func (e *Extractor) FromList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ';' || r == '|'
		})...)
	}
	return NormalizeAll(out)
}

// ProfileSkills merges a structured skill list with the known skills found in
// free resume text. Listed skills come first.
func (e *Extractor) ProfileSkills(listed []string, resumeText string) []string {
	out := e.FromList(listed)
	if strings.TrimSpace(resumeText) == "" {
		return out
	}
	return NormalizeAll(append(out, e.KnownSkills(resumeText)...))
}

// ExtractKeywords returns lower-cased tokens longer than two characters that are
// neither English nor French function words nor bare numbers, in first-seen order.
func ExtractKeywords(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range Tokenize(text) {
		if utf8.RuneCountInString(tok) < minKeywordLength || IsStopWord(tok) || isNumeric(tok) {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Tokenize lower-cases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// containsPhrase reports whether phrase occurs in text delimited by non-word characters.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)
		if boundaryBefore(text, start, phrase) && boundaryAfter(text, end, phrase) {
			return true
		}
		offset = start + 1
	}
	return false
}

func boundaryBefore(text string, start int, phrase string) bool {
	if start == 0 || !isWordRune(firstRune(phrase)) {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int, phrase string) bool {
	if end >= len(text) {
		return true
	}
	if last, _ := utf8.DecodeLastRuneInString(phrase); !isWordRune(last) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
