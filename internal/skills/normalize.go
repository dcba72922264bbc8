package skills

import "strings"

// skillNormalizations maps common skill name variants to canonical lower-case names.
var skillNormalizations = map[string]string{
	"golang":      "go",
	"go lang":     "go",
	"js":          "javascript",
	"ecmascript":  "javascript",
	"ts":          "typescript",
	"k8s":         "kubernetes",
	"react.js":    "react",
	"reactjs":     "react",
	"vue.js":      "vue",
	"vuejs":       "vue",
	"angularjs":   "angular",
	"nodejs":      "node.js",
	"node":        "node.js",
	"expressjs":   "express",
	"postgres":    "postgresql",
	"mongo":       "mongodb",
	"ml":          "machine learning",
	"dl":          "deep learning",
	"cicd":        "ci/cd",
	"ci-cd":       "ci/cd",
	"restful api": "rest api",
	"rest apis":   "rest api",

	"amazon web services": "aws",
	"ms excel":            "excel",
	"microsoft excel":     "excel",
}

// Normalize returns the canonical lower-case form of a skill name.
// Unknown names are lower-cased and have inner whitespace collapsed.
func Normalize(skillName string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(skillName), " "))
	if normalized == "" {
		return ""
	}
	if canonical, ok := skillNormalizations[normalized]; ok {
		return canonical
	}
	return normalized
}

// NormalizeAll normalizes and deduplicates names, keeping first-seen order.
// Empty names are dropped.
func NormalizeAll(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		n := Normalize(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// PartialMatch reports whether two skill names match when either contains the
// other after normalization. "react" matches "react native" and vice versa.
func PartialMatch(a, b string) bool {
	a, b = Normalize(a), Normalize(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// MatchesAny reports whether required partially matches any candidate skill.
func MatchesAny(required string, candidate []string) bool {
	for _, c := range candidate {
		if PartialMatch(required, c) {
			return true
		}
	}
	return false
}
