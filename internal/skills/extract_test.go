package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Golang to go", "Golang", "go"},
		{"go lang to go", "go  lang", "go"},
		{"JS to javascript", "JS", "javascript"},
		{"K8s to kubernetes", "k8s", "kubernetes"},
		{"reactjs to react", "ReactJS", "react"},
		{"nodejs to node.js", "nodejs", "node.js"},
		{"Unknown lower-cased", "Distributed Systems", "distributed systems"},
		{"Empty string", "", ""},
		{"Whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeAll_DedupesKeepingOrder(t *testing.T) {
	got := NormalizeAll([]string{"Python", " python ", "Golang", "Go", "", "SQL"})
	assert.Equal(t, []string{"python", "go", "sql"}, got)
}

func TestPartialMatch(t *testing.T) {
	assert.True(t, PartialMatch("React", "react native"))
	assert.True(t, PartialMatch("react native", "React"))
	assert.True(t, PartialMatch("golang", "Go"))
	assert.False(t, PartialMatch("Python", "Ruby"))
	assert.False(t, PartialMatch("", "Go"))
	assert.True(t, MatchesAny("docker", []string{"sql", "Docker Compose"}))
	assert.False(t, MatchesAny("docker", nil))
}

func TestExtractor_KnownSkills_WordBoundaries(t *testing.T) {
	e := NewExtractor(nil)

	found := e.KnownSkills("Senior JavaScript developer with Node.js, CI/CD and C++ exposure")

	assert.Contains(t, found, "javascript")
	assert.Contains(t, found, "node.js")
	assert.Contains(t, found, "ci/cd")
	assert.Contains(t, found, "c++")
	assert.NotContains(t, found, "java")
}

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor([]string{"Python", "machine learning"})

	got := e.Extract("We need Python and Machine Learning for the recommendation platform")

	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, []string{"python", "machine learning"}, got[:2])
	assert.Contains(t, got, "recommendation")
	assert.Contains(t, got, "platform")
	// covered by a matched phrase
	assert.NotContains(t, got, "machine")
	// function words
	assert.NotContains(t, got, "the")
	assert.NotContains(t, got, "and")
}

func TestExtractor_EmptyInput(t *testing.T) {
	e := NewExtractor(nil)
	assert.Empty(t, e.Extract(""))
	assert.Empty(t, e.FromList(nil))
}

func TestExtractor_FromList(t *testing.T) {
	e := NewExtractor(nil)
	got := e.FromList([]string{"Go, Docker", "golang", "SQL | NoSQL"})
	assert.Equal(t, []string{"go", "docker", "sql", "nosql"}, got)
}

func TestExtractor_ProfileSkills(t *testing.T) {
	e := NewExtractor(nil)

	got := e.ProfileSkills([]string{"Go"}, "Python and Go services on AWS")
	assert.Equal(t, []string{"go", "python", "aws"}, got)

	assert.Equal(t, []string{"go"}, e.ProfileSkills([]string{"Go"}, "  "))
	assert.Equal(t, []string{"python", "react", "sql"}, e.ProfileSkills(nil, "Python, React, SQL"))
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Développeur backend pour une équipe agile, 2024, les API REST")

	assert.Equal(t, []string{"développeur", "backend", "équipe", "agile", "api", "rest"}, got)
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("avec"))
	assert.False(t, IsStopWord("kubernetes"))
}

func TestPlainText(t *testing.T) {
	html := `<html><body><nav>Home | Jobs</nav><h1>Backend Engineer</h1><p>Build APIs in <b>Go</b>.</p><ul><li>Docker</li><li>SQL</li></ul><script>track()</script></body></html>`

	text, err := PlainText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Docker")
	assert.Contains(t, text, "SQL")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "DockerSQL")
}

func TestPlainText_NoMarkup(t *testing.T) {
	text, err := PlainText("  Go   developer\n\twanted ")
	require.NoError(t, err)
	assert.Equal(t, "Go developer wanted", text)
}
