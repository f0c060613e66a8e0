// Package langdetect guesses the language of code block content. The guess
// fills the params attribute of code blocks imported without a fence info
// string.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Text is returned when no language can be determined.
const Text = "text"

//nolint:gochecknoglobals // Read-only classifier candidates.
var defaultCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// sample holds the views of the content that the pattern rules inspect.
type sample struct {
	raw     []byte
	trimmed []byte
	str     string
	upper   string
}

func newSample(content []byte) sample {
	str := string(content)
	return sample{
		raw:     content,
		trimmed: bytes.TrimSpace(content),
		str:     str,
		upper:   strings.TrimSpace(strings.ToUpper(str)),
	}
}

// rule reports a language when its pattern is highly indicative.
type rule struct {
	lang  string
	match func(s sample) bool
}

// patternRules are checked in order of specificity, before the classifier.
//
//nolint:gochecknoglobals // Read-only rule table.
var patternRules = []rule{
	{lang: "go", match: func(s sample) bool { return bytes.HasPrefix(s.trimmed, []byte("package ")) }},
	{lang: "python", match: isPython},
	{lang: "html", match: func(s sample) bool {
		lower := bytes.ToLower(s.trimmed)
		return containsAny(string(lower), "<!doctype html", "<html", "<head>", "<body>")
	}},
	{lang: "json", match: func(s sample) bool {
		return (bytes.HasPrefix(s.trimmed, []byte("{")) || bytes.HasPrefix(s.trimmed, []byte("["))) &&
			bytes.Contains(s.trimmed, []byte(`"`))
	}},
	{lang: "dockerfile", match: func(s sample) bool {
		return bytes.HasPrefix(s.trimmed, []byte("FROM ")) ||
			(strings.Contains(s.str, "\nFROM ") && strings.Contains(s.str, "\nRUN ")) ||
			(strings.Contains(s.str, "WORKDIR ") && strings.Contains(s.str, "COPY "))
	}},
	{lang: "sql", match: func(s sample) bool {
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(s.upper, kw) {
				return true
			}
		}
		return false
	}},
	{lang: "rust", match: func(s sample) bool { return containsAny(s.str, "fn main()", "println!", "let mut ") }},
	{lang: "javascript", match: func(s sample) bool { return containsAny(s.str, "=>", "const ", "let ", "console.log") }},
	{lang: "yaml", match: isYAML},
}

func isPython(s sample) bool {
	if strings.Contains(s.str, "def ") && strings.Contains(s.str, "):") {
		return true
	}
	// Go imports use "import (".
	if strings.Contains(s.str, "import ") && !strings.Contains(s.str, "import (") &&
		(strings.Contains(s.str, "from ") || bytes.HasPrefix(s.trimmed, []byte("import "))) {
		return true
	}
	return containsAny(s.str, "__name__", "__main__")
}

// isYAML needs at least two key: value or list lines that do not look like code.
func isYAML(s sample) bool {
	count := 0
	for _, line := range bytes.Split(s.raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.ContainsAny(line, "({") &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			count++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			count++
		}
	}
	return count >= 2
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Detector guesses languages. The zero value is not usable; use New.
type Detector struct {
	candidates []string
}

// Option configures a Detector.
type Option func(*Detector)

// WithCandidates restricts the classifier to the given go-enry language names.
func WithCandidates(names ...string) Option {
	return func(d *Detector) {
		d.candidates = names
	}
}

// New creates a Detector.
func New(opts ...Option) *Detector {
	d := &Detector{candidates: defaultCandidates}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns a lowercase language tag for content, or Text. A shebang
// wins over everything; then pattern rules; then the go-enry classifier,
// whose answer is used only when it is unambiguous.
func (d *Detector) Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return Text
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	s := newSample(content)
	for _, r := range patternRules {
		if r.match(s) {
			return r.lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, d.candidates); safe && lang != "" {
		return normalize(lang)
	}

	return Text
}

// Params picks the params attribute for a code block. The first word of a
// fence info string wins; otherwise the content is classified when detect is
// set. Text results in "" since the attribute is for real languages.
func (d *Detector) Params(info string, content []byte, detect bool) string {
	if fields := strings.Fields(info); len(fields) > 0 {
		return fields[0]
	}
	if !detect {
		return ""
	}
	if lang := d.Detect(content); lang != Text {
		return lang
	}
	return ""
}

//nolint:gochecknoglobals // Shared default detector.
var defaultDetector = New()

// Detect classifies content with the default candidates.
func Detect(content []byte) string {
	return defaultDetector.Detect(content)
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
