// Package langdetect confirms the language of candidate source files with
// go-enry, so that only real sources of the target language are rewritten.
package langdetect

import (
	"bytes"
	"path/filepath"
	"regexp"

	"github.com/go-enry/go-enry/v2"
)

// CSharp is the go-enry name of the default target language.
const CSharp = "C#"

// Unknown is returned when no language can be determined.
const Unknown = ""

// Verdict is the result of classifying one file.
type Verdict struct {
	// Language is the go-enry language name, or Unknown.
	Language string

	// Generated is true for tool-generated sources such as *.Designer.cs.
	Generated bool

	// Vendored is true for paths under vendored or third-party directories.
	Vendored bool
}

// Accept reports whether the file is a hand-written source in want.
// An empty want accepts any language.
func (v Verdict) Accept(want string) bool {
	if v.Generated || v.Vendored {
		return false
	}
	return want == "" || v.Language == want
}

// Canonical resolves a language name or alias, such as "csharp",
// to its go-enry name.
func Canonical(name string) (string, bool) {
	return enry.GetLanguageByAlias(name)
}

// Classify determines the language of the file at path from its name and
// content.
func Classify(path string, content []byte) Verdict {
	return Verdict{
		Language:  Detect(path, content),
		Generated: enry.IsGenerated(path, content),
		Vendored:  enry.IsVendor(filepath.ToSlash(path)),
	}
}

// Detect returns the language of a file, or Unknown.
func Detect(path string, content []byte) string {
	// Strategy 1: an extension that maps to one language.
	if lang, safe := enry.GetLanguageByExtension(path); safe {
		return lang
	}

	// Strategy 2: unmistakable C# syntax. ".cs" is shared with Smalltalk.
	if filepath.Ext(path) == ".cs" && csharpPattern.Match(content) {
		return CSharp
	}

	// Strategy 3: full go-enry detection, then the classifier.
	if lang := enry.GetLanguage(filepath.Base(path), content); lang != "" {
		return lang
	}
	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe {
		return lang
	}
	return Unknown
}

var candidates = []string{CSharp, "Smalltalk", "Java", "TypeScript", "Go"}

var csharpPattern = regexp.MustCompile(`(?m)^\s*(using\s+[A-Z][\w.]*\s*;|namespace\s+[\w.]+\s*[{;]|\[(Fact|Test|TestMethod|Theory)\])`)

// HasAny reports whether content contains at least one of triggers. With
// no triggers every file qualifies.
func HasAny(content []byte, triggers []string) bool {
	if len(triggers) == 0 {
		return true
	}
	for _, t := range triggers {
		if bytes.Contains(content, []byte(t)) {
			return true
		}
	}
	return false
}
