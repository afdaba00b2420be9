package translate

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Aligner maps a raw model response back onto the segments that were sent.
// Alignment is positional: the i-th surviving response line is assigned to
// the i-th segment. There is no content matching, so when the model merges
// or reorders lines the assignment can drift. That limitation is accepted;
// undercounts are reported so callers can flag unresolved segments instead
// of treating them as successes.
type Aligner struct {
	denylist []string
}

// NewAligner returns an aligner that discards commentary lines mentioning
// any of the configured language names alongside the fixed meta-words.
func NewAligner(sourceLanguage, targetLanguage string) *Aligner {
	denylist := []string{"translation", "note", "explanation", "comment"}
	for _, language := range []string{sourceLanguage, targetLanguage} {
		language = strings.ToLower(strings.TrimSpace(language))
		if language != "" {
			denylist = append(denylist, language)
		}
	}
	return &Aligner{denylist: denylist}
}

var (
	numberPrefixPattern = regexp.MustCompile(`^\d+\.\s*`)
	pureNumberPattern   = regexp.MustCompile(`^\d+$`)
)

// Align extracts count translations from raw, in order. When the response
// has fewer usable lines than count, the tail segments get empty strings and
// the second return value reports how many were left unresolved. Extra lines
// beyond count are dropped as noise.
func (a *Aligner) Align(raw string, count int) ([]string, int) {
	lines := a.filterLines(raw)

	translations := make([]string, 0, count)
	unresolved := 0
	for i := 0; i < count; i++ {
		if i < len(lines) {
			translations = append(translations, numberPrefixPattern.ReplaceAllString(lines[i], ""))
			continue
		}
		translations = append(translations, "")
		unresolved++
	}
	return translations, unresolved
}

func (a *Aligner) filterLines(raw string) []string {
	var kept []string
	for _, line := range strings.Split(norm.NFC.String(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if pureNumberPattern.MatchString(line) || isPunctuationOnly(line) {
			continue
		}
		if a.isCommentary(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func (a *Aligner) isCommentary(line string) bool {
	lowered := strings.ToLower(line)
	for _, word := range a.denylist {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

func isPunctuationOnly(line string) bool {
	switch line {
	case ".", ",", ";", ":":
		return true
	}
	return false
}
