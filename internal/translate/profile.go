package translate

import (
	"strings"
	"unicode"

	"subtrans/internal/language"
)

// LanguageProfile describes the target-language signals the scorer and
// aligner rely on: which script the language is written in, a handful of
// common function words, the punctuation marks it uses, and the numeral
// glyphs of the paired source language.
type LanguageProfile struct {
	Name           string
	Script         *unicode.RangeTable
	FunctionWords  []string
	Punctuation    string
	SourceNumerals string
}

// ContainsScript reports whether text has at least one character in the
// profile's script range.
func (p LanguageProfile) ContainsScript(text string) bool {
	if p.Script == nil {
		return strings.TrimSpace(text) != ""
	}
	for _, r := range text {
		if unicode.Is(p.Script, r) {
			return true
		}
	}
	return false
}

// ContainsFunctionWord reports whether text contains any of the profile's
// common function words.
func (p LanguageProfile) ContainsFunctionWord(text string) bool {
	if len(p.FunctionWords) == 0 {
		return false
	}
	lowered := strings.ToLower(text)
	for _, word := range p.FunctionWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// Perso-Arabic block used by Urdu, plus the Arabic Supplement block.
var persoArabic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0600, Hi: 0x06FF, Stride: 1},
		{Lo: 0x0750, Hi: 0x077F, Stride: 1},
	},
}

var profiles = map[string]LanguageProfile{
	"urdu": {
		Name:           "Urdu",
		Script:         persoArabic,
		FunctionWords:  []string{"ہے", "ہیں", "کیا", "کا", "کی", "میں", "پر", "سے", "کو", "کے"},
		Punctuation:    "،۔!؟",
		SourceNumerals: "٠١٢٣٤٥٦٧٨٩",
	},
	"arabic": {
		Name:           "Arabic",
		Script:         persoArabic,
		FunctionWords:  []string{"في", "من", "على", "إلى", "هذا", "التي", "الذي", "هو", "هي"},
		Punctuation:    "،؛!؟",
		SourceNumerals: "0123456789",
	},
	"spanish": {
		Name:           "Spanish",
		Script:         unicode.Latin,
		FunctionWords:  []string{" el ", " la ", " de ", " que ", " en ", " los ", " una ", " por ", " con "},
		Punctuation:    ".,;:¡!¿?",
		SourceNumerals: "0123456789",
	},
	"french": {
		Name:           "French",
		Script:         unicode.Latin,
		FunctionWords:  []string{" le ", " la ", " les ", " des ", " une ", " est ", " dans ", " pour ", " que "},
		Punctuation:    ".,;:!?«»",
		SourceNumerals: "0123456789",
	},
	"german": {
		Name:           "German",
		Script:         unicode.Latin,
		FunctionWords:  []string{" der ", " die ", " das ", " und ", " ist ", " ein ", " nicht ", " mit ", " für "},
		Punctuation:    ".,;:!?„“",
		SourceNumerals: "0123456789",
	},
	"english": {
		Name:           "English",
		Script:         unicode.Latin,
		FunctionWords:  []string{" the ", " and ", " is ", " are ", " of ", " to ", " in ", " that ", " with "},
		Punctuation:    ".,;:!?",
		SourceNumerals: "0123456789",
	},
}

// ProfileFor returns the language profile for the named target language.
// The name may be a display name, an ISO code, or a full word; it is
// canonicalized first. Unknown languages get a generic profile that only
// checks for non-empty output, so scoring stays defined for any configured
// language pair.
func ProfileFor(name string) LanguageProfile {
	display := language.DisplayName(name)
	if profile, ok := profiles[strings.ToLower(display)]; ok {
		return profile
	}
	return LanguageProfile{
		Name:        display,
		Punctuation: ".,;:!?",
	}
}
