package translate

import (
	"reflect"
	"testing"
)

func TestAlignExactCount(t *testing.T) {
	aligner := NewAligner("Arabic", "Urdu")
	translations, unresolved := aligner.Align("1. Hello\n2. World", 2)
	if unresolved != 0 {
		t.Errorf("unresolved = %d", unresolved)
	}
	if !reflect.DeepEqual(translations, []string{"Hello", "World"}) {
		t.Errorf("translations = %v", translations)
	}
}

func TestAlignStripsNumberingOnlyWhenPresent(t *testing.T) {
	aligner := NewAligner("Arabic", "Urdu")
	translations, _ := aligner.Align("plain line\n2. numbered line", 2)
	if !reflect.DeepEqual(translations, []string{"plain line", "numbered line"}) {
		t.Errorf("translations = %v", translations)
	}
}

func TestAlignUndercountPadsWithEmptyStrings(t *testing.T) {
	aligner := NewAligner("Arabic", "Urdu")
	translations, unresolved := aligner.Align("only one line", 3)
	if unresolved != 2 {
		t.Errorf("unresolved = %d, want 2", unresolved)
	}
	if !reflect.DeepEqual(translations, []string{"only one line", "", ""}) {
		t.Errorf("translations = %v", translations)
	}
}

func TestAlignOvercountDropsExtras(t *testing.T) {
	aligner := NewAligner("Arabic", "Urdu")
	translations, unresolved := aligner.Align("uno\ndos\ntres\ncuatro", 2)
	if unresolved != 0 {
		t.Errorf("unresolved = %d", unresolved)
	}
	if !reflect.DeepEqual(translations, []string{"uno", "dos"}) {
		t.Errorf("translations = %v", translations)
	}
}

func TestAlignFiltersCommentaryAndNoise(t *testing.T) {
	aligner := NewAligner("Arabic", "Urdu")
	raw := `Here are the translations:
1. پہلی سطر

Note: I preserved the register.
42
.
2. دوسری سطر
The Urdu text follows the original closely.`

	translations, unresolved := aligner.Align(raw, 2)
	if unresolved != 0 {
		t.Errorf("unresolved = %d", unresolved)
	}
	if !reflect.DeepEqual(translations, []string{"پہلی سطر", "دوسری سطر"}) {
		t.Errorf("translations = %v", translations)
	}
}

func TestAlignFiltersLanguageNameMentions(t *testing.T) {
	aligner := NewAligner("English", "Spanish")
	raw := "The Spanish version is below:\nHola mundo\nAdiós"
	translations, _ := aligner.Align(raw, 2)
	if !reflect.DeepEqual(translations, []string{"Hola mundo", "Adiós"}) {
		t.Errorf("translations = %v", translations)
	}
}

func TestAlignEmptyResponse(t *testing.T) {
	aligner := NewAligner("Arabic", "Urdu")
	translations, unresolved := aligner.Align("", 2)
	if unresolved != 2 {
		t.Errorf("unresolved = %d, want 2", unresolved)
	}
	if !reflect.DeepEqual(translations, []string{"", ""}) {
		t.Errorf("translations = %v", translations)
	}
}
