// Package language normalizes language identifiers.
//
// Configured source and target languages may arrive as ISO 639-1 codes,
// ISO 639-2 codes, or full words ("ur", "urd", "urdu"); conversions to a
// single display form are consolidated here so prompts, scoring profiles,
// and response filtering all agree on the name.
package language
