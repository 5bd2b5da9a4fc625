// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// MaxTitleLength is the number of title runes kept when deriving a PDF filename.
const MaxTitleLength = 50

var unsafeNameChars = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// SanitizeTitle truncates title to MaxTitleLength runes and replaces spaces
// and path separators with underscores. It is idempotent.
func SanitizeTitle(title string) string {
	r := []rune(title)
	if len(r) > MaxTitleLength {
		r = r[:MaxTitleLength]
	}
	return unsafeNameChars.Replace(string(r))
}

// Filename returns the PDF filename for a paper: "<shortID>_<sanitizedTitle>.pdf".
// Separators inside the short ID (old-style arXiv IDs such as
// "hep-th/9901001v1") are replaced as well so the result is a single path
// element.
func Filename(shortID, title string) string {
	return unsafeNameChars.Replace(shortID) + "_" + SanitizeTitle(title) + ".pdf"
}
