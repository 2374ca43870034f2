// Package pathutil holds the small path and command-line helpers shared by
// the artwork search, extraction and playback code.
package pathutil

import (
	"path/filepath"
	"strings"
)

// audioExtensions are matched as substrings of the file name, case-sensitive
var audioExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg"}

// imageExtensions are matched against the final extension, case-insensitive
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// IsAudioFile reports whether name contains one of the audio extensions.
// "song.flac.bak" matches; "SONG.FLAC" does not.
func IsAudioFile(name string) bool {
	for _, ext := range audioExtensions {
		if strings.Contains(name, ext) {
			return true
		}
	}
	return false
}

// IsImageFile reports whether the extension of name is a recognised image type
func IsImageFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	for _, candidate := range imageExtensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}

// shellSpecial are the characters that keep their meaning inside double quotes
const shellSpecial = "\\\"$`"

// ShellEscape backslash-escapes the characters that are still active inside a
// double-quoted shell word, so `"` + ShellEscape(s) + `"` is always a literal.
func ShellEscape(s string) string {
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(shellSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CommandLine renders an argument vector the way a shell would need it typed.
// It is only used for logs; processes are always started from the vector.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\n'"+shellSpecial+"|&;<>()*?[]#~") {
			parts = append(parts, a)
			continue
		}
		parts = append(parts, `"`+ShellEscape(a)+`"`)
	}
	return strings.Join(parts, " ")
}

// EnsureTrailingSlash appends a separator unless p is empty or already ends in one
func EnsureTrailingSlash(p string) string {
	if p == "" || strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}

// Join concatenates dir and name with exactly one separator between them.
// Unlike filepath.Join it leaves the components otherwise untouched.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	return EnsureTrailingSlash(dir) + strings.TrimLeft(name, string(filepath.Separator))
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(p string, home string) string {
	if home == "" || !strings.HasPrefix(p, "~") {
		return p
	}
	return filepath.Join(home, p[1:])
}
