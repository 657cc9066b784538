// Package video holds the fixed allow-list of video file extensions.
// Only files with one of these extensions can be marked watched.
package video

import (
	"path/filepath"
	"strings"
)

// extensions is the recognized allow-list, lower-case, without the dot.
var extensions = map[string]bool{
	"mp4":  true,
	"mkv":  true,
	"avi":  true,
	"webm": true,
	"flv":  true,
	"mov":  true,
	"wmv":  true,
}

// Extensions returns the allow-list in a stable order.
func Extensions() []string {
	return []string{"mp4", "mkv", "avi", "webm", "flv", "mov", "wmv"}
}

// Ext returns the extension of path without the dot, as written.
// Empty if the base name has none.
func Ext(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// IsVideoExt reports whether ext (with or without a leading dot) is on the
// allow-list. The comparison ignores case.
func IsVideoExt(ext string) bool {
	return extensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// IsVideo reports whether path names a recognized video file.
func IsVideo(path string) bool {
	return IsVideoExt(Ext(path))
}
