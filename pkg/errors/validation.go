package errors

import (
	"strings"
	"unicode"
)

// ValidateBasename validates a page basename template for safety.
// The basename becomes part of every output file path, so it must be a
// simple name without path components or control characters.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateBasename(name string) error {
	if name == "" {
		return New(ErrCodeConfigInvalid, "page basename cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeConfigInvalid, "page basename too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeConfigInvalid, "page basename contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeConfigInvalid, "page basename contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateRasterExt validates an output raster extension.
// The extension must be a bare format name without a leading dot.
func ValidateRasterExt(ext string) error {
	if ext == "" {
		return New(ErrCodeConfigInvalid, "raster extension cannot be empty")
	}
	if strings.HasPrefix(ext, ".") {
		return New(ErrCodeConfigInvalid, "raster extension must not start with a dot: %q", ext)
	}
	for _, r := range ext {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) {
			return New(ErrCodeConfigInvalid, "raster extension must be lowercase alphanumeric: %q", ext)
		}
	}
	return nil
}
