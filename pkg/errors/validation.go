package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidatePackageName rejects empty or oversized names and control
// characters. It is the check applied to every root name, including
// adjacency-file roots that need not follow npm rules ("a..b" is a valid
// node name there).
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}
	return nil
}

// npmPackageNameRegex matches npm names, optionally scoped. Uppercase is
// accepted because legacy packages (JSONStream, ...) still resolve.
var npmPackageNameRegex = regexp.MustCompile(`^(@[A-Za-z0-9~-][A-Za-z0-9._~-]*/)?[A-Za-z0-9~-][A-Za-z0-9._~-]*$`)

// ValidateNpmPackageName validates a name sent to the npm registry. Names
// become URL paths there, so traversal sequences are rejected too.
func ValidateNpmPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}
	if !npmPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid npm package name: %q", name)
	}
	return nil
}

// ValidateDepth rejects negative depth bounds.
func ValidateDepth(depth int) error {
	if depth < 0 {
		return New(ErrCodeInvalidDepth, "max depth must be >= 0, got %d", depth)
	}
	return nil
}

// ValidateURL checks that rawURL uses http or https.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// ValidateOutputPath checks that path ends in an output extension deptree
// can write.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".svg", ".png", ".json":
		return nil
	default:
		return New(ErrCodeInvalidFormat, "unsupported output format %q (want .dot, .svg, .png or .json)", ext)
	}
}
