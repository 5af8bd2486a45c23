package httputil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// validIDPattern matches provider content IDs: alphanumeric path segments with
	// hyphens and slashes, percent-encoded where the site encodes non-ASCII slugs.
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9/_.%-]+$`)

	// numericIDPattern matches purely numeric IDs.
	numericIDPattern = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateURL checks that a URL is well-formed and uses HTTP or HTTPS.
// Plain HTTP is allowed because several media mirrors only serve it.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("only HTTP(S) URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateID checks that a provider content ID contains only safe characters.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if len(id) > 256 {
		return fmt.Errorf("ID too long: %d characters", len(id))
	}
	if !validIDPattern.MatchString(id) {
		return fmt.Errorf("ID contains invalid characters: %q", id)
	}
	decoded, err := url.PathUnescape(id)
	if err != nil {
		return fmt.Errorf("ID has a malformed escape: %q", id)
	}
	if strings.Contains(decoded, "..") {
		return fmt.Errorf("ID contains path traversal: %q", id)
	}
	if strings.ContainsAny(decoded, "?#\\\x00") {
		return fmt.Errorf("ID contains encoded URL syntax: %q", id)
	}
	return nil
}

// ValidateNumericID checks that an ID is purely numeric.
func ValidateNumericID(id string) error {
	if id == "" {
		return fmt.Errorf("numeric ID cannot be empty")
	}
	if !numericIDPattern.MatchString(id) {
		return fmt.Errorf("expected numeric ID, got %q", id)
	}
	return nil
}

// Redact removes any user:password part from a URL so it can be logged.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	u.User = nil
	return u.String()
}

// ContainsAny reports whether s contains one of the non-empty needles.
func ContainsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

var filenameReplacer = strings.NewReplacer(
	"..", "_",
	"/", "_",
	"\\", "_",
	"\x00", "",
	":", " -",
	"*", "_",
	"?", "",
	"\"", "'",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeFilename turns a display title such as "Season 1: Pilot" into a
// single safe path element.
func SanitizeFilename(name string) string {
	name = strings.Join(strings.Fields(filenameReplacer.Replace(name)), " ")
	if name == "" || name == "." || name == "_" {
		return "untitled"
	}
	return name
}

// SafeDownloadPath joins dir and a sanitized filename, failing if the
// result would leave dir.
func SafeDownloadPath(dir, filename string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	full := filepath.Join(absDir, SanitizeFilename(filename))
	if !strings.HasPrefix(full, absDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", full, absDir)
	}
	return full, nil
}
