package utils

import (
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// StampLayout prefixes every stored upload name.
	StampLayout = "20060102150405"

	maxStemLen = 120
	maxExtLen  = 16
	emptyStem  = "upload"
)

// SecureFilename turns a client supplied filename into one that is safe to
// use as a single path element: unicode is folded to ASCII, path separators
// and whitespace become underscores and only [A-Za-z0-9_.-] survive.
// Leading and trailing dots and underscores are dropped from the stem.
func SecureFilename(name string) string {
	name = toASCII(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	stem = strings.Trim(clean(stem), "._")
	if len(stem) > maxStemLen {
		stem = strings.TrimRight(stem[:maxStemLen], "._")
	}
	if stem == "" {
		stem = emptyStem
	}

	ext = clean(strings.TrimPrefix(ext, "."))
	ext = strings.Trim(ext, "._")
	if len(ext) > maxExtLen {
		ext = ext[:maxExtLen]
	}
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

// StoredName builds "<YYYYMMDDHHMMSS>_<safe>" for t.
func StoredName(t time.Time, safe string) string {
	return t.Format(StampLayout) + "_" + safe
}

// WithSuffix inserts "_<suffix>" between the stem and extension of name.
func WithSuffix(name, suffix string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

// ValidStoredName reports whether name is a single, non-special path element.
func ValidStoredName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

func toASCII(s string) string {
	var sb strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r < unicode.MaxASCII {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// clean joins whitespace separated fields with "_" and drops every byte
// outside [A-Za-z0-9_.-].
func clean(s string) string {
	joined := strings.Join(strings.Fields(s), "_")
	var sb strings.Builder
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '_', c == '.', c == '-':
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
