package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"
)

// KeyPrefix namespaces every result record
const KeyPrefix = "nutrition:v1:"

// maxTokenLen bounds the readable part of a key; longer inputs get a hash suffix
const maxTokenLen = 96

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

// Key derives a filesystem- and DB-safe cache key from normalized query parts
func Key(parts ...string) string {
	token := Sanitize(strings.Join(parts, " "))
	return KeyPrefix + token
}

// Sanitize lowercases s and collapses every run of characters outside
// [a-z0-9] into a single underscore. Long tokens are truncated and suffixed
// with a short content hash so distinct inputs stay distinct; so are tokens
// from non-ASCII input, whose letters the collapse would otherwise erase.
func Sanitize(s string) string {
	lower := strings.ToLower(s)
	token := strings.Trim(unsafeKeyChars.ReplaceAllString(lower, "_"), "_")

	switch {
	case len(token) > maxTokenLen:
		token = token[:maxTokenLen] + "_" + digest(lower)
	case !isASCII(lower) && token == "":
		token = digest(lower)
	case !isASCII(lower):
		token += "_" + digest(lower)
	case token == "":
		token = "empty"
	}
	return token
}

func digest(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])[:12]
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
