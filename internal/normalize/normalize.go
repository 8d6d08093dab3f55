// Package normalize provides string canonicalization used by the grouping
// engine for title comparison and by the cache store for key generation.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Token normalizes a string token for matching:
// - trims Unicode whitespace + invisible edge characters
// - lowercases for case-insensitive comparisons
func Token(s string) string {
	return strings.ToLower(strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) ||
			r == '\u200B' || // Zero Width Space
			r == '\u200C' || // Zero Width Non-Joiner
			r == '\u200D' || // Zero Width Joiner
			r == '\uFEFF' // Zero Width Non-Breaking Space (BOM)
	}))
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining diacritical marks, e.g. "K\u014Dnosuba" -> "Konosuba".
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		return s
	}
	return out
}

var releaseTokens = []string{
	"1080p", "720p", "480p", "2160p", "4k", "hdr", "bluray", "bd", "web-dl",
	"webdl", "webrip", "hdtv", "x264", "x265", "hevc", "avc", "flac", "aac",
	"dual-audio", "dual", "audio", "subbed", "dubbed", "uncensored", "batch",
	"remux", "10bit", "8bit",
}

// StripReleaseTokens removes common release-scene tokens (resolution, codec,
// source) from a title candidate, leaving the bare series/movie name.
func StripReleaseTokens(s string) string {
	lower := strings.ToLower(s)
	for _, tok := range releaseTokens {
		lower = strings.ReplaceAll(lower, tok, " ")
	}
	return CollapseWhitespace(lower)
}

// CollapseWhitespace reduces runs of whitespace/separators to single spaces
// and trims the result.
func CollapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == '_'
	})
	return strings.TrimSpace(strings.Join(fields, " "))
}

// Title canonicalizes a title for fuzzy/grouping comparison: strip
// diacritics, lowercase, collapse whitespace and punctuation separators.
func Title(s string) string {
	return CollapseWhitespace(strings.ToLower(StripDiacritics(s)))
}

// Canonicalize builds the cache store's canonical request fingerprint:
// lowercase, diacritics-stripped, whitespace-collapsed, with params sorted
// by key and joined by a separator that cannot appear in the inputs.
func Canonicalize(category, mediaKind, query string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(Title(category))
	b.WriteByte('\x1f')
	b.WriteString(Title(mediaKind))
	b.WriteByte('\x1f')
	b.WriteString(Title(query))

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('\x1f')
		b.WriteString(Title(k))
		b.WriteByte('=')
		b.WriteString(Title(params[k]))
	}
	return b.String()
}

// HashKey returns the hex-encoded SHA-256 digest of a canonical key, used as
// the cache store's key_hash column.
func HashKey(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// CacheKey builds and hashes a cache key in one step.
func CacheKey(category, mediaKind, query string, params map[string]string) (canonical, hash string) {
	canonical = Canonicalize(category, mediaKind, query, params)
	return canonical, HashKey(canonical)
}

// DebugKey returns a short human-readable form of a cache key for log lines.
func DebugKey(category, mediaKind, query string) string {
	return fmt.Sprintf("%s/%s/%s", category, mediaKind, Title(query))
}
