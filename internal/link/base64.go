package link

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// decodeB64 tries the standard alphabet first, then URL-safe, then the
// unpadded variants. Subscription providers mix all four freely.
func decodeB64(s string) (string, bool) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil && utf8.Valid(b) {
			return string(b), true
		}
	}
	return "", false
}

// urlSafeDecode normalizes URL-safe characters and missing padding before a
// standard decode. Used for query values that carry url-safe base64.
func urlSafeDecode(s string) (string, bool) {
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func encodeURLSafe(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func encodeStd(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// isB64Charset reports whether s contains only base64 alphabet characters
// (both plain and URL-safe) and whitespace.
func isB64Charset(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+' || c == '/' || c == '-' || c == '_' || c == '=':
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
		default:
			return false
		}
	}
	return true
}
