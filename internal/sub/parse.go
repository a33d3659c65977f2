// Package sub turns raw subscription text into a node list: it detects the
// subscription encoding, dispatches link lines to the protocol parsers and
// applies name filtering plus endpoint dedup.
package sub

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/John-Robertt/subweave/internal/link"
	"github.com/John-Robertt/subweave/internal/model"
)

// ParseSubscription decodes one subscription body. Detection order:
//
//  1. a Clash proxies document (structural marker + at least one mapped node)
//  2. a whole-body base64 blob (base64 charset, no "://" delimiter)
//  3. newline-delimited share links
//
// Unparsable lines are dropped; the result may be empty. The caller decides
// whether an empty result is a user-visible failure.
func ParseSubscription(content string) []model.Proxy {
	s := strings.TrimPrefix(content, "\uFEFF")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if looksLikeClashDocument(s) {
		if nodes := parseClashDocument(s); len(nodes) > 0 {
			return nodes
		}
	}

	if !strings.Contains(s, "://") && isBase64Blob(s) {
		if decoded, ok := decodeBlob(s); ok {
			s = strings.TrimSpace(strings.TrimPrefix(decoded, "\uFEFF"))
		}
	}

	var out []model.Proxy
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if p, ok := link.Parse(line); ok {
			out = append(out, p)
		}
	}
	return out
}

func isBase64Blob(s string) bool {
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

func decodeBlob(s string) (string, bool) {
	var compact strings.Builder
	compact.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
		default:
			compact.WriteByte(s[i])
		}
	}
	c := compact.String()

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		b, err := enc.DecodeString(c)
		if err == nil && utf8.Valid(b) {
			return string(b), true
		}
	}
	return "", false
}
