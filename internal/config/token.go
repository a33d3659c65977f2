package config

import "strings"

// TokenKind tags one field of a proxy-group declaration tail. Classification
// is heuristic character-class sniffing; the resolver relies on the exact
// same tagging, so it lives here, once.
type TokenKind int

const (
	// TokenLiteral is an explicit membership reference: "[]NAME".
	TokenLiteral TokenKind = iota
	// TokenAll is the blanket wildcard ".*" meaning every current node.
	TokenAll
	// TokenNegation is a negated regex filter: "!!expr".
	TokenNegation
	// TokenProbeURL is the latency-probe URL.
	TokenProbeURL
	// TokenInterval is "interval[,,tolerance]"; the middle comma segment is
	// reserved and ignored.
	TokenInterval
	// TokenStrategy is a load-balance strategy word.
	TokenStrategy
	// TokenRegex is a regex filter over node names.
	TokenRegex
	// TokenPlain is a bare name, matched literally against nodes and groups.
	TokenPlain
)

const (
	literalMarker  = "[]"
	negationMarker = "!!"
	wildcardAll    = ".*"
)

// regexMeta is the character set that promotes a bare field to a regex
// filter. Deliberately conservative: a plain node name must not be mistaken
// for a pattern.
const regexMeta = `^$.*+?()[]{}|\`

// ClassifyToken applies the fixed predicate precedence. The order is part of
// the grammar: an http:// probe URL contains dots and slashes but must never
// be classified as a regex, and "[]..." wins over everything.
func ClassifyToken(tok string) TokenKind {
	switch {
	case strings.HasPrefix(tok, literalMarker):
		return TokenLiteral
	case tok == wildcardAll:
		return TokenAll
	case strings.HasPrefix(tok, negationMarker):
		return TokenNegation
	case strings.HasPrefix(tok, "http://") || strings.HasPrefix(tok, "https://"):
		return TokenProbeURL
	case len(tok) > 0 && tok[0] >= '0' && tok[0] <= '9':
		return TokenInterval
	case tok == "consistent-hashing" || tok == "round-robin":
		return TokenStrategy
	case strings.ContainsAny(tok, regexMeta):
		return TokenRegex
	default:
		return TokenPlain
	}
}
