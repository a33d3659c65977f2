package ruleset

import (
	"strings"

	"github.com/John-Robertt/subweave/internal/model"
)

// ruleTypeMap is the fixed translation table from source rule types to the
// target grammar. Legacy types alias onto supported ones; USER-AGENT and
// URL-REGEX have no target equivalent and degrade to a keyword match.
var ruleTypeMap = map[string]string{
	"DOMAIN":         "DOMAIN",
	"HOST":           "DOMAIN",
	"DOMAIN-SUFFIX":  "DOMAIN-SUFFIX",
	"HOST-SUFFIX":    "DOMAIN-SUFFIX",
	"DOMAIN-KEYWORD": "DOMAIN-KEYWORD",
	"HOST-KEYWORD":   "DOMAIN-KEYWORD",
	"IP-CIDR":        "IP-CIDR",
	"IP-CIDR6":       "IP-CIDR6",
	"IP6-CIDR":       "IP-CIDR6",
	"GEOIP":          "GEOIP",
	"SRC-IP-CIDR":    "SRC-IP-CIDR",
	"DST-PORT":       "DST-PORT",
	"SRC-PORT":       "SRC-PORT",
	"PROCESS-NAME":   "PROCESS-NAME",
	"MATCH":          "MATCH",
	"FINAL":          "MATCH",
	"USER-AGENT":     "DOMAIN-KEYWORD",
	"URL-REGEX":      "DOMAIN-KEYWORD",
}

// TranslateBody translates one rule-list body, line by line, binding every
// produced rule to the ruleset's target group. Untranslatable lines drop.
func TranslateBody(body, group string) []model.Rule {
	var out []model.Rule
	for _, raw := range strings.Split(body, "\n") {
		if r, ok := TranslateLine(raw, group); ok {
			out = append(out, r)
		}
	}
	return out
}

// TranslateLine translates a single source rule line.
func TranslateLine(raw, group string) (model.Rule, bool) {
	line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//") {
		return model.Rule{}, false
	}
	if line == "payload:" {
		// Clash provider header.
		return model.Rule{}, false
	}

	// Unwrap one level of list-item syntax and surrounding quotes.
	line = strings.TrimSpace(strings.TrimPrefix(line, "- "))
	if len(line) >= 2 {
		if (line[0] == '\'' && line[len(line)-1] == '\'') || (line[0] == '"' && line[len(line)-1] == '"') {
			line = line[1 : len(line)-1]
		}
	}
	if line == "" {
		return model.Rule{}, false
	}

	if !strings.Contains(line, ",") {
		// A bare type keyword ("FINAL", "MATCH") is a complete rule; any
		// other mapped type needs a value and drops.
		if typ, ok := ruleTypeMap[strings.ToUpper(line)]; ok {
			if typ == "MATCH" {
				return model.Rule{Type: "MATCH", Action: group}, true
			}
			return model.Rule{}, false
		}
		if !looksLikeDomain(line) {
			return model.Rule{}, false
		}
		v := strings.TrimPrefix(strings.TrimPrefix(line, "+."), ".")
		return model.Rule{Type: "DOMAIN-SUFFIX", Value: v, Action: group}, true
	}

	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	typ, ok := ruleTypeMap[strings.ToUpper(parts[0])]
	if !ok {
		return model.Rule{}, false
	}
	if typ == "MATCH" {
		return model.Rule{Type: "MATCH", Action: group}, true
	}
	if len(parts) < 2 || parts[1] == "" {
		return model.Rule{}, false
	}
	value := parts[1]

	// "443/udp" style port values are not expressible in the target grammar.
	if (typ == "DST-PORT" || typ == "SRC-PORT") && strings.Contains(value, "/") {
		return model.Rule{}, false
	}

	r := model.Rule{Type: typ, Value: value, Action: group}
	if typ == "IP-CIDR" || typ == "IP-CIDR6" {
		if len(parts) > 2 {
			// The original line carried options: honor its own choice.
			r.NoResolve = containsFold(parts[2:], "no-resolve")
		} else {
			r.NoResolve = true
		}
	}
	return r, true
}

func containsFold(parts []string, want string) bool {
	for _, p := range parts {
		if strings.EqualFold(p, want) {
			return true
		}
	}
	return false
}

// looksLikeDomain is a cheap structural check for bare-domain lines as they
// appear in domain-list rulesets ("example.com", ".example.com",
// "+.example.com").
func looksLikeDomain(s string) bool {
	s = strings.TrimPrefix(s, "+.")
	s = strings.TrimPrefix(s, ".")
	if s == "" || !strings.Contains(s, ".") {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '.' || c == '*':
		default:
			return false
		}
	}
	return true
}
