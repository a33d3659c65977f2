// Package group expands proxy-group declarations against a concrete node
// list into ordered, deduplicated membership.
package group

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/John-Robertt/subweave/internal/config"
	"github.com/John-Robertt/subweave/internal/model"
)

// Resolve walks each declared group's membership tokens in declaration
// order, expanding tokens and appending while suppressing duplicates
// (first occurrence wins). Forward references to later groups are allowed by
// name; no cycle detection is attempted. A url-test/fallback group that
// expands empty falls back to every node; a group still empty after the
// fallback is dropped. Output preserves declaration order.
func Resolve(groups []model.GroupConfig, nodes []model.Proxy) []model.ResolvedGroup {
	nodeNames := make([]string, 0, len(nodes))
	nodeSet := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		name := n.DisplayName()
		nodeNames = append(nodeNames, name)
		nodeSet[name] = struct{}{}
	}
	groupSet := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		groupSet[g.Name] = struct{}{}
	}

	out := make([]model.ResolvedGroup, 0, len(groups))
	for _, g := range groups {
		members := expandTokens(g.Tokens, nodeNames, nodeSet, groupSet)

		if len(members) == 0 && (g.Kind == model.GroupURLTest || g.Kind == model.GroupFallback) {
			members = append(members, nodeNames...)
		}
		if len(members) == 0 {
			continue
		}

		out = append(out, model.ResolvedGroup{
			Name:         g.Name,
			Kind:         g.Kind,
			Members:      members,
			TestURL:      g.TestURL,
			IntervalSec:  g.IntervalSec,
			ToleranceMS:  g.ToleranceMS,
			HasTolerance: g.HasTolerance,
			Strategy:     g.Strategy,
		})
	}
	return out
}

func expandTokens(tokens []string, nodeNames []string, nodeSet, groupSet map[string]struct{}) []string {
	var members []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		members = append(members, name)
	}

	for _, tok := range tokens {
		switch config.ClassifyToken(tok) {
		case config.TokenLiteral:
			name := strings.TrimPrefix(tok, "[]")
			if name == "" {
				continue
			}
			if isSentinel(name) {
				add(name)
				continue
			}
			if _, ok := nodeSet[name]; ok {
				add(name)
				continue
			}
			if _, ok := groupSet[name]; ok {
				add(name)
			}
			// Matching neither a node nor a group: dropped silently.
		case config.TokenAll:
			for _, n := range nodeNames {
				add(n)
			}
		case config.TokenNegation:
			re := compileGroupRegex(strings.TrimPrefix(tok, "!!"))
			if re == nil {
				continue
			}
			for _, n := range nodeNames {
				if !matchName(re, n) {
					add(n)
				}
			}
		case config.TokenRegex:
			re := compileGroupRegex(tok)
			if re == nil {
				continue
			}
			for _, n := range nodeNames {
				if matchName(re, n) {
					add(n)
				}
			}
		case config.TokenPlain:
			if _, ok := nodeSet[tok]; ok {
				add(tok)
				continue
			}
			if _, ok := groupSet[tok]; ok {
				add(tok)
			}
		}
	}
	return members
}

func isSentinel(name string) bool {
	return name == "DIRECT" || name == "REJECT"
}

// compileGroupRegex compiles case-insensitively; an invalid expression
// degrades the token to a no-op rather than failing the group.
func compileGroupRegex(expr string) *regexp2.Regexp {
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase)
	if err != nil {
		return nil
	}
	return re
}

func matchName(re *regexp2.Regexp, name string) bool {
	ok, err := re.MatchString(name)
	if err != nil {
		return false
	}
	return ok
}
