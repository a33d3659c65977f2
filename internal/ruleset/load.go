// Package ruleset fetches remote rule lists (or expands inline rules) and
// translates them into the target rule grammar.
package ruleset

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/subweave/internal/model"
)

// upstreamRuleBase anchors the "rules/..." relative-source convention used
// by widely shared configs.
const upstreamRuleBase = "https://raw.githubusercontent.com/ACL4SSR/ACL4SSR/master/"

// Fetcher retrieves one remote rule list body.
type Fetcher func(ctx context.Context, url string) (string, error)

// Loader turns ruleset declarations into translated rules. Cache is
// consulted per URL; a fetch failure logs and contributes zero rules.
type Loader struct {
	Fetch Fetcher
	Cache Cache
}

// LoadAll processes every ruleset declaration in order. baseConfigURL is the
// URL of the external config itself; relative sources resolve against it.
func (l *Loader) LoadAll(ctx context.Context, rulesets []model.RulesetConfig, baseConfigURL string) []model.Rule {
	var out []model.Rule
	for _, rs := range rulesets {
		if strings.HasPrefix(rs.Source, model.InlineRulePrefix) {
			inline := strings.TrimPrefix(rs.Source, model.InlineRulePrefix)
			if r, ok := TranslateLine(inline, rs.Group); ok {
				out = append(out, r)
			}
			continue
		}

		target := resolveSource(rs.Source, baseConfigURL)
		body, err := l.fetchCached(ctx, target)
		if err != nil {
			logrus.WithFields(logrus.Fields{"url": target, "group": rs.Group}).
				WithError(err).Warn("规则集拉取失败，跳过")
			continue
		}
		out = append(out, TranslateBody(body, rs.Group)...)
	}
	return out
}

func (l *Loader) fetchCached(ctx context.Context, target string) (string, error) {
	if l.Cache != nil {
		if body, ok := l.Cache.Get(target); ok {
			return body, nil
		}
	}
	body, err := l.Fetch(ctx, target)
	if err != nil {
		return "", err
	}
	if l.Cache != nil {
		l.Cache.Set(target, body)
	}
	return body, nil
}

// resolveSource turns a ruleset source into an absolute URL: absolute
// sources pass through, the "rules/..." convention maps to the fixed
// upstream base, anything else resolves against the config's own URL.
func resolveSource(source, baseConfigURL string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	if strings.HasPrefix(source, "rules/") {
		return upstreamRuleBase + source
	}
	base, err := url.Parse(baseConfigURL)
	if err != nil || base.Scheme == "" {
		return source
	}
	ref, err := url.Parse(source)
	if err != nil {
		return source
	}
	return base.ResolveReference(ref).String()
}

// catchAllHints is the substring heuristic for finding the group a
// synthesized default-route rule should point at. Approximate by nature:
// when several groups match, the first declared wins; when none do, the
// first select group, then DIRECT.
var catchAllHints = []string{"final", "match", "other", "漏网", "兜底", "其他"}

// EnsureMatchRule guarantees exactly one MATCH rule, positioned last.
func EnsureMatchRule(rules []model.Rule, groups []model.ResolvedGroup) []model.Rule {
	kept := make([]model.Rule, 0, len(rules)+1)
	var match *model.Rule
	for _, r := range rules {
		if r.Type == "MATCH" {
			if match == nil {
				m := r
				match = &m
			}
			continue
		}
		kept = append(kept, r)
	}
	if match == nil {
		match = &model.Rule{Type: "MATCH", Action: findCatchAllGroup(groups)}
	}
	return append(kept, *match)
}

func findCatchAllGroup(groups []model.ResolvedGroup) string {
	for _, g := range groups {
		lower := strings.ToLower(g.Name)
		for _, hint := range catchAllHints {
			if strings.Contains(lower, hint) {
				return g.Name
			}
		}
	}
	for _, g := range groups {
		if g.Kind == model.GroupSelect {
			return g.Name
		}
	}
	return "DIRECT"
}
