// Package config parses the INI-like external configuration that shapes a
// conversion: ruleset bindings, proxy-group declarations and feature flags.
//
// The grammar is line-oriented key=value. Malformed lines degrade: a bad
// group declaration is discarded (and logged), it never aborts the request.
package config

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/subweave/internal/model"
)

const (
	// DefaultTestURL and DefaultIntervalSec are injected into url-test and
	// fallback groups that do not declare their own probe.
	DefaultTestURL     = "http://www.gstatic.com/generate_204"
	DefaultIntervalSec = 300
)

// ParseConfig parses one external config body. It never fails as a whole:
// unrecognized keys and malformed declarations are skipped.
func ParseConfig(text string) *model.ParsedConfig {
	cfg := &model.ParsedConfig{}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			// Section headers carry no information the grammar needs.
			continue
		}

		key, value, has := strings.Cut(line, "=")
		if !has {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "ruleset", "surge_ruleset":
			if rs, ok := parseRulesetLine(value); ok {
				cfg.Rulesets = append(cfg.Rulesets, rs)
			}
		case "custom_proxy_group":
			if g, ok := parseGroupLine(value); ok {
				cfg.Groups = append(cfg.Groups, g)
			}
		case "enable_rule_generator":
			cfg.EnableRuleGenerator = parseBool(value)
		case "overwrite_original_rules":
			cfg.OverwriteOriginalRules = parseBool(value)
		case "add_emoji":
			cfg.AddEmoji = parseBool(value)
		case "remove_old_emoji":
			cfg.RemoveOldEmoji = parseBool(value)
		case "include_remarks":
			if value != "" {
				cfg.Include = append(cfg.Include, value)
			}
		case "exclude_remarks":
			if value != "" {
				cfg.Exclude = append(cfg.Exclude, value)
			}
		case "rename", "rename_node":
			if old, new_, has := strings.Cut(value, "@"); has && old != "" {
				cfg.Rename = append(cfg.Rename, model.NamePair{Old: old, New: new_})
			}
		}
	}

	return cfg
}

// parseRulesetLine splits "group,source" on the first comma only: the source
// itself may contain commas when it is an inline rule.
func parseRulesetLine(value string) (model.RulesetConfig, bool) {
	group, source, has := strings.Cut(value, ",")
	group = strings.TrimSpace(group)
	source = strings.TrimSpace(source)
	if !has || group == "" || source == "" {
		return model.RulesetConfig{}, false
	}
	return model.RulesetConfig{Group: group, Source: source}, true
}

// parseGroupLine parses a backtick-delimited group declaration:
//
//	name`kind`token`token...`url`interval[,,tolerance]
//
// Tail fields are classified positionally/heuristically via ClassifyToken;
// membership tokens keep declaration order.
func parseGroupLine(value string) (model.GroupConfig, bool) {
	fields := strings.Split(value, "`")
	if len(fields) < 2 {
		return model.GroupConfig{}, false
	}
	name := strings.TrimSpace(fields[0])
	kind, ok := parseGroupKind(fields[1])
	if name == "" {
		return model.GroupConfig{}, false
	}
	if !ok {
		logrus.WithFields(logrus.Fields{"group": name, "kind": fields[1]}).
			Warn("未知的策略组类型，丢弃该组")
		return model.GroupConfig{}, false
	}

	g := model.GroupConfig{Raw: value, Name: name, Kind: kind}
	for _, tok := range fields[2:] {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		switch ClassifyToken(tok) {
		case TokenProbeURL:
			g.TestURL = tok
		case TokenInterval:
			applyIntervalToken(&g, tok)
		case TokenStrategy:
			g.Strategy = tok
		default:
			g.Tokens = append(g.Tokens, tok)
		}
	}

	if kind == model.GroupURLTest || kind == model.GroupFallback {
		if g.TestURL == "" {
			g.TestURL = DefaultTestURL
		}
		if g.IntervalSec == 0 {
			g.IntervalSec = DefaultIntervalSec
		}
	}

	return g, true
}

// parseGroupKind maps the declared kind onto the closed set. A few dialect
// spellings alias onto the same kind.
func parseGroupKind(s string) (model.GroupKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "select":
		return model.GroupSelect, true
	case "url-test", "urltest":
		return model.GroupURLTest, true
	case "fallback":
		return model.GroupFallback, true
	case "load-balance", "loadbalance":
		return model.GroupLoadBalance, true
	case "relay":
		return model.GroupRelay, true
	default:
		return "", false
	}
}

// applyIntervalToken parses "interval[,,tolerance]". The second comma
// segment is reserved (a timeout in some dialects) and ignored; tolerance
// sits in the third.
func applyIntervalToken(g *model.GroupConfig, tok string) {
	segs := strings.Split(tok, ",")
	if n, err := strconv.Atoi(strings.TrimSpace(segs[0])); err == nil && n > 0 {
		g.IntervalSec = n
	}
	if len(segs) >= 3 {
		if n, err := strconv.Atoi(strings.TrimSpace(segs[2])); err == nil && n > 0 {
			g.ToleranceMS = n
			g.HasTolerance = true
		}
	}
}

func parseBool(s string) bool {
	return s == "true" || s == "1"
}
