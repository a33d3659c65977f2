package model

// InlineRulePrefix marks a ruleset source that embeds its single rule line
// directly instead of pointing at a remote list.
const InlineRulePrefix = "[]"

// RulesetConfig binds one rule source to a target group.
type RulesetConfig struct {
	Group  string
	Source string // URL, relative path, or "[]..." inline rule
}

// NamePair is one rename substitution applied to display names at render
// time, before collision resolution.
type NamePair struct {
	Old string
	New string
}

// ParsedConfig is the aggregate a remote external config parses into.
// One short-lived value per conversion request.
type ParsedConfig struct {
	Rulesets []RulesetConfig
	Groups   []GroupConfig

	EnableRuleGenerator    bool
	OverwriteOriginalRules bool
	AddEmoji               bool
	RemoveOldEmoji         bool

	Include []string
	Exclude []string
	Rename  []NamePair
}
