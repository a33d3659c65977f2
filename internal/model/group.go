package model

// GroupKind is the closed set of proxy-group kinds the config grammar
// accepts. A declaration with any other kind is discarded whole.
type GroupKind string

const (
	GroupSelect      GroupKind = "select"
	GroupURLTest     GroupKind = "url-test"
	GroupFallback    GroupKind = "fallback"
	GroupLoadBalance GroupKind = "load-balance"
	GroupRelay       GroupKind = "relay"
)

func KnownGroupKind(k GroupKind) bool {
	switch k {
	case GroupSelect, GroupURLTest, GroupFallback, GroupLoadBalance, GroupRelay:
		return true
	default:
		return false
	}
}

// GroupConfig is one custom_proxy_group declaration. Tokens keep declaration
// order; that order is semantically significant for group composition.
type GroupConfig struct {
	Raw  string
	Name string
	Kind GroupKind

	// Membership tokens: []literal, ".*", !!negated-regex, plain names and
	// regex filters, exactly as written. Probe URL / interval / strategy
	// fields are pulled out during config parsing and never appear here.
	Tokens []string

	TestURL     string
	IntervalSec int

	ToleranceMS  int
	HasTolerance bool

	Strategy string // load-balance only
}

// ResolvedGroup is a GroupConfig with its tokens expanded into a concrete,
// deduplicated, order-preserving member list.
type ResolvedGroup struct {
	Name    string
	Kind    GroupKind
	Members []string

	TestURL     string
	IntervalSec int

	ToleranceMS  int
	HasTolerance bool

	Strategy string
}
