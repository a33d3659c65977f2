package model

// Rule is one line of the target rule grammar.
type Rule struct {
	Type      string // e.g. "DOMAIN-SUFFIX", "IP-CIDR", "MATCH"
	Value     string // domain/suffix/keyword/cidr/cc/port; empty for MATCH
	Action    string // DIRECT/REJECT/group name
	NoResolve bool   // only meaningful for IP-CIDR/IP-CIDR6
}

// String renders the rule in Clash classical syntax.
func (r Rule) String() string {
	if r.Type == "MATCH" {
		return "MATCH," + r.Action
	}
	s := r.Type + "," + r.Value + "," + r.Action
	if r.NoResolve {
		s += ",no-resolve"
	}
	return s
}
