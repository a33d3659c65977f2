package sub

import (
	"github.com/dlclark/regexp2"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/subweave/internal/model"
)

// namePattern is the explicit outcome of compiling a user-supplied filter:
// either a usable regex or a pass-through. Keeping the fallback visible as a
// value (instead of swallowing the compile error inline) lets tests exercise
// the degrade path directly.
type namePattern struct {
	re *regexp2.Regexp
}

// compilePattern never fails: an invalid pattern degrades to a pass-through
// (matches nothing for include/exclude purposes) and is logged once.
func compilePattern(expr string) namePattern {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		logrus.WithField("pattern", expr).Warn("过滤正则无效，忽略该条")
		return namePattern{}
	}
	return namePattern{re: re}
}

func (p namePattern) usable() bool { return p.re != nil }

func (p namePattern) match(name string) bool {
	if p.re == nil {
		return false
	}
	ok, err := p.re.MatchString(name)
	if err != nil {
		return false
	}
	return ok
}

// FilterOptions carries the optional include/exclude display-name patterns.
type FilterOptions struct {
	Include []string
	Exclude []string
}

// FilterNodes applies include then exclude regex filters over display names.
// A side whose every pattern failed to compile degrades to a no-op.
func FilterNodes(nodes []model.Proxy, opt FilterOptions) []model.Proxy {
	include := compileUsable(opt.Include)
	exclude := compileUsable(opt.Exclude)
	if len(include) == 0 && len(exclude) == 0 {
		return nodes
	}

	out := make([]model.Proxy, 0, len(nodes))
	for _, n := range nodes {
		name := n.DisplayName()
		if len(include) > 0 && !matchAny(include, name) {
			continue
		}
		if matchAny(exclude, name) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func compileUsable(exprs []string) []namePattern {
	var out []namePattern
	for _, e := range exprs {
		if e == "" {
			continue
		}
		if p := compilePattern(e); p.usable() {
			out = append(out, p)
		}
	}
	return out
}

func matchAny(patterns []namePattern, name string) bool {
	for _, p := range patterns {
		if p.match(name) {
			return true
		}
	}
	return false
}

// DeduplicateNodes removes duplicate endpoints keyed by host:port.
// First occurrence wins; input order is preserved.
func DeduplicateNodes(nodes []model.Proxy) []model.Proxy {
	return lo.UniqBy(nodes, model.Proxy.EndpointKey)
}
