// Package render turns the compiled node/group/rule sets into the requested
// output document.
package render

import (
	"fmt"

	"github.com/John-Robertt/subweave/internal/model"
)

// Target selects the output document format.
type Target string

const (
	// TargetClash is the plain Clash YAML document. SSR nodes are not
	// expressible there and drop out of the proxy list.
	TargetClash Target = "clash"
	// TargetClashR is the ClashR variant of the YAML document, which keeps
	// SSR nodes.
	TargetClashR Target = "clashr"
	// TargetMixed is a base64-encoded bundle of share links, one per line.
	// Groups and rules do not apply.
	TargetMixed Target = "mixed"
)

// ParseTarget maps the request's target parameter onto a Target.
func ParseTarget(s string) (Target, bool) {
	switch s {
	case "clash":
		return TargetClash, true
	case "clashr":
		return TargetClashR, true
	case "mixed", "v2ray", "sub":
		return TargetMixed, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type the target's body should be served with.
func (t Target) ContentType() string {
	switch t {
	case TargetMixed:
		return "text/plain; charset=utf-8"
	default:
		return "text/yaml; charset=utf-8"
	}
}

// Options carries per-request rendering knobs. The tri-state pointers force
// the matching per-node flag when non-nil and leave the node's own value
// alone when nil.
type Options struct {
	AppendProxyType bool
	AddEmoji        bool
	RemoveOldEmoji  bool
	Rename          []model.NamePair

	UDP            *bool
	TFO            *bool
	SkipCertVerify *bool
}

// Input is the compiled material one conversion produced.
type Input struct {
	Nodes  []model.Proxy
	Groups []model.ResolvedGroup
	Rules  []model.Rule
}

type RenderError struct {
	AppError model.AppError
	Cause    error
}

func (e *RenderError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// Generate renders the output document for the target.
func Generate(target Target, in Input, opts Options) (string, error) {
	switch target {
	case TargetClash, TargetClashR:
		return generateClash(target, in, opts)
	case TargetMixed:
		return generateMixed(in, opts)
	default:
		return "", &RenderError{
			AppError: model.AppError{
				Code:    "UNSUPPORTED_TARGET",
				Message: fmt.Sprintf("不支持的 target：%s", target),
				Stage:   "render",
			},
		}
	}
}

// applyFlagOverrides returns a copy of p with the request-level tri-state
// flags forced where set.
func applyFlagOverrides(p model.Proxy, opts Options) model.Proxy {
	if opts.UDP != nil {
		v := *opts.UDP
		p.UDP = &v
	}
	if opts.TFO != nil {
		v := *opts.TFO
		p.TFO = &v
	}
	if opts.SkipCertVerify != nil {
		v := *opts.SkipCertVerify
		p.SkipCertVerify = &v
	}
	return p
}
