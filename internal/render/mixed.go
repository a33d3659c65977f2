package render

import (
	"encoding/base64"
	"strings"

	"github.com/John-Robertt/subweave/internal/link"
	"github.com/John-Robertt/subweave/internal/model"
)

// generateMixed emits the node list as share links, one per line, wrapped in
// standard base64. Groups and rules have no representation here. Nodes whose
// type has no link form drop silently.
func generateMixed(in Input, opts Options) (string, error) {
	kept := make([]model.Proxy, 0, len(in.Nodes))
	for _, p := range in.Nodes {
		kept = append(kept, applyFlagOverrides(p, opts))
	}
	names := prepareNames(kept, opts)

	lines := make([]string, 0, len(kept))
	for i, p := range kept {
		p.Name = names[i]
		if uri, ok := link.Generate(p); ok {
			lines = append(lines, uri)
		}
	}
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(lines, "\n"))), nil
}
