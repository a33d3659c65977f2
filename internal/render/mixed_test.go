package render

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/John-Robertt/subweave/internal/link"
	"github.com/John-Robertt/subweave/internal/model"
)

func TestGenerateMixed_RoundTrip(t *testing.T) {
	in := Input{Nodes: []model.Proxy{
		ssNode("HK 01"),
		{
			Type: model.TypeTrojan, Name: "TJ", Server: "t.example.com", Port: 443,
			Password: "secret", SNI: "t.example.com", TLS: true,
		},
	}}
	body, err := Generate(TargetMixed, in, Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		t.Fatalf("output is not standard base64: %v", err)
	}
	lines := strings.Split(string(raw), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%d, want=2", len(lines))
	}
	for _, l := range lines {
		p, ok := link.Parse(l)
		if !ok {
			t.Fatalf("line does not parse back: %q", l)
		}
		if !p.Valid() {
			t.Fatalf("round-tripped node invalid: %+v", p)
		}
	}
}

func TestGenerateMixed_NamesDecorated(t *testing.T) {
	in := Input{Nodes: []model.Proxy{ssNode("香港 01")}}
	body, err := Generate(TargetMixed, in, Options{AddEmoji: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(body)
	p, ok := link.Parse(strings.TrimSpace(string(raw)))
	if !ok {
		t.Fatalf("parse back failed: %q", raw)
	}
	if p.Name != "🇭🇰 香港 01" {
		t.Fatalf("name=%q, want decorated", p.Name)
	}
}

func TestGenerateMixed_IgnoresGroupsAndRules(t *testing.T) {
	in := Input{
		Nodes:  []model.Proxy{ssNode("A")},
		Groups: []model.ResolvedGroup{{Name: "G", Kind: model.GroupSelect, Members: []string{"A"}}},
		Rules:  []model.Rule{{Type: "MATCH", Action: "G"}},
	}
	body, err := Generate(TargetMixed, in, Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(body)
	if strings.Contains(string(raw), "MATCH") || strings.Contains(string(raw), "proxy-groups") {
		t.Fatalf("mixed output leaked config material: %q", raw)
	}
}
