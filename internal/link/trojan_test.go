package link

import (
	"testing"

	"github.com/John-Robertt/subweave/internal/model"
)

func TestParseTrojan_Basic(t *testing.T) {
	p, ok := ParseTrojan("trojan://password123@example.com:443?sni=sni.example.com&allowInsecure=1&tfo=1#TR")
	if !ok {
		t.Fatalf("parse failed")
	}
	if p.Type != model.TypeTrojan {
		t.Fatalf("type=%q, want=%q", p.Type, model.TypeTrojan)
	}
	if p.Password != "password123" || p.Server != "example.com" || p.Port != 443 {
		t.Fatalf("endpoint=%q@%q:%d", p.Password, p.Server, p.Port)
	}
	if p.SNI != "sni.example.com" {
		t.Fatalf("sni=%q, want=%q", p.SNI, "sni.example.com")
	}
	if p.SkipCertVerify == nil || !*p.SkipCertVerify {
		t.Fatalf("skip-cert-verify not set")
	}
	if p.TFO == nil || !*p.TFO {
		t.Fatalf("tfo not set")
	}
	if p.Name != "TR" {
		t.Fatalf("name=%q, want=%q", p.Name, "TR")
	}
}

func TestParseTrojan_PeerAlias(t *testing.T) {
	p, ok := ParseTrojan("trojan://pw@example.com:443?peer=sni.example.com")
	if !ok {
		t.Fatalf("parse failed")
	}
	if p.SNI != "sni.example.com" {
		t.Fatalf("sni=%q, want=%q", p.SNI, "sni.example.com")
	}
}

func TestParseTrojan_WSFlagAndType(t *testing.T) {
	// ws=1 carries its path in wspath, type=ws in path.
	p, ok := ParseTrojan("trojan://pw@example.com:443?ws=1&wspath=%2Fws")
	if !ok {
		t.Fatalf("parse failed")
	}
	if p.Network != "ws" || p.Path != "/ws" {
		t.Fatalf("network/path=%q/%q, want ws//ws", p.Network, p.Path)
	}

	p, ok = ParseTrojan("trojan://pw@example.com:443?type=ws&path=%2Fx&host=cdn.example.com")
	if !ok {
		t.Fatalf("parse failed")
	}
	if p.Network != "ws" || p.Path != "/x" || p.Host != "cdn.example.com" {
		t.Fatalf("network/path/host=%q/%q/%q", p.Network, p.Path, p.Host)
	}
}

func TestParseTrojan_MissingPassword(t *testing.T) {
	if _, ok := ParseTrojan("trojan://example.com:443"); ok {
		t.Fatalf("expected parse failure")
	}
}

func TestParseTrojan_BadPort(t *testing.T) {
	for _, l := range []string{
		"trojan://pw@example.com:0",
		"trojan://pw@example.com:65536",
		"trojan://pw@example.com:-1",
	} {
		if _, ok := ParseTrojan(l); ok {
			t.Fatalf("%q: expected parse failure", l)
		}
	}
}

func TestGenerateTrojan_RoundTrip(t *testing.T) {
	in := model.Proxy{
		Type:           model.TypeTrojan,
		Name:           "TR 01",
		Server:         "example.com",
		Port:           443,
		Password:       "p@ss word",
		SNI:            "sni.example.com",
		Network:        "ws",
		Path:           "/ws",
		Host:           "cdn.example.com",
		TLS:            true,
		SkipCertVerify: boolPtr(true),
	}
	out, ok := ParseTrojan(GenerateTrojan(in))
	if !ok {
		t.Fatalf("re-parse failed: %q", GenerateTrojan(in))
	}
	if out.Password != in.Password || out.Server != in.Server || out.Port != in.Port {
		t.Fatalf("endpoint mismatch: %+v", out)
	}
	if out.SNI != in.SNI || out.Network != in.Network || out.Path != in.Path || out.Host != in.Host {
		t.Fatalf("transport mismatch: %+v", out)
	}
	if out.SkipCertVerify == nil || !*out.SkipCertVerify {
		t.Fatalf("skip-cert-verify lost in round trip")
	}
}
