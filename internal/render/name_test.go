package render

import (
	"testing"

	"github.com/John-Robertt/subweave/internal/model"
)

func ssNode(name string) model.Proxy {
	return model.Proxy{Type: model.TypeSS, Name: name, Server: "example.com", Port: 8388, Cipher: "aes-256-gcm", Password: "pass"}
}

func TestPrepareNames_CollisionSuffix(t *testing.T) {
	nodes := []model.Proxy{ssNode("HK 01"), ssNode("HK 01"), ssNode("HK 01")}
	got := prepareNames(nodes, Options{})
	want := []string{"HK 01", "HK 01-2", "HK 01-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("name[%d]=%q, want=%q", i, got[i], want[i])
		}
	}
}

func TestPrepareNames_ReservedAndEquals(t *testing.T) {
	got := prepareNames([]model.Proxy{ssNode("DIRECT"), ssNode("a=b")}, Options{})
	if got[0] != "DIRECT-2" {
		t.Fatalf("name=%q, want=DIRECT-2", got[0])
	}
	if got[1] != "a-b" {
		t.Fatalf("name=%q, want=a-b", got[1])
	}
}

func TestPrepareNames_EmptyNameFallsBackToEndpoint(t *testing.T) {
	got := prepareNames([]model.Proxy{ssNode("")}, Options{})
	if got[0] != "example.com:8388" {
		t.Fatalf("name=%q, want=example.com:8388", got[0])
	}
}

func TestPrepareNames_AppendProxyType(t *testing.T) {
	got := prepareNames([]model.Proxy{ssNode("HK")}, Options{AppendProxyType: true})
	if got[0] != "HK [SS]" {
		t.Fatalf("name=%q, want=HK [SS]", got[0])
	}
}

func TestPrepareNames_Rename(t *testing.T) {
	opts := Options{Rename: []model.NamePair{{Old: "香港", New: "HK"}, {Old: "(broken", New: "x"}}}
	got := prepareNames([]model.Proxy{ssNode("香港 01")}, opts)
	if got[0] != "HK 01" {
		t.Fatalf("name=%q, want=HK 01", got[0])
	}
}

func TestAddEmoji(t *testing.T) {
	if got := addEmoji("HK 01"); got != "🇭🇰 HK 01" {
		t.Fatalf("got=%q", got)
	}
	if got := addEmoji("🇯🇵 东京"); got != "🇯🇵 东京" {
		t.Fatalf("already-decorated name changed: %q", got)
	}
	if got := addEmoji("Node 01"); got != "Node 01" {
		t.Fatalf("unmatched name changed: %q", got)
	}
	// Region codes inside ordinary words must not fire.
	for _, name := range []string{"Sweden 01", "Trust 01", "Spark 01"} {
		if got := addEmoji(name); got != name {
			t.Fatalf("code matched inside word: %q -> %q", name, got)
		}
	}
	if got := addEmoji("DE 01"); got != "🇩🇪 DE 01" {
		t.Fatalf("standalone code must still match: %q", got)
	}
}

func TestStripLeadingEmoji(t *testing.T) {
	if got := stripLeadingEmoji("🇭🇰 HK 01"); got != "HK 01" {
		t.Fatalf("got=%q", got)
	}
	if got := stripLeadingEmoji("HK 01"); got != "HK 01" {
		t.Fatalf("got=%q", got)
	}
}

func TestPrepareNames_EmojiRoundTrip(t *testing.T) {
	opts := Options{AddEmoji: true, RemoveOldEmoji: true}
	got := prepareNames([]model.Proxy{ssNode("🇺🇸 日本 01")}, opts)
	if got[0] != "🇯🇵 日本 01" {
		t.Fatalf("name=%q, want=🇯🇵 日本 01 (old flag stripped, correct one added)", got[0])
	}
}
