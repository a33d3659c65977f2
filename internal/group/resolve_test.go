package group

import (
	"testing"

	"github.com/John-Robertt/subweave/internal/model"
)

func nodes(names ...string) []model.Proxy {
	out := make([]model.Proxy, 0, len(names))
	for i, n := range names {
		out = append(out, model.Proxy{Type: model.TypeSS, Name: n, Server: "s", Port: i + 1, Cipher: "c", Password: "p"})
	}
	return out
}

func sel(name string, tokens ...string) model.GroupConfig {
	return model.GroupConfig{Name: name, Kind: model.GroupSelect, Tokens: tokens}
}

func TestResolve_WildcardThenSentinel(t *testing.T) {
	got := Resolve([]model.GroupConfig{sel("G", ".*", "[]DIRECT")}, nodes("A", "B"))
	if len(got) != 1 {
		t.Fatalf("len=%d, want=1", len(got))
	}
	want := []string{"A", "B", "DIRECT"}
	if len(got[0].Members) != len(want) {
		t.Fatalf("members=%v, want=%v", got[0].Members, want)
	}
	for i := range want {
		if got[0].Members[i] != want[i] {
			t.Fatalf("member[%d]=%q, want=%q", i, got[0].Members[i], want[i])
		}
	}
}

func TestResolve_LiteralOrderAndDedup(t *testing.T) {
	got := Resolve([]model.GroupConfig{sel("G", "[]B", "[]A", "[]B", "[]DIRECT")}, nodes("A", "B"))
	want := []string{"B", "A", "DIRECT"}
	if len(got) != 1 || len(got[0].Members) != len(want) {
		t.Fatalf("members=%v, want=%v", got[0].Members, want)
	}
	for i := range want {
		if got[0].Members[i] != want[i] {
			t.Fatalf("member[%d]=%q, want=%q", i, got[0].Members[i], want[i])
		}
	}
}

func TestResolve_RegexCaseInsensitive(t *testing.T) {
	got := Resolve([]model.GroupConfig{sel("G", "(hk|sg)")}, nodes("HK 01", "SG 01", "JP 01"))
	if len(got) != 1 {
		t.Fatalf("len=%d, want=1", len(got))
	}
	want := []string{"HK 01", "SG 01"}
	if len(got[0].Members) != len(want) {
		t.Fatalf("members=%v, want=%v", got[0].Members, want)
	}
}

func TestResolve_NegatedRegex(t *testing.T) {
	got := Resolve([]model.GroupConfig{sel("G", "!!HK")}, nodes("HK 01", "JP 01", "SG 01"))
	want := []string{"JP 01", "SG 01"}
	if len(got) != 1 || len(got[0].Members) != len(want) {
		t.Fatalf("members=%v, want=%v", got[0].Members, want)
	}
}

func TestResolve_ForwardGroupReference(t *testing.T) {
	cfgs := []model.GroupConfig{
		sel("First", "[]Second", "[]A"),
		sel("Second", ".*"),
	}
	got := Resolve(cfgs, nodes("A"))
	if len(got) != 2 {
		t.Fatalf("len=%d, want=2", len(got))
	}
	if got[0].Members[0] != "Second" {
		t.Fatalf("member=%q, want=Second (forward reference by name)", got[0].Members[0])
	}
}

func TestResolve_UnknownLiteralDropped(t *testing.T) {
	got := Resolve([]model.GroupConfig{sel("G", "[]NoSuchNode", "[]A")}, nodes("A"))
	if len(got) != 1 || len(got[0].Members) != 1 || got[0].Members[0] != "A" {
		t.Fatalf("members=%v, want=[A]", got[0].Members)
	}
}

func TestResolve_URLTestEmptyFallsBackToAllNodes(t *testing.T) {
	cfg := model.GroupConfig{Name: "Auto", Kind: model.GroupURLTest, Tokens: []string{"NOMATCH999x"}}
	got := Resolve([]model.GroupConfig{cfg}, nodes("A", "B"))
	if len(got) != 1 {
		t.Fatalf("len=%d, want=1", len(got))
	}
	if len(got[0].Members) != 2 {
		t.Fatalf("members=%v, want all nodes", got[0].Members)
	}
}

func TestResolve_EmptySelectGroupDropped(t *testing.T) {
	got := Resolve([]model.GroupConfig{sel("G", "[]NoSuchNode")}, nodes("A"))
	if len(got) != 0 {
		t.Fatalf("len=%d, want=0 (empty group dropped)", len(got))
	}
}

func TestResolve_DeclarationOrderPreserved(t *testing.T) {
	cfgs := []model.GroupConfig{sel("Z", ".*"), sel("A", ".*"), sel("M", ".*")}
	got := Resolve(cfgs, nodes("n"))
	if len(got) != 3 {
		t.Fatalf("len=%d, want=3", len(got))
	}
	for i, want := range []string{"Z", "A", "M"} {
		if got[i].Name != want {
			t.Fatalf("group[%d]=%q, want=%q", i, got[i].Name, want)
		}
	}
}

func TestResolve_InvalidRegexTokenNoOp(t *testing.T) {
	got := Resolve([]model.GroupConfig{sel("G", "(broken", "[]A")}, nodes("A"))
	if len(got) != 1 || len(got[0].Members) != 1 || got[0].Members[0] != "A" {
		t.Fatalf("members=%v, want=[A]", got[0].Members)
	}
}
