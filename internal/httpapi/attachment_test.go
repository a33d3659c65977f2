package httpapi

import (
	"strings"
	"testing"

	"github.com/John-Robertt/subweave/internal/render"
)

func TestOutputFileName(t *testing.T) {
	cases := []struct {
		name string
		req  convertRequest
		want string
	}{
		{"no filename means inline", convertRequest{Target: render.TargetClash}, ""},
		{"extension appended for clash", convertRequest{Target: render.TargetClash, FileName: "my"}, "my.yaml"},
		{"extension appended for mixed", convertRequest{Target: render.TargetMixed, FileName: "my"}, "my.txt"},
		{"explicit extension kept", convertRequest{Target: render.TargetClash, FileName: "my.conf"}, "my.conf"},
	}
	for _, c := range cases {
		got, err := outputFileName(c.req)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: got=%q, want=%q", c.name, got, c.want)
		}
	}
}

func TestOutputFileName_Rejects(t *testing.T) {
	bad := []string{"a/b", "a\\b", "a\nb", strings.Repeat("x", 201)}
	for _, name := range bad {
		if _, err := outputFileName(convertRequest{Target: render.TargetClash, FileName: name}); err == nil {
			t.Fatalf("%q: expected error", name)
		}
	}
}

func TestContentDispositionAttachment(t *testing.T) {
	got := contentDispositionAttachment("配置.yaml")
	if !strings.HasPrefix(got, `attachment; filename="配置.yaml"`) {
		t.Fatalf("got=%q", got)
	}
	if !strings.Contains(got, "filename*=UTF-8''%E9%85%8D%E7%BD%AE.yaml") {
		t.Fatalf("missing RFC 5987 form: %q", got)
	}
}
