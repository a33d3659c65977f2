// Package link decodes proxy share links into the uniform Proxy record and
// re-encodes records back into their native link form.
//
// Every parser recognizes only its own scheme and fails closed: malformed
// base64, a missing delimiter or an out-of-range port yields ok=false, never
// a panic or an error value that callers could forget to check.
package link

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/subweave/internal/model"
)

type parseFunc func(string) (model.Proxy, bool)

// schemeTable maps link prefixes to parsers. Order matters: the most
// specific prefix must win, so ssr:// sits before ss:// and the hy2://
// legacy alias sits next to its canonical scheme.
var schemeTable = []struct {
	prefix string
	parse  parseFunc
}{
	{"ssr://", ParseSSR},
	{"ss://", ParseSS},
	{"vmess://", ParseVMess},
	{"vmess+", ParseVMess}, // vmess+tls:// and friends
	{"trojan://", ParseTrojan},
	{"hysteria2://", ParseHysteria2},
	{"hy2://", ParseHysteria2},
}

// Parse dispatches one link line to the parser owning its scheme.
func Parse(line string) (model.Proxy, bool) {
	line = strings.TrimSpace(line)
	for _, s := range schemeTable {
		if strings.HasPrefix(line, s.prefix) {
			p, ok := s.parse(line)
			if !ok || !p.Valid() {
				return model.Proxy{}, false
			}
			return p, true
		}
	}
	return model.Proxy{}, false
}

// Generate re-encodes a record into its native link form.
func Generate(p model.Proxy) (string, bool) {
	switch p.Type {
	case model.TypeSS:
		return GenerateSS(p), true
	case model.TypeSSR:
		return GenerateSSR(p), true
	case model.TypeVMess:
		return GenerateVMess(p), true
	case model.TypeTrojan:
		return GenerateTrojan(p), true
	case model.TypeHysteria2:
		return GenerateHysteria2(p), true
	default:
		return "", false
	}
}

// splitFragment cuts "#name" off a link and URL-decodes the name.
// A fragment that fails to decode fails the whole link, never leaks a
// half-decoded name.
func splitFragment(s string) (rest, name string, ok bool) {
	rest, frag, has := strings.Cut(s, "#")
	if !has {
		return rest, "", true
	}
	decoded, err := url.PathUnescape(frag)
	if err != nil {
		return "", "", false
	}
	return rest, strings.TrimSpace(decoded), true
}

// splitHostPort validates host and the [1,65535] port range.
func splitHostPort(s string) (host string, port int, ok bool) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// Tolerate a bare "host:port" with an IPv6 host already bracketed
		// handled above; everything else is one colon split from the right.
		i := strings.LastIndexByte(s, ':')
		if i <= 0 {
			return "", 0, false
		}
		host, portStr = s[:i], s[i+1:]
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "", 0, false
	}
	p, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil || p < 1 || p > 65535 {
		return "", 0, false
	}
	return host, p, true
}

// parseQuery is a lenient query parser: pairs that fail to percent-decode
// are dropped, duplicate keys keep the first value.
func parseQuery(query string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		kRaw, vRaw, _ := strings.Cut(part, "=")
		k, err := url.QueryUnescape(kRaw)
		if err != nil || k == "" {
			continue
		}
		v, err := url.QueryUnescape(vRaw)
		if err != nil {
			continue
		}
		if _, dup := params[k]; !dup {
			params[k] = v
		}
	}
	return params
}

func boolParam(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func boolPtr(b bool) *bool { return &b }
