package link

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/subweave/internal/model"
)

// ParseHysteria2 decodes a hysteria2:// (alias hy2://) link:
//
//	hysteria2://password@host:port?sni=...&obfs=salamander&obfs-password=...#name
//	hysteria2://host:port?password=...          (no '@' form)
//
// insecure accepts both "1" and "true"; up/down are bandwidth hints in Mbps.
func ParseHysteria2(line string) (model.Proxy, bool) {
	rest := strings.TrimPrefix(line, "hysteria2://")
	rest = strings.TrimPrefix(rest, "hy2://")
	rest, name, ok := splitFragment(rest)
	if !ok || rest == "" {
		return model.Proxy{}, false
	}

	var query map[string]string
	if body, q, has := strings.Cut(rest, "?"); has {
		rest = body
		query = parseQuery(q)
	}
	rest = strings.TrimSuffix(rest, "/")

	var password, hostPort string
	if pw, hp, has := strings.Cut(rest, "@"); has {
		password, hostPort = pw, hp
		if decoded, err := url.QueryUnescape(password); err == nil {
			password = decoded
		}
	} else {
		hostPort = rest
		password = query["password"]
	}
	if password == "" {
		return model.Proxy{}, false
	}
	server, port, ok := splitHostPort(hostPort)
	if !ok {
		return model.Proxy{}, false
	}

	p := model.Proxy{
		Type:      model.TypeHysteria2,
		Name:      name,
		Server:    server,
		Port:      port,
		Password:  password,
		SNI:       query["sni"],
		Obfs:      query["obfs"],
		PinSHA256: query["pinSHA256"],
	}
	p.ObfsPassword = query["obfs-password"]
	if v, set := query["insecure"]; set {
		p.SkipCertVerify = boolPtr(boolParam(v))
	}
	p.UpMbps = bandwidthMbps(query["up"])
	p.DownMbps = bandwidthMbps(query["down"])

	return p, true
}

// bandwidthMbps parses "100" or "100 mbps"; anything else is 0 (unset).
func bandwidthMbps(v string) int {
	v = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(v)), "mbps"))
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// GenerateHysteria2 re-encodes a record in hysteria2:// form.
func GenerateHysteria2(p model.Proxy) string {
	var b strings.Builder
	b.WriteString("hysteria2://")
	b.WriteString(url.QueryEscape(p.Password))
	b.WriteByte('@')
	b.WriteString(p.Server)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(p.Port))

	params := url.Values{}
	if p.SNI != "" {
		params.Set("sni", p.SNI)
	}
	if p.Obfs != "" {
		params.Set("obfs", p.Obfs)
		if p.ObfsPassword != "" {
			params.Set("obfs-password", p.ObfsPassword)
		}
	}
	if p.SkipCertVerify != nil && *p.SkipCertVerify {
		params.Set("insecure", "1")
	}
	if p.PinSHA256 != "" {
		params.Set("pinSHA256", p.PinSHA256)
	}
	if p.UpMbps > 0 {
		params.Set("up", strconv.Itoa(p.UpMbps))
	}
	if p.DownMbps > 0 {
		params.Set("down", strconv.Itoa(p.DownMbps))
	}
	if len(params) > 0 {
		b.WriteByte('?')
		b.WriteString(params.Encode())
	}

	b.WriteByte('#')
	b.WriteString(url.PathEscape(p.DisplayName()))
	return b.String()
}
