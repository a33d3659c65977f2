package link

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/subweave/internal/model"
)

// ParseTrojan decodes a trojan:// link:
//
//	trojan://password@host:port?sni=...&allowInsecure=1&tfo=1&ws=1&wspath=/x#name
//
// WebSocket transport is signaled either by ws=1 (path in wspath) or by
// type=ws (path in path); each flavor has its own path parameter name.
func ParseTrojan(line string) (model.Proxy, bool) {
	rest, name, ok := splitFragment(strings.TrimPrefix(line, "trojan://"))
	if !ok || rest == "" {
		return model.Proxy{}, false
	}

	var query map[string]string
	if body, q, has := strings.Cut(rest, "?"); has {
		rest = body
		query = parseQuery(q)
	}
	rest = strings.TrimSuffix(rest, "/")

	password, hostPort, has := strings.Cut(rest, "@")
	if !has || password == "" {
		return model.Proxy{}, false
	}
	if decoded, err := url.QueryUnescape(password); err == nil {
		password = decoded
	}
	server, port, ok := splitHostPort(hostPort)
	if !ok {
		return model.Proxy{}, false
	}

	p := model.Proxy{
		Type:     model.TypeTrojan,
		Name:     name,
		Server:   server,
		Port:     port,
		Password: password,
		TLS:      true,
	}

	if sni := query["sni"]; sni != "" {
		p.SNI = sni
	} else if peer := query["peer"]; peer != "" {
		p.SNI = peer
	}
	if v, set := query["allowInsecure"]; set {
		p.SkipCertVerify = boolPtr(boolParam(v))
	}
	if v, set := query["tfo"]; set {
		p.TFO = boolPtr(boolParam(v))
	}
	if boolParam(query["ws"]) {
		p.Network = "ws"
		p.Path = query["wspath"]
	} else if query["type"] == "ws" {
		p.Network = "ws"
		p.Path = query["path"]
		p.Host = query["host"]
	}

	return p, true
}

// GenerateTrojan re-encodes a record in trojan:// form.
func GenerateTrojan(p model.Proxy) string {
	var b strings.Builder
	b.WriteString("trojan://")
	b.WriteString(url.QueryEscape(p.Password))
	b.WriteByte('@')
	b.WriteString(p.Server)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(p.Port))

	params := url.Values{}
	if p.SNI != "" {
		params.Set("sni", p.SNI)
	}
	if p.SkipCertVerify != nil && *p.SkipCertVerify {
		params.Set("allowInsecure", "1")
	}
	if p.TFO != nil && *p.TFO {
		params.Set("tfo", "1")
	}
	if p.Network == "ws" {
		params.Set("type", "ws")
		if p.Path != "" {
			params.Set("path", p.Path)
		}
		if p.Host != "" {
			params.Set("host", p.Host)
		}
	}
	if len(params) > 0 {
		b.WriteByte('?')
		b.WriteString(params.Encode())
	}

	b.WriteByte('#')
	b.WriteString(url.PathEscape(p.DisplayName()))
	return b.String()
}
