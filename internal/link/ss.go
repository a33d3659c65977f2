package link

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/subweave/internal/model"
)

// ParseSS decodes an ss:// link. Two wire variants, tried in order:
//
//	SIP002:  ss://b64(method:password)@host:port[/][?plugin=...&group=...]#name
//	legacy:  ss://b64(method:password@host:port)#name
//
// The first structural match wins.
func ParseSS(line string) (model.Proxy, bool) {
	rest, name, ok := splitFragment(strings.TrimPrefix(line, "ss://"))
	if !ok || rest == "" {
		return model.Proxy{}, false
	}

	var query map[string]string
	if body, q, has := strings.Cut(rest, "?"); has {
		rest = body
		query = parseQuery(q)
	}
	rest = strings.TrimSuffix(rest, "/")

	var method, password, hostPort string
	if userB64, hostPart, has := strings.Cut(rest, "@"); has {
		// SIP002.
		decoded, ok := decodeB64(userB64)
		if !ok {
			return model.Proxy{}, false
		}
		m, pw, has := strings.Cut(decoded, ":")
		if !has || m == "" {
			return model.Proxy{}, false
		}
		method, password, hostPort = m, pw, hostPart
	} else {
		// Legacy all-in-one base64.
		decoded, ok := decodeB64(rest)
		if !ok {
			return model.Proxy{}, false
		}
		at := strings.LastIndexByte(decoded, '@')
		if at < 0 {
			return model.Proxy{}, false
		}
		m, pw, has := strings.Cut(decoded[:at], ":")
		if !has || m == "" {
			return model.Proxy{}, false
		}
		method, password, hostPort = m, pw, decoded[at+1:]
	}

	server, port, ok := splitHostPort(hostPort)
	if !ok {
		return model.Proxy{}, false
	}

	p := model.Proxy{
		Type:     model.TypeSS,
		Name:     name,
		Server:   server,
		Port:     port,
		Cipher:   method,
		Password: password,
	}

	if plugin := query["plugin"]; plugin != "" {
		pluginName, opts, _ := strings.Cut(plugin, ";")
		p.Plugin = pluginName
		p.PluginOpts = opts
	}
	if g := query["group"]; g != "" {
		if decoded, ok := urlSafeDecode(g); ok {
			p.Group = decoded
		}
	}

	return p, true
}

// GenerateSS re-encodes a record in SIP002 form.
func GenerateSS(p model.Proxy) string {
	var b strings.Builder
	b.WriteString("ss://")
	b.WriteString(encodeURLSafe(p.Cipher + ":" + p.Password))
	b.WriteByte('@')
	b.WriteString(p.Server)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(p.Port))

	params := url.Values{}
	if p.Plugin != "" {
		plugin := p.Plugin
		if p.PluginOpts != "" {
			plugin += ";" + p.PluginOpts
		}
		params.Set("plugin", plugin)
	}
	if p.Group != "" {
		params.Set("group", encodeURLSafe(p.Group))
	}
	if len(params) > 0 {
		b.WriteString("/?")
		b.WriteString(params.Encode())
	}

	b.WriteByte('#')
	b.WriteString(url.PathEscape(p.DisplayName()))
	return b.String()
}
