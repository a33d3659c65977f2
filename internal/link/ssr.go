package link

import (
	"strconv"
	"strings"

	"github.com/John-Robertt/subweave/internal/model"
)

// ssPlainCiphers are the ciphers a plain ShadowsocksR node may carry while
// still being an ordinary Shadowsocks endpoint on the wire.
var ssPlainCiphers = map[string]struct{}{
	"aes-128-gcm":             {},
	"aes-192-gcm":             {},
	"aes-256-gcm":             {},
	"aes-128-cfb":             {},
	"aes-192-cfb":             {},
	"aes-256-cfb":             {},
	"aes-128-ctr":             {},
	"aes-192-ctr":             {},
	"aes-256-ctr":             {},
	"rc4-md5":                 {},
	"chacha20":                {},
	"chacha20-ietf":           {},
	"chacha20-ietf-poly1305":  {},
	"xchacha20-ietf-poly1305": {},
	"camellia-128-cfb":        {},
	"camellia-192-cfb":        {},
	"camellia-256-cfb":        {},
	"bf-cfb":                  {},
	"salsa20":                 {},
}

// ParseSSR decodes an ssr:// link:
//
//	ssr://b64( host:port:protocol:method:obfs:b64(password)[/?params] )
//
// where obfsparam/protoparam/remarks/group query values are url-safe base64.
//
// A node whose protocol is "origin" and obfs is "plain" (or absent) with a
// plain cipher is reclassified as Shadowsocks. That normalization is
// deliberate: such a node speaks plain ss on the wire.
func ParseSSR(line string) (model.Proxy, bool) {
	blob := strings.TrimSpace(strings.TrimPrefix(line, "ssr://"))
	decoded, ok := urlSafeDecode(blob)
	if !ok {
		return model.Proxy{}, false
	}

	main, query, _ := strings.Cut(decoded, "/?")

	// host may contain ':' (IPv6), so peel the five fixed fields off the right.
	fields := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		idx := strings.LastIndexByte(main, ':')
		if idx < 0 {
			return model.Proxy{}, false
		}
		fields = append(fields, main[idx+1:])
		main = main[:idx]
	}
	host := strings.Trim(main, "[]")
	passB64, obfs, method, protocol, portStr := fields[0], fields[1], fields[2], fields[3], fields[4]

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 || host == "" {
		return model.Proxy{}, false
	}
	password, ok := urlSafeDecode(passB64)
	if !ok {
		return model.Proxy{}, false
	}

	p := model.Proxy{
		Type:     model.TypeSSR,
		Server:   host,
		Port:     port,
		Protocol: protocol,
		Cipher:   method,
		Obfs:     obfs,
		Password: password,
	}

	for k, v := range parseQuery(query) {
		decoded, ok := urlSafeDecode(v)
		if !ok {
			continue
		}
		switch k {
		case "remarks":
			p.Name = strings.TrimSpace(decoded)
		case "group":
			p.Group = decoded
		case "obfsparam":
			p.ObfsParam = decoded
		case "protoparam":
			p.ProtocolParam = decoded
		}
	}

	if protocol == "origin" && (obfs == "" || obfs == "plain") {
		if _, plain := ssPlainCiphers[strings.ToLower(method)]; plain {
			p.Type = model.TypeSS
			p.Protocol = ""
			p.Obfs = ""
			p.ProtocolParam = ""
			p.ObfsParam = ""
		}
	}

	return p, true
}

// GenerateSSR re-encodes a record in ssr:// form.
func GenerateSSR(p model.Proxy) string {
	protocol := p.Protocol
	if protocol == "" {
		protocol = "origin"
	}
	obfs := p.Obfs
	if obfs == "" {
		obfs = "plain"
	}

	var b strings.Builder
	host := p.Server
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	b.WriteString(host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(p.Port))
	b.WriteByte(':')
	b.WriteString(protocol)
	b.WriteByte(':')
	b.WriteString(p.Cipher)
	b.WriteByte(':')
	b.WriteString(obfs)
	b.WriteByte(':')
	b.WriteString(encodeURLSafe(p.Password))

	b.WriteString("/?obfsparam=")
	b.WriteString(encodeURLSafe(p.ObfsParam))
	b.WriteString("&protoparam=")
	b.WriteString(encodeURLSafe(p.ProtocolParam))
	b.WriteString("&remarks=")
	b.WriteString(encodeURLSafe(p.DisplayName()))
	b.WriteString("&group=")
	b.WriteString(encodeURLSafe(p.Group))

	return "ssr://" + encodeURLSafe(b.String())
}
