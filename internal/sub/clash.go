package sub

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/subweave/internal/model"
)

type clashDocument struct {
	Proxies []map[string]any `yaml:"proxies"`
}

func looksLikeClashDocument(s string) bool {
	return strings.Contains(s, "proxies:")
}

// parseClashDocument maps a Clash proxies document into uniform records.
// Nodes that fail to map are skipped, not fatal.
func parseClashDocument(s string) []model.Proxy {
	var doc clashDocument
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil
	}
	out := make([]model.Proxy, 0, len(doc.Proxies))
	for _, node := range doc.Proxies {
		if p, ok := mapClashNode(node); ok && p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// mapClashNode flattens one Clash node object into a Proxy. Transport option
// blocks (ws-opts/h2-opts/grpc-opts/http-opts) collapse into Host/Path per a
// fixed per-transport mapping.
func mapClashNode(node map[string]any) (model.Proxy, bool) {
	typ := model.ProxyType(docString(node, "type"))
	if !model.KnownProxyType(typ) {
		return model.Proxy{}, false
	}

	p := model.Proxy{
		Type:   typ,
		Name:   docString(node, "name"),
		Server: docString(node, "server"),
		Port:   docInt(node, "port"),
	}
	if v, set := docBool(node, "udp"); set {
		p.UDP = &v
	}
	if v, set := docBool(node, "tfo"); set {
		p.TFO = &v
	}
	if v, set := docBool(node, "skip-cert-verify"); set {
		p.SkipCertVerify = &v
	}

	switch typ {
	case model.TypeSS:
		p.Cipher = docString(node, "cipher")
		p.Password = docString(node, "password")
		p.Plugin = docString(node, "plugin")
		if opts, ok := node["plugin-opts"].(map[string]any); ok {
			p.PluginOpts = flattenPluginOpts(opts)
		}
	case model.TypeSSR:
		p.Cipher = docString(node, "cipher")
		p.Password = docString(node, "password")
		p.Protocol = docString(node, "protocol")
		p.ProtocolParam = docString(node, "protocol-param")
		p.Obfs = docString(node, "obfs")
		p.ObfsParam = docString(node, "obfs-param")
	case model.TypeVMess:
		p.UUID = docString(node, "uuid")
		p.AlterID = docInt(node, "alterId")
		p.Cipher = docString(node, "cipher")
		if p.Cipher == "" {
			p.Cipher = "auto"
		}
		if v, _ := docBool(node, "tls"); v {
			p.TLS = true
		}
		p.SNI = docString(node, "servername")
		p.Network = docString(node, "network")
		mapTransportOpts(node, &p)
	case model.TypeTrojan:
		p.Password = docString(node, "password")
		p.TLS = true
		p.SNI = docString(node, "sni")
		p.Network = docString(node, "network")
		mapTransportOpts(node, &p)
	case model.TypeHysteria2:
		p.Password = docString(node, "password")
		p.SNI = docString(node, "sni")
		p.Obfs = docString(node, "obfs")
		p.ObfsPassword = docString(node, "obfs-password")
		p.UpMbps = docInt(node, "up")
		p.DownMbps = docInt(node, "down")
		p.PinSHA256 = docString(node, "fingerprint")
	}

	return p, true
}

// mapTransportOpts applies the fixed per-transport option mapping:
//
//	ws-opts:    path -> Path, headers.Host -> Host
//	h2-opts:    path -> Path, host[0]     -> Host
//	grpc-opts:  grpc-service-name -> Path
//	http-opts:  path[0] -> Path, headers.Host[0] -> Host
func mapTransportOpts(node map[string]any, p *model.Proxy) {
	switch p.Network {
	case "ws":
		if opts, ok := node["ws-opts"].(map[string]any); ok {
			p.Path = docString(opts, "path")
			if headers, ok := opts["headers"].(map[string]any); ok {
				p.Host = docString(headers, "Host")
			}
		}
	case "h2":
		if opts, ok := node["h2-opts"].(map[string]any); ok {
			p.Path = docString(opts, "path")
			if hosts, ok := opts["host"].([]any); ok && len(hosts) > 0 {
				if h, ok := hosts[0].(string); ok {
					p.Host = h
				}
			}
		}
	case "grpc":
		if opts, ok := node["grpc-opts"].(map[string]any); ok {
			p.Path = docString(opts, "grpc-service-name")
		}
	case "http":
		if opts, ok := node["http-opts"].(map[string]any); ok {
			if paths, ok := opts["path"].([]any); ok && len(paths) > 0 {
				if s, ok := paths[0].(string); ok {
					p.Path = s
				}
			}
			if headers, ok := opts["headers"].(map[string]any); ok {
				if hosts, ok := headers["Host"].([]any); ok && len(hosts) > 0 {
					if h, ok := hosts[0].(string); ok {
						p.Host = h
					}
				}
			}
		}
	}
}

func flattenPluginOpts(opts map[string]any) string {
	// Deterministic order: mode first, then host, mirroring the SIP002
	// plugin option convention.
	var parts []string
	if mode := docString(opts, "mode"); mode != "" {
		parts = append(parts, "obfs="+mode)
	}
	if host := docString(opts, "host"); host != "" {
		parts = append(parts, "obfs-host="+host)
	}
	return strings.Join(parts, ";")
}

func docString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func docInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func docBool(m map[string]any, key string) (value, set bool) {
	switch v := m[key].(type) {
	case bool:
		return v, true
	case string:
		return v == "true" || v == "1", true
	default:
		return false, false
	}
}
