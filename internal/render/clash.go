package render

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/subweave/internal/model"
)

// clashProxy is one entry of the document's proxies list. Field order here
// is the output order.
type clashProxy struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Server string `yaml:"server"`
	Port   int    `yaml:"port"`

	Cipher   string `yaml:"cipher,omitempty"`
	Password string `yaml:"password,omitempty"`
	UUID     string `yaml:"uuid,omitempty"`
	AlterID  *int   `yaml:"alterId,omitempty"`

	Plugin     string            `yaml:"plugin,omitempty"`
	PluginOpts map[string]string `yaml:"plugin-opts,omitempty"`

	Protocol      string `yaml:"protocol,omitempty"`
	ProtocolParam string `yaml:"protocol-param,omitempty"`
	Obfs          string `yaml:"obfs,omitempty"`
	ObfsParam     string `yaml:"obfs-param,omitempty"`

	Network string          `yaml:"network,omitempty"`
	WSOpts  *clashWSOpts    `yaml:"ws-opts,omitempty"`
	H2Opts  *clashH2Opts    `yaml:"h2-opts,omitempty"`
	GRPC    *clashGRPCOpts  `yaml:"grpc-opts,omitempty"`
	HTTP    *clashHTTPOpts  `yaml:"http-opts,omitempty"`

	TLS         bool   `yaml:"tls,omitempty"`
	SNI         string `yaml:"sni,omitempty"`
	ServerName  string `yaml:"servername,omitempty"`
	Fingerprint string `yaml:"client-fingerprint,omitempty"`

	Up           int    `yaml:"up,omitempty"`
	Down         int    `yaml:"down,omitempty"`
	ObfsPassword string `yaml:"obfs-password,omitempty"`
	PinSHA256    string `yaml:"pin-sha256,omitempty"`

	UDP            *bool `yaml:"udp,omitempty"`
	TFO            *bool `yaml:"tfo,omitempty"`
	SkipCertVerify *bool `yaml:"skip-cert-verify,omitempty"`
}

type clashWSOpts struct {
	Path    string            `yaml:"path,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

type clashH2Opts struct {
	Path string   `yaml:"path,omitempty"`
	Host []string `yaml:"host,omitempty"`
}

type clashGRPCOpts struct {
	ServiceName string `yaml:"grpc-service-name,omitempty"`
}

type clashHTTPOpts struct {
	Path []string `yaml:"path,omitempty"`
}

type clashGroup struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Proxies []string `yaml:"proxies"`

	URL       string `yaml:"url,omitempty"`
	Interval  int    `yaml:"interval,omitempty"`
	Tolerance int    `yaml:"tolerance,omitempty"`
	Strategy  string `yaml:"strategy,omitempty"`
}

type clashDocument struct {
	Port               int    `yaml:"port"`
	SocksPort          int    `yaml:"socks-port"`
	AllowLan           bool   `yaml:"allow-lan"`
	Mode               string `yaml:"mode"`
	LogLevel           string `yaml:"log-level"`
	ExternalController string `yaml:"external-controller"`

	Proxies     []clashProxy `yaml:"proxies"`
	ProxyGroups []clashGroup `yaml:"proxy-groups"`
	Rules       []string     `yaml:"rules"`
}

func generateClash(target Target, in Input, opts Options) (string, error) {
	kept := make([]model.Proxy, 0, len(in.Nodes))
	for _, p := range in.Nodes {
		if p.Type == model.TypeSSR && target != TargetClashR {
			continue
		}
		kept = append(kept, applyFlagOverrides(p, opts))
	}

	names := prepareNames(kept, opts)
	renamed := make(map[string]string, len(kept))
	for i, p := range kept {
		old := p.DisplayName()
		if _, ok := renamed[old]; !ok {
			renamed[old] = names[i]
		}
	}

	doc := clashDocument{
		Port:               7890,
		SocksPort:          7891,
		AllowLan:           true,
		Mode:               "Rule",
		LogLevel:           "info",
		ExternalController: "127.0.0.1:9090",
		Proxies:            make([]clashProxy, 0, len(kept)),
		ProxyGroups:        make([]clashGroup, 0, len(in.Groups)),
		Rules:              make([]string, 0, len(in.Rules)),
	}

	for i, p := range kept {
		doc.Proxies = append(doc.Proxies, clashProxyFromNode(p, names[i]))
	}

	keptNames := make(map[string]struct{}, len(names))
	for _, n := range names {
		keptNames[n] = struct{}{}
	}
	groupNames := make(map[string]struct{}, len(in.Groups))
	for _, g := range in.Groups {
		groupNames[g.Name] = struct{}{}
	}

	for _, g := range in.Groups {
		members := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			if m == "DIRECT" || m == "REJECT" {
				members = append(members, m)
				continue
			}
			if _, ok := groupNames[m]; ok {
				members = append(members, m)
				continue
			}
			n, ok := renamed[m]
			if !ok {
				// Node dropped for this target (SSR under plain clash).
				continue
			}
			if _, ok := keptNames[n]; ok {
				members = append(members, n)
			}
		}
		if len(members) == 0 {
			// A group the rules may still point at must not be empty.
			members = append(members, "DIRECT")
		}
		cg := clashGroup{Name: g.Name, Type: string(g.Kind), Proxies: members}
		switch g.Kind {
		case model.GroupURLTest, model.GroupFallback, model.GroupLoadBalance:
			cg.URL = g.TestURL
			cg.Interval = g.IntervalSec
			if g.HasTolerance && g.Kind == model.GroupURLTest {
				cg.Tolerance = g.ToleranceMS
			}
			if g.Kind == model.GroupLoadBalance {
				cg.Strategy = g.Strategy
			}
		}
		doc.ProxyGroups = append(doc.ProxyGroups, cg)
	}

	for _, r := range in.Rules {
		doc.Rules = append(doc.Rules, r.String())
	}

	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", &RenderError{
			AppError: model.AppError{
				Code:    "RENDER_ERROR",
				Message: "YAML 序列化失败",
				Stage:   "render",
			},
			Cause: err,
		}
	}
	if err := enc.Close(); err != nil {
		return "", &RenderError{
			AppError: model.AppError{
				Code:    "RENDER_ERROR",
				Message: "YAML 序列化失败",
				Stage:   "render",
			},
			Cause: err,
		}
	}
	return b.String(), nil
}

func clashProxyFromNode(p model.Proxy, name string) clashProxy {
	out := clashProxy{
		Name:           name,
		Type:           string(p.Type),
		Server:         p.Server,
		Port:           p.Port,
		UDP:            p.UDP,
		TFO:            p.TFO,
		SkipCertVerify: p.SkipCertVerify,
	}

	switch p.Type {
	case model.TypeSS:
		out.Cipher = strings.ToLower(p.Cipher)
		out.Password = p.Password
		if p.Plugin != "" {
			out.Plugin = normalizePluginName(p.Plugin)
			out.PluginOpts = parsePluginOpts(p.PluginOpts)
		}
	case model.TypeSSR:
		out.Cipher = strings.ToLower(p.Cipher)
		out.Password = p.Password
		out.Protocol = p.Protocol
		out.ProtocolParam = p.ProtocolParam
		out.Obfs = p.Obfs
		out.ObfsParam = p.ObfsParam
	case model.TypeVMess:
		out.Cipher = "auto"
		if p.Cipher != "" {
			out.Cipher = strings.ToLower(p.Cipher)
		}
		out.UUID = p.UUID
		aid := p.AlterID
		out.AlterID = &aid
		out.TLS = p.TLS
		out.ServerName = p.SNI
		out.Fingerprint = p.Fingerprint
		setTransport(&out, p)
	case model.TypeTrojan:
		out.Password = p.Password
		out.SNI = p.SNI
		out.Fingerprint = p.Fingerprint
		setTransport(&out, p)
	case model.TypeHysteria2:
		out.Password = p.Password
		out.SNI = p.SNI
		out.Up = p.UpMbps
		out.Down = p.DownMbps
		out.Obfs = p.Obfs
		out.ObfsPassword = p.ObfsPassword
		out.PinSHA256 = p.PinSHA256
		out.Fingerprint = p.Fingerprint
	}
	return out
}

func setTransport(out *clashProxy, p model.Proxy) {
	switch p.Network {
	case "ws":
		out.Network = "ws"
		o := &clashWSOpts{Path: p.Path}
		if p.Host != "" {
			o.Headers = map[string]string{"Host": p.Host}
		}
		out.WSOpts = o
	case "h2":
		out.Network = "h2"
		o := &clashH2Opts{Path: p.Path}
		if p.Host != "" {
			o.Host = []string{p.Host}
		}
		out.H2Opts = o
	case "grpc":
		out.Network = "grpc"
		out.GRPC = &clashGRPCOpts{ServiceName: p.Path}
	case "http":
		out.Network = "http"
		if p.Path != "" {
			out.HTTP = &clashHTTPOpts{Path: []string{p.Path}}
		}
	}
}

// normalizePluginName maps the SIP003 plugin binary names onto the names the
// YAML document uses.
func normalizePluginName(plugin string) string {
	switch plugin {
	case "obfs-local", "simple-obfs":
		return "obfs"
	case "v2ray-plugin":
		return "v2ray-plugin"
	default:
		return plugin
	}
}

// parsePluginOpts splits "obfs=http;obfs-host=example.com" into a map,
// renaming the obfs-local option keys to the document's mode/host keys.
func parsePluginOpts(opts string) map[string]string {
	if opts == "" {
		return nil
	}
	out := make(map[string]string)
	for _, kv := range strings.Split(opts, ";") {
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		switch k {
		case "obfs":
			out["mode"] = v
		case "obfs-host":
			out["host"] = v
		case "mode", "host", "path", "tls", "mux":
			out[k] = v
		default:
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
