package model

import "strconv"

// ProxyType identifies the protocol family of a node. The set is closed:
// link parsers, the Clash document mapper and the link generators all switch
// over it exhaustively.
type ProxyType string

const (
	TypeSS        ProxyType = "ss"
	TypeSSR       ProxyType = "ssr"
	TypeVMess     ProxyType = "vmess"
	TypeTrojan    ProxyType = "trojan"
	TypeHysteria2 ProxyType = "hysteria2"
)

func KnownProxyType(t ProxyType) bool {
	switch t {
	case TypeSS, TypeSSR, TypeVMess, TypeTrojan, TypeHysteria2:
		return true
	default:
		return false
	}
}

// Proxy is the uniform node representation every parser produces and every
// generator consumes. Fields outside the Type/Name/Server/Port core are
// protocol-specific and best-effort; generators ignore what does not apply.
//
// A Proxy is immutable once a parser returns it. The only later mutation is
// the display-name rewrite the renderer performs on its own copy.
type Proxy struct {
	Type ProxyType

	// Name comes from the link fragment (#name) or the Clash node name.
	// Empty means "use Server:Port"; renaming/dedup happens at render time.
	Name string

	Server string
	Port   int

	// Credentials. Password covers ss/ssr/trojan/hysteria2, UUID covers vmess.
	Password string
	UUID     string

	// ss / ssr
	Cipher        string
	Plugin        string
	PluginOpts    string
	Protocol      string
	ProtocolParam string
	Obfs          string
	ObfsParam     string
	Group         string

	// vmess / transport
	AlterID     int
	Network     string // "", "tcp", "ws", "h2", "grpc", "http"
	Host        string // ws/h2 host header, http host, obfs host
	Path        string // ws/h2/http path, grpc service name
	TLS         bool
	SNI         string
	Fingerprint string

	// hysteria2
	UpMbps       int
	DownMbps     int
	ObfsPassword string
	PinSHA256    string

	// Per-node flags. nil means the subscription did not say.
	UDP            *bool
	TFO            *bool
	SkipCertVerify *bool
}

// Valid reports whether the record is allowed past the parsing stage.
// Invalid records never reach filtering or generation.
func (p Proxy) Valid() bool {
	return KnownProxyType(p.Type) && p.Server != "" && p.Port >= 1 && p.Port <= 65535
}

// DisplayName returns Name or the Server:Port fallback.
func (p Proxy) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Server + ":" + strconv.Itoa(p.Port)
}

// EndpointKey is the dedup key: nodes sharing a host:port pair are the same
// endpoint, first occurrence wins.
func (p Proxy) EndpointKey() string {
	return p.Server + ":" + strconv.Itoa(p.Port)
}
