package httpapi

import "time"

// Options controls HTTP API runtime behavior (timeouts, upstream proxy).
//
// Keep it small: this service is a conversion pipeline, not a framework.
type Options struct {
	// ConvertTimeout is the hard upper bound for a single conversion request
	// (fetch + parse + resolve + render).
	ConvertTimeout time.Duration

	// FetchTimeout is the per-HTTP-request timeout used when fetching remote
	// resources (subscription/config/ruleset).
	FetchTimeout time.Duration

	// UpstreamProxy routes all remote fetches through a proxy
	// (socks5://host:port or http://host:port). Empty means direct.
	UpstreamProxy string
}

func (o Options) withDefaults() Options {
	if o.ConvertTimeout <= 0 {
		o.ConvertTimeout = 60 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 15 * time.Second
	}
	return o
}
