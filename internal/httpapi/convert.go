package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/subweave/internal/config"
	"github.com/John-Robertt/subweave/internal/fetch"
	"github.com/John-Robertt/subweave/internal/group"
	"github.com/John-Robertt/subweave/internal/model"
	"github.com/John-Robertt/subweave/internal/render"
	"github.com/John-Robertt/subweave/internal/ruleset"
	"github.com/John-Robertt/subweave/internal/sub"
)

type convertRequest struct {
	Target    render.Target
	SubURLs   []string
	ConfigURL string

	Include string
	Exclude string

	Emoji      *bool
	AppendType bool

	UDP *bool
	TFO *bool
	SCV *bool

	FileName string
}

// defaultConfig shapes the output when the request names no external
// config: one manual group over all nodes, one auto group, CN traffic
// direct, the rest proxied.
var defaultConfig = strings.Join([]string{
	"custom_proxy_group=节点选择`select`.*`[]DIRECT",
	"custom_proxy_group=自动选择`url-test`.*`http://www.gstatic.com/generate_204`300",
	"ruleset=DIRECT,[]GEOIP,CN",
	"ruleset=节点选择,[]FINAL",
	"enable_rule_generator=true",
}, "\n")

type convertHandler struct {
	opt   Options
	cache ruleset.Cache
}

func (h convertHandler) handleSub(w http.ResponseWriter, r *http.Request) {
	req, err := parseConvertGET(r)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}

	body, err := h.runConvert(r.Context(), req)
	if err != nil {
		writeErrorFromErr(w, err)
		return
	}

	if err := setAttachmentHeaders(w, req); err != nil {
		writeErrorFromErr(w, err)
		return
	}
	WriteBody(w, http.StatusOK, req.Target.ContentType(), body)
}

func (h convertHandler) runConvert(ctx context.Context, req convertRequest) (string, error) {
	// Hard upper bound so handlers don't hang forever if upstream misbehaves.
	ctx, cancel := context.WithTimeout(ctx, h.opt.ConvertTimeout)
	defer cancel()

	nodes, err := h.fetchAndParseSubs(ctx, req.SubURLs)
	if err != nil {
		return "", err
	}

	var cfg *model.ParsedConfig
	if req.ConfigURL != "" {
		text, err := fetch.FetchTextWithOptions(ctx, fetch.KindConfig, req.ConfigURL, h.fetchOptions())
		if err != nil {
			return "", err
		}
		cfg = config.ParseConfig(text)
	} else {
		cfg = config.ParseConfig(defaultConfig)
	}

	filter := sub.FilterOptions{Include: cfg.Include, Exclude: cfg.Exclude}
	// Request-level patterns take priority over the config's.
	if req.Include != "" {
		filter.Include = []string{req.Include}
	}
	if req.Exclude != "" {
		filter.Exclude = []string{req.Exclude}
	}
	nodes = sub.DeduplicateNodes(sub.FilterNodes(nodes, filter))
	if len(nodes) == 0 {
		return "", noNodesError()
	}

	groups := group.Resolve(cfg.Groups, nodes)

	var rules []model.Rule
	if cfg.EnableRuleGenerator {
		// The cache dedups repeated sources within one conversion; state
		// never leaks across requests.
		h.cache.Clear()
		loader := &ruleset.Loader{Fetch: h.rulesetFetcher(), Cache: h.cache}
		rules = loader.LoadAll(ctx, cfg.Rulesets, req.ConfigURL)
		rules = ruleset.EnsureMatchRule(rules, groups)
	}

	opts := render.Options{
		AppendProxyType: req.AppendType,
		AddEmoji:        cfg.AddEmoji,
		RemoveOldEmoji:  cfg.RemoveOldEmoji,
		Rename:          cfg.Rename,
		UDP:             req.UDP,
		TFO:             req.TFO,
		SkipCertVerify:  req.SCV,
	}
	if req.Emoji != nil {
		opts.AddEmoji = *req.Emoji
		opts.RemoveOldEmoji = *req.Emoji
	}

	return render.Generate(req.Target, render.Input{Nodes: nodes, Groups: groups, Rules: rules}, opts)
}

// fetchAndParseSubs fetches every subscription URL and merges the parsed
// nodes in input order. The first URL is authoritative: its fetch failure
// fails the request. Later URLs degrade, a failure logs and skips.
func (h convertHandler) fetchAndParseSubs(ctx context.Context, subURLs []string) ([]model.Proxy, error) {
	out := make([]model.Proxy, 0)
	for i, u := range subURLs {
		text, err := fetch.FetchTextWithOptions(ctx, fetch.KindSubscription, u, h.fetchOptions())
		if err != nil {
			if i == 0 {
				return nil, err
			}
			logrus.WithField("url", u).WithError(err).Warn("附加订阅拉取失败，跳过")
			continue
		}
		out = append(out, sub.ParseSubscription(text)...)
	}
	return out, nil
}

func (h convertHandler) fetchOptions() fetch.Options {
	return fetch.Options{
		Timeout:  h.opt.FetchTimeout,
		ProxyURL: h.opt.UpstreamProxy,
	}
}

func (h convertHandler) rulesetFetcher() ruleset.Fetcher {
	return func(ctx context.Context, target string) (string, error) {
		return fetch.FetchTextWithOptions(ctx, fetch.KindRuleset, target, h.fetchOptions())
	}
}

func parseConvertGET(r *http.Request) (convertRequest, error) {
	q := r.URL.Query()
	for key := range q {
		switch key {
		case "target", "url", "config", "include", "exclude",
			"emoji", "append_type", "udp", "tfo", "scv", "filename":
		default:
			return convertRequest{}, requestError("INVALID_ARGUMENT", fmt.Sprintf("不支持的 query 参数：%s", key), "")
		}
	}

	targetStr, err := singleQuery(q, "target", true)
	if err != nil {
		return convertRequest{}, err
	}
	target, ok := render.ParseTarget(strings.TrimSpace(targetStr))
	if !ok {
		return convertRequest{}, requestError("INVALID_ARGUMENT", "不支持的 target（仅支持 clash/clashr/mixed）", targetStr)
	}

	// url may repeat and each value may carry several "|"-joined URLs.
	var subURLs []string
	for _, raw := range q["url"] {
		for _, u := range strings.Split(raw, "|") {
			u = strings.TrimSpace(u)
			if u != "" {
				subURLs = append(subURLs, u)
			}
		}
	}
	if len(subURLs) == 0 {
		return convertRequest{}, requestError("INVALID_ARGUMENT", "缺少 url 参数", "expected: url=<subscription>")
	}

	configURL, err := singleQuery(q, "config", false)
	if err != nil {
		return convertRequest{}, err
	}
	include, err := singleQuery(q, "include", false)
	if err != nil {
		return convertRequest{}, err
	}
	exclude, err := singleQuery(q, "exclude", false)
	if err != nil {
		return convertRequest{}, err
	}
	fileName, err := singleQuery(q, "filename", false)
	if err != nil {
		return convertRequest{}, err
	}

	req := convertRequest{
		Target:    target,
		SubURLs:   subURLs,
		ConfigURL: strings.TrimSpace(configURL),
		Include:   include,
		Exclude:   exclude,
		FileName:  fileName,
	}

	if req.Emoji, err = triStateQuery(q, "emoji"); err != nil {
		return convertRequest{}, err
	}
	if req.UDP, err = triStateQuery(q, "udp"); err != nil {
		return convertRequest{}, err
	}
	if req.TFO, err = triStateQuery(q, "tfo"); err != nil {
		return convertRequest{}, err
	}
	if req.SCV, err = triStateQuery(q, "scv"); err != nil {
		return convertRequest{}, err
	}

	appendType, err := triStateQuery(q, "append_type")
	if err != nil {
		return convertRequest{}, err
	}
	req.AppendType = appendType != nil && *appendType

	return req, nil
}

// triStateQuery parses an optional boolean parameter: absent means nil
// (leave per-node values alone), present means force true/false.
func triStateQuery(q url.Values, key string) (*bool, error) {
	s, err := singleQuery(q, key, false)
	if err != nil {
		return nil, err
	}
	switch strings.TrimSpace(s) {
	case "":
		return nil, nil
	case "true", "1":
		v := true
		return &v, nil
	case "false", "0":
		v := false
		return &v, nil
	default:
		return nil, requestError("INVALID_ARGUMENT", fmt.Sprintf("%s 参数仅支持 true/false", key), s)
	}
}

func singleQuery(q url.Values, key string, required bool) (string, error) {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		if required {
			return "", requestError("INVALID_ARGUMENT", fmt.Sprintf("缺少 %s 参数", key), "")
		}
		return "", nil
	}
	if len(values) != 1 {
		return "", requestError("INVALID_ARGUMENT", fmt.Sprintf("%s 参数只能出现一次", key), "")
	}
	return values[0], nil
}
