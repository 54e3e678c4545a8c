package parsing

import (
	"strings"

	"github.com/jxo-me/curl-dyndns/config"
	"github.com/jxo-me/curl-dyndns/core/cache"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/jxo-me/curl-dyndns/internal/util"
	xcache "github.com/jxo-me/curl-dyndns/sdk/cache"
	"github.com/jxo-me/curl-dyndns/sdk/ddns/curl"
	"github.com/jxo-me/curl-dyndns/sdk/hook"
	"github.com/jxo-me/curl-dyndns/sdk/probe"
	xservice "github.com/jxo-me/curl-dyndns/sdk/service"
	"github.com/pkg/errors"
)

// ParseService builds the updater described by cfg.
// addrCache may be nil, a fresh cache is used then.
func ParseService(cfg *config.Config, addrCache cache.IAddrCache, log logger.ILogger, opts ...xservice.Option) (*xservice.DDNSService, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if addrCache == nil {
		addrCache = &xcache.AddrCache{}
	}

	prober, err := probe.NewProber(ProberOptions(cfg, log)...)
	if err != nil {
		return nil, errors.WithMessage(err, "ipv6")
	}

	client := util.CreateHTTPClient()
	dns := &curl.Curl{}
	dns.Init(cfg.URL, cfg.UpdateTimeout, client, prober, addrCache, log)

	if cfg.Webhook != nil && cfg.Webhook.WebhookURL != "" {
		webhook := hook.NewHook(cfg.Webhook.WebhookURL, cfg.Webhook.WebhookRequestBody,
			cfg.Webhook.WebhookHeaders, client, log)
		opts = append(opts, xservice.HookOption(webhook))
	}
	return xservice.NewDDNS(dns, log, cfg, opts...), nil
}

// ProberOptions maps the ipv4/ipv6 sections onto prober options.
func ProberOptions(cfg *config.Config, log logger.ILogger) []probe.Option {
	opts := []probe.Option{probe.LoggerOption(log)}
	if cfg.Ipv4 != nil {
		opts = append(opts,
			probe.IPv4URLsOption(strings.Split(cfg.Ipv4.URL, ",")...),
			probe.LookupTimeoutOption(cfg.Ipv4.Timeout),
		)
	}
	if cfg.Ipv6 != nil {
		opts = append(opts,
			probe.IPv6GetTypeOption(cfg.Ipv6.GetType),
			probe.IPv6URLsOption(strings.Split(cfg.Ipv6.URL, ",")...),
			probe.NetInterfaceOption(cfg.Ipv6.NetInterface),
			probe.IPv6RegOption(cfg.Ipv6.IPv6Reg),
			probe.IPv6LookupTimeoutOption(cfg.Ipv6.Timeout),
		)
	}
	return opts
}
