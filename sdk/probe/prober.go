package probe

import (
	"context"
	"net/http"
	"net/netip"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/jxo-me/curl-dyndns/core/probe"
	"github.com/jxo-me/curl-dyndns/internal/util"
	"github.com/pkg/errors"
)

const maxEchoBody = 256

type Options struct {
	IPv4URLs      []string
	IPv6URLs      []string
	IPv6GetType   string
	NetInterface  string
	IPv6Reg       string
	LookupTimeout time.Duration
	// IPv6LookupTimeout falls back to LookupTimeout when unset
	IPv6LookupTimeout time.Duration
	V4Client          *http.Client
	V6Client          *http.Client
	Interfaces        InterfaceSource
	Logger            logger.ILogger
}

type Option func(opts *Options)

func IPv4URLsOption(urls ...string) Option {
	return func(opts *Options) {
		opts.IPv4URLs = urls
	}
}

func IPv6URLsOption(urls ...string) Option {
	return func(opts *Options) {
		opts.IPv6URLs = urls
	}
}

func IPv6GetTypeOption(getType string) Option {
	return func(opts *Options) {
		opts.IPv6GetType = getType
	}
}

func NetInterfaceOption(name string) Option {
	return func(opts *Options) {
		opts.NetInterface = name
	}
}

func IPv6RegOption(reg string) Option {
	return func(opts *Options) {
		opts.IPv6Reg = reg
	}
}

func LookupTimeoutOption(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.LookupTimeout = timeout
	}
}

func IPv6LookupTimeoutOption(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.IPv6LookupTimeout = timeout
	}
}

func ClientsOption(v4, v6 *http.Client) Option {
	return func(opts *Options) {
		opts.V4Client = v4
		opts.V6Client = v6
	}
}

func InterfacesOption(src InterfaceSource) Option {
	return func(opts *Options) {
		opts.Interfaces = src
	}
}

func LoggerOption(log logger.ILogger) Option {
	return func(opts *Options) {
		opts.Logger = log
	}
}

// Prober looks up the IPv4 address through echo services and the IPv6
// address from the local interfaces or through echo services.
type Prober struct {
	opts      Options
	ipv6Reg   *regexp.Regexp
	v4Client  *http.Client
	v6Client  *http.Client
	ifaces    InterfaceSource
	logger    logger.ILogger
	ipv6IsURL bool
}

var _ probe.IProber = (*Prober)(nil)

func NewProber(opts ...Option) (*Prober, error) {
	options := Options{
		IPv4URLs:      []string{consts.DefaultIPv4EchoURL},
		IPv6URLs:      []string{consts.DefaultIPv6EchoURL},
		IPv6GetType:   consts.GetTypeNetInterface,
		IPv6Reg:       consts.DefaultIPv6Reg,
		LookupTimeout: consts.DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.LookupTimeout <= 0 {
		options.LookupTimeout = consts.DefaultLookupTimeout
	}
	if options.IPv6LookupTimeout <= 0 {
		options.IPv6LookupTimeout = options.LookupTimeout
	}

	p := &Prober{
		opts:     options,
		v4Client: options.V4Client,
		v6Client: options.V6Client,
		ifaces:   options.Interfaces,
		logger:   options.Logger,
	}
	switch options.IPv6GetType {
	case consts.GetTypeNetInterface, "":
	case consts.GetTypeURL:
		p.ipv6IsURL = true
	default:
		return nil, errors.Errorf("unknown IPv6 get type %q", options.IPv6GetType)
	}
	if options.IPv6Reg != "" {
		reg, err := regexp.Compile(options.IPv6Reg)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid IPv6 pattern %q", options.IPv6Reg)
		}
		p.ipv6Reg = reg
	}
	if p.v4Client == nil {
		p.v4Client = util.CreateNoProxyHTTPClient("tcp4")
	}
	if p.v6Client == nil {
		p.v6Client = util.CreateNoProxyHTTPClient("tcp6")
	}
	if p.ifaces == nil {
		p.ifaces = SystemInterfaces{}
	}
	if p.logger == nil {
		p.logger = logger.Default()
	}
	return p, nil
}

// ProbeV4 获得IPv4地址
func (p *Prober) ProbeV4(ctx context.Context) string {
	p.logger.Debug("Fetching public IPv4 address...")
	ip := p.fromURLs(ctx, "IPv4", p.v4Client, p.opts.IPv4URLs, p.opts.LookupTimeout, netip.Addr.Is4)
	if ip != "" {
		p.logger.Debugf("Received public IPv4 address: %s", ip)
	}
	return ip
}

// ProbeV6 获得IPv6地址
func (p *Prober) ProbeV6(ctx context.Context) string {
	p.logger.Debug("Fetching public IPv6 address...")
	var ip string
	if p.ipv6IsURL {
		ip = p.fromURLs(ctx, "IPv6", p.v6Client, p.opts.IPv6URLs, p.opts.IPv6LookupTimeout, func(a netip.Addr) bool {
			return a.Is6() && !a.Is4In6()
		})
	} else {
		ip = p.fromInterface(ctx)
	}
	if ip != "" {
		p.logger.Debugf("Received public IPv6 address: %s", ip)
	}
	return ip
}

func (p *Prober) fromInterface(ctx context.Context) string {
	type result struct {
		addrs []InterfaceAddr
		err   error
	}
	ctx, cancel := context.WithTimeout(ctx, p.opts.IPv6LookupTimeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		addrs, err := p.ifaces.Addrs()
		done <- result{addrs: addrs, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		p.logger.Warnf("Failed to get IPv6 from network interface: %v", ddns.LookupError(res.err))
		return ""
	}

	ip := SelectIPv6(res.addrs, p.opts.NetInterface, p.ipv6Reg)
	if ip == "" {
		p.logger.Debugf("No IPv6 address matching %q found on network interface %q", p.opts.IPv6Reg, p.opts.NetInterface)
	}
	return ip
}

func (p *Prober) fromURLs(ctx context.Context, family string, client *http.Client, urls []string, timeout time.Duration, valid func(netip.Addr) bool) string {
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		ip, err := p.lookup(ctx, client, u, timeout, valid)
		if err != nil {
			p.logger.Warnf("Failed to get %s from %s: %v", family, u, err)
			continue
		}
		return ip
	}
	return ""
}

func (p *Prober) lookup(ctx context.Context, client *http.Client, url string, timeout time.Duration, valid func(netip.Addr) bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", errors.Wrap(ddns.ErrLookupNetwork, err.Error())
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return "", ddns.LookupError(err)
	}
	body, err := util.ReadLimited(resp.Body, maxEchoBody)
	if err != nil {
		return "", ddns.LookupError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ddns.ErrLookupNetwork, "status %d", resp.StatusCode)
	}

	text := strings.TrimSpace(string(body))
	ip, err := netip.ParseAddr(text)
	if err != nil || !valid(ip) {
		return "", errors.Wrapf(ddns.ErrLookupInvalid, "response %q", text)
	}
	return ip.String(), nil
}

// Probe runs the required lookups concurrently and waits for all of them.
// A family that is not needed is never probed.
func Probe(ctx context.Context, prober probe.IProber, needV4, needV6 bool) ddns.AddressPair {
	var (
		pair ddns.AddressPair
		wg   sync.WaitGroup
	)
	if needV4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pair.V4 = prober.ProbeV4(ctx)
		}()
	}
	if needV6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pair.V6 = prober.ProbeV6(ctx)
		}()
	}
	wg.Wait()
	return pair
}
