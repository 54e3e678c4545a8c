package curl

import (
	"context"
	"net/http"
	"time"

	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/cache"
	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/jxo-me/curl-dyndns/core/probe"
	"github.com/jxo-me/curl-dyndns/internal/util"
	xcache "github.com/jxo-me/curl-dyndns/sdk/cache"
	xprobe "github.com/jxo-me/curl-dyndns/sdk/probe"
	"github.com/jxo-me/curl-dyndns/sdk/template"
	"github.com/pkg/errors"
)

const (
	Code = "curl"

	maxRejectedBody = 4 << 10
)

// Curl calls a templated update url whenever the addresses it carries change.
type Curl struct {
	url           string
	updateTimeout time.Duration
	client        *http.Client
	prober        probe.IProber
	cache         cache.IAddrCache
	logger        logger.ILogger
}

var _ ddns.IDDNS = (*Curl)(nil)

func (c *Curl) String() string {
	return Code
}

func (c *Curl) Endpoint() string {
	return c.url
}

// Init 初始化
func (c *Curl) Init(url string, updateTimeout time.Duration, client *http.Client, prober probe.IProber, addrCache cache.IAddrCache, log logger.ILogger) {
	c.url = url
	c.updateTimeout = updateTimeout
	if c.updateTimeout <= 0 {
		c.updateTimeout = consts.DefaultUpdateTimeout
	}
	c.client = client
	if c.client == nil {
		c.client = util.CreateHTTPClient()
	}
	c.prober = prober
	c.cache = addrCache
	c.logger = log
	if c.logger == nil {
		c.logger = logger.Default()
	}
}

// Update 探测地址, 判断是否变化, 然后请求更新地址
func (c *Curl) Update(ctx context.Context) ddns.Outcome {
	if c.url == "" {
		c.logger.Error("CurlDynDNS update url is empty")
		return ddns.Failed(ddns.AddressPair{}, ddns.ErrConfigMissing)
	}

	tpl := template.Parse(c.url)
	pair := xprobe.Probe(ctx, c.prober, tpl.RequiresV4, tpl.RequiresV6)

	// 地址未变化时不再请求
	last, committed := c.cache.Last()
	if committed && !xcache.ShouldUpdate(pair, last, tpl.RequiresV4, tpl.RequiresV6) {
		c.logger.Debugf("DNS was not updated since IP has not changed (%s)", pair)
		return ddns.Skipped(pair, "addresses unchanged")
	}

	if tpl.HasPlaceholders() {
		c.logger.Debugf("Trying to update DNS with %%ip4%%=%s and %%ip6%%=%s...", pair.V4, pair.V6)
	} else {
		c.logger.Debug("Trying to update DNS...")
	}

	if err := c.request(ctx, tpl.Render(pair)); err != nil {
		// 调用方取消的请求不计入连续失败次数
		if ctx.Err() == nil {
			c.cache.IncreaseFailedTimes()
		}
		out := ddns.Failed(pair, err)
		out.FailedTimes = c.cache.GetFailedTimes()
		return out
	}

	c.cache.Commit(pair)
	c.logger.Debug("Updating DNS was successful")
	return ddns.Succeeded(pair)
}

func (c *Curl) request(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, c.updateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return errors.Wrap(ddns.ErrUpdateNetwork, err.Error())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ddns.UpdateError(err)
	}
	body, err := util.ReadLimited(resp.Body, maxRejectedBody)
	if resp.StatusCode != http.StatusOK {
		return errors.WithStack(&ddns.RejectedError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	if err != nil {
		// 200 already received, the update went through
		c.logger.Debugf("Failed to read update response: %v", err)
	}
	return nil
}
