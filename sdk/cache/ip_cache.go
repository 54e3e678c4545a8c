package cache

import (
	"sync"

	"github.com/jxo-me/curl-dyndns/core/cache"
	"github.com/jxo-me/curl-dyndns/core/ddns"
)

// AddrCache 上次成功更新的IP
type AddrCache struct {
	mu            sync.Mutex
	last          ddns.AddressPair
	committed     bool
	TimesFailedIP int // 连续更新失败的次数
}

var _ cache.IAddrCache = (*AddrCache)(nil)

func (d *AddrCache) Last() (ddns.AddressPair, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.committed
}

func (d *AddrCache) Commit(pair ddns.AddressPair) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = pair
	d.committed = true
	d.TimesFailedIP = 0
}

func (d *AddrCache) IncreaseFailedTimes() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.TimesFailedIP++
}

func (d *AddrCache) GetFailedTimes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.TimesFailedIP
}

// ShouldUpdate is false only when the url carries at least one address and
// every address it carries is unchanged.
func ShouldUpdate(current, last ddns.AddressPair, requiresV4, requiresV6 bool) bool {
	if !requiresV4 && !requiresV6 {
		return true
	}
	if requiresV4 && current.V4 != last.V4 {
		return true
	}
	if requiresV6 && current.V6 != last.V6 {
		return true
	}
	return false
}
