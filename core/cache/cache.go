package cache

import "github.com/jxo-me/curl-dyndns/core/ddns"

// IAddrCache is the last successfully applied address pair.
type IAddrCache interface {
	// Last returns the committed pair and whether anything was ever committed.
	Last() (ddns.AddressPair, bool)
	Commit(ddns.AddressPair)
	// IncreaseFailedTimes counts a failed update, Commit resets the count.
	IncreaseFailedTimes()
	GetFailedTimes() int
}
