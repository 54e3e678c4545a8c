package cache

import (
	"testing"

	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/stretchr/testify/assert"
)

func TestShouldUpdateWithoutPlaceholders(t *testing.T) {
	pairs := []ddns.AddressPair{
		{},
		{V4: "203.0.113.5"},
		{V4: "203.0.113.5", V6: "2001:db8::1"},
	}
	for _, current := range pairs {
		for _, last := range pairs {
			assert.True(t, ShouldUpdate(current, last, false, false))
		}
	}
}

func TestShouldUpdateUnchanged(t *testing.T) {
	same := ddns.AddressPair{V4: "203.0.113.5", V6: "2001:db8::1"}

	assert.False(t, ShouldUpdate(same, same, true, false))
	assert.False(t, ShouldUpdate(same, same, false, true))
	assert.False(t, ShouldUpdate(same, same, true, true))
	// v6 failed again after being empty on the last commit
	assert.False(t, ShouldUpdate(ddns.AddressPair{V4: "203.0.113.5"}, ddns.AddressPair{V4: "203.0.113.5"}, true, true))
}

func TestShouldUpdateChanged(t *testing.T) {
	last := ddns.AddressPair{V4: "203.0.113.5", V6: "2001:db8::1"}

	assert.True(t, ShouldUpdate(ddns.AddressPair{V4: "203.0.113.6", V6: "2001:db8::1"}, last, true, false))
	assert.True(t, ShouldUpdate(ddns.AddressPair{V4: "203.0.113.5", V6: "2001:db8::2"}, last, false, true))
	assert.True(t, ShouldUpdate(ddns.AddressPair{V4: "203.0.113.5"}, last, true, true))
	// a change in a family the url does not carry is ignored
	assert.False(t, ShouldUpdate(ddns.AddressPair{V4: "203.0.113.5", V6: "2001:db8::2"}, last, true, false))
}

func TestAddrCache(t *testing.T) {
	c := &AddrCache{}

	last, committed := c.Last()
	assert.False(t, committed)
	assert.Equal(t, ddns.AddressPair{}, last)

	c.IncreaseFailedTimes()
	c.IncreaseFailedTimes()
	assert.Equal(t, 2, c.GetFailedTimes())

	pair := ddns.AddressPair{V4: "203.0.113.5"}
	c.Commit(pair)
	last, committed = c.Last()
	assert.True(t, committed)
	assert.Equal(t, pair, last)
	assert.Equal(t, 0, c.GetFailedTimes())

	c.IncreaseFailedTimes()
	assert.Equal(t, 1, c.GetFailedTimes())
}
