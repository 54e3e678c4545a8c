package probe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/jxo-me/curl-dyndns/internal/util"
	xlogger "github.com/jxo-me/curl-dyndns/sdk/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func slowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(delay):
			_, _ = io.WriteString(w, "203.0.113.9")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProber(t *testing.T, opts ...Option) *Prober {
	t.Helper()
	client := util.CreateHTTPClient()
	opts = append([]Option{ClientsOption(client, client), LoggerOption(xlogger.Nop())}, opts...)
	p, err := NewProber(opts...)
	require.NoError(t, err)
	return p
}

func TestProbeV4(t *testing.T) {
	srv := echoServer(t, http.StatusOK, " 203.0.113.5\n")
	p := newTestProber(t, IPv4URLsOption(srv.URL))

	assert.Equal(t, "203.0.113.5", p.ProbeV4(context.Background()))
}

func TestProbeV4Fallback(t *testing.T) {
	bad := echoServer(t, http.StatusBadGateway, "upstream down")
	good := echoServer(t, http.StatusOK, "198.51.100.7")
	p := newTestProber(t, IPv4URLsOption(bad.URL, " "+good.URL))

	assert.Equal(t, "198.51.100.7", p.ProbeV4(context.Background()))
}

func TestProbeV4NoAddress(t *testing.T) {
	tests := []struct {
		name string
		srv  *httptest.Server
	}{
		{"non 200", echoServer(t, http.StatusInternalServerError, "203.0.113.5")},
		{"garbage", echoServer(t, http.StatusOK, "<html>oops</html>")},
		{"wrong family", echoServer(t, http.StatusOK, "2001:db8::1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProber(t, IPv4URLsOption(tt.srv.URL))
			assert.Equal(t, "", p.ProbeV4(context.Background()))
		})
	}
}

func TestProbeV4Timeout(t *testing.T) {
	srv := slowServer(t, time.Second)
	p := newTestProber(t, IPv4URLsOption(srv.URL), LookupTimeoutOption(50*time.Millisecond))

	start := time.Now()
	assert.Equal(t, "", p.ProbeV4(context.Background()))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestProbeV4Unreachable(t *testing.T) {
	srv := echoServer(t, http.StatusOK, "203.0.113.5")
	url := srv.URL
	srv.Close()
	p := newTestProber(t, IPv4URLsOption(url))

	assert.Equal(t, "", p.ProbeV4(context.Background()))
}

func TestLookupClassification(t *testing.T) {
	p := newTestProber(t)
	valid := func(netip.Addr) bool { return true }

	_, err := p.lookup(context.Background(), p.v4Client, slowServer(t, time.Second).URL, 50*time.Millisecond, valid)
	assert.ErrorIs(t, err, ddns.ErrLookupTimeout)

	_, err = p.lookup(context.Background(), p.v4Client, echoServer(t, http.StatusOK, "nope").URL, time.Second, valid)
	assert.ErrorIs(t, err, ddns.ErrLookupInvalid)

	_, err = p.lookup(context.Background(), p.v4Client, echoServer(t, http.StatusNotFound, "").URL, time.Second, valid)
	assert.ErrorIs(t, err, ddns.ErrLookupNetwork)
}

type staticInterfaces struct {
	addrs []InterfaceAddr
	err   error
}

func (s staticInterfaces) Addrs() ([]InterfaceAddr, error) {
	return s.addrs, s.err
}

func TestProbeV6FromInterface(t *testing.T) {
	src := staticInterfaces{addrs: []InterfaceAddr{
		{Name: "eth0", CIDR: "192.168.1.10/24"},
		{Name: "eth0", CIDR: "fe80::1c2b:3ff:fe4d:5e6f/64"},
		{Name: "eth0", CIDR: "fd00::10/64"},
		{Name: "eth0", CIDR: "2a02:8070:abcd::42/64"},
		{Name: "eth1", CIDR: "2001:db8::7/64"},
	}}
	p := newTestProber(t, InterfacesOption(src))
	assert.Equal(t, "2a02:8070:abcd::42", p.ProbeV6(context.Background()))

	p = newTestProber(t, InterfacesOption(src), NetInterfaceOption("eth1"))
	assert.Equal(t, "2001:db8::7", p.ProbeV6(context.Background()))

	p = newTestProber(t, InterfacesOption(staticInterfaces{err: errors.New("netlink down")}))
	assert.Equal(t, "", p.ProbeV6(context.Background()))
}

func TestProbeV6FromURL(t *testing.T) {
	srv := echoServer(t, http.StatusOK, "2001:db8::99\n")
	p := newTestProber(t, IPv6GetTypeOption(consts.GetTypeURL), IPv6URLsOption(srv.URL))

	assert.Equal(t, "2001:db8::99", p.ProbeV6(context.Background()))
}

func TestNewProberErrors(t *testing.T) {
	_, err := NewProber(IPv6GetTypeOption("cmd"))
	assert.Error(t, err)

	_, err = NewProber(IPv6RegOption("("))
	assert.Error(t, err)
}

func TestSelectIPv6(t *testing.T) {
	reg := regexp.MustCompile(consts.DefaultIPv6Reg)
	addrs := []InterfaceAddr{
		{Name: "eth0", CIDR: "not an address"},
		{Name: "eth0", CIDR: "2001:db8::1/128"},
		{Name: "eth0", CIDR: "::ffff:10.0.0.1/96"},
		{Name: "eth0", CIDR: "2003:e1:bf1a:1200:4a2:6bff:fe3c:1234/64"},
		{Name: "eth0", CIDR: "2003:e1:bf1a:1200::9/64"},
	}

	assert.Equal(t, "2003:e1:bf1a:1200:4a2:6bff:fe3c:1234", SelectIPv6(addrs, "", reg))
	assert.Equal(t, "", SelectIPv6(addrs, "wlan0", reg))
	assert.Equal(t, "2001:db8::1", SelectIPv6(addrs, "", nil))
	assert.Equal(t, "", SelectIPv6(nil, "", reg))
}

type fakeProber struct {
	v4, v6  string
	delay   time.Duration
	v4Calls atomic.Int32
	v6Calls atomic.Int32
}

func (f *fakeProber) ProbeV4(ctx context.Context) string {
	f.v4Calls.Add(1)
	time.Sleep(f.delay)
	return f.v4
}

func (f *fakeProber) ProbeV6(ctx context.Context) string {
	f.v6Calls.Add(1)
	time.Sleep(f.delay)
	return f.v6
}

func TestProbeJoin(t *testing.T) {
	f := &fakeProber{v4: "203.0.113.5", v6: "2001:db8::1", delay: 100 * time.Millisecond}

	start := time.Now()
	pair := Probe(context.Background(), f, true, true)
	elapsed := time.Since(start)

	assert.Equal(t, "203.0.113.5", pair.V4)
	assert.Equal(t, "2001:db8::1", pair.V6)
	assert.Less(t, elapsed, 190*time.Millisecond, "probes should run concurrently")
}

func TestProbeOnlyRequiredFamilies(t *testing.T) {
	f := &fakeProber{v4: "203.0.113.5", v6: "2001:db8::1"}

	pair := Probe(context.Background(), f, false, true)
	assert.Equal(t, "", pair.V4)
	assert.Equal(t, "2001:db8::1", pair.V6)
	assert.Equal(t, int32(0), f.v4Calls.Load())
	assert.Equal(t, int32(1), f.v6Calls.Load())

	pair = Probe(context.Background(), f, false, false)
	assert.Equal(t, "", pair.V4+pair.V6)
	assert.Equal(t, int32(0), f.v4Calls.Load())
	assert.Equal(t, int32(1), f.v6Calls.Load())
}
