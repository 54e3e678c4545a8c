package hook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jxo-me/curl-dyndns/core/ddns"
	xlogger "github.com/jxo-me/curl-dyndns/sdk/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	method      string
	query       string
	body        string
	contentType string
	auth        string
}

func hookServer(t *testing.T, status int) (*httptest.Server, func() []received) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []received
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, received{
			method:      r.Method,
			query:       r.URL.RawQuery,
			body:        string(body),
			contentType: r.Header.Get("Content-Type"),
			auth:        r.Header.Get("Authorization"),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []received {
		mu.Lock()
		defer mu.Unlock()
		return append([]received(nil), reqs...)
	}
}

func TestExecHookGet(t *testing.T) {
	srv, reqs := hookServer(t, http.StatusOK)
	w := NewHook(srv.URL+"/notify?ip=#{ipv4Addr}&result=#{result}", "", "", nil, xlogger.Nop())

	err := w.ExecHook(context.Background(), ddns.Succeeded(ddns.AddressPair{V4: "203.0.113.5"}))

	require.NoError(t, err)
	got := reqs()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodGet, got[0].method)
	assert.Equal(t, "ip=203.0.113.5&result=Success", got[0].query)
}

func TestExecHookPostJSON(t *testing.T) {
	srv, reqs := hookServer(t, http.StatusOK)
	w := NewHook(srv.URL, `{"v6":"#{ipv6Addr}","error":"#{error}"}`, "Authorization: Bearer KEY\r\nbroken", nil, xlogger.Nop())

	err := w.ExecHook(context.Background(), ddns.Failed(ddns.AddressPair{V6: "2001:db8::1"}, ddns.ErrUpdateTimeout))

	require.NoError(t, err)
	got := reqs()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, "application/json", got[0].contentType)
	assert.Equal(t, "Bearer KEY", got[0].auth)
	assert.JSONEq(t, `{"v6":"2001:db8::1","error":"dns update timed out"}`, got[0].body)
}

func TestExecHookSkipsUnchanged(t *testing.T) {
	srv, reqs := hookServer(t, http.StatusOK)
	w := NewHook(srv.URL, "", "", nil, xlogger.Nop())

	require.NoError(t, w.ExecHook(context.Background(), ddns.Skipped(ddns.AddressPair{}, "addresses unchanged")))
	assert.Empty(t, reqs())

	require.NoError(t, NewHook("", "", "", nil, nil).ExecHook(context.Background(), ddns.Succeeded(ddns.AddressPair{})))
}

func TestExecHookErrorStatus(t *testing.T) {
	srv, _ := hookServer(t, http.StatusInternalServerError)
	w := NewHook(srv.URL, "", "", nil, xlogger.Nop())

	err := w.ExecHook(context.Background(), ddns.Failed(ddns.AddressPair{}, errors.New("boom")))
	assert.Error(t, err)
}

func TestCheckParseHeaders(t *testing.T) {
	w := NewHook("", "", "", nil, xlogger.Nop())
	headers := w.CheckParseHeaders("X-A: 1\nX-Url: https://example.com\r\n\n:bad\nnocolon")

	assert.Equal(t, map[string]string{
		"X-A":   "1",
		"X-Url": "https://example.com",
	}, headers)
}
