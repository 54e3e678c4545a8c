package hook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/jxo-me/curl-dyndns/core/hook"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/jxo-me/curl-dyndns/internal/util"
	"github.com/pkg/errors"
)

const (
	Code = "webhook"

	maxResponseBody = 1 << 10
)

// Webhook Webhook
type Webhook struct {
	WebhookURL         string
	WebhookRequestBody string
	WebhookHeaders     string

	client *http.Client
	logger logger.ILogger
}

var _ hook.IHook = (*Webhook)(nil)

// hasJSONPrefix returns true if the string starts with a JSON open brace.
func hasJSONPrefix(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func NewHook(url string, requestBody string, headers string, client *http.Client, log logger.ILogger) *Webhook {
	if client == nil {
		client = util.CreateHTTPClient()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Webhook{
		WebhookURL:         url,
		WebhookRequestBody: requestBody,
		WebhookHeaders:     headers,
		client:             client,
		logger:             log,
	}
}

func (w *Webhook) String() string {
	return Code
}

// ExecHook 更新成功或失败时调用 webhook, 未变化时不调用
func (w *Webhook) ExecHook(ctx context.Context, outcome ddns.Outcome) error {
	if w.WebhookURL == "" || outcome.Status == consts.UpdatedNothing {
		return nil
	}

	method := http.MethodGet
	postPara := ""
	contentType := "application/x-www-form-urlencoded"
	if w.WebhookRequestBody != "" {
		method = http.MethodPost
		postPara = replacePara(w.WebhookRequestBody, outcome)
		if json.Valid([]byte(postPara)) {
			contentType = "application/json"
			// 如果 RequestBody 的 JSON 无效但前缀为 JSON 括号则为 JSON
		} else if hasJSONPrefix(postPara) {
			w.logger.Warn("Webhook RequestBody is not valid JSON")
		}
	}

	requestURL := replacePara(w.WebhookURL, outcome)
	u, err := url.Parse(requestURL)
	if err != nil {
		return errors.Wrap(err, "webhook url")
	}
	u.RawQuery = u.Query().Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(postPara))
	if err != nil {
		return errors.Wrap(err, "create webhook request")
	}
	for key, value := range w.CheckParseHeaders(w.WebhookHeaders) {
		req.Header.Add(key, value)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "call webhook")
	}
	body, _ := util.ReadLimited(resp.Body, maxResponseBody)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("webhook returned status %d: %q", resp.StatusCode, body)
	}
	w.logger.Infof("Webhook called successfully, response: %q", body)
	return nil
}

// replacePara 替换参数
func replacePara(orgPara string, outcome ddns.Outcome) string {
	errText := ""
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}
	return strings.NewReplacer(
		"#{ipv4Addr}", outcome.Addrs.V4,
		"#{ipv6Addr}", outcome.Addrs.V6,
		"#{result}", string(outcome.Status),
		"#{error}", errText,
	).Replace(orgPara)
}

// CheckParseHeaders 一行一个 Header
func (w *Webhook) CheckParseHeaders(headerStr string) (headers map[string]string) {
	headers = make(map[string]string)
	headerStr = strings.ReplaceAll(headerStr, "\r\n", "\n")
	for _, line := range strings.Split(headerStr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			w.logger.Warnf("Invalid webhook header %q", line)
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}
