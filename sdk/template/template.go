package template

import (
	"strings"

	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/ddns"
)

// UpdateTemplate is the update url together with the placeholders it uses.
type UpdateTemplate struct {
	Raw        string
	RequiresV4 bool
	RequiresV6 bool
}

func Parse(raw string) UpdateTemplate {
	return UpdateTemplate{
		Raw:        raw,
		RequiresV4: strings.Contains(raw, consts.PlaceholderIPv4),
		RequiresV6: strings.Contains(raw, consts.PlaceholderIPv6),
	}
}

// HasPlaceholders reports whether the url carries any address.
func (t UpdateTemplate) HasPlaceholders() bool {
	return t.RequiresV4 || t.RequiresV6
}

func (t UpdateTemplate) Render(pair ddns.AddressPair) string {
	return Render(t.Raw, pair)
}

// Render replaces every placeholder in a single pass, missing addresses
// become "". Values are inserted verbatim.
func Render(raw string, pair ddns.AddressPair) string {
	r := strings.NewReplacer(
		consts.PlaceholderIPv4, pair.V4,
		consts.PlaceholderIPv6, pair.V6,
	)
	return r.Replace(raw)
}
