package ddns

import (
	"context"
	"fmt"

	"github.com/jxo-me/curl-dyndns/consts"
)

// AddressPair holds one address per family, "" means no address.
type AddressPair struct {
	V4 string `json:"v4,omitempty" yaml:"v4,omitempty"`
	V6 string `json:"v6,omitempty" yaml:"v6,omitempty"`
}

func (p AddressPair) String() string {
	return fmt.Sprintf("v4: %s / v6: %s", orNone(p.V4), orNone(p.V6))
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

// Outcome is the result of a single update cycle.
type Outcome struct {
	Status consts.UpdateStatusType
	Addrs  AddressPair
	// Reason is set when the cycle was skipped.
	Reason string
	// Err is set when the cycle failed.
	Err error
	// FailedTimes counts failed updates in a row, this one included.
	FailedTimes int
}

func Succeeded(addrs AddressPair) Outcome {
	return Outcome{Status: consts.UpdatedSuccess, Addrs: addrs}
}

func Skipped(addrs AddressPair, reason string) Outcome {
	return Outcome{Status: consts.UpdatedNothing, Addrs: addrs, Reason: reason}
}

func Failed(addrs AddressPair, err error) Outcome {
	return Outcome{Status: consts.UpdatedFailed, Addrs: addrs, Err: err}
}

func (o Outcome) String() string {
	switch o.Status {
	case consts.UpdatedNothing:
		return fmt.Sprintf("%s (%s)", o.Status, o.Reason)
	case consts.UpdatedFailed:
		return fmt.Sprintf("%s (%v)", o.Status, o.Err)
	default:
		return string(o.Status)
	}
}

// IDDNS interface
type IDDNS interface {
	String() string
	// Endpoint is the configured update url template
	Endpoint() string
	// Update runs one probe -> gate -> request cycle.
	Update(ctx context.Context) Outcome
}
