package hook

import (
	"context"

	"github.com/jxo-me/curl-dyndns/core/ddns"
)

type IHook interface {
	String() string
	ExecHook(ctx context.Context, outcome ddns.Outcome) error
}
