package probe

import "context"

// IProber resolves the current public addresses. "" means no address,
// lookup failures are never returned as errors.
type IProber interface {
	ProbeV4(ctx context.Context) string
	ProbeV6(ctx context.Context) string
}
