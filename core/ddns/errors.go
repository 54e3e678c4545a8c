package ddns

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

var (
	ErrConfigMissing  = errors.New("update url is empty")
	ErrLookupTimeout  = errors.New("address lookup timed out")
	ErrLookupNetwork  = errors.New("address lookup failed")
	ErrLookupInvalid  = errors.New("address lookup returned no usable address")
	ErrUpdateTimeout  = errors.New("dns update timed out")
	ErrUpdateNetwork  = errors.New("dns update request failed")
	ErrUpdateRejected = errors.New("dns update rejected")
)

// RejectedError carries the provider answer of a non-200 update.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s with status %d: %s", ErrUpdateRejected, e.StatusCode, e.Body)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrUpdateRejected
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// LookupError classifies a failed address lookup.
func LookupError(err error) error {
	if err == nil {
		return nil
	}
	if IsTimeout(err) {
		return errors.Wrap(ErrLookupTimeout, err.Error())
	}
	return errors.Wrap(ErrLookupNetwork, err.Error())
}

// UpdateError classifies a failed provider request. Rejections pass through.
func UpdateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpdateRejected) {
		return err
	}
	if IsTimeout(err) {
		return errors.Wrap(ErrUpdateTimeout, err.Error())
	}
	return errors.Wrap(ErrUpdateNetwork, err.Error())
}
