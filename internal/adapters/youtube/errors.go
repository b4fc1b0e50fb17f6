package youtube

import (
	"errors"
	"fmt"

	perr "recordsync/internal/platform/errors"

	"google.golang.org/api/googleapi"
)

// reasons the API uses for budget and rate exhaustion
var quotaReasons = map[string]struct{}{
	"quotaExceeded":         {},
	"dailyLimitExceeded":    {},
	"rateLimitExceeded":     {},
	"userRateLimitExceeded": {},
}

// QuotaError is returned when the remote refused a call for quota reasons
type QuotaError struct {
	Op     string
	Reason string
	Err    error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("youtube %s: quota exhausted (%s)", e.Op, e.Reason)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// IsQuota reports whether err carries a QuotaError
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// classify turns provider failures into a QuotaError or a wrapped project error
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		for _, it := range gerr.Errors {
			if _, ok := quotaReasons[it.Reason]; ok {
				return &QuotaError{Op: op, Reason: it.Reason, Err: err}
			}
		}
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "youtube %s failed with status %d", op, gerr.Code)
	}
	return perr.Wrapf(err, perr.ErrorCodeUnavailable, "youtube %s failed", op)
}
