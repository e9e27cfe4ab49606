package access

import (
	"errors"
	"fmt"
)

// Reason is why a link was refused. Every reason is logged; callers only
// ever see the Outcome it collapses to.
type Reason int

const (
	FeatureDisabled Reason = iota + 1
	Malformed
	Expired
	Revoked
	NotFound
	Forbidden
	// StreamError is raised by delivery after verification succeeded.
	StreamError
)

func (r Reason) String() string {
	switch r {
	case FeatureDisabled:
		return "feature_disabled"
	case Malformed:
		return "malformed"
	case Expired:
		return "expired"
	case Revoked:
		return "revoked"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case StreamError:
		return "stream_error"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Outcome is the user-facing state a denial renders as.
type Outcome int

const (
	OutcomeDenied Outcome = iota
	OutcomeExpired
)

// Outcome collapses reasons so the response never reveals which check
// failed. Only expiry is actionable for the holder and shown as such.
func (r Reason) Outcome() Outcome {
	if r == Expired {
		return OutcomeExpired
	}
	return OutcomeDenied
}

// Denial is the error returned for a refused link.
type Denial struct {
	Reason Reason
	// Err is the underlying cause, if any. Never shown to the requester.
	Err error
}

func (d *Denial) Error() string {
	if d.Err != nil {
		return fmt.Sprintf("access denied: %s: %v", d.Reason, d.Err)
	}
	return "access denied: " + d.Reason.String()
}

func (d *Denial) Unwrap() error {
	return d.Err
}

func deny(reason Reason, err error) *Denial {
	return &Denial{Reason: reason, Err: err}
}

// ReasonOf extracts the denial reason from err. ok is false when err is
// not a Denial.
func ReasonOf(err error) (reason Reason, ok bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d.Reason, true
	}
	return 0, false
}
