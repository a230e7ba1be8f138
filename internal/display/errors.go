package display

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds, one per way an invocation can go wrong. Every mutating
// operation reports the specific kind plus the parameters that caused it, so
// the dispatcher can surface them verbatim and map exit codes without
// re-interpreting anything.

// NoPrimaryDisplayError reports that the X server has no primary output set.
type NoPrimaryDisplayError struct{}

func (e *NoPrimaryDisplayError) Error() string {
	return "no primary display reported by the X server"
}

// UnsupportedModeError reports a requested mode absent from the supported
// set. Closest holds the nearest enumerated modes for diagnostics only; they
// are never auto-selected.
type UnsupportedModeError struct {
	Request Request
	Closest []Mode
}

func (e *UnsupportedModeError) Error() string {
	msg := fmt.Sprintf("mode %s is not supported by the display", e.Request)
	if len(e.Closest) == 0 {
		return msg
	}
	names := make([]string, 0, len(e.Closest))
	for _, m := range e.Closest {
		names = append(names, m.String())
	}
	return msg + " (closest supported: " + strings.Join(names, ", ") + ")"
}

// ModeApplyRejectedError reports that the server refused the mode change:
// the parameters were individually valid but not jointly acceptable.
type ModeApplyRejectedError struct {
	Mode   Mode
	Reason string
}

func (e *ModeApplyRejectedError) Error() string {
	return fmt.Sprintf("display rejected mode %s: %s", e.Mode, e.Reason)
}

// ModeApplyUnknownError reports an unexpected failure during the mode change.
type ModeApplyUnknownError struct {
	Mode Mode
	Err  error
}

func (e *ModeApplyUnknownError) Error() string {
	return fmt.Sprintf("applying mode %s failed: %v", e.Mode, e.Err)
}

func (e *ModeApplyUnknownError) Unwrap() error { return e.Err }

// BoostUnsupportedError reports that the display is not in an HDR-enabled
// state, so there is no SDR white level to adjust.
type BoostUnsupportedError struct {
	Output   string
	Property string
}

func (e *BoostUnsupportedError) Error() string {
	return fmt.Sprintf("display %s does not expose %s; SDR boost requires HDR to be active", e.Output, e.Property)
}

// BoostApplyFailedError reports a failed SDR white level write.
type BoostApplyFailedError struct {
	Output string
	Level  int
	Err    error
}

func (e *BoostApplyFailedError) Error() string {
	return fmt.Sprintf("setting SDR boost level %d on %s failed: %v", e.Level, e.Output, e.Err)
}

func (e *BoostApplyFailedError) Unwrap() error { return e.Err }

// ProfileNotAssociatedError reports a profile name not found among the
// profiles the color manager associates with the display. This tool never
// installs or associates profiles.
type ProfileNotAssociatedError struct {
	Output     string
	Profile    string
	Associated []string
}

func (e *ProfileNotAssociatedError) Error() string {
	if len(e.Associated) == 0 {
		return fmt.Sprintf("profile %q is not associated with display %s (no profiles associated)", e.Profile, e.Output)
	}
	return fmt.Sprintf("profile %q is not associated with display %s (associated: %s)",
		e.Profile, e.Output, strings.Join(e.Associated, ", "))
}

// ProfileApplyFailedError reports a failed default-profile activation.
type ProfileApplyFailedError struct {
	Output  string
	Profile string
	Err     error
}

func (e *ProfileApplyFailedError) Error() string {
	return fmt.Sprintf("setting profile %q as default for display %s failed: %v", e.Profile, e.Output, e.Err)
}

func (e *ProfileApplyFailedError) Unwrap() error { return e.Err }

// Kind names the failure taxonomy entry for err, for structured log events.
func Kind(err error) string {
	var (
		noPrimary     *NoPrimaryDisplayError
		unsupported   *UnsupportedModeError
		rejected      *ModeApplyRejectedError
		applyUnknown  *ModeApplyUnknownError
		boostUnsupp   *BoostUnsupportedError
		boostFailed   *BoostApplyFailedError
		notAssociated *ProfileNotAssociatedError
		profileFailed *ProfileApplyFailedError
	)
	switch {
	case errors.As(err, &noPrimary):
		return "NoPrimaryDisplay"
	case errors.As(err, &unsupported):
		return "UnsupportedMode"
	case errors.As(err, &rejected):
		return "ModeApplyRejected"
	case errors.As(err, &applyUnknown):
		return "ModeApplyUnknown"
	case errors.As(err, &boostUnsupp):
		return "BoostUnsupported"
	case errors.As(err, &boostFailed):
		return "BoostApplyFailed"
	case errors.As(err, &notAssociated):
		return "ProfileNotAssociated"
	case errors.As(err, &profileFailed):
		return "ProfileApplyFailed"
	default:
		return "Unknown"
	}
}
