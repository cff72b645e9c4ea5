package remoteauth

import "fmt"

// FragmentSlot names the UI fragment a host renderer should paint for the
// current authentication action. The core only selects the slot; how it is
// painted belongs entirely to the host framework.
type FragmentSlot int

const (
	// FragmentNone means no action has been set yet.
	FragmentNone FragmentSlot = iota

	// FragmentLoggingIn shows while the sign-in operation runs.
	FragmentLoggingIn

	// FragmentCompletingLoggingIn shows while a sign-in callback completes.
	FragmentCompletingLoggingIn

	// FragmentLogInFailed shows the sign-in failure message.
	FragmentLogInFailed

	// FragmentUserProfile shows the application's profile UI.
	FragmentUserProfile

	// FragmentProfileNotSupported shows when no remote profile path is
	// configured.
	FragmentProfileNotSupported

	// FragmentRegistering shows the application's registration UI.
	FragmentRegistering

	// FragmentRegisterNotSupported shows when no remote register path is
	// configured.
	FragmentRegisterNotSupported

	// FragmentLogOut shows while the sign-out operation runs.
	FragmentLogOut

	// FragmentCompletingLogOut shows while a sign-out callback completes.
	FragmentCompletingLogOut

	// FragmentLogOutFailed shows the sign-out failure message.
	FragmentLogOutFailed

	// FragmentLogOutSucceeded shows after a completed sign-out.
	FragmentLogOutSucceeded
)

// String returns the slot name for logs and tests.
func (s FragmentSlot) String() string {
	switch s {
	case FragmentNone:
		return "none"
	case FragmentLoggingIn:
		return "logging-in"
	case FragmentCompletingLoggingIn:
		return "completing-logging-in"
	case FragmentLogInFailed:
		return "login-failed"
	case FragmentUserProfile:
		return "user-profile"
	case FragmentProfileNotSupported:
		return "profile-not-supported"
	case FragmentRegistering:
		return "registering"
	case FragmentRegisterNotSupported:
		return "register-not-supported"
	case FragmentLogOut:
		return "logout"
	case FragmentCompletingLogOut:
		return "completing-logout"
	case FragmentLogOutFailed:
		return "logout-failed"
	case FragmentLogOutSucceeded:
		return "logged-out"
	default:
		return fmt.Sprintf("FragmentSlot(%d)", int(s))
	}
}

// Fragment is a pending render instruction: which slot is active and, for
// the failure slots, the message recovered from history entry state.
type Fragment struct {
	Slot    FragmentSlot
	Message string
}
