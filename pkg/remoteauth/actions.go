package remoteauth

import "strings"

// The set of navigation actions the Authenticator understands. The host
// router extracts the action from the authentication route and passes it to
// Authenticator.HandleAction verbatim; matching is case-insensitive.
const (
	ActionLogIn           = "login"
	ActionLogInCallback   = "login-callback"
	ActionLogInFailed     = "login-failed"
	ActionProfile         = "profile"
	ActionRegister        = "register"
	ActionLogOut          = "logout"
	ActionLogOutCallback  = "logout-callback"
	ActionLogOutFailed    = "logout-failed"
	ActionLogOutSucceeded = "logged-out"
)

// IsAction reports whether action names candidate, ignoring case.
func IsAction(action, candidate string) bool {
	return action != "" && strings.EqualFold(action, candidate)
}
