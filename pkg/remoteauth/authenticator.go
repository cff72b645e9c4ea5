package remoteauth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// UserProvider reports the current authenticated principal. *Service
// implements it.
type UserProvider interface {
	CurrentUser(ctx context.Context) (Principal, error)
}

// Authenticator is the UI-facing authentication state machine. It consumes
// a navigation action, drives the AuthenticationService through the
// matching operation, and issues the follow-up navigation. Fragment
// selection is independent of the asynchronous processing, so the host can
// render a "processing" fragment while an operation is still in flight.
//
// An Authenticator owns its State for the duration of one action and is
// bound to the framework's event loop; it is not safe for concurrent use.
type Authenticator[S State] struct {
	service AuthenticationService[S]
	users   UserProvider
	nav     Navigator
	state   S
	paths   *PathsOptions
	logger  *slog.Logger

	signOutManager *SignOutSessionStateManager

	onSignInSucceeded  func(S)
	onSignOutSucceeded func(S)

	action        string
	actionHandled bool
	lastHandled   string

	cachedRequest       *InteractiveRequestOptions
	cachedRequestParsed bool
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption[S State] func(*Authenticator[S])

// WithAuthenticatorPaths overrides the default authentication route paths.
func WithAuthenticatorPaths[S State](paths *PathsOptions) AuthenticatorOption[S] {
	return func(a *Authenticator[S]) {
		if paths != nil {
			a.paths = paths
		}
	}
}

// WithAuthenticatorLogger sets the logger.
func WithAuthenticatorLogger[S State](logger *slog.Logger) AuthenticatorOption[S] {
	return func(a *Authenticator[S]) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSignOutManager enables the legacy session storage validation of
// logout initiation, consulted only when no history entry state is present.
func WithSignOutManager[S State](m *SignOutSessionStateManager) AuthenticatorOption[S] {
	return func(a *Authenticator[S]) {
		a.signOutManager = m
	}
}

// WithUserProvider sets the source of the current authenticated principal.
// Defaults to the service when it implements UserProvider.
func WithUserProvider[S State](users UserProvider) AuthenticatorOption[S] {
	return func(a *Authenticator[S]) {
		a.users = users
	}
}

// OnSignInSucceeded registers a callback invoked once per completed
// sign-in, before the follow-up navigation.
func OnSignInSucceeded[S State](fn func(S)) AuthenticatorOption[S] {
	return func(a *Authenticator[S]) {
		a.onSignInSucceeded = fn
	}
}

// OnSignOutSucceeded registers a callback invoked once per completed
// sign-out, before the follow-up navigation.
func OnSignOutSucceeded[S State](fn func(S)) AuthenticatorOption[S] {
	return func(a *Authenticator[S]) {
		a.onSignOutSucceeded = fn
	}
}

// NewAuthenticator creates the state machine over a service, a navigator
// and the application authentication state for the current action.
func NewAuthenticator[S State](service AuthenticationService[S], nav Navigator, state S, opts ...AuthenticatorOption[S]) *Authenticator[S] {
	a := &Authenticator[S]{
		service: service,
		nav:     nav,
		state:   state,
		paths:   DefaultPaths(),
		logger:  slog.Default(),
	}
	if users, ok := service.(UserProvider); ok {
		a.users = users
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleAction dispatches the state machine for the given navigation
// action. Dispatching the same action value again is a no-op, which guards
// against duplicate parameter updates re-running a flow.
//
// Flow failures never surface here; they turn into navigations to the
// configured failure paths. Returned errors are programmer errors: an
// unknown action, an invalid bridge result status, or a failed interop
// round trip.
func (a *Authenticator[S]) HandleAction(ctx context.Context, action string) error {
	action = strings.ToLower(action)
	a.action = action
	if a.actionHandled && a.lastHandled == action {
		return nil
	}
	a.actionHandled = true
	a.lastHandled = action

	a.logger.Debug("processing authenticator action", "action", action)
	switch action {
	case ActionLogIn:
		return a.processLogIn(ctx, a.returnURL(nil, ""))
	case ActionLogInCallback:
		return a.processLogInCallback(ctx)
	case ActionLogInFailed:
		return nil
	case ActionProfile:
		return a.redirectToProfile()
	case ActionRegister:
		return a.redirectToRegister()
	case ActionLogOut:
		return a.processLogOut(ctx, a.returnURL(nil, a.paths.LogOutSucceededPath))
	case ActionLogOutCallback:
		return a.processLogOutCallback(ctx)
	case ActionLogOutFailed:
		return nil
	case ActionLogOutSucceeded:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
}

// Fragment returns the render instruction for the current action. It is a
// pure function of the action and the configured paths, and may be called
// before the asynchronous processing has finished.
func (a *Authenticator[S]) Fragment() (Fragment, error) {
	switch a.action {
	case ActionLogIn:
		return Fragment{Slot: FragmentLoggingIn}, nil
	case ActionLogInCallback:
		return Fragment{Slot: FragmentCompletingLoggingIn}, nil
	case ActionLogInFailed:
		return Fragment{Slot: FragmentLogInFailed, Message: a.nav.HistoryEntryState()}, nil
	case ActionProfile:
		if a.paths.RemoteProfilePath == "" {
			return Fragment{Slot: FragmentProfileNotSupported}, nil
		}
		return Fragment{Slot: FragmentUserProfile}, nil
	case ActionRegister:
		if a.paths.RemoteRegisterPath == "" {
			return Fragment{Slot: FragmentRegisterNotSupported}, nil
		}
		return Fragment{Slot: FragmentRegistering}, nil
	case ActionLogOut:
		return Fragment{Slot: FragmentLogOut}, nil
	case ActionLogOutCallback:
		return Fragment{Slot: FragmentCompletingLogOut}, nil
	case ActionLogOutFailed:
		return Fragment{Slot: FragmentLogOutFailed, Message: a.nav.HistoryEntryState()}, nil
	case ActionLogOutSucceeded:
		return Fragment{Slot: FragmentLogOutSucceeded}, nil
	default:
		return Fragment{}, fmt.Errorf("%w: %q", ErrInvalidAction, a.action)
	}
}

func (a *Authenticator[S]) processLogIn(ctx context.Context, returnURL string) error {
	a.state.SetReturnURL(returnURL)
	result, err := a.service.SignIn(ctx, Context[S]{
		State:              a.state,
		InteractiveRequest: a.cachedNavigationState(),
	})
	if err != nil {
		return err
	}

	switch result.Status {
	case StatusRedirect:
		a.logger.Debug("login requires redirect")
		return nil
	case StatusSuccess:
		a.logger.Debug("login completed successfully")
		if a.onSignInSucceeded != nil {
			a.onSignInSucceeded(result.State)
		}
		a.navigate(a.returnURL(result.State, returnURL), "")
		return nil
	case StatusFailure:
		a.logger.Debug("login failed", "error", result.ErrorMessage)
		a.navigate(a.paths.LogInFailedPath, result.ErrorMessage)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResultStatus, result.Status)
	}
}

func (a *Authenticator[S]) processLogInCallback(ctx context.Context) error {
	result, err := a.service.CompleteSignIn(ctx, Context[S]{URL: a.nav.URI()})
	if err != nil {
		return err
	}

	switch result.Status {
	case StatusRedirect:
		// Completing a redirect sign-in flow is the end of the redirect;
		// the bridge asking for another one means it misbehaved.
		return ErrShouldNotRedirect
	case StatusSuccess:
		a.logger.Debug("login callback completed successfully")
		if a.onSignInSucceeded != nil {
			a.onSignInSucceeded(result.State)
		}
		a.navigate(a.returnURL(result.State, ""), "")
		return nil
	case StatusOperationCompleted:
		return nil
	case StatusFailure:
		a.logger.Debug("login callback failed", "error", result.ErrorMessage)
		a.navigate(a.paths.LogInFailedPath, result.ErrorMessage)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResultStatus, result.Status)
	}
}

func (a *Authenticator[S]) processLogOut(ctx context.Context, returnURL string) error {
	valid, err := a.validateLogOutInitiation(ctx)
	if err != nil {
		return err
	}
	if !valid {
		a.logger.Debug("logout operation was initiated externally")
		a.navigate(a.paths.LogOutFailedPath, "The logout was not initiated from within the page.")
		return nil
	}

	a.state.SetReturnURL(returnURL)

	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if !user.IsAuthenticated() {
		a.navigate(returnURL, "")
		return nil
	}

	result, err := a.service.SignOut(ctx, Context[S]{
		State:              a.state,
		InteractiveRequest: a.cachedNavigationState(),
	})
	if err != nil {
		return err
	}

	switch result.Status {
	case StatusRedirect:
		a.logger.Debug("logout requires redirect")
		return nil
	case StatusSuccess:
		a.logger.Debug("logout completed successfully")
		if a.onSignOutSucceeded != nil {
			a.onSignOutSucceeded(result.State)
		}
		a.navigate(returnURL, "")
		return nil
	case StatusOperationCompleted:
		return nil
	case StatusFailure:
		a.logger.Debug("logout failed", "error", result.ErrorMessage)
		a.navigate(a.paths.LogOutFailedPath, result.ErrorMessage)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResultStatus, result.Status)
	}
}

func (a *Authenticator[S]) processLogOutCallback(ctx context.Context) error {
	result, err := a.service.CompleteSignOut(ctx, Context[S]{URL: a.nav.URI()})
	if err != nil {
		return err
	}

	switch result.Status {
	case StatusRedirect:
		return ErrShouldNotRedirect
	case StatusSuccess:
		a.logger.Debug("logout callback completed successfully")
		if a.onSignOutSucceeded != nil {
			a.onSignOutSucceeded(result.State)
		}
		a.navigate(a.returnURL(result.State, a.paths.LogOutSucceededPath), "")
		return nil
	case StatusOperationCompleted:
		return nil
	case StatusFailure:
		a.logger.Debug("logout callback failed", "error", result.ErrorMessage)
		a.navigate(a.paths.LogOutFailedPath, result.ErrorMessage)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResultStatus, result.Status)
	}
}

// validateLogOutInitiation checks that the logout was initiated from within
// the application: the interactive request carried in history entry state
// must be a sign-out request, or, when no history entry state is present,
// the legacy session storage marker must validate.
func (a *Authenticator[S]) validateLogOutInitiation(ctx context.Context) (bool, error) {
	if a.nav.HistoryEntryState() != "" {
		request := a.cachedNavigationState()
		return request != nil && request.Interaction == InteractionSignOut, nil
	}
	if a.signOutManager == nil {
		return false, nil
	}
	return a.signOutManager.ValidateSignOutState(ctx)
}

func (a *Authenticator[S]) currentUser(ctx context.Context) (Principal, error) {
	if a.users == nil {
		return Principal{}, nil
	}
	return a.users.CurrentUser(ctx)
}

// returnURL resolves where to navigate after an operation: the state's
// return URL, then the cached interactive request's, then defaultURL, then
// the application base URI.
func (a *Authenticator[S]) returnURL(state State, defaultURL string) string {
	if !isNil(state) {
		if u := state.GetReturnURL(); u != "" {
			return u
		}
	}
	if request := a.cachedNavigationState(); request != nil && request.ReturnURL != "" {
		return request.ReturnURL
	}
	if defaultURL != "" {
		return defaultURL
	}
	return a.nav.BaseURI()
}

// cachedNavigationState parses the interactive request out of the current
// history entry state once per action. Absent or malformed state yields nil.
func (a *Authenticator[S]) cachedNavigationState() *InteractiveRequestOptions {
	if a.cachedRequestParsed {
		return a.cachedRequest
	}
	a.cachedRequestParsed = true
	state := a.nav.HistoryEntryState()
	if state == "" {
		return nil
	}
	request, err := InteractiveRequestFromState(state)
	if err != nil {
		a.logger.Warn("discarding malformed history entry state", "error", err)
		return nil
	}
	a.cachedRequest = request
	return a.cachedRequest
}

func (a *Authenticator[S]) navigate(uri, historyState string) {
	opts := authNavigationOptions
	opts.HistoryEntryState = historyState
	a.logger.Debug("navigating", "uri", uri)
	a.nav.NavigateTo(uri, opts)
}

func (a *Authenticator[S]) redirectToProfile() error {
	if a.paths.RemoteProfilePath == "" {
		return nil
	}
	target, err := toAbsoluteURI(a.nav, a.paths.RemoteProfilePath)
	if err != nil {
		return err
	}
	a.nav.NavigateTo(target.String(), NavigateOptions{ReplaceHistoryEntry: true, ForceLoad: true})
	return nil
}

func (a *Authenticator[S]) redirectToRegister() error {
	if a.paths.RemoteRegisterPath == "" {
		return nil
	}
	login, err := toAbsoluteURI(a.nav, a.paths.LogInPath)
	if err != nil {
		return err
	}
	target, err := toAbsoluteURI(a.nav, a.paths.RemoteRegisterPath)
	if err != nil {
		return err
	}
	query := target.Query()
	query.Set("returnUrl", login.RequestURI())
	target.RawQuery = query.Encode()
	a.nav.NavigateTo(target.String(), NavigateOptions{ReplaceHistoryEntry: true, ForceLoad: true})
	return nil
}
