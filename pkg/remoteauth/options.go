package remoteauth

// Default authentication route paths, relative to the application base URI.
const (
	DefaultLogInPath           = "authentication/login"
	DefaultLogInCallbackPath   = "authentication/login-callback"
	DefaultLogInFailedPath     = "authentication/login-failed"
	DefaultLogOutPath          = "authentication/logout"
	DefaultLogOutCallbackPath  = "authentication/logout-callback"
	DefaultLogOutFailedPath    = "authentication/logout-failed"
	DefaultLogOutSucceededPath = "authentication/logged-out"
	DefaultProfilePath         = "authentication/profile"
	DefaultRegisterPath        = "authentication/register"
)

// PathsOptions are the application routes for each authentication action.
// Each path is independently overridable. The Remote* paths, when set, mark
// profile editing and registration as server-hosted: the Authenticator
// performs a full page redirect to them instead of rendering a fragment.
type PathsOptions struct {
	LogInPath           string
	LogInCallbackPath   string
	LogInFailedPath     string
	LogOutPath          string
	LogOutCallbackPath  string
	LogOutFailedPath    string
	LogOutSucceededPath string
	ProfilePath         string
	RemoteProfilePath   string
	RegisterPath        string
	RemoteRegisterPath  string
}

// DefaultPaths returns PathsOptions populated with the default routes.
func DefaultPaths() *PathsOptions {
	return &PathsOptions{
		LogInPath:           DefaultLogInPath,
		LogInCallbackPath:   DefaultLogInCallbackPath,
		LogInFailedPath:     DefaultLogInFailedPath,
		LogOutPath:          DefaultLogOutPath,
		LogOutCallbackPath:  DefaultLogOutCallbackPath,
		LogOutFailedPath:    DefaultLogOutFailedPath,
		LogOutSucceededPath: DefaultLogOutSucceededPath,
		ProfilePath:         DefaultProfilePath,
		RegisterPath:        DefaultRegisterPath,
	}
}

// UserOptions control how a raw bridge account maps to a Principal.
type UserOptions struct {
	// AuthenticationType names the authentication scheme on the mapped
	// identity. An identity with an authentication type counts as
	// authenticated.
	AuthenticationType string `json:"authenticationType,omitempty"`

	// NameClaim is the claim holding the display name. Default "name".
	NameClaim string `json:"nameClaim,omitempty"`

	// RoleClaim is the claim holding role memberships.
	RoleClaim string `json:"roleClaim,omitempty"`

	// ScopeClaim is the claim holding the granted scopes.
	ScopeClaim string `json:"scopeClaim,omitempty"`
}

// DefaultUserOptions returns the user mapping defaults.
func DefaultUserOptions() UserOptions {
	return UserOptions{NameClaim: "name"}
}

// OIDCProviderOptions is the provider configuration handed to the bridge's
// init call. The snake_case keys mirror the underlying JavaScript OIDC
// client's configuration surface and are part of the wire contract.
type OIDCProviderOptions struct {
	Authority             string            `json:"authority,omitempty"`
	MetadataURL           string            `json:"metadataUrl,omitempty"`
	ClientID              string            `json:"client_id,omitempty"`
	DefaultScopes         []string          `json:"defaultScopes,omitempty"`
	RedirectURI           string            `json:"redirect_uri,omitempty"`
	PostLogoutRedirectURI string            `json:"post_logout_redirect_uri,omitempty"`
	ResponseType          string            `json:"response_type,omitempty"`
	ResponseMode          string            `json:"response_mode,omitempty"`
	AdditionalParameters  map[string]string `json:"extraQueryParams,omitempty"`
}

// DefaultOIDCProviderOptions returns provider options with the standard
// default scopes.
func DefaultOIDCProviderOptions() *OIDCProviderOptions {
	return &OIDCProviderOptions{
		DefaultScopes: []string{"openid", "profile"},
	}
}

// LoggingOptions are the verbosity flags forwarded to the JavaScript side
// of the bridge during init.
type LoggingOptions struct {
	DebugEnabled bool `json:"debugEnabled"`
	TraceEnabled bool `json:"traceEnabled"`
}

// Options configure a Service.
type Options struct {
	// ProviderOptions is passed opaquely to the bridge's init call.
	// Typically an *OIDCProviderOptions.
	ProviderOptions any

	// Paths are the authentication route paths. Nil means DefaultPaths.
	Paths *PathsOptions

	// UserOptions control account-to-principal mapping.
	UserOptions UserOptions
}
