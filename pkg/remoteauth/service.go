package remoteauth

import (
	"context"
	"log/slog"
	"time"
)

// userCacheRefreshInterval is how long a fetched user snapshot stays fresh.
// Sign-in and sign-out completions bypass it with a forced refresh.
const userCacheRefreshInterval = 60 * time.Second

// LevelTrace is the slog level that enables trace output on the JavaScript
// side of the bridge.
const LevelTrace = slog.LevelDebug - 4

// AuthenticationService is the capability the Authenticator consumes.
// *Service implements it.
type AuthenticationService[S State] interface {
	SignIn(ctx context.Context, operation Context[S]) (Result[S], error)
	CompleteSignIn(ctx context.Context, operation Context[S]) (Result[S], error)
	SignOut(ctx context.Context, operation Context[S]) (Result[S], error)
	CompleteSignOut(ctx context.Context, operation Context[S]) (Result[S], error)
}

// TokenProvider is the capability the authorization attachment layer
// consumes. *Service implements it.
type TokenProvider interface {
	RequestAccessToken(ctx context.Context, options *AccessTokenRequestOptions) (AccessTokenResult, error)
}

// ChangeNotifier publishes authentication state changes. Subscribers are
// invoked with the refreshed principal after every successful sign-in or
// sign-out. *Service implements it.
type ChangeNotifier interface {
	// Subscribe registers fn and returns its deterministic unsubscribe.
	Subscribe(fn func(Principal)) (unsubscribe func())
}

// Service orchestrates the bridge: it runs sign-in/out operations, keeps a
// short-lived cache of the authenticated user, provisions access tokens,
// and notifies subscribers when the authentication state changes.
//
// A Service is bound to the framework's event loop; it is not safe for
// concurrent use from multiple goroutines.
type Service[S State] struct {
	bridge  Bridge[S]
	nav     Navigator
	factory PrincipalFactory
	options Options
	logger  *slog.Logger
	metrics *Metrics

	initialized bool

	cachedUser    Principal
	userLastCheck time.Time

	subscribers map[int]func(Principal)
	nextSubID   int

	now func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	factory PrincipalFactory
	logger  *slog.Logger
	metrics *Metrics
}

// WithPrincipalFactory replaces the default account-to-principal mapping.
func WithPrincipalFactory(factory PrincipalFactory) ServiceOption {
	return func(c *serviceConfig) {
		if factory != nil {
			c.factory = factory
		}
	}
}

// WithLogger sets the service logger. The logger's level also selects the
// JavaScript-side logging verbosity passed to the bridge during init.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(c *serviceConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records operation and token counters on m.
func WithMetrics(m *Metrics) ServiceOption {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// NewService creates a Service over the given bridge and navigator.
func NewService[S State](bridge Bridge[S], nav Navigator, options Options, opts ...ServiceOption) *Service[S] {
	cfg := serviceConfig{
		factory: ClaimsPrincipalFactory{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if options.Paths == nil {
		options.Paths = DefaultPaths()
	}
	if options.UserOptions.NameClaim == "" {
		options.UserOptions.NameClaim = DefaultUserOptions().NameClaim
	}
	if options.UserOptions.AuthenticationType == "" {
		if provider, ok := options.ProviderOptions.(*OIDCProviderOptions); ok {
			options.UserOptions.AuthenticationType = provider.ClientID
		}
	}
	return &Service[S]{
		bridge:      bridge,
		nav:         nav,
		factory:     cfg.factory,
		options:     options,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
		subscribers: make(map[int]func(Principal)),
		now:         time.Now,
	}
}

// SignIn starts a sign-in operation.
func (s *Service[S]) SignIn(ctx context.Context, operation Context[S]) (Result[S], error) {
	return s.run(ctx, "signIn", operation, s.bridge.SignIn)
}

// CompleteSignIn finishes a redirect sign-in flow. The operation context's
// URL carries the callback URL.
func (s *Service[S]) CompleteSignIn(ctx context.Context, operation Context[S]) (Result[S], error) {
	return s.runURL(ctx, "completeSignIn", operation.URL, s.bridge.CompleteSignIn)
}

// SignOut starts a sign-out operation.
func (s *Service[S]) SignOut(ctx context.Context, operation Context[S]) (Result[S], error) {
	return s.run(ctx, "signOut", operation, s.bridge.SignOut)
}

// CompleteSignOut finishes a redirect sign-out flow.
func (s *Service[S]) CompleteSignOut(ctx context.Context, operation Context[S]) (Result[S], error) {
	return s.runURL(ctx, "completeSignOut", operation.URL, s.bridge.CompleteSignOut)
}

func (s *Service[S]) run(ctx context.Context, op string, operation Context[S], call func(context.Context, Context[S]) (Result[S], error)) (Result[S], error) {
	if err := s.ensureBridge(ctx); err != nil {
		return Result[S]{}, err
	}
	result, err := call(ctx, operation)
	if err != nil {
		return Result[S]{}, err
	}
	s.metrics.observeOperation(op, result.Status)
	if err := s.updateUserOnSuccess(ctx, result); err != nil {
		return Result[S]{}, err
	}
	return result, nil
}

func (s *Service[S]) runURL(ctx context.Context, op, url string, call func(context.Context, string) (Result[S], error)) (Result[S], error) {
	if err := s.ensureBridge(ctx); err != nil {
		return Result[S]{}, err
	}
	result, err := call(ctx, url)
	if err != nil {
		return Result[S]{}, err
	}
	s.metrics.observeOperation(op, result.Status)
	if err := s.updateUserOnSuccess(ctx, result); err != nil {
		return Result[S]{}, err
	}
	return result, nil
}

// RequestAccessToken obtains an access token through the bridge. options
// may be nil to use the provider defaults. When the bridge reports that an
// interactive redirect is required, the result carries the interactive
// request to perform and the login path to perform it at.
func (s *Service[S]) RequestAccessToken(ctx context.Context, options *AccessTokenRequestOptions) (AccessTokenResult, error) {
	if err := s.ensureBridge(ctx); err != nil {
		return AccessTokenResult{}, err
	}
	response, err := s.bridge.GetAccessToken(ctx, options)
	if err != nil {
		return AccessTokenResult{}, err
	}
	s.metrics.observeTokenRequest(response.Status)

	result := AccessTokenResult{
		Status: response.Status,
		token:  response.Token,
	}
	if response.Status == TokenStatusRequiresRedirect {
		request := &InteractiveRequestOptions{
			Interaction: InteractionGetToken,
			ReturnURL:   s.tokenReturnURL(options),
		}
		if options != nil {
			request.Scopes = options.Scopes
		}
		result.InteractiveRequest = request
		result.InteractiveRequestURL = s.options.Paths.LogInPath
	}
	return result, nil
}

// CurrentUser returns the authenticated principal, consulting the cached
// snapshot unless it is older than userCacheRefreshInterval. An anonymous
// principal means no user is signed in.
func (s *Service[S]) CurrentUser(ctx context.Context) (Principal, error) {
	return s.user(ctx, true)
}

// Subscribe implements ChangeNotifier.
func (s *Service[S]) Subscribe(fn func(Principal)) func() {
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		delete(s.subscribers, id)
	}
}

func (s *Service[S]) user(ctx context.Context, useCache bool) (Principal, error) {
	now := s.now()
	if useCache && now.Before(s.userLastCheck.Add(userCacheRefreshInterval)) {
		return s.cachedUser, nil
	}
	account, err := s.fetchAccount(ctx)
	if err != nil {
		return Principal{}, err
	}
	principal, err := s.factory.CreatePrincipal(ctx, account, s.options.UserOptions)
	if err != nil {
		return Principal{}, err
	}
	s.cachedUser = principal
	s.userLastCheck = now
	s.metrics.observeUserRefresh()
	return principal, nil
}

func (s *Service[S]) fetchAccount(ctx context.Context) (Account, error) {
	if err := s.ensureBridge(ctx); err != nil {
		return nil, err
	}
	return s.bridge.GetUser(ctx)
}

func (s *Service[S]) updateUserOnSuccess(ctx context.Context, result Result[S]) error {
	if result.Status != StatusSuccess {
		return nil
	}
	principal, err := s.user(ctx, false)
	if err != nil {
		return err
	}
	s.logger.Debug("authentication state changed", "authenticated", principal.IsAuthenticated())
	for _, fn := range s.subscribers {
		fn(principal)
	}
	return nil
}

// ensureBridge performs the one-time bridge init, forwarding provider
// configuration and the logging verbosity derived from the service logger.
func (s *Service[S]) ensureBridge(ctx context.Context) error {
	if s.initialized {
		return nil
	}
	logging := LoggingOptions{
		DebugEnabled: s.logger.Enabled(ctx, slog.LevelDebug),
		TraceEnabled: s.logger.Enabled(ctx, LevelTrace),
	}
	if err := s.bridge.Init(ctx, s.options.ProviderOptions, logging); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

func (s *Service[S]) tokenReturnURL(options *AccessTokenRequestOptions) string {
	if options != nil && options.ReturnURL != "" {
		if abs, err := toAbsoluteURI(s.nav, options.ReturnURL); err == nil {
			return abs.String()
		}
	}
	return s.nav.URI()
}
