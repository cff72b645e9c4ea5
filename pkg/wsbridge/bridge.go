package wsbridge

import (
	"context"

	"github.com/vango-dev/remoteauth/pkg/remoteauth"
)

// Bridge adapts a Conn to the remoteauth.Bridge interface. Method names
// and argument shapes follow the bridge wire contract.
type Bridge[S remoteauth.State] struct {
	conn *Conn
}

// New creates a Bridge over an established connection.
func New[S remoteauth.State](conn *Conn) *Bridge[S] {
	return &Bridge[S]{conn: conn}
}

// Init implements remoteauth.Bridge.
func (b *Bridge[S]) Init(ctx context.Context, providerOptions any, logging remoteauth.LoggingOptions) error {
	return b.conn.Invoke(ctx, "init", nil, providerOptions, logging)
}

// SignIn implements remoteauth.Bridge.
func (b *Bridge[S]) SignIn(ctx context.Context, operation remoteauth.Context[S]) (remoteauth.Result[S], error) {
	var result remoteauth.Result[S]
	err := b.conn.Invoke(ctx, "signIn", &result, operation)
	return result, err
}

// CompleteSignIn implements remoteauth.Bridge.
func (b *Bridge[S]) CompleteSignIn(ctx context.Context, url string) (remoteauth.Result[S], error) {
	var result remoteauth.Result[S]
	err := b.conn.Invoke(ctx, "completeSignIn", &result, url)
	return result, err
}

// SignOut implements remoteauth.Bridge.
func (b *Bridge[S]) SignOut(ctx context.Context, operation remoteauth.Context[S]) (remoteauth.Result[S], error) {
	var result remoteauth.Result[S]
	err := b.conn.Invoke(ctx, "signOut", &result, operation)
	return result, err
}

// CompleteSignOut implements remoteauth.Bridge.
func (b *Bridge[S]) CompleteSignOut(ctx context.Context, url string) (remoteauth.Result[S], error) {
	var result remoteauth.Result[S]
	err := b.conn.Invoke(ctx, "completeSignOut", &result, url)
	return result, err
}

// GetAccessToken implements remoteauth.Bridge. A nil options is omitted
// from the call frame so the JavaScript side sees an argument-less call.
func (b *Bridge[S]) GetAccessToken(ctx context.Context, options *remoteauth.AccessTokenRequestOptions) (remoteauth.TokenResponse, error) {
	var response remoteauth.TokenResponse
	var err error
	if options == nil {
		err = b.conn.Invoke(ctx, "getAccessToken", &response)
	} else {
		err = b.conn.Invoke(ctx, "getAccessToken", &response, options)
	}
	return response, err
}

// GetUser implements remoteauth.Bridge.
func (b *Bridge[S]) GetUser(ctx context.Context) (remoteauth.Account, error) {
	var account remoteauth.Account
	err := b.conn.Invoke(ctx, "getUser", &account)
	return account, err
}

// SessionStorage exposes browser session storage over the same connection,
// for the legacy sign-out state manager.
type SessionStorage struct {
	conn *Conn
}

// NewSessionStorage creates a SessionStorage over an established connection.
func NewSessionStorage(conn *Conn) *SessionStorage {
	return &SessionStorage{conn: conn}
}

// GetItem implements remoteauth.SessionStorage. A missing key yields "".
func (s *SessionStorage) GetItem(ctx context.Context, key string) (string, error) {
	var value *string
	if err := s.conn.Invoke(ctx, "sessionStorage.getItem", &value, key); err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// SetItem implements remoteauth.SessionStorage.
func (s *SessionStorage) SetItem(ctx context.Context, key, value string) error {
	return s.conn.Invoke(ctx, "sessionStorage.setItem", nil, key, value)
}

// RemoveItem implements remoteauth.SessionStorage.
func (s *SessionStorage) RemoveItem(ctx context.Context, key string) error {
	return s.conn.Invoke(ctx, "sessionStorage.removeItem", nil, key)
}
