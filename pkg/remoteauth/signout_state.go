package remoteauth

import (
	"context"
	"encoding/json"
)

// SignOutStateKey is the session storage key for the legacy sign-out marker.
const SignOutStateKey = "remoteauth.signOutState"

// SessionStorage is browser session storage, reached across the interop
// boundary.
type SessionStorage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

type signOutState struct {
	Local bool `json:"local"`
}

// SignOutSessionStateManager validates that a logout was initiated from
// within the application using a session storage marker.
//
// This is a compatibility shim: logout initiation is now validated through
// the interactive request carried in the navigation history entry state
// (see NavigateToLogout). The manager remains for applications that still
// enter logout the old way, and is only consulted when no history entry
// state is present.
type SignOutSessionStateManager struct {
	storage SessionStorage
}

// NewSignOutSessionStateManager creates a manager over the given storage.
func NewSignOutSessionStateManager(storage SessionStorage) *SignOutSessionStateManager {
	return &SignOutSessionStateManager{storage: storage}
}

// SetSignOutState marks the current session as having initiated a logout.
func (m *SignOutSessionStateManager) SetSignOutState(ctx context.Context) error {
	value, err := json.Marshal(signOutState{Local: true})
	if err != nil {
		return err
	}
	return m.storage.SetItem(ctx, SignOutStateKey, string(value))
}

// ValidateSignOutState reports whether the session carries a local sign-out
// marker, clearing it when found so the marker is single use.
func (m *SignOutSessionStateManager) ValidateSignOutState(ctx context.Context) (bool, error) {
	raw, err := m.storage.GetItem(ctx, SignOutStateKey)
	if err != nil {
		return false, err
	}
	if raw == "" {
		return false, nil
	}
	var state signOutState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return false, nil
	}
	if !state.Local {
		return false, nil
	}
	if err := m.storage.RemoveItem(ctx, SignOutStateKey); err != nil {
		return false, err
	}
	return true, nil
}
