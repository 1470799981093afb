package security

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"axiapac.com/timeclock/timeclock/v1/common/role"
)

// AuthContext holds the token, role and user id of the signed-in user.
// The three always change together.
type AuthContext struct {
	mu       sync.RWMutex
	creds    Credentials
	identity Identity
	store    CredentialStore
}

func NewAuthContext(store CredentialStore) *AuthContext {
	return &AuthContext{store: store}
}

// Restore loads previously saved credentials. It returns ErrNoCredentials
// when nobody is signed in.
func (a *AuthContext) Restore() error {
	if a.store == nil {
		return ErrNoCredentials
	}
	creds, err := a.store.Load()
	if err != nil {
		return err
	}
	identity, err := identityFromCredentials(creds)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.creds = creds
	a.identity = identity
	a.mu.Unlock()
	return nil
}

// SignIn replaces the current session with a new token.
// userID and role come from the login response; when empty they are read from the token.
func (a *AuthContext) SignIn(token, userID string, r role.Role, expiresAt time.Time) error {
	creds := Credentials{Token: token, UserID: userID, Role: string(r), ExpiresAt: expiresAt}
	identity, err := identityFromCredentials(creds)
	if err != nil {
		return err
	}
	creds.UserID = identity.UserID
	creds.Role = string(identity.Role)
	creds.ExpiresAt = identity.ExpiresAt

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		if err := a.store.Save(creds); err != nil {
			return err
		}
	}
	a.creds = creds
	a.identity = identity
	return nil
}

// Logout clears the in-memory and persisted session.
func (a *AuthContext) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creds = Credentials{}
	a.identity = Identity{}
	if a.store != nil {
		return a.store.Clear()
	}
	return nil
}

func (a *AuthContext) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.Token
}

func (a *AuthContext) Identity() (Identity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity, a.creds.Token != ""
}

// Require returns the identity or ErrNoCredentials when signed out or expired.
func (a *AuthContext) Require(now time.Time) (Identity, error) {
	identity, ok := a.Identity()
	if !ok {
		return Identity{}, ErrNoCredentials
	}
	if identity.Expired(now) {
		return Identity{}, fmt.Errorf("%w: token expired at %s", ErrNoCredentials, identity.ExpiresAt.Format(time.RFC3339))
	}
	return identity, nil
}

func identityFromCredentials(creds Credentials) (Identity, error) {
	if creds.Token == "" {
		return Identity{}, ErrNoCredentials
	}

	identity, err := ParseIdentity(creds.Token)
	if err != nil && !(errors.Is(err, ErrInvalidToken) && creds.UserID != "") {
		return Identity{}, err
	}
	if creds.UserID != "" {
		identity.UserID = creds.UserID
	}
	if creds.Role != "" {
		r, err := role.Parse(creds.Role)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		identity.Role = r
	}
	if !creds.ExpiresAt.IsZero() {
		identity.ExpiresAt = creds.ExpiresAt
	}
	if identity.Role == "" {
		return Identity{}, fmt.Errorf("%w: missing role", ErrInvalidToken)
	}
	return identity, nil
}
