package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"axiapac.com/timeclock/session"
	"axiapac.com/timeclock/utils"
)

// CookieStore keeps each record as an expiring cookie, one Set-Cookie line
// per file under dir.
type CookieStore struct {
	dir   string
	clock utils.Clock
}

func NewCookieStore(dir string, clock utils.Clock) *CookieStore {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &CookieStore{dir: dir, clock: clock}
}

func (s *CookieStore) path(key string) string {
	return filepath.Join(s.dir, key+".cookie")
}

func (s *CookieStore) Load(_ context.Context, key string) (session.Record, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return session.Record{}, session.ErrNoSession
		}
		return session.Record{}, fmt.Errorf("read session cookie: %w", err)
	}

	cookie, err := http.ParseSetCookie(strings.TrimSpace(string(raw)))
	if err != nil || cookie.Name != key {
		return session.Record{}, session.ErrMalformedRecord
	}

	if !cookie.Expires.IsZero() && !s.clock.Now().Before(cookie.Expires) {
		if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
			return session.Record{}, fmt.Errorf("remove expired session cookie: %w", err)
		}
		return session.Record{}, session.ErrNoSession
	}

	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return session.Record{}, session.ErrMalformedRecord
	}
	return decode(value)
}

func (s *CookieStore) Save(_ context.Context, key string, rec session.Record, expires time.Time) error {
	payload, err := encode(rec)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(payload),
		Path:     "/",
		Expires:  expires.UTC(),
		SameSite: http.SameSiteLaxMode,
	}
	line := cookie.String()
	if line == "" {
		return fmt.Errorf("invalid session cookie name %q", key)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(line+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session cookie: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("write session cookie: %w", err)
	}
	return nil
}

func (s *CookieStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session cookie: %w", err)
	}
	return nil
}
