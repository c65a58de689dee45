// Package session supplies the current user identity. The library acts
// on behalf of one signed-in user; who that user is comes from here.
package session

import (
	"context"
	"sync"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/wastebank/storefront/apperrors"
)

// Session answers "who is the current user". Implementations return
// apperrors.ErrNotAuthenticated when nobody is signed in.
type Session interface {
	UserID(ctx context.Context) (string, error)
}

// Static is a fixed identity, for tests and tooling.
type Static struct {
	UID string
}

func (s Static) UserID(context.Context) (string, error) {
	if s.UID == "" {
		return "", apperrors.ErrNotAuthenticated
	}
	return s.UID, nil
}

// TokenSession derives the identity from a Firebase ID token handed
// over by the UI. The token is verified once; the uid is cached for the
// session's lifetime.
type TokenSession struct {
	auth    *fbauth.Client
	idToken string

	mu  sync.Mutex
	uid string
}

func NewTokenSession(auth *fbauth.Client, idToken string) *TokenSession {
	return &TokenSession{auth: auth, idToken: idToken}
}

func (s *TokenSession) UserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uid != "" {
		return s.uid, nil
	}
	if s.idToken == "" {
		return "", apperrors.ErrNotAuthenticated
	}

	tok, err := s.auth.VerifyIDToken(ctx, s.idToken)
	if err != nil {
		return "", apperrors.ErrNotAuthenticated.With(err)
	}
	s.uid = tok.UID
	return s.uid, nil
}
