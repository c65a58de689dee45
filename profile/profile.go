// Package profile reads and edits the user record under users/{uid}.
package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/wastebank/storefront/logger"
	"github.com/wastebank/storefront/models"
	"github.com/wastebank/storefront/remote"
	"github.com/wastebank/storefront/session"
)

type Service struct {
	store   remote.Store
	session session.Session
	log     *zap.Logger
}

// NewService builds a Service. A nil log falls back to the
// package-global logger.
func NewService(store remote.Store, sess session.Session, log *zap.Logger) *Service {
	if log == nil {
		log = logger.Log
	}
	return &Service{store: store, session: sess, log: log}
}

func userPath(uid string) string {
	return "users/" + uid
}

// GetProfile reads the whole user record. Missing fields come back
// zero-valued; the cart subtree under the same node is ignored.
func (s *Service) GetProfile(ctx context.Context) (*models.Profile, error) {
	uid, err := s.session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := s.store.Get(ctx, userPath(uid))
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := snap.Unmarshal(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetUserName returns the display name, with the same placeholder the
// payment record uses when the name is absent.
func (s *Service) GetUserName(ctx context.Context) (string, error) {
	uid, err := s.session.UserID(ctx)
	if err != nil {
		return "", err
	}

	snap, err := s.store.Get(ctx, userPath(uid)+"/name")
	if err != nil {
		return "", err
	}
	name := ""
	if err := snap.Unmarshal(&name); err != nil || name == "" {
		return "Unknown", nil
	}
	return name, nil
}

// GetUserPoint returns the user's waste deposit point balance.
func (s *Service) GetUserPoint(ctx context.Context) (int, error) {
	uid, err := s.session.UserID(ctx)
	if err != nil {
		return 0, err
	}

	snap, err := s.store.Get(ctx, userPath(uid)+"/point")
	if err != nil {
		return 0, err
	}
	point := 0
	if err := snap.Unmarshal(&point); err != nil {
		return 0, err
	}
	return point, nil
}

// UpdateProfile writes the editable fields one by one. The record is
// never set wholesale: the cart lives under the same node and a full
// set would wipe it.
func (s *Service) UpdateProfile(ctx context.Context, p models.Profile) error {
	uid, err := s.session.UserID(ctx)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"name":        p.Name,
		"email":       p.Email,
		"phoneNumber": p.PhoneNumber,
		"gender":      p.Gender,
	}
	for key, value := range fields {
		if err := s.store.Set(ctx, userPath(uid)+"/"+key, value); err != nil {
			return err
		}
	}
	s.log.Info("profile updated", zap.String("uid", uid))
	return nil
}
