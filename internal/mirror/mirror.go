// Package mirror keeps a best-effort key-value copy of the workspace
// (collaborators, sessions, plans, locations) next to the remote store.
//
// Reads never fail: a missing or unreadable entry degrades to an empty value,
// and the caller carries on with whatever the remote store delivers.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"couple-plans-backend-go/internal/crypto"
	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/pkg/cache"
)

const (
	KeyUsers         = "cp.users"
	KeyPlans         = "cp.plans"
	KeyLocations     = "cp.locations"
	keySessionPrefix = "cp.session."

	sessionTTL = 30 * 24 * time.Hour
)

// Store is the local mirror over a cache backend.
type Store struct {
	cache      cache.Cache
	sessionKey []byte // optional AES-256 key for session entries
	logger     *zap.Logger
}

// New creates a mirror Store. sessionKey may be nil, in which case sessions are stored in clear.
func New(c cache.Cache, sessionKey []byte, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cache: c, sessionKey: sessionKey, logger: logger}
}

func (s *Store) readJSON(ctx context.Context, key string, dst any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("mirror read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("mirror entry is corrupt, ignoring", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) writeJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mirror: encode %s: %w", key, err)
	}
	if err := s.cache.Set(ctx, key, string(raw), ttl); err != nil {
		return fmt.Errorf("mirror: write %s: %w", key, err)
	}
	return nil
}

// Users returns the mirrored collaborator list.
func (s *Store) Users(ctx context.Context) []models.User {
	var users []models.User
	if !s.readJSON(ctx, KeyUsers, &users) {
		return []models.User{}
	}
	return users
}

func (s *Store) SetUsers(ctx context.Context, users []models.User) error {
	return s.writeJSON(ctx, KeyUsers, users, 0)
}

// Plans returns the mirrored plan list.
func (s *Store) Plans(ctx context.Context) []models.Plan {
	var plans []models.Plan
	if !s.readJSON(ctx, KeyPlans, &plans) {
		return []models.Plan{}
	}
	return plans
}

func (s *Store) SetPlans(ctx context.Context, plans []models.Plan) error {
	if plans == nil {
		plans = []models.Plan{}
	}
	return s.writeJSON(ctx, KeyPlans, plans, 0)
}

// Locations returns the mirrored location suggestions.
func (s *Store) Locations(ctx context.Context) []string {
	var locations []string
	if !s.readJSON(ctx, KeyLocations, &locations) {
		return []string{}
	}
	return locations
}

func (s *Store) SetLocations(ctx context.Context, locations []string) error {
	if locations == nil {
		locations = []string{}
	}
	return s.writeJSON(ctx, KeyLocations, locations, 0)
}

// Session returns the mirrored session for uid, if any.
func (s *Store) Session(ctx context.Context, uid string) (*models.Session, bool) {
	key := keySessionPrefix + uid
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("mirror session read failed", zap.String("uid", uid), zap.Error(err))
		}
		return nil, false
	}
	if s.sessionKey != nil {
		raw, err = crypto.Decrypt(raw, s.sessionKey)
		if err != nil {
			s.logger.Warn("mirror session could not be decrypted", zap.String("uid", uid), zap.Error(err))
			return nil, false
		}
	}
	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, false
	}
	return &session, true
}

func (s *Store) SetSession(ctx context.Context, session models.Session) error {
	if session.UID == "" {
		return errors.New("mirror: session uid is required")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("mirror: encode session: %w", err)
	}
	value := string(raw)
	if s.sessionKey != nil {
		value, err = crypto.Encrypt(value, s.sessionKey)
		if err != nil {
			return fmt.Errorf("mirror: encrypt session: %w", err)
		}
	}
	return s.cache.Set(ctx, keySessionPrefix+session.UID, value, sessionTTL)
}

func (s *Store) ClearSession(ctx context.Context, uid string) error {
	return s.cache.Delete(ctx, keySessionPrefix+uid)
}

// SeedIfEmpty writes the given defaults into each mirror entry that is still empty.
func (s *Store) SeedIfEmpty(ctx context.Context, users []models.User, locations []string, plans []models.Plan) error {
	if len(s.Users(ctx)) == 0 && len(users) > 0 {
		if err := s.SetUsers(ctx, users); err != nil {
			return err
		}
	}
	if len(s.Locations(ctx)) == 0 && len(locations) > 0 {
		if err := s.SetLocations(ctx, locations); err != nil {
			return err
		}
	}
	if len(s.Plans(ctx)) == 0 && len(plans) > 0 {
		if err := s.SetPlans(ctx, plans); err != nil {
			return err
		}
	}
	return nil
}
