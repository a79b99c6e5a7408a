package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"splitpay-api/internal/domain"
)

const profileKeyPrefix = "profile:"

type ProfileStore interface {
	ProfilesByUUIDs(ctx context.Context, uuids []string) ([]domain.Profile, error)
}

type ProfileCache interface {
	MGet(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// UserDirectory resolves display profiles by userUUID with an optional
// read-through cache. Cache errors degrade to database reads.
type UserDirectory struct {
	store ProfileStore
	cache ProfileCache
	ttl   time.Duration
}

// NewUserDirectory accepts a nil cache.
func NewUserDirectory(store ProfileStore, cache ProfileCache, ttl time.Duration) *UserDirectory {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &UserDirectory{store: store, cache: cache, ttl: ttl}
}

func profileKey(userUUID string) string {
	return profileKeyPrefix + userUUID
}

func (d *UserDirectory) Resolve(ctx context.Context, userUUID string) (domain.Profile, error) {
	found, err := d.ResolveMany(ctx, []string{userUUID})
	if err != nil {
		return domain.Profile{}, err
	}
	p, ok := found[userUUID]
	if !ok {
		return domain.Profile{}, &domain.NotFoundError{Entity: "user", ID: userUUID}
	}
	return p, nil
}

// ResolveMany returns the profiles it could find; unknown uuids are absent.
func (d *UserDirectory) ResolveMany(ctx context.Context, uuids []string) (map[string]domain.Profile, error) {
	out := make(map[string]domain.Profile, len(uuids))
	missing := make([]string, 0, len(uuids))

	if d.cache != nil && len(uuids) > 0 {
		keys := make([]string, len(uuids))
		for i, u := range uuids {
			keys[i] = profileKey(u)
		}
		cached, err := d.cache.MGet(ctx, keys...)
		if err != nil {
			slog.Warn("profile cache read failed", "error", err)
		}
		for _, u := range uuids {
			raw, ok := cached[profileKey(u)]
			if !ok {
				missing = append(missing, u)
				continue
			}
			var p domain.Profile
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				missing = append(missing, u)
				continue
			}
			out[u] = p
		}
	} else {
		missing = append(missing, uuids...)
	}

	if len(missing) == 0 {
		return out, nil
	}

	profiles, err := d.store.ProfilesByUUIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserUUID] = p
		d.remember(ctx, p)
	}
	return out, nil
}

func (d *UserDirectory) remember(ctx context.Context, p domain.Profile) {
	if d.cache == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, profileKey(p.UserUUID), raw, d.ttl); err != nil {
		slog.Warn("profile cache write failed", "user_uuid", p.UserUUID, "error", err)
	}
}

// Forget drops cached profiles after a user changes.
func (d *UserDirectory) Forget(ctx context.Context, uuids ...string) {
	if d.cache == nil || len(uuids) == 0 {
		return
	}
	keys := make([]string, len(uuids))
	for i, u := range uuids {
		keys[i] = profileKey(u)
	}
	if err := d.cache.Del(ctx, keys...); err != nil {
		slog.Warn("profile cache invalidation failed", "error", err)
	}
}
