// Package handoff passes the paid order payload from checkout to order
// confirmation as a single-use message.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/crypto"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
)

var (
	ErrNotFound = errors.New("handoff payload not found")
	// ErrConsumed reports a handoff that was already taken by a reader.
	ErrConsumed = errors.New("handoff payload already consumed")
	// ErrUnreadable reports a stored payload that cannot be opened or decoded.
	ErrUnreadable = errors.New("handoff payload unreadable")
)

const (
	DefaultTTL      = 30 * time.Minute
	consumedTTL     = 24 * time.Hour
	consumedMarker  = "1"
	consumedKeyPart = "consumed:"
)

type Store struct {
	cache  cache.Provider
	sealer crypto.Sealer
	ttl    time.Duration
	logger *slog.Logger
}

func NewStore(provider cache.Provider, sealer crypto.Sealer, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	if provider == nil {
		return nil, fmt.Errorf("cache provider is required")
	}
	if sealer == nil {
		return nil, fmt.Errorf("sealer is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache:  provider,
		sealer: sealer,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Put stores payload under ref unless a payload is already waiting or the
// ref was consumed. A waiting payload is left untouched.
func (s *Store) Put(ctx context.Context, ref string, payload models.OrderPayload) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("handoff reference is required")
	}

	if _, err := s.cache.Get(ctx, consumedKey(ref)); err == nil {
		return ErrConsumed
	} else if !errors.Is(err, cache.ErrNotFound) {
		return fmt.Errorf("failed to check handoff state: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode handoff payload: %w", err)
	}
	key := cache.HandoffKey(ref)
	sealed, err := s.sealer.Seal(raw, key)
	if err != nil {
		return fmt.Errorf("failed to seal handoff payload: %w", err)
	}

	stored, err := s.cache.SetNX(ctx, key, sealed, s.ttl)
	if err != nil {
		return fmt.Errorf("failed to store handoff payload: %w", err)
	}
	if !stored {
		logging.FromContext(ctx, s.logger).Debug("handoff payload already waiting", "ref", ref)
	}
	return nil
}

// Take returns the payload for ref and removes it. The consumed marker is
// claimed before the payload is removed, so a Put racing with Take is refused
// and a second Take returns ErrConsumed. On failure the marker is released
// and the payload stays readable.
func (s *Store) Take(ctx context.Context, ref string) (models.OrderPayload, error) {
	var payload models.OrderPayload
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return payload, ErrNotFound
	}
	logger := logging.FromContext(ctx, s.logger)

	claimed, err := s.cache.SetNX(ctx, consumedKey(ref), consumedMarker, consumedTTL)
	if err != nil {
		return payload, fmt.Errorf("failed to claim handoff payload: %w", err)
	}
	if !claimed {
		return payload, ErrConsumed
	}
	release := func() {
		if err := s.cache.Delete(ctx, consumedKey(ref)); err != nil {
			logger.Error("failed to release handoff claim", "error", err, "ref", ref)
		}
	}

	key := cache.HandoffKey(ref)
	sealed, err := s.cache.Take(ctx, key)
	if err != nil {
		release()
		if errors.Is(err, cache.ErrNotFound) {
			return payload, ErrNotFound
		}
		return payload, fmt.Errorf("failed to take handoff payload: %w", err)
	}

	raw, err := s.sealer.Open(sealed, key)
	if err == nil {
		err = json.Unmarshal(raw, &payload)
	}
	if err != nil {
		if putErr := s.cache.Set(ctx, key, sealed, s.ttl); putErr != nil {
			logger.Error("failed to put back unreadable handoff payload", "error", putErr, "ref", ref)
		}
		release()
		return models.OrderPayload{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return payload, nil
}

// Restore puts a taken payload back under ref so the reader can retry after
// a failed save. It clears the consumed marker left by Take.
func (s *Store) Restore(ctx context.Context, ref string, payload models.OrderPayload) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("handoff reference is required")
	}
	if err := s.cache.Delete(ctx, consumedKey(ref)); err != nil {
		return fmt.Errorf("failed to clear handoff state: %w", err)
	}
	return s.Put(ctx, ref, payload)
}

// Pending reports whether a payload is waiting for ref.
func (s *Store) Pending(ctx context.Context, ref string) (bool, error) {
	_, err := s.cache.Get(ctx, cache.HandoffKey(strings.TrimSpace(ref)))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func consumedKey(ref string) string {
	return cache.HandoffKey(consumedKeyPart + ref)
}
