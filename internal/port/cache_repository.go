package port

import (
	"context"
	"time"
)

// CacheRepository is the local persistent key-value store used for the
// cart ledger blob and checkout challenges. Cart operations are best
// effort: callers keep working from memory when they fail.
type CacheRepository interface {
	// SaveCart serializes the key→quantity mapping under a fixed key.
	SaveCart(ctx context.Context, entries map[string]int) error

	// LoadCart reads the mapping back; an absent blob is an empty cart,
	// not an error.
	LoadCart(ctx context.Context) (map[string]int, error)

	// StoreChallenge records a challenge answer under id for ttl.
	StoreChallenge(ctx context.Context, id, answer string, ttl time.Duration) error

	// RedeemChallenge returns and deletes the answer for id. ok is
	// false when the challenge is unknown, expired or already used.
	RedeemChallenge(ctx context.Context, id string) (answer string, ok bool, err error)
}
