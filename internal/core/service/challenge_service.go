package service

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/justclick/storefront/internal/port"
)

// challengeCharset avoids characters that are ambiguous when drawn.
const challengeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const challengeLength = 5

// Challenge is a checkout gate: the presentation layer draws Answer
// for the user to copy back. It is rendered client-side, so this is a
// speed bump against accidental double submits and trivial bots, not a
// security boundary.
type Challenge struct {
	ID     string
	Answer string
}

// ChallengeService issues single-use, expiring challenges backed by
// the cache.
type ChallengeService struct {
	cache port.CacheRepository
	ttl   time.Duration
}

func NewChallengeService(cache port.CacheRepository, ttl time.Duration) *ChallengeService {
	return &ChallengeService{cache: cache, ttl: ttl}
}

// Issue creates a challenge and stores its answer. A cache failure is
// returned: without a stored answer the checkout gate cannot pass.
func (s *ChallengeService) Issue(ctx context.Context) (Challenge, error) {
	ch := Challenge{ID: uuid.New().String(), Answer: randomCode(challengeLength)}
	if err := s.cache.StoreChallenge(ctx, ch.ID, ch.Answer, s.ttl); err != nil {
		return Challenge{}, err
	}
	return ch, nil
}

// Verify redeems the challenge. Each challenge passes at most once:
// the stored answer is deleted on redemption regardless of whether the
// comparison matches.
func (s *ChallengeService) Verify(ctx context.Context, id, answer string) (bool, error) {
	want, ok, err := s.cache.RedeemChallenge(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(answer), want), nil
}

func randomCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = challengeCharset[rand.IntN(len(challengeCharset))]
	}
	return string(b)
}
