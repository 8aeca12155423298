package auth

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost is the work factor used for every stored credential
const DefaultBcryptCost = 10

// BcryptHasher hashes and verifies passwords with bcrypt. Concurrent hash
// operations are bounded so a burst of sign-ins cannot starve the process.
type BcryptHasher struct {
	cost   int
	sem    *semaphore.Weighted
	logger Logger

	// dummyDigest is prepared once at construction so the first unknown
	// account costs the same as every later one.
	dummyDigest []byte
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher with the given cost and worker bound.
// Zero values fall back to DefaultBcryptCost and GOMAXPROCS.
func NewBcryptHasher(cost, workers int, logger Logger) *BcryptHasher {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	h := &BcryptHasher{
		cost:   cost,
		sem:    semaphore.NewWeighted(int64(workers)),
		logger: normalizeLogger(logger),
	}

	digest, err := bcrypt.GenerateFromPassword([]byte("authd-dummy-credential"), cost)
	if err != nil {
		h.logger.Error("failed to prepare dummy digest", "error", err)
	} else {
		h.dummyDigest = digest
	}

	return h
}

// Cost returns the configured work factor
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of secret
func (h *BcryptHasher) Hash(ctx context.Context, secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}

	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		// the bcrypt errors never include the input
		h.logger.Error("password hashing failed", "error", err)
		return "", withSource(ErrHashingFailure, err)
	}
	return string(digest), nil
}

// Verify compares secret against digest. bcrypt compares in constant time.
func (h *BcryptHasher) Verify(ctx context.Context, secret, digest string) (bool, error) {
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, withSource(ErrVerificationFailure, err)
	}
}

// Burn spends the same work as a real verification against a throwaway
// digest. Sign-in uses it for unknown accounts so timing stays uniform.
func (h *BcryptHasher) Burn(ctx context.Context, secret string) {
	if h.dummyDigest == nil {
		return
	}

	if err := h.acquire(ctx); err != nil {
		return
	}
	defer h.sem.Release(1)

	_ = bcrypt.CompareHashAndPassword(h.dummyDigest, []byte(secret))
}

func (h *BcryptHasher) acquire(ctx context.Context) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return internalError(err, "password worker unavailable")
	}
	return nil
}
