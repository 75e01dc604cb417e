// Package authgate is the single choke point for proving the device holder
// is present before secret material is released or mutated.
package authgate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxwallet/walletd/internal/apperr"
)

// Result is the outcome of one authentication challenge.
type Result struct {
	OK     bool
	Reason apperr.AuthReason // set when OK is false
}

// Err converts a denied result into a taxonomy error. Returns nil when granted.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	switch r.Reason {
	case apperr.ReasonUserCancelled:
		return apperr.Auth(r.Reason, "authentication cancelled")
	case apperr.ReasonNoEnrolledMethod:
		return apperr.Auth(r.Reason, "no authentication method enrolled")
	default:
		return apperr.Auth(apperr.ReasonSystem, "authentication failed")
	}
}

// Challenger is the platform boundary that actually proves presence.
type Challenger interface {
	Challenge(ctx context.Context, prompt string) Result
}

// Gate serializes challenges. A second challenge is never issued while one is
// pending: concurrent callers wait on the in-flight challenge and share its
// result. An optional grace window skips re-challenging shortly after a grant.
type Gate struct {
	ch    Challenger
	grace time.Duration
	log   zerolog.Logger

	mu          sync.Mutex
	inflight    *inflight
	lastGranted time.Time
}

type inflight struct {
	done chan struct{}
	res  Result
}

// New creates a gate around the given challenger. grace of zero means every
// sensitive operation re-challenges.
func New(ch Challenger, grace time.Duration, log zerolog.Logger) *Gate {
	return &Gate{ch: ch, grace: grace, log: log.With().Str("component", "authgate").Logger()}
}

// Challenge runs (or joins) an authentication challenge.
func (g *Gate) Challenge(ctx context.Context, prompt string) Result {
	g.mu.Lock()

	if g.grace > 0 && !g.lastGranted.IsZero() && time.Since(g.lastGranted) < g.grace {
		g.mu.Unlock()
		return Result{OK: true}
	}

	if fl := g.inflight; fl != nil {
		g.mu.Unlock()
		select {
		case <-fl.done:
			return fl.res
		case <-ctx.Done():
			return Result{Reason: apperr.ReasonUserCancelled}
		}
	}

	fl := &inflight{done: make(chan struct{})}
	g.inflight = fl
	g.mu.Unlock()

	res := g.ch.Challenge(ctx, prompt)

	g.mu.Lock()
	fl.res = res
	g.inflight = nil
	if res.OK {
		g.lastGranted = time.Now()
	}
	g.mu.Unlock()
	close(fl.done)

	if !res.OK {
		g.log.Debug().Str("reason", string(res.Reason)).Msg("authentication denied")
	}
	return res
}

// PassphraseChallenger proves presence by possession of the vault passphrase.
// In a headless daemon this stands in for the platform biometric flow.
type PassphraseChallenger struct {
	// Passphrase supplies the configured passphrase bytes; the returned
	// slice is zeroed after verification.
	Passphrase func() ([]byte, error)
	// Verify checks the passphrase against the vault. May be nil when no
	// vault exists yet (possession of the configured passphrase suffices).
	Verify func(passphrase []byte) error
}

// Challenge implements Challenger. A missing configured passphrase is denied
// with no-enrolled-method; "no lock configured" is never treated as granted.
func (c *PassphraseChallenger) Challenge(ctx context.Context, prompt string) Result {
	select {
	case <-ctx.Done():
		return Result{Reason: apperr.ReasonUserCancelled}
	default:
	}

	if c.Passphrase == nil {
		return Result{Reason: apperr.ReasonNoEnrolledMethod}
	}
	pass, err := c.Passphrase()
	if err != nil || len(pass) == 0 {
		return Result{Reason: apperr.ReasonNoEnrolledMethod}
	}
	defer clear(pass)

	if c.Verify != nil {
		if err := c.Verify(pass); err != nil {
			return Result{Reason: apperr.ReasonSystem}
		}
	}
	return Result{OK: true}
}
