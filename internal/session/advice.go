// internal/session/advice.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultDebounce is the quiet period after the last threshold edit before
	// visible advice is recomputed.
	DefaultDebounce = 100 * time.Millisecond

	// DefaultRefreshTimeout bounds a debounced advice request.
	DefaultRefreshTimeout = 10 * time.Second
)

// AdviceCache holds at most one advice snapshot for the session's current round
// and threshold. Results are applied only if the round they were computed for
// is still the current one (pointer identity) and no invalidation happened
// in between.
type AdviceCache struct {
	s         *Session
	api       Advisor
	threshold ThresholdSource
	logger    *logrus.Logger

	debounce       time.Duration
	refreshTimeout time.Duration

	// guarded by s.mu
	timer    *time.Timer
	timerSeq uint64
	closed   bool
}

// NewAdviceCache binds an advice cache to s. A debounce of 0 uses DefaultDebounce.
func NewAdviceCache(s *Session, api Advisor, threshold ThresholdSource, debounce time.Duration, logger *logrus.Logger) *AdviceCache {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AdviceCache{
		s:              s,
		api:            api,
		threshold:      threshold,
		logger:         logger,
		debounce:       debounce,
		refreshTimeout: DefaultRefreshTimeout,
	}
}

// Current returns a copy of the held advice, if any, and whether it was
// computed for the current dealer threshold.
func (a *AdviceCache) Current() (*models.Advice, bool) {
	threshold := a.threshold.Get()

	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advice == nil {
		return nil, false
	}
	adv := *s.advice
	return &adv, s.adviceThreshold == threshold
}

// Visible reports whether an advice snapshot is currently held.
func (a *AdviceCache) Visible() bool {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advice != nil
}

// Request fetches advice for the current round and threshold and stores it.
// It needs a round in the player's turn. If the round is replaced or the cache
// invalidated while the request is outstanding, the response is dropped and
// ErrStaleAdvice returned.
func (a *AdviceCache) Request(ctx context.Context) error {
	threshold := a.threshold.Get()

	s := a.s
	s.mu.Lock()
	s.err = nil
	if !s.round.IsPlayerTurn() {
		s.err = fmt.Errorf("%w: advice needs a round in progress", ErrPreconditionFailed)
		err := s.err
		s.unlockAndNotify()
		return err
	}
	if err := a.api.Configured(); err != nil {
		s.err = err
		s.unlockAndNotify()
		return err
	}
	target := s.round
	s.adviceGen++
	gen := s.adviceGen
	req := models.ActionRequest{
		Game:   *target.Clone(),
		Config: models.GameConfig{DealerStandThreshold: threshold},
	}
	s.mu.Unlock()

	advice, err := a.api.Advise(ctx, req)

	s.mu.Lock()
	if s.round != target || s.adviceGen != gen {
		id := s.ID
		s.mu.Unlock()
		a.logger.WithFields(logrus.Fields{
			"session_id": id,
			"threshold":  threshold,
		}).Debug("Discarding stale advice")
		return ErrStaleAdvice
	}
	if err != nil {
		s.err = err
		id := s.ID
		s.unlockAndNotify()
		a.logger.WithFields(logrus.Fields{
			"session_id": id,
			"error":      err,
		}).Warn("Advice request failed")
		return err
	}
	s.advice = advice
	s.adviceThreshold = threshold
	s.unlockAndNotify()
	return nil
}

// Invalidate drops the held advice and any advice request in flight.
func (a *AdviceCache) Invalidate() {
	s := a.s
	s.mu.Lock()
	s.invalidateAdviceLocked()
	s.unlockAndNotify()
}

// RefreshIfVisible recomputes advice only when a snapshot is held and the
// round is still in the player's turn. Otherwise it does nothing.
func (a *AdviceCache) RefreshIfVisible(ctx context.Context) error {
	s := a.s
	s.mu.Lock()
	visible := s.advice != nil && s.round.IsPlayerTurn()
	s.mu.Unlock()

	if !visible {
		return nil
	}
	return a.Request(ctx)
}

// ScheduleRefresh is the debounced form of RefreshIfVisible, meant to be
// called on every threshold edit. Each call replaces the pending timer, so a
// burst of edits produces one refresh that reads the threshold at fire time.
// Any advice request already in flight is invalidated; the held snapshot
// stays visible (reported stale by Current) until the refresh lands.
func (a *AdviceCache) ScheduleRefresh() {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.closed {
		return
	}
	s.adviceGen++
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timerSeq++
	seq := a.timerSeq
	a.timer = time.AfterFunc(a.debounce, func() {
		a.fire(seq)
	})
}

// fire runs a scheduled refresh unless it was superseded or the cache closed.
func (a *AdviceCache) fire(seq uint64) {
	s := a.s
	s.mu.Lock()
	if a.closed || seq != a.timerSeq {
		s.mu.Unlock()
		return
	}
	a.timer = nil
	id := s.ID
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.refreshTimeout)
	defer cancel()
	if err := a.RefreshIfVisible(ctx); err != nil && !errors.Is(err, ErrStaleAdvice) {
		a.logger.WithFields(logrus.Fields{
			"session_id": id,
			"error":      err,
		}).Warn("Debounced advice refresh failed")
	}
}

// Pending reports whether a debounced refresh is scheduled.
func (a *AdviceCache) Pending() bool {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return a.timer != nil
}

// Close cancels any pending refresh. Later calls to ScheduleRefresh are ignored.
func (a *AdviceCache) Close() {
	s := a.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
