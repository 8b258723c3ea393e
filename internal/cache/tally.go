// internal/cache/tally.go
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/shopspring/decimal"
)

// SessionTally summarizes the journaled actions of one session.
type SessionTally struct {
	SessionID uuid.UUID
	Actions   int
	Rounds    int
	Wins      int
	Losses    int
	Pushes    int
	Surrender int
	Balance   decimal.Decimal
	LastSeen  time.Time
}

// Tally aggregates journaled actions per session.
type Tally struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*SessionTally
}

func NewTally() *Tally {
	return &Tally{sessions: make(map[uuid.UUID]*SessionTally)}
}

// Apply folds a batch into the tally. A record whose balance does not parse
// still counts as an action but leaves the balance alone.
func (t *Tally) Apply(batch []models.ActionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range batch {
		st, ok := t.sessions[rec.SessionID]
		if !ok {
			st = &SessionTally{SessionID: rec.SessionID}
			t.sessions[rec.SessionID] = st
		}
		st.Actions++
		if rec.Action == models.ActionStart {
			st.Rounds++
		}
		if rec.State == models.Finished {
			switch rec.Result {
			case models.PlayerWin:
				st.Wins++
			case models.DealerWin:
				st.Losses++
			case models.Push:
				st.Pushes++
			case models.Surrender:
				st.Surrender++
			}
		}
		if b, err := decimal.NewFromString(rec.Balance); err == nil {
			st.Balance = b
		}
		if ts := time.UnixMilli(rec.Timestamp); ts.After(st.LastSeen) {
			st.LastSeen = ts
		}
	}
}

// Sessions returns a copy of every tally, most recently seen first.
func (t *Tally) Sessions() []SessionTally {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SessionTally, 0, len(t.sessions))
	for _, st := range t.sessions {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out
}

// Forget drops sessions not seen since before cutoff and returns them.
func (t *Tally) Forget(cutoff time.Time) []SessionTally {
	t.mu.Lock()
	defer t.mu.Unlock()
	var idle []SessionTally
	for id, st := range t.sessions {
		if st.LastSeen.Before(cutoff) {
			idle = append(idle, *st)
			delete(t.sessions, id)
		}
	}
	return idle
}
