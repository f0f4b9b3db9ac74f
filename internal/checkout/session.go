package checkout

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campuseats/campuseats-backend/internal/basket"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
)

// ErrSubmissionInFlight is returned when Checkout is called while another
// checkout of the same session is running.
var ErrSubmissionInFlight = errors.New("checkout: a submission is already in flight")

// Session drives checkout for one basket. The basket is snapshotted when a
// checkout starts; changes made while it runs are not submitted.
type Session struct {
	id     string
	basket *basket.Store
	orch   *Orchestrator

	mu        sync.Mutex
	inFlight  bool
	completed map[string]int64
}

type SessionOption func(*Session)

// WithSessionID fixes the id used to scope idempotency keys.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id = strings.TrimSpace(id); id != "" {
			s.id = id
		}
	}
}

// WithCompletedGroups restores completion state from an earlier process.
func WithCompletedGroups(completed map[string]int64) SessionOption {
	return func(s *Session) {
		maps.Copy(s.completed, completed)
	}
}

func NewSession(store *basket.Store, orch *Orchestrator, opts ...SessionOption) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("basket store required")
	}
	if orch == nil {
		return nil, fmt.Errorf("orchestrator required")
	}
	s := &Session{
		id:        uuid.NewString(),
		basket:    store,
		orch:      orch,
		completed: map[string]int64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) ID() string { return s.id }

// CompletedGroups returns the fingerprints (and order ids) of groups that
// will not be resubmitted.
func (s *Session) CompletedGroups() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.completed)
}

// Result summarizes one checkout attempt.
type Result struct {
	Outcomes []GroupOutcome
	Total    decimal.Decimal
	// Empty is set when the basket had nothing to submit.
	Empty bool
	// Cleared is set when every group completed and the basket was emptied.
	Cleared bool
}

func (r Result) AllComplete() bool {
	for _, o := range r.Outcomes {
		if !o.Complete() {
			return false
		}
	}
	return true
}

func (r Result) Failed() []GroupOutcome {
	var failed []GroupOutcome
	for _, o := range r.Outcomes {
		if !o.Complete() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Checkout submits the basket as one order per vendor. The basket is cleared
// only if every group completed; otherwise it is kept for a retry that skips
// the groups already placed.
func (s *Session) Checkout(ctx context.Context, customer string) (Result, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "customer is required").
			WithDetails(map[string]any{"field": "customer"})
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}
	s.inFlight = true
	completed := maps.Clone(s.completed)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	snap := s.basket.Snapshot()
	groups := Consolidate(snap.Lines)
	if len(groups) == 0 {
		return Result{Empty: true, Total: decimal.Zero, Outcomes: []GroupOutcome{}}, nil
	}

	outcomes := s.orch.Submit(ctx, SubmitRequest{
		Customer:  customer,
		Groups:    groups,
		KeyPrefix: s.id,
		Completed: completed,
	})
	res := Result{Outcomes: outcomes, Total: GrandTotal(groups)}

	s.mu.Lock()
	for _, o := range outcomes {
		if o.Complete() {
			s.completed[o.Fingerprint] = o.OrderID
		}
	}
	s.mu.Unlock()

	if !res.AllComplete() {
		return res, nil
	}

	if !s.basket.ClearIfVersion(snap.Version) {
		s.basket.Deduct(snap.Lines)
	}
	s.mu.Lock()
	s.completed = map[string]int64{}
	s.mu.Unlock()
	res.Cleared = true
	return res, nil
}
