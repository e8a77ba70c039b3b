// File: internal/renewal/scheduler.go
// Package renewal
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SecureChannel security token bookkeeping. The scheduler decides when a
// renewal is due and guards against overlapping renewal exchanges; the
// exchange itself is dispatched by the client.

package renewal

import (
	"fmt"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/momentics/hioload-ua/api"
	"github.com/momentics/hioload-ua/protocol"
)

// Token is the active security token.
type Token struct {
	ChannelID uint32
	TokenID   uint32
	IssuedAt  time.Time
	Lifetime  time.Duration
}

// FromSecurityToken converts a token received in an OpenSecureChannel
// response. The server's CreatedAt is not trusted for local timing; the
// token counts from receivedAt on the local clock.
func FromSecurityToken(st protocol.ChannelSecurityToken, receivedAt time.Time) Token {
	return Token{
		ChannelID: st.ChannelID,
		TokenID:   st.TokenID,
		IssuedAt:  receivedAt,
		Lifetime:  st.Lifetime(),
	}
}

// DueAt is the instant 75% of the lifetime has elapsed.
func (t Token) DueAt() time.Time {
	return t.IssuedAt.Add(t.Lifetime / 4 * 3)
}

// ExpiresAt is the end of the validity window.
func (t Token) ExpiresAt() time.Time {
	return t.IssuedAt.Add(t.Lifetime)
}

// Transition is one state change, reported after the scheduler lock is released.
type Transition struct {
	From, To api.RenewalState
}

// Scheduler owns the token and the renewal state machine:
//
//	Fresh -> RenewalDue -> RenewalInFlight -> Renewed -> Fresh
//	any failure -> Failed (terminal)
type Scheduler struct {
	mu        sync.Mutex
	clock     clock.PassiveClock
	token     Token
	state     api.RenewalState
	requestID uint32
	renewals  uint64
	lastErr   error
	pending   []Transition
	observer  func(Transition)
}

// NewScheduler starts in Fresh with tok.
func NewScheduler(clk clock.PassiveClock, tok Token) *Scheduler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Scheduler{clock: clk, token: tok, state: api.RenewalFresh}
}

// Observe installs fn to receive every transition. fn runs outside the lock.
func (s *Scheduler) Observe(fn func(Transition)) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// Begin decides whether a renewal exchange should start now. On
// api.RenewInitiated the state is already RenewalInFlight and the caller
// must follow up with Attach or Fail.
func (s *Scheduler) Begin() (api.RenewOutcome, error) {
	s.mu.Lock()
	out, err := s.beginLocked()
	s.unlockAndNotify()
	return out, err
}

func (s *Scheduler) beginLocked() (api.RenewOutcome, error) {
	switch s.state {
	case api.RenewalFailed:
		return api.RenewNotDue, fmt.Errorf("secure channel renewal: %w", api.ErrConnectionFailed)
	case api.RenewalInFlight:
		return api.RenewInFlight, nil
	}
	if !s.dueLocked() {
		return api.RenewNotDue, nil
	}
	if s.state != api.RenewalDue {
		s.setLocked(api.RenewalDue)
	}
	s.setLocked(api.RenewalInFlight)
	return api.RenewInitiated, nil
}

// Attach records the request id of the renewal exchange in flight.
func (s *Scheduler) Attach(requestID uint32) {
	s.mu.Lock()
	s.requestID = requestID
	s.mu.Unlock()
}

// InFlightID returns the outstanding renewal request id, or 0.
func (s *Scheduler) InFlightID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != api.RenewalInFlight {
		return 0
	}
	return s.requestID
}

// Complete installs the renewed token and returns to Fresh.
func (s *Scheduler) Complete(tok Token) {
	s.mu.Lock()
	if s.state == api.RenewalFailed {
		s.unlockAndNotify()
		return
	}
	s.token = tok
	s.requestID = 0
	s.renewals++
	s.setLocked(api.RenewalRenewed)
	s.setLocked(api.RenewalFresh)
	s.unlockAndNotify()
}

// Fail moves the scheduler to the terminal Failed state.
func (s *Scheduler) Fail(err error) {
	s.mu.Lock()
	if s.state != api.RenewalFailed {
		s.lastErr = err
		s.requestID = 0
		s.setLocked(api.RenewalFailed)
	}
	s.unlockAndNotify()
}

// State returns the current state.
func (s *Scheduler) State() api.RenewalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the active token.
func (s *Scheduler) Token() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Err returns the failure cause once Failed.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Renewals counts completed renewals.
func (s *Scheduler) Renewals() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renewals
}

// Due reports whether at least 75% of the token lifetime has elapsed.
func (s *Scheduler) Due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dueLocked()
}

// A token without lifetime never becomes due.
func (s *Scheduler) dueLocked() bool {
	if s.token.Lifetime <= 0 {
		return false
	}
	elapsed := s.clock.Since(s.token.IssuedAt)
	return elapsed*4 >= s.token.Lifetime*3
}

func (s *Scheduler) setLocked(to api.RenewalState) {
	if s.state == to {
		return
	}
	s.pending = append(s.pending, Transition{From: s.state, To: to})
	s.state = to
}

func (s *Scheduler) unlockAndNotify() {
	pending := s.pending
	s.pending = nil
	obs := s.observer
	s.mu.Unlock()
	if obs == nil {
		return
	}
	for _, tr := range pending {
		obs(tr)
	}
}
