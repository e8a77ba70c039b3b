// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level state enums.

package api

import "github.com/momentics/hioload-ua/protocol"

// RequestState is the lifecycle of a pending request. Every state but
// RequestSent is terminal.
type RequestState int

const (
	RequestSent RequestState = iota
	RequestCompleted
	RequestTimedOut
	RequestCancelled
)

func (s RequestState) String() string {
	switch s {
	case RequestSent:
		return "sent"
	case RequestCompleted:
		return "completed"
	case RequestTimedOut:
		return "timed_out"
	case RequestCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends the request lifecycle.
func (s RequestState) Terminal() bool { return s != RequestSent }

// RenewalState tracks the SecureChannel security token.
type RenewalState int

const (
	RenewalFresh RenewalState = iota
	RenewalDue
	RenewalInFlight
	RenewalRenewed
	RenewalFailed
)

func (s RenewalState) String() string {
	switch s {
	case RenewalFresh:
		return "fresh"
	case RenewalDue:
		return "renewal_due"
	case RenewalInFlight:
		return "renewal_in_flight"
	case RenewalRenewed:
		return "renewed"
	case RenewalFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RenewOutcome is the immediate result of a renewal attempt.
type RenewOutcome int

const (
	RenewNotDue RenewOutcome = iota
	RenewInFlight
	RenewInitiated
)

func (o RenewOutcome) String() string {
	switch o {
	case RenewNotDue:
		return "not_due"
	case RenewInFlight:
		return "in_flight"
	case RenewInitiated:
		return "initiated"
	default:
		return "unknown"
	}
}

// Status maps the outcome onto the status code a caller of the classic
// renewal API receives: GoodCallAgain while the token is young.
func (o RenewOutcome) Status() protocol.StatusCode {
	if o == RenewNotDue {
		return protocol.StatusGoodCallAgain
	}
	return protocol.StatusGood
}

// ChannelState enumerates the state of the client connection.
type ChannelState int

const (
	ChannelUnknown ChannelState = iota
	ChannelOpen
	ChannelRenewing
	ChannelFailed
	ChannelClosed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelOpen:
		return "open"
	case ChannelRenewing:
		return "renewing"
	case ChannelFailed:
		return "failed"
	case ChannelClosed:
		return "closed"
	default:
		return "unknown"
	}
}
