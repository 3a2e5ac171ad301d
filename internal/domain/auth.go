package domain

import (
	"errors"
	"time"
)

// GateState is a step of the admin auth gate.
type GateState string

const (
	GateUnknown         GateState = "unknown"
	GateChecking        GateState = "checking"
	GateAuthenticated   GateState = "authenticated"
	GateUnauthenticated GateState = "unauthenticated"
)

// ErrGateTransition is returned for a transition the gate does not allow.
var ErrGateTransition = errors.New("invalid auth gate transition")

// AuthGate tracks one pass of the gate: Unknown -> Checking -> Authenticated
// or Unauthenticated. Terminal states are never left; a new check needs a new gate.
type AuthGate struct {
	state GateState
}

// NewAuthGate returns a gate in the Unknown state.
func NewAuthGate() *AuthGate {
	return &AuthGate{state: GateUnknown}
}

// State returns the current state.
func (g *AuthGate) State() GateState {
	return g.state
}

// IsTerminal reports whether the gate reached a final decision.
func (g *AuthGate) IsTerminal() bool {
	return g.state == GateAuthenticated || g.state == GateUnauthenticated
}

// Begin moves Unknown to Checking.
func (g *AuthGate) Begin() error {
	if g.state != GateUnknown {
		return ErrGateTransition
	}
	g.state = GateChecking
	return nil
}

// Resolve moves Checking to Authenticated when ok, Unauthenticated otherwise.
func (g *AuthGate) Resolve(ok bool) error {
	if g.state != GateChecking {
		return ErrGateTransition
	}
	if ok {
		g.state = GateAuthenticated
	} else {
		g.state = GateUnauthenticated
	}
	return nil
}

// Credential is the stored backend token and profile for one console session.
type Credential struct {
	SessionID   string     `json:"session_id"`
	Token       string     `json:"token"`
	User        User       `json:"user"`
	CreatedAt   time.Time  `json:"created_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
}

// Validated reports whether the backend already confirmed this credential.
func (c *Credential) Validated() bool {
	return c.ValidatedAt != nil
}

// GateDecision is the outcome of running the gate for a request.
type GateDecision struct {
	State      GateState
	Credential *Credential
	Redirect   string
}

// Allowed reports whether the request may proceed.
func (d GateDecision) Allowed() bool {
	return d.State == GateAuthenticated && d.Credential != nil
}
