package domain

import (
	"context"
	"time"
)

// ActionKind names a state-changing request against a workflow entity.
type ActionKind string

const (
	ActionApprove ActionKind = "approve"
	ActionReject  ActionKind = "reject"
	ActionBan     ActionKind = "ban"
	ActionCancel  ActionKind = "cancel"
	// ActionAccept moves a withdrawal to APPROVED without proof of payment.
	ActionAccept ActionKind = "accept"
	// ActionAdvance moves a combo one fulfilment step forward to Action.Target.
	ActionAdvance ActionKind = "advance"
)

type EntityKind string

const (
	EntityOrder      EntityKind = "order"
	EntityCombo      EntityKind = "combo"
	EntitySeller     EntityKind = "seller"
	EntityWithdrawal EntityKind = "withdrawal"
	EntityReport     EntityKind = "report"
)

var ActionKinds = []ActionKind{ActionApprove, ActionReject, ActionBan, ActionCancel, ActionAccept, ActionAdvance}

var EntityKinds = []EntityKind{EntityOrder, EntityCombo, EntitySeller, EntityWithdrawal, EntityReport}

// Action is the tagged union every state change goes through.
// Only the fields relevant to Kind and Entity are read.
type Action struct {
	Kind            ActionKind `json:"kind"`
	Entity          EntityKind `json:"entity"`
	EntityID        string     `json:"entityId"`
	Reason          string     `json:"reason,omitempty"`
	ProofURL        string     `json:"proofUrl,omitempty"`
	Target          string     `json:"target,omitempty"`
	ForceIdentity   bool       `json:"forceIdentity,omitempty"`
	ExpectedVersion *int64     `json:"expectedVersion,omitempty"`
	ActorID         string     `json:"-"`
	ActorRole       string     `json:"-"`
}

// Transition is the server's authoritative record of a successful action.
type Transition struct {
	Entity   EntityKind `json:"entity"`
	EntityID string     `json:"entityId"`
	Action   ActionKind `json:"action"`
	From     string     `json:"from"`
	To       string     `json:"to"`
	Version  int64      `json:"version"`
	Reason   string     `json:"reason,omitempty"`
	ActorID  string     `json:"actorId"`
	At       time.Time  `json:"at"`
	// Related lists other entity keys whose cached copies are now stale.
	Related []string `json:"-"`
}

// StatusChanged is published after every committed transition.
type StatusChanged struct {
	Transition
	Key string `json:"key"`
}

// EventPublisher fans out committed transitions.
type EventPublisher interface {
	Publish(ctx context.Context, evt StatusChanged) error
}

// EntityKey is the cache/store key for an entity.
func EntityKey(entity EntityKind, id string) string {
	return string(entity) + ":" + id
}
