// Package dashboard holds the admin-side state machinery: running status
// actions against the API, paged lists, a versioned entity store and the
// rules deciding what a row shows.
package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/workflow"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/client"
	"marketplace-backend/pkg/logger"
)

const defaultErrorMsg = "Đã có lỗi xảy ra, vui lòng thử lại."

var (
	// ErrInFlight means the entity already has an action running.
	ErrInFlight = errors.New("dashboard: action already in flight")
	// ErrStale means a newer action on the same entity settled first.
	ErrStale = errors.New("dashboard: stale response ignored")
)

// FieldError is a validation failure shown next to one form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// Action is a status action plus an optional proof file still to be uploaded.
type Action struct {
	domain.Action
	Proof     io.Reader
	ProofName string
}

// Performer issues the network call for an action.
type Performer interface {
	Perform(ctx context.Context, a Action) (*client.ActionResult, error)
}

// Notifier shows toasts.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type ReconcilerConfig struct {
	Performer Performer
	Notifier  Notifier
	// OnClose dismisses the dialog that started the action.
	OnClose func()
	// Refetch reloads the view after a committed action.
	Refetch func(ctx context.Context) error
}

// Reconciler runs one action at a time per entity and keeps the view in step
// with the server: no optimistic updates, one refetch per success.
type Reconciler struct {
	cfg ReconcilerConfig

	mu       sync.Mutex
	seq      uint64
	inFlight map[string]uint64
	settled  map[string]uint64
}

func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	return &Reconciler{
		cfg:      cfg,
		inFlight: make(map[string]uint64),
		settled:  make(map[string]uint64),
	}
}

// Busy reports whether the entity's action button is disabled.
func (r *Reconciler) Busy(entity domain.EntityKind, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[domain.EntityKey(entity, id)]
	return ok
}

// Abandon re-enables the entity without waiting for its running action.
// If that action answers after a newer one settled, its answer is dropped.
func (r *Reconciler) Abandon(entity domain.EntityKind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, domain.EntityKey(entity, id))
}

// Run validates a, performs it once and settles the outcome.
func (r *Reconciler) Run(ctx context.Context, a Action) error {
	if err := Validate(a); err != nil {
		return err
	}

	key := domain.EntityKey(a.Entity, a.EntityID)
	seq, ok := r.begin(key)
	if !ok {
		return ErrInFlight
	}

	res, err := r.cfg.Performer.Perform(ctx, a)
	if !r.finish(key, seq) {
		logger.WithContext(ctx).Debug().Str("key", key).Msg("Dashboard: stale action response dropped")
		return ErrStale
	}

	if err != nil {
		r.notifyError(errorMessage(err))
		return err
	}

	msg := res.Message
	if msg == "" {
		msg = workflow.SuccessMessage(a.Entity, a.Kind)
	}
	if r.cfg.OnClose != nil {
		r.cfg.OnClose()
	}
	if r.cfg.Notifier != nil {
		r.cfg.Notifier.Success(msg)
	}
	if r.cfg.Refetch != nil {
		if err := r.cfg.Refetch(ctx); err != nil {
			logger.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("Dashboard: refetch after action failed")
		}
	}
	return nil
}

func (r *Reconciler) begin(key string) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[key]; busy {
		return 0, false
	}
	r.seq++
	r.inFlight[key] = r.seq
	return r.seq, true
}

// finish reports whether the response for seq is still current.
func (r *Reconciler) finish(key string, seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight[key] == seq {
		delete(r.inFlight, key)
	}
	if seq < r.settled[key] {
		return false
	}
	r.settled[key] = seq
	return true
}

func (r *Reconciler) notifyError(msg string) {
	if r.cfg.Notifier != nil {
		r.cfg.Notifier.Error(msg)
	}
}

// Validate checks an action before anything is sent.
func Validate(a Action) error {
	switch {
	case a.Kind == domain.ActionReject && strings.TrimSpace(a.Reason) == "":
		return &FieldError{Field: "reason", Message: workflow.MsgReasonRequired}
	case a.Kind == domain.ActionApprove && a.Entity == domain.EntityWithdrawal &&
		strings.TrimSpace(a.ProofURL) == "" && a.Proof == nil:
		return &FieldError{Field: "proof", Message: workflow.MsgProofRequired}
	}

	check := a.Action
	if a.Proof != nil && check.ProofURL == "" {
		check.ProofURL = "upload:" + a.ProofName
	}
	if err := workflow.Validate(check); err != nil {
		if ae, ok := apperr.As(err); ok {
			for field, msg := range ae.Fields {
				return &FieldError{Field: field, Message: msg}
			}
		}
		return err
	}
	return nil
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return defaultErrorMsg
}

// ClientPerformer sends actions through the REST client, using the
// per-resource endpoint where one exists. A pending proof file is uploaded
// first; a known version goes out as If-Match.
type ClientPerformer struct {
	Client *client.Client
}

func (p ClientPerformer) Perform(ctx context.Context, a Action) (*client.ActionResult, error) {
	c := p.Client
	if a.ExpectedVersion != nil {
		ctx = client.IfMatch(ctx, *a.ExpectedVersion)
	}
	id := a.EntityID

	switch a.Entity {
	case domain.EntitySeller:
		switch a.Kind {
		case domain.ActionApprove:
			return c.ApproveSeller(ctx, id, true, a.ForceIdentity, nil)
		case domain.ActionReject:
			reason := a.Reason
			return c.ApproveSeller(ctx, id, false, a.ForceIdentity, &reason)
		case domain.ActionBan:
			return c.BanSeller(ctx, id, a.Reason)
		}
	case domain.EntityWithdrawal:
		switch a.Kind {
		case domain.ActionAccept:
			return c.AcceptWithdraw(ctx, id)
		case domain.ActionApprove:
			if a.Proof != nil {
				return c.ApproveWithdraw(ctx, id, a.Proof, a.ProofName)
			}
			return c.ApproveWithdrawURL(ctx, id, a.ProofURL)
		case domain.ActionReject:
			return c.RejectWithdraw(ctx, id, a.Reason)
		}
	case domain.EntityReport:
		switch a.Kind {
		case domain.ActionAccept, domain.ActionApprove:
			return c.AcceptReport(ctx, id)
		case domain.ActionReject:
			return c.RejectReport(ctx, id, a.Reason)
		}
	case domain.EntityOrder:
		if a.Kind == domain.ActionCancel {
			return c.CancelOrder(ctx, id, a.Reason)
		}
	case domain.EntityCombo:
		switch a.Kind {
		case domain.ActionAdvance:
			return c.AdvanceCombo(ctx, id, domain.ComboStatus(a.Target))
		case domain.ActionApprove:
			return c.ApproveReturn(ctx, id)
		case domain.ActionReject:
			return c.RejectReturn(ctx, id, a.Reason)
		}
	}
	return c.Execute(ctx, a.Action)
}
