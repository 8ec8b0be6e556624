// Package workflow runs every status-changing action through one path:
// validate, lock the entity, apply, then invalidate caches and publish.
package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/logger"
)

const MsgInProgress = "Thao tác đang được xử lý, vui lòng đợi"

// Handler applies one action to one kind of entity. It loads the entity, checks
// the transition, persists with a version compare-and-set and writes history.
type Handler interface {
	Apply(ctx context.Context, a domain.Action) (*domain.Transition, error)
}

type HandlerFunc func(ctx context.Context, a domain.Action) (*domain.Transition, error)

func (f HandlerFunc) Apply(ctx context.Context, a domain.Action) (*domain.Transition, error) {
	return f(ctx, a)
}

type Engine struct {
	handlers  map[domain.EntityKind]Handler
	locker    Locker
	lockTTL   time.Duration
	cache     cache.CacheService
	publisher domain.EventPublisher
}

// NewEngine wires the engine. cache and publisher may be nil.
func NewEngine(locker Locker, lockTTL time.Duration, c cache.CacheService, pub domain.EventPublisher) *Engine {
	if locker == nil {
		locker = NewMemoryLocker()
	}
	return &Engine{
		handlers:  make(map[domain.EntityKind]Handler),
		locker:    locker,
		lockTTL:   lockTTL,
		cache:     c,
		publisher: pub,
	}
}

func (e *Engine) Register(kind domain.EntityKind, h Handler) {
	e.handlers[kind] = h
}

// LockKey is the per-entity lock name.
func LockKey(entity domain.EntityKind, id string) string {
	return "workflow:" + string(entity) + ":" + id
}

func (e *Engine) Execute(ctx context.Context, a domain.Action) (*domain.Transition, error) {
	log := logger.WithContext(ctx)

	if err := Validate(a); err != nil {
		return nil, err
	}
	h, ok := e.handlers[a.Entity]
	if !ok {
		return nil, apperr.FieldErr("entity", "Loại đối tượng không hợp lệ")
	}

	unlock, acquired, err := e.locker.TryLock(ctx, LockKey(a.Entity, a.EntityID), e.lockTTL)
	if err != nil {
		log.Error().Err(err).Str("entity", string(a.Entity)).Str("id", a.EntityID).Msg("Workflow: lock failed")
		return nil, apperr.Wrap(err)
	}
	if !acquired {
		log.Warn().Str("entity", string(a.Entity)).Str("id", a.EntityID).Str("action", string(a.Kind)).Msg("Workflow: duplicate in-flight action rejected")
		return nil, apperr.ConflictErr(MsgInProgress)
	}
	defer unlock()

	tr, err := h.Apply(ctx, a)
	if err != nil {
		ev := log.Warn()
		if apperr.HTTPStatus(err) >= 500 {
			ev = log.Error()
		}
		ev.Err(err).Str("entity", string(a.Entity)).Str("id", a.EntityID).Str("action", string(a.Kind)).Msg("Workflow: action failed")
		return nil, mapRepoErr(err)
	}

	if tr.At.IsZero() {
		tr.At = time.Now()
	}
	if tr.ActorID == "" {
		tr.ActorID = a.ActorID
	}
	e.settle(ctx, tr)

	log.Info().
		Str("entity", string(tr.Entity)).
		Str("id", tr.EntityID).
		Str("action", string(tr.Action)).
		Str("from", tr.From).
		Str("to", tr.To).
		Int64("version", tr.Version).
		Msg("Workflow: transition committed")
	return tr, nil
}

// settle runs after commit; neither step can undo the transition.
func (e *Engine) settle(ctx context.Context, tr *domain.Transition) {
	key := domain.EntityKey(tr.Entity, tr.EntityID)
	if e.cache != nil {
		e.cache.Delete(key)
		for _, k := range tr.Related {
			if prefix, ok := strings.CutSuffix(k, cache.Wildcard); ok {
				e.cache.DeletePrefix(prefix)
				continue
			}
			e.cache.Delete(k)
		}
	}
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, domain.StatusChanged{Transition: *tr, Key: key}); err != nil {
			logger.WithContext(ctx).Error().Err(err).Str("key", key).Msg("Workflow: publish failed")
		}
	}
}

// mapRepoErr turns repository sentinels into public errors.
func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrVersionConflict):
		return apperr.ConflictErr(MsgStale)
	case errors.Is(err, domain.ErrNotFound):
		return apperr.NotFoundErr(MsgNotFound)
	}
	return apperr.Wrap(err)
}

const (
	MsgStale    = "Dữ liệu đã thay đổi, vui lòng tải lại"
	MsgNotFound = "Không tìm thấy dữ liệu"
)

// CheckVersion compares an If-Match version with the current one.
func CheckVersion(a domain.Action, current int64) error {
	if a.ExpectedVersion != nil && *a.ExpectedVersion != current {
		return apperr.ConflictErr(MsgStale)
	}
	return nil
}

// Disallowed is returned when the entity's state does not permit the action.
func Disallowed(entity domain.EntityKind, status string, kind domain.ActionKind) error {
	return &apperr.AppError{
		Kind:      apperr.Conflict,
		PublicMsg: "Không thể thực hiện thao tác ở trạng thái hiện tại",
		Err:       errors.New(string(kind) + " not allowed on " + string(entity) + " in " + status),
	}
}
