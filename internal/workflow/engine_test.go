package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *fakeCache) Get(string) (interface{}, bool)         { return nil, false }
func (c *fakeCache) Set(string, interface{}, time.Duration) {}
func (c *fakeCache) Flush()                                 {}
func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, key)
}
func (c *fakeCache) DeletePrefix(prefix string) int {
	c.Delete("prefix=" + prefix)
	return 1
}

type fakePublisher struct {
	events []domain.StatusChanged
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, evt domain.StatusChanged) error {
	p.events = append(p.events, evt)
	return p.err
}

func sellerApprove(id string) domain.Action {
	return domain.Action{Kind: domain.ActionApprove, Entity: domain.EntitySeller, EntityID: id, ActorID: "admin-1"}
}

func TestExecuteSuccessInvalidatesAndPublishes(t *testing.T) {
	c := &fakeCache{}
	pub := &fakePublisher{}
	e := NewEngine(nil, time.Second, c, pub)

	calls := 0
	e.Register(domain.EntitySeller, HandlerFunc(func(_ context.Context, a domain.Action) (*domain.Transition, error) {
		calls++
		return &domain.Transition{
			Entity: a.Entity, EntityID: a.EntityID, Action: a.Kind,
			From: "pending", To: "verified", Version: 2,
			Related: []string{"seller-list", "stats:orders:*"},
		}, nil
	}))

	tr, err := e.Execute(context.Background(), sellerApprove("s1"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "admin-1", tr.ActorID)
	assert.False(t, tr.At.IsZero())
	assert.Equal(t, []string{"seller:s1", "seller-list", "prefix=stats:orders:"}, c.deleted)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "seller:s1", pub.events[0].Key)
	assert.Equal(t, int64(2), pub.events[0].Version)
}

func TestExecuteValidationFailsBeforeHandler(t *testing.T) {
	e := NewEngine(nil, time.Second, nil, nil)
	called := false
	e.Register(domain.EntityReport, HandlerFunc(func(context.Context, domain.Action) (*domain.Transition, error) {
		called = true
		return &domain.Transition{}, nil
	}))

	_, err := e.Execute(context.Background(), domain.Action{
		Kind: domain.ActionReject, Entity: domain.EntityReport, EntityID: "r1", Reason: "   ",
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, apperr.IsKind(err, apperr.Invalid))
	assert.Contains(t, apperr.FieldsOf(err), "reason")
}

func TestExecuteRejectsConcurrentActionOnSameEntity(t *testing.T) {
	e := NewEngine(NewMemoryLocker(), time.Second, nil, nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	e.Register(domain.EntitySeller, HandlerFunc(func(_ context.Context, a domain.Action) (*domain.Transition, error) {
		close(entered)
		<-release
		return &domain.Transition{Entity: a.Entity, EntityID: a.EntityID}, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := e.Execute(context.Background(), sellerApprove("s1"))
		done <- err
	}()
	<-entered

	_, err := e.Execute(context.Background(), sellerApprove("s1"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
	assert.Equal(t, MsgInProgress, apperr.PublicMessage(err))

	close(release)
	require.NoError(t, <-done)

	// lock released after completion
	e.Register(domain.EntitySeller, HandlerFunc(func(_ context.Context, a domain.Action) (*domain.Transition, error) {
		return &domain.Transition{Entity: a.Entity, EntityID: a.EntityID}, nil
	}))
	_, err = e.Execute(context.Background(), sellerApprove("s1"))
	assert.NoError(t, err)
}

func TestExecuteMapsRepositoryErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{"version conflict", domain.ErrVersionConflict, apperr.Conflict},
		{"not found", domain.ErrNotFound, apperr.NotFound},
		{"wrapped not found", errors.Join(errors.New("load"), domain.ErrNotFound), apperr.NotFound},
		{"internal", errors.New("connection reset"), apperr.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			e := NewEngine(nil, time.Second, nil, pub)
			e.Register(domain.EntitySeller, HandlerFunc(func(context.Context, domain.Action) (*domain.Transition, error) {
				return nil, tt.err
			}))
			_, err := e.Execute(context.Background(), sellerApprove("s1"))
			assert.True(t, apperr.IsKind(err, tt.kind))
			assert.Empty(t, pub.events)
		})
	}
}

func TestExecutePublishFailureDoesNotFailAction(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	e := NewEngine(nil, time.Second, nil, pub)
	e.Register(domain.EntitySeller, HandlerFunc(func(_ context.Context, a domain.Action) (*domain.Transition, error) {
		return &domain.Transition{Entity: a.Entity, EntityID: a.EntityID}, nil
	}))
	_, err := e.Execute(context.Background(), sellerApprove("s1"))
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestCheckVersion(t *testing.T) {
	v := int64(3)
	assert.NoError(t, CheckVersion(domain.Action{}, 5))
	assert.NoError(t, CheckVersion(domain.Action{ExpectedVersion: &v}, 3))
	assert.True(t, apperr.IsKind(CheckVersion(domain.Action{ExpectedVersion: &v}, 4), apperr.Conflict))
}
