package events

import (
	"context"
	"errors"

	"marketplace-backend/internal/domain"
)

// Fanout publishes to every sink and joins their errors.
type Fanout []domain.EventPublisher

func (f Fanout) Publish(ctx context.Context, evt domain.StatusChanged) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
