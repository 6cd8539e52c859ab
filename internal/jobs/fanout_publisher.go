package jobs

import (
	"context"
	"errors"

	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/core/ports"
)

// FanoutPublisher hands every snapshot to each of its publishers in turn.
// A failing publisher does not stop the others; all failures are joined.
type FanoutPublisher []ports.StatusPublisher

func (f FanoutPublisher) Publish(ctx context.Context, group tracking.GroupID, snapshot tracking.Snapshot) error {
	var errs []error
	for _, publisher := range f {
		if err := publisher.Publish(ctx, group, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
