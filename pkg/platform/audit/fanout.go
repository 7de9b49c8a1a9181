package audit

import (
	"context"
	"errors"
)

type fanout struct {
	publishers []Publisher
}

// Fanout delivers each event to every publisher. Delivery failures are
// joined; one slow or broken sink does not stop the others.
func Fanout(publishers ...Publisher) Publisher {
	return &fanout{publishers: publishers}
}

func (f *fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
