package events

import (
	"context"
	"errors"

	"carcare/internal/domain"
	"carcare/internal/models"

	"github.com/rs/zerolog"
)

// Fanout publishes every change to all sinks. A failing sink does not stop
// the others; the write it describes is already committed.
type Fanout struct {
	sinks  []domain.ChangePublisher
	logger *zerolog.Logger
}

func NewFanout(logger *zerolog.Logger, sinks ...domain.ChangePublisher) *Fanout {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Fanout{sinks: sinks, logger: logger}
}

func (f *Fanout) Publish(ctx context.Context, ev models.ChangeEvent) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			f.logger.Error().Err(err).
				Str("booking_id", ev.Booking.ID).
				Str("type", string(ev.Type)).
				Msg("failed to publish booking change")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
