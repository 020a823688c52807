package events

import (
	"context"
	"errors"
	"fmt"

	"amizades/internal/observability"
)

// MultiPublisher fans an event out to every sink. One failing sink does not stop the others.
type MultiPublisher struct {
	sinks []Publisher
}

// NewMultiPublisher drops nil sinks.
func NewMultiPublisher(sinks ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiPublisher) Name() string { return "multi" }

// Len returns the number of configured sinks.
func (m *MultiPublisher) Len() int { return len(m.sinks) }

// Publish returns every sink failure joined together.
func (m *MultiPublisher) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, e); err != nil {
			observability.EventPublishFailures.WithLabelValues(s.Name(), string(e.Type)).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds a connection.
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
