package storage

import (
	"context"
	"errors"
	"io"
)

// Observer receives one call per blob operation.
type Observer interface {
	ObserveBlobOperation(op, outcome string)
}

const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type instrumented struct {
	next     Store
	observer Observer
}

// Instrument wraps next so every call is reported to observer.
func Instrument(next Store, observer Observer) Store {
	if observer == nil {
		return next
	}
	return &instrumented{next: next, observer: observer}
}

func (s *instrumented) observe(op string, err error) {
	switch {
	case err == nil:
		s.observer.ObserveBlobOperation(op, OutcomeOK)
	case errors.Is(err, ErrNotFound):
		s.observer.ObserveBlobOperation(op, OutcomeNotFound)
	default:
		s.observer.ObserveBlobOperation(op, OutcomeError)
	}
}

func (s *instrumented) Put(ctx context.Context, key string, data io.Reader, opts PutOptions) (string, error) {
	stored, err := s.next.Put(ctx, key, data, opts)
	s.observe("put", err)
	return stored, err
}

func (s *instrumented) Get(ctx context.Context, key string) (*Object, error) {
	obj, err := s.next.Get(ctx, key)
	s.observe("get", err)
	return obj, err
}

func (s *instrumented) Delete(ctx context.Context, key string) error {
	err := s.next.Delete(ctx, key)
	s.observe("delete", err)
	return err
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
