// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend talks to an OpenAI-compatible text-generation service.
// The analysis pipeline depends only on the Client interface so tests can
// supply a mock.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// Client is the request/response exchange the pipeline performs: a
// system-level task instruction plus a user-level content payload, returning
// free text.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteWithOptions(ctx context.Context, system, user string, opts Options) (string, error)
}

// Options carries per-call overrides. Zero values fall back to the client's
// configured defaults.
type Options struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Error describes a failed backend exchange. Transient errors (rate limiting,
// server-side 5xx) may be retried; everything else fails immediately.
type Error struct {
	Status    int
	Message   string
	Transient bool
}

func (e *Error) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("backend %s error (status %d): %s", kind, e.Status, e.Message)
}

// ErrExhausted marks a call that failed transiently on every attempt of its
// retry budget.
var ErrExhausted = errors.New("backend retry budget exhausted")

// IsTransient reports whether err is a retryable backend error.
func IsTransient(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Transient
}
