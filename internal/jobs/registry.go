package jobs

import (
	"fmt"

	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
)

// Handler executes one claimed job to completion. The handler owns all
// status transitions for the job and its lesson; the worker only steps
// in when the handler panics.
type Handler interface {
	Handle(dbc dbctx.Context, job *domain.AIJob) error
}

type HandlerFunc func(dbc dbctx.Context, job *domain.AIJob) error

func (f HandlerFunc) Handle(dbc dbctx.Context, job *domain.AIJob) error {
	return f(dbc, job)
}

// Registry maps job types to their handlers.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(jobType string, h Handler) {
	r.handlers[jobType] = h
}

func (r *Registry) Resolve(jobType string) (Handler, error) {
	h, ok := r.handlers[jobType]
	if !ok {
		return nil, fmt.Errorf("no handler registered for job type %q", jobType)
	}
	return h, nil
}
