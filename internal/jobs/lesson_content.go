package jobs

import (
	"github.com/daydif/daydif-backend/internal/domain"
	"github.com/daydif/daydif-backend/internal/platform/dbctx"
	"github.com/daydif/daydif-backend/internal/services"
)

// NewLessonContentHandler routes lesson_content jobs to the generation
// orchestrator.
func NewLessonContentHandler(gen services.LessonGenerationService) Handler {
	return HandlerFunc(func(dbc dbctx.Context, job *domain.AIJob) error {
		_, err := gen.Run(dbc, job)
		return err
	})
}

// RegisterAll wires every known job type into the registry.
func RegisterAll(registry *Registry, gen services.LessonGenerationService) {
	registry.Register(domain.JobTypeLessonContent, NewLessonContentHandler(gen))
}
