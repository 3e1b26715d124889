package app

import (
	"gorm.io/gorm"

	jobrepos "github.com/daydif/daydif-backend/internal/data/repos/jobs"
	planrepos "github.com/daydif/daydif-backend/internal/data/repos/plans"
	"github.com/daydif/daydif-backend/internal/platform/logger"
)

type Repos struct {
	Plan       planrepos.PlanRepo
	PlanLesson planrepos.PlanLessonRepo
	Episode    planrepos.EpisodeRepo
	AIJob      jobrepos.AIJobRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Plan:       planrepos.NewPlanRepo(db, log),
		PlanLesson: planrepos.NewPlanLessonRepo(db, log),
		Episode:    planrepos.NewEpisodeRepo(db, log),
		AIJob:      jobrepos.NewAIJobRepo(db, log),
	}
}
