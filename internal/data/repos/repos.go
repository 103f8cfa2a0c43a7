package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/data/repos/garden"
	"github.com/yungbote/sprout-backend/internal/data/repos/user"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type PlantRepo = garden.PlantRepo
type UserPlantRepo = garden.UserPlantRepo
type DiagnosisRepo = garden.DiagnosisRepo

// Set is every repository the services need, built over one connection pool.
type Set struct {
	User      UserRepo
	Plant     PlantRepo
	UserPlant UserPlantRepo
	Diagnosis DiagnosisRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		User:      user.NewUserRepo(db, log),
		Plant:     garden.NewPlantRepo(db, log),
		UserPlant: garden.NewUserPlantRepo(db, log),
		Diagnosis: garden.NewDiagnosisRepo(db, log),
	}
}
