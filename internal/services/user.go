package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/sprout-backend/internal/data/repos"
	types "github.com/yungbote/sprout-backend/internal/domain/user"
	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/ctxutil"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

// Me is the caller's profile as returned by GET /api/me.
type Me struct {
	ID         uuid.UUID     `json:"id"`
	Email      *string       `json:"email,omitempty"`
	Survey     *types.Survey `json:"survey,omitempty"`
	PlantCount int           `json:"plantCount"`
	CreatedAt  time.Time     `json:"createdAt"`
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*Me, error)
}

type userService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	userPlantRepo repos.UserPlantRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo, userPlantRepo repos.UserPlantRepo) UserService {
	return &userService{
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		userPlantRepo: userPlantRepo,
	}
}

func (us *userService) GetMe(dbc dbctx.Context) (*Me, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.ExternalID == "" {
		return nil, apierr.Unauthenticated("authentication required")
	}
	u, err := us.userRepo.GetByExternalID(dbc, rd.ExternalID)
	if err != nil {
		us.log.Error("load user failed", "external_id", rd.ExternalID, "error", err)
		return nil, apierr.Internal("could not load profile", err)
	}
	// profiles are created by the first plant request
	if u == nil {
		return nil, apierr.NotFound("no profile yet; request recommendations first")
	}
	ids, err := us.userPlantRepo.PlantIDs(dbc, u.ID)
	if err != nil {
		return nil, apierr.Internal("could not load profile", err)
	}
	me := &Me{ID: u.ID, Email: u.Email, PlantCount: len(ids), CreatedAt: u.CreatedAt}
	if u.HasSurvey() {
		me.Survey = &types.Survey{
			Location:       *u.Location,
			SunlightHours:  *u.SunlightHours,
			AvailableSpace: *u.AvailableSpace,
		}
	}
	return me, nil
}
