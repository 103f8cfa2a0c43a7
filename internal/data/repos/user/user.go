package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sprout-backend/internal/domain/user"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type UserRepo interface {
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.User, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	EnsureByExternalID(dbc dbctx.Context, externalID string, email *string) (*types.User, error)
	UpdateSurvey(dbc dbctx.Context, userID uuid.UUID, survey types.Survey) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

// GetByExternalID returns nil without error when no user has that subject.
func (ur *userRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.User, error) {
	var u types.User
	err := dbc.DB(ur.db).
		Where("external_identity_id = ?", externalID).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	var count int64
	if err := dbc.DB(ur.db).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// EnsureByExternalID returns the user for externalID, creating it on first
// sight. The email is only stored when no other user already holds it.
func (ur *userRepo) EnsureByExternalID(dbc dbctx.Context, externalID string, email *string) (*types.User, error) {
	existing, err := ur.GetByExternalID(dbc, externalID)
	if err != nil || existing != nil {
		return existing, err
	}

	u := &types.User{ExternalIdentityID: externalID}
	if email != nil {
		if e := strings.TrimSpace(*email); e != "" {
			taken, err := ur.EmailExists(dbc, e)
			if err != nil {
				return nil, err
			}
			if taken {
				ur.log.Warn("email already linked to another user; creating user without email", "external_id", externalID)
			} else {
				u.Email = &e
			}
		}
	}

	if err := dbc.DB(ur.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_identity_id"}},
			DoNothing: true,
		}).
		Create(u).Error; err != nil {
		return nil, err
	}

	// A concurrent request may have won the insert; re-read the stored row.
	return ur.GetByExternalID(dbc, externalID)
}

func (ur *userRepo) UpdateSurvey(dbc dbctx.Context, userID uuid.UUID, survey types.Survey) error {
	return dbc.DB(ur.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"location":        survey.Location,
			"sunlight_hours":  survey.SunlightHours,
			"available_space": survey.AvailableSpace,
		}).Error
}
