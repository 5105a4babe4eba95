package auth

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type UserIdentityRepo interface {
	Create(dbc dbctx.Context, ids []*types.UserIdentity) ([]*types.UserIdentity, error)
	GetByProviderSub(dbc dbctx.Context, provider, sub string) (*types.UserIdentity, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserIdentity, error)
}

type userIdentityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserIdentityRepo(db *gorm.DB, baseLog *logger.Logger) UserIdentityRepo {
	return &userIdentityRepo{
		db:  db,
		log: baseLog.With("repo", "UserIdentityRepo"),
	}
}

func (r *userIdentityRepo) Create(dbc dbctx.Context, ids []*types.UserIdentity) ([]*types.UserIdentity, error) {
	if len(ids) == 0 {
		return ids, nil
	}
	if err := dbc.DB(r.db).Create(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userIdentityRepo) GetByProviderSub(dbc dbctx.Context, provider, sub string) (*types.UserIdentity, error) {
	var out types.UserIdentity
	err := dbc.DB(r.db).Where("provider = ? AND provider_sub = ?", provider, sub).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userIdentityRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserIdentity, error) {
	var out []*types.UserIdentity
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("user_id IN ?", userIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
