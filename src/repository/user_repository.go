package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"journalapi/src/database"
	"journalapi/src/model"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository() *GormUserRepository {
	logger.WithField("component", "GormUserRepository").
		Info("Creating new GormUserRepository with MainDB")

	return &GormUserRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *GormUserRepository) WithDB(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetUserByUserName(
	ctx context.Context,
	userName string,
) (*model.User, error) {

	var u model.User
	err := r.db.WithContext(ctx).
		Where("user_name = ? ", userName).
		First(&u).Error

	if err != nil {
		return nil, err
	}

	return &u, nil
}

// FindByAPIToken resolves a user from the token presented on the API
// header. Returns (nil, nil) when the token matches nobody.
func (r *GormUserRepository) FindByAPIToken(
	ctx context.Context,
	token string,
) (*model.User, error) {

	if token == "" {
		return nil, nil
	}

	var u model.User
	err := r.db.WithContext(ctx).
		Where("api_token = ?", token).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "GormUserRepository",
			"op":   "FindByAPIToken",
		}).WithError(err).Error("Failed to resolve user by token")

		return nil, err
	}

	return &u, nil
}

// Update persists every field of an existing user.
func (r *GormUserRepository) Update(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "GormUserRepository",
			"op":      "Update",
			"user_id": user.ID,
		}).WithError(err).Error("Failed to update user")

		return err
	}

	return nil
}
