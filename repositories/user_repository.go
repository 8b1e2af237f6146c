package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) ListVerified(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("is_verified = ?", true).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) SetAvatarURL(ctx context.Context, id uuid.UUID, url *string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("avatar_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertVerificationCode replaces any pending code of the user.
func (r *UserRepository) UpsertVerificationCode(ctx context.Context, userID uuid.UUID, code int, expiresAt time.Time) error {
	vc := models.VerificationCode{UserID: userID, Code: code, ExpiredAt: expiresAt}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "expired_at"}),
		}).
		Create(&vc).Error
}

func (r *UserRepository) GetVerificationCode(ctx context.Context, userID uuid.UUID) (*models.VerificationCode, error) {
	var vc models.VerificationCode
	if err := r.db.WithContext(ctx).First(&vc, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &vc, nil
}

func (r *UserRepository) Verify(ctx context.Context, userID uuid.UUID, codeID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Delete(&models.VerificationCode{}, "id = ?", codeID).Error
	})
}
