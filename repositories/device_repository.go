package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceStore interface {
	// Save upserts the device by (user_id, token_hash).
	Save(ctx context.Context, d *models.UserDevice) error
	EnabledForUser(ctx context.Context, userID uuid.UUID) ([]models.UserDevice, error)
	Disable(ctx context.Context, id uint) error
	SetEnabled(ctx context.Context, userID uuid.UUID, enabled bool) (int64, error)
}

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Save(ctx context.Context, d *models.UserDevice) error {
	d.UpdatedAt = time.Now()
	d.Enabled = true
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"platform", "endpoint_arn", "enabled", "updated_at"}),
		}).
		Create(d).Error
}

func (r *DeviceRepository) EnabledForUser(ctx context.Context, userID uuid.UUID) ([]models.UserDevice, error) {
	var devices []models.UserDevice
	err := r.db.WithContext(ctx).Where("user_id = ? AND enabled = ?", userID, true).Find(&devices).Error
	return devices, err
}

func (r *DeviceRepository) Disable(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.UserDevice{}).Where("id = ?", id).Update("enabled", false).Error
}

// SetEnabled toggles every device of the user and returns how many changed.
func (r *DeviceRepository) SetEnabled(ctx context.Context, userID uuid.UUID, enabled bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.UserDevice{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"enabled": enabled, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}
