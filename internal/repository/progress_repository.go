package repository

import (
	"time"

	"lsr_trainer_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 整行覆盖写入 (user, module) 的进度，后写覆盖先写。
func (r *ProgressRepository) Upsert(progress *model.ModuleProgress) error {
	progress.CompletedAt = time.Now()
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completed", "total", "score", "completed_at", "updated_at",
		}),
	}).Create(progress).Error
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	err := r.DB.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) FindByUserAndModule(userID uint, key model.ModuleKey) (*model.ModuleProgress, error) {
	var row model.ModuleProgress
	err := r.DB.Where("user_id = ? AND module_key = ?", userID, key).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
