package repository

import (
	"lsr_trainer_backend/internal/model"

	"gorm.io/gorm"
)

type RecordingRepository struct {
	DB *gorm.DB
}

func NewRecordingRepository(db *gorm.DB) *RecordingRepository {
	return &RecordingRepository{DB: db}
}

func (r *RecordingRepository) Create(recording *model.Recording) error {
	return r.DB.Create(recording).Error
}

func (r *RecordingRepository) ListByUserAndModule(userID uint, key model.ModuleKey) ([]model.Recording, error) {
	var rows []model.Recording
	err := r.DB.Where("user_id = ? AND module_key = ?", userID, key).
		Order("created_at desc").
		Find(&rows).Error
	return rows, err
}

func (r *RecordingRepository) FindByID(id uint) (*model.Recording, error) {
	var row model.Recording
	err := r.DB.First(&row, id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
