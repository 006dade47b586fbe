package repository

import (
	"lsr_trainer_backend/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository 训练模块与题库的读写。
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) ListModules() ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	err := r.DB.Order("`order` asc").Find(&modules).Error
	return modules, err
}

func (r *CatalogRepository) FindModuleByKey(key model.ModuleKey) (*model.TrainingModule, error) {
	var module model.TrainingModule
	err := r.DB.Where("`key` = ?", key).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// ListExercises 按顺序加载一个模块的练习，连同排好序的子题。
func (r *CatalogRepository) ListExercises(key model.ModuleKey) ([]model.Exercise, error) {
	var exercises []model.Exercise
	err := r.DB.Where("module_key = ?", key).
		Order("`order` asc").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Find(&exercises).Error
	return exercises, err
}

// ListExercisesPage 管理端分页加载，额外返回总数。
func (r *CatalogRepository) ListExercisesPage(key model.ModuleKey, page, limit int) ([]model.Exercise, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Exercise{}).
		Where("module_key = ?", key).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exercises []model.Exercise
	err := r.DB.Where("module_key = ?", key).
		Order("`order` asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Find(&exercises).Error
	return exercises, total, err
}

func (r *CatalogRepository) FindExerciseByID(id uint) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("`order` asc")
	}).First(&exercise, id).Error
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (r *CatalogRepository) CreateExercise(exercise *model.Exercise) error {
	return r.DB.Create(exercise).Error
}

func (r *CatalogRepository) UpdateExercise(exercise *model.Exercise) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(exercise).Error; err != nil {
			return err
		}
		// 子题整体替换，避免更新时残留旧题
		if err := tx.Where("exercise_id = ?", exercise.ID).
			Delete(&model.ExerciseQuestion{}).Error; err != nil {
			return err
		}
		for i := range exercise.Questions {
			exercise.Questions[i].ID = 0
			exercise.Questions[i].ExerciseID = exercise.ID
			if err := tx.Create(&exercise.Questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CatalogRepository) DeleteExercise(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exercise_id = ?", id).
			Delete(&model.ExerciseQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Exercise{}, id).Error
	})
}

func (r *CatalogRepository) UpdateModule(module *model.TrainingModule) error {
	return r.DB.Save(module).Error
}
