package service

import (
	"encoding/json"
	"errors"

	"lsr_trainer_backend/internal/engine"
	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/internal/repository"
	"lsr_trainer_backend/internal/util"

	"gorm.io/gorm"
)

// CatalogService 训练模块与题库的查询和后台维护。
type CatalogService struct {
	CatalogRepo *repository.CatalogRepository
}

func NewCatalogService(catalogRepo *repository.CatalogRepository) *CatalogService {
	return &CatalogService{CatalogRepo: catalogRepo}
}

func (s *CatalogService) ListModules() ([]model.TrainingModule, error) {
	return s.CatalogRepo.ListModules()
}

func (s *CatalogService) GetModule(key model.ModuleKey) (*model.TrainingModule, error) {
	if !key.Valid() {
		return nil, util.ErrModuleNotFound
	}
	module, err := s.CatalogRepo.FindModuleByKey(key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	return module, err
}

func (s *CatalogService) ListExercises(key model.ModuleKey) ([]model.Exercise, error) {
	if !key.Valid() {
		return nil, util.ErrModuleNotFound
	}
	return s.CatalogRepo.ListExercises(key)
}

func (s *CatalogService) ListExercisesPage(key model.ModuleKey, page, limit int) ([]model.Exercise, int64, error) {
	if !key.Valid() {
		return nil, 0, util.ErrModuleNotFound
	}
	return s.CatalogRepo.ListExercisesPage(key, page, limit)
}

func (s *CatalogService) GetExercise(id uint) (*model.Exercise, error) {
	exercise, err := s.CatalogRepo.FindExerciseByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExerciseNotFound
	}
	return exercise, err
}

func (s *CatalogService) CreateExercise(exercise *model.Exercise) error {
	if !exercise.ModuleKey.Valid() {
		return util.ErrModuleNotFound
	}
	return s.CatalogRepo.CreateExercise(exercise)
}

func (s *CatalogService) UpdateExercise(exercise *model.Exercise) error {
	if _, err := s.GetExercise(exercise.ID); err != nil {
		return err
	}
	return s.CatalogRepo.UpdateExercise(exercise)
}

func (s *CatalogService) DeleteExercise(id uint) error {
	if _, err := s.GetExercise(id); err != nil {
		return err
	}
	return s.CatalogRepo.DeleteExercise(id)
}

func (s *CatalogService) UpdateModule(module *model.TrainingModule) error {
	return s.CatalogRepo.UpdateModule(module)
}

// EngineExercises 把题库行转换成引擎消费的练习列表。
func (s *CatalogService) EngineExercises(key model.ModuleKey) ([]engine.Exercise, error) {
	rows, err := s.ListExercises(key)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, util.ErrEmptyCatalog
	}

	exercises := make([]engine.Exercise, 0, len(rows))
	for _, row := range rows {
		ex := engine.Exercise{
			ID:           row.ID,
			Title:        row.Title,
			Prompt:       row.Prompt,
			AudioText:    row.AudioText,
			Passage:      row.Passage,
			Category:     row.Category,
			SampleAnswer: row.SampleAnswer,
			TimeLimit:    row.TimeLimit,
		}
		if len(row.KeyPoints) > 0 {
			_ = json.Unmarshal(row.KeyPoints, &ex.KeyPoints)
		}
		for _, q := range row.Questions {
			var options []string
			if len(q.Options) > 0 {
				_ = json.Unmarshal(q.Options, &options)
			}
			ex.Questions = append(ex.Questions, engine.Question{
				Content: q.Content,
				Options: options,
				Correct: q.Correct,
			})
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

// EngineConfig 把模块行映射成引擎配置。录音类模块按模块选择打分钩子。
func (s *CatalogService) EngineConfig(module *model.TrainingModule) engine.ModuleConfig {
	cfg := engine.ModuleConfig{
		Key:               string(module.Key),
		Capture:           engine.CaptureKind(module.Capture),
		Priming:           engine.PrimingMode(module.Priming),
		PrepSeconds:       module.PrepSeconds,
		AnswerSeconds:     module.AnswerSeconds,
		RequireAllAnswers: module.RequireAllAnswers,
	}
	if cfg.Capture == engine.CaptureRecording {
		switch module.Key {
		case model.ModuleMockInterview:
			cfg.Score = engine.BandScore(75, 100)
		default:
			cfg.Score = engine.SpeakingScore()
		}
	}
	return cfg
}
