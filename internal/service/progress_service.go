package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"lsr_trainer_backend/internal/engine"
	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/internal/repository"
	"lsr_trainer_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const progressCacheTTL = 5 * time.Minute

// ProgressService 跨模块的进度聚合。每个模块一条 {completed,total,score}
// 记录，完成时整行覆盖，不保留历史最好成绩。
type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	CatalogRepo  *repository.CatalogRepository
	Redis        *redis.Client
}

func NewProgressService(progressRepo *repository.ProgressRepository, catalogRepo *repository.CatalogRepository, rdb *redis.Client) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		CatalogRepo:  catalogRepo,
		Redis:        rdb,
	}
}

// Report 模块完成时写入进度。Total 取模块的计划练习数而非本次会话
// 实际做的题数。
func (s *ProgressService) Report(userID uint, key model.ModuleKey, outcome engine.ModuleOutcome) error {
	total := outcome.Completed
	if module, err := s.CatalogRepo.FindModuleByKey(key); err == nil && module.TotalPlanned > 0 {
		total = module.TotalPlanned
	}

	progress := &model.ModuleProgress{
		UserID:    userID,
		ModuleKey: key,
		Completed: outcome.Completed,
		Total:     total,
		Score:     outcome.Score,
	}
	if err := s.ProgressRepo.Upsert(progress); err != nil {
		return err
	}
	s.invalidateCache(userID)
	return nil
}

// Overview 进度页聚合。优先读 redis 缓存，未命中再查库。
func (s *ProgressService) Overview(userID uint) (*model.ProgressOverview, error) {
	ctx := context.Background()
	cacheKey := s.cacheKey(userID)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var overview model.ProgressOverview
			if json.Unmarshal([]byte(cached), &overview) == nil {
				return &overview, nil
			}
		}
	}

	overview, err := s.buildOverview(userID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(overview); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, progressCacheTTL).Err(); err != nil {
				logger.Log.Warn("Failed to cache progress overview", zap.Error(err))
			}
		}
	}
	return overview, nil
}

func (s *ProgressService) buildOverview(userID uint) (*model.ProgressOverview, error) {
	modules, err := s.CatalogRepo.ListModules()
	if err != nil {
		return nil, err
	}
	rows, err := s.ProgressRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[model.ModuleKey]model.ModuleProgress, len(rows))
	for _, row := range rows {
		byKey[row.ModuleKey] = row
	}

	overview := &model.ProgressOverview{
		Modules: make(map[model.ModuleKey]model.ModuleRecord, len(modules)),
	}

	var totalPlanned, totalCompleted, scoreSum, scored int
	for _, module := range modules {
		record := model.ModuleRecord{Total: module.TotalPlanned}
		if row, ok := byKey[module.Key]; ok {
			record.Completed = row.Completed
			record.Total = row.Total
			record.Score = row.Score
			scoreSum += row.Score
			scored++
		}
		overview.Modules[module.Key] = record
		totalPlanned += record.Total
		totalCompleted += record.Completed
	}

	overview.TotalCompleted = totalCompleted
	if totalPlanned > 0 {
		overview.OverallPercent = int(math.Round(100 * float64(totalCompleted) / float64(totalPlanned)))
	}
	if scored > 0 {
		overview.AverageScore = int(math.Round(float64(scoreSum) / float64(scored)))
	}
	return overview, nil
}

func (s *ProgressService) cacheKey(userID uint) string {
	return fmt.Sprintf("trainer:progress:%d", userID)
}

func (s *ProgressService) invalidateCache(userID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), s.cacheKey(userID)).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate progress cache", zap.Error(err))
	}
}
