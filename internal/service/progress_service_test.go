package service

import (
	"testing"

	"lsr_trainer_backend/internal/engine"
	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/internal/repository"
	"lsr_trainer_backend/pkg/database"
	"lsr_trainer_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Log = zap.NewNop()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.SeedCatalog(db)
	return db
}

func newProgressService(t *testing.T) *ProgressService {
	db := testDB(t)
	return NewProgressService(
		repository.NewProgressRepository(db),
		repository.NewCatalogRepository(db),
		nil, // 无 redis 时直接查库
	)
}

func TestReportUsesPlannedTotal(t *testing.T) {
	s := newProgressService(t)

	err := s.Report(1, model.ModuleListening, engine.ModuleOutcome{Completed: 3, Score: 67})
	require.NoError(t, err)

	row, err := s.ProgressRepo.FindByUserAndModule(1, model.ModuleListening)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Completed)
	assert.Equal(t, 10, row.Total) // 模块计划题量，而非本次会话题数
	assert.Equal(t, 67, row.Score)
}

func TestReportOverwritesPreviousRecord(t *testing.T) {
	s := newProgressService(t)

	require.NoError(t, s.Report(1, model.ModuleReading, engine.ModuleOutcome{Completed: 2, Score: 83}))
	require.NoError(t, s.Report(1, model.ModuleReading, engine.ModuleOutcome{Completed: 2, Score: 50}))

	row, err := s.ProgressRepo.FindByUserAndModule(1, model.ModuleReading)
	require.NoError(t, err)
	assert.Equal(t, 50, row.Score) // 后写覆盖，不保留最好成绩

	var count int64
	s.ProgressRepo.DB.Model(&model.ModuleProgress{}).Where("user_id = ?", 1).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestOverviewAggregatesAcrossModules(t *testing.T) {
	s := newProgressService(t)

	require.NoError(t, s.Report(7, model.ModuleListening, engine.ModuleOutcome{Completed: 3, Score: 67}))
	require.NoError(t, s.Report(7, model.ModuleSpeaking, engine.ModuleOutcome{Completed: 2, Score: 85}))

	overview, err := s.Overview(7)
	require.NoError(t, err)

	// 四个模块都出现，未完成的 completed=0
	assert.Len(t, overview.Modules, 4)
	assert.Equal(t, model.ModuleRecord{Completed: 3, Total: 10, Score: 67}, overview.Modules[model.ModuleListening])
	assert.Equal(t, model.ModuleRecord{Completed: 0, Total: 12, Score: 0}, overview.Modules[model.ModuleReading])

	assert.Equal(t, 5, overview.TotalCompleted)
	// (3+2)/(10+8+12+5) = 14%
	assert.Equal(t, 14, overview.OverallPercent)
	// 平均只算已完成的模块: round((67+85)/2)=76
	assert.Equal(t, 76, overview.AverageScore)
}

func TestOverviewEmptyUser(t *testing.T) {
	s := newProgressService(t)

	overview, err := s.Overview(99)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.TotalCompleted)
	assert.Equal(t, 0, overview.OverallPercent)
	assert.Equal(t, 0, overview.AverageScore)
	assert.Len(t, overview.Modules, 4)
}
