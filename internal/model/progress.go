package model

import "time"

// ModuleProgress 学员在单个模块上的进度记录，每个 (user, module) 一行，
// 模块完成时整行覆盖写入（last-write-wins）。
type ModuleProgress struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex:idx_user_module;not null" json:"userId"`
	ModuleKey   ModuleKey `gorm:"size:32;uniqueIndex:idx_user_module;not null" json:"moduleKey"`
	Completed   int       `gorm:"default:0" json:"completed"`
	Total       int       `gorm:"default:0" json:"total"`
	Score       int       `gorm:"default:0" json:"score"` // 0-100
	CompletedAt time.Time `json:"completedAt"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

// ProgressOverview 进度页聚合数据。
type ProgressOverview struct {
	OverallPercent int                        `json:"overallPercent"`
	TotalCompleted int                        `json:"totalCompleted"`
	AverageScore   int                        `json:"averageScore"`
	Modules        map[ModuleKey]ModuleRecord `json:"modules"`
}

// ModuleRecord 对外暴露的单模块进度，形如 {completed,total,score}。
type ModuleRecord struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Score     int `json:"score"`
}
