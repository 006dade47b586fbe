package model

import "encoding/json"

// Exercise 题库中的一条练习。choice 类练习通过 Questions 关联若干子题；
// recording 类练习使用 TimeLimit/KeyPoints/SampleAnswer。
type Exercise struct {
	BaseModel
	ModuleKey    ModuleKey          `gorm:"size:32;index;not null" json:"moduleKey"`
	Title        string             `gorm:"size:255;not null" json:"title"`
	Prompt       string             `gorm:"type:text" json:"prompt"`
	AudioText    string             `gorm:"type:text" json:"audioText"` // 听力播报文本，同时作为文字稿
	Passage      string             `gorm:"type:text" json:"passage"`   // 阅读原文
	Category     string             `gorm:"size:100" json:"category"`
	TimeLimit    int                `gorm:"default:0" json:"timeLimit"` // 秒
	KeyPoints    json.RawMessage    `gorm:"type:json" json:"keyPoints"`
	SampleAnswer string             `gorm:"type:text" json:"sampleAnswer"`
	Order        int                `gorm:"default:0" json:"order"`
	Questions    []ExerciseQuestion `gorm:"foreignKey:ExerciseID" json:"questions,omitempty"`
}

func (Exercise) TableName() string {
	return "exercises"
}

type ExerciseQuestion struct {
	BaseModel
	ExerciseID uint            `gorm:"index;not null" json:"exerciseId"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	Options    json.RawMessage `gorm:"type:json" json:"options"`
	Correct    int             `gorm:"not null" json:"correct"` // 正确选项下标；学员端接口一律走脱敏视图
	Order      int             `gorm:"default:0" json:"order"`
}

func (ExerciseQuestion) TableName() string {
	return "exercise_questions"
}
