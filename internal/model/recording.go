package model

// Recording 学员上传的口语/面试录音工件。ObjectKey 是对象存储中的不透明
// 引用，引擎只保存不解析。
type Recording struct {
	BaseModel
	UserID     uint      `gorm:"index;not null" json:"userId"`
	ModuleKey  ModuleKey `gorm:"size:32;index;not null" json:"moduleKey"`
	ExerciseID uint      `gorm:"index;not null" json:"exerciseId"`
	ObjectKey  string    `gorm:"size:255;not null" json:"objectKey"`
	URL        string    `gorm:"size:512" json:"url"`
	Duration   int       `gorm:"default:0" json:"duration"` // 秒
	Size       int64     `gorm:"default:0" json:"size"`
	Format     string    `gorm:"size:50" json:"format"`
}

func (Recording) TableName() string {
	return "recordings"
}
