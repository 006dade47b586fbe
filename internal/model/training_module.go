package model

// ModuleKey 训练模块标识，对应四个训练方向。
type ModuleKey string

const (
	ModuleListening     ModuleKey = "listening"
	ModuleSpeaking      ModuleKey = "speaking"
	ModuleReading       ModuleKey = "reading"
	ModuleMockInterview ModuleKey = "mock_interview"
)

func (k ModuleKey) Valid() bool {
	switch k {
	case ModuleListening, ModuleSpeaking, ModuleReading, ModuleMockInterview:
		return true
	}
	return false
}

type CaptureKind string

const (
	CaptureChoice    CaptureKind = "choice"
	CaptureRecording CaptureKind = "recording"
)

type PrimingMode string

const (
	PrimingNone      PrimingMode = "none"
	PrimingPlayback  PrimingMode = "playback"
	PrimingCountdown PrimingMode = "countdown"
)

// TrainingModule 一个训练方向的配置与元信息。TotalPlanned 用于进度页的
// completed/total 展示，可以大于当前题库中的练习数。
type TrainingModule struct {
	BaseModel
	Key           ModuleKey   `gorm:"size:32;uniqueIndex;not null" json:"key"`
	Title         string      `gorm:"size:255;not null" json:"title"`
	Description   string      `gorm:"type:text" json:"description"`
	Capture       CaptureKind `gorm:"size:20;not null" json:"capture"`
	Priming       PrimingMode `gorm:"size:20;default:'none'" json:"priming"`
	PrepSeconds   int         `gorm:"default:0" json:"prepSeconds"`
	AnswerSeconds int         `gorm:"default:0" json:"answerSeconds"` // 作答窗口；0 表示使用各练习自带的时限
	TotalPlanned  int         `gorm:"default:0" json:"totalPlanned"`
	Order         int         `gorm:"default:0" json:"order"`

	// RequireAllAnswers 手动提交是否要求答完全部子题（阅读模块为 true）
	RequireAllAnswers bool `gorm:"default:false" json:"requireAllAnswers"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}
