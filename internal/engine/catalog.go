package engine

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

// Question 选择类练习的一道子题。Correct 为正确选项下标。
type Question struct {
	Content string
	Options []string
	Correct int
}

// Exercise 引擎消费的练习，从题库加载后不可变。
type Exercise struct {
	ID           uint
	Title        string
	Prompt       string
	AudioText    string
	Passage      string
	Category     string
	SampleAnswer string
	KeyPoints    []string
	TimeLimit    int // 秒；recording 类为录音时限，choice 类为作答窗口（可被模块级配置覆盖）
	Questions    []Question
}

// ModuleConfig 一个模块的引擎参数。四个模块共用同一个状态机，
// 仅靠这里的差异区分。
type ModuleConfig struct {
	Key           string
	Capture       CaptureKind
	Priming       PrimingMode
	PrepSeconds   int // countdown priming 的准备倒计时
	AnswerSeconds int // 作答窗口；0 表示使用练习自带 TimeLimit

	// RequireAllAnswers 手动提交是否要求答完所有子题（阅读模块）。
	// 超时自动提交不受此限制。
	RequireAllAnswers bool

	// Score 录音类练习的打分钩子，返回 0-100。
	Score ScoreFunc

	// NewClock 为空时使用真实倒计时时钟；测试注入假时钟。
	NewClock ClockFactory
}

func (c ModuleConfig) answerSeconds(ex Exercise) int {
	if c.AnswerSeconds > 0 {
		return c.AnswerSeconds
	}
	return ex.TimeLimit
}

// ModuleOutcome 模块完成时产出的结果，上报给进度聚合器。
type ModuleOutcome struct {
	Completed int
	Score     int // 0-100
}
