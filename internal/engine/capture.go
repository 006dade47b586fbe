package engine

// Artifact 一次录音采集的产物。Ref 是存储侧的不透明引用，
// Duration 为实际作答用时（秒），由时限减去剩余时间得出。
type Artifact struct {
	Ref      string `json:"ref"`
	Duration int    `json:"duration"`
}

// capture 当前练习的作答采集状态，进入新练习时整体重置。
type capture struct {
	selections map[int]int // 子题下标 -> 选项下标
	recording  bool
	artifact   *Artifact
	deviceErr  string // 设备失败原因，作为状态呈现而非 error 返回
}

func newCapture() *capture {
	return &capture{selections: make(map[int]int)}
}

func (c *capture) reset() {
	c.selections = make(map[int]int)
	c.recording = false
	c.artifact = nil
	c.deviceErr = ""
}

func (c *capture) choose(question, option int, ex Exercise) error {
	if question < 0 || question >= len(ex.Questions) {
		return ErrNotReady
	}
	if option < 0 || option >= len(ex.Questions[question].Options) {
		return ErrNotReady
	}
	c.selections[question] = option
	return nil
}

// beginRecording 开始（或重录时重新开始）采集，清掉上一次的产物和失败状态。
func (c *capture) beginRecording() {
	c.recording = true
	c.artifact = nil
	c.deviceErr = ""
}

func (c *capture) failRecording(reason string) {
	c.recording = false
	c.deviceErr = reason
}

// finishRecording 结束采集并产出工件。未在录音时是 no-op。
func (c *capture) finishRecording(ref string, elapsed int) *Artifact {
	if !c.recording {
		return nil
	}
	c.recording = false
	c.artifact = &Artifact{Ref: ref, Duration: elapsed}
	return c.artifact
}

// ready 判断当前采集是否满足手动提交条件。
func (c *capture) ready(cfg ModuleConfig, ex Exercise) bool {
	switch cfg.Capture {
	case CaptureChoice:
		if cfg.RequireAllAnswers {
			return len(c.selections) == len(ex.Questions)
		}
		return len(c.selections) > 0
	case CaptureRecording:
		return c.artifact != nil
	}
	return false
}
