package engine

import "sync"

// Phase 会话所处阶段。单练习的生命周期：
//
//	idle -> (priming) -> capturing -> scored -> 下一题或整模块完成
//
// priming 只在模块配置了播报/准备倒计时时出现。
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePriming   Phase = "priming"
	PhaseCapturing Phase = "capturing"
	PhaseScored    Phase = "scored"
)

// QuestionResult 判分后单个子题的结果。Selected 为 -1 表示未作答。
type QuestionResult struct {
	Selected int  `json:"selected"`
	Correct  int  `json:"correct"`
	Right    bool `json:"right"`
}

// ExerciseResult 判分后当前练习的结果。choice 类填 Questions/CorrectCount，
// recording 类填 HookScore/Artifact。
type ExerciseResult struct {
	ExerciseID   uint             `json:"exerciseId"`
	AutoScored   bool             `json:"autoScored"` // 超时自动提交
	CorrectCount int              `json:"correctCount"`
	Questions    []QuestionResult `json:"questions,omitempty"`
	HookScore    int              `json:"hookScore"`
	Artifact     *Artifact        `json:"artifact,omitempty"`
}

// State 会话的一致性快照，供接口层下发。
type State struct {
	Module        string          `json:"module"`
	Phase         Phase           `json:"phase"`
	ExerciseIndex int             `json:"exerciseIndex"`
	ExerciseCount int             `json:"exerciseCount"`
	Remaining     int             `json:"remaining"`
	Completed     bool            `json:"completed"`
	Selections    map[int]int     `json:"selections,omitempty"`
	Recording     bool            `json:"recording"`
	DeviceError   string          `json:"deviceError,omitempty"`
	Artifact      *Artifact       `json:"artifact,omitempty"`
	Result        *ExerciseResult `json:"result,omitempty"`
}

// Session 一个学员在一个模块上的定时训练会话。所有方法并发安全；
// 时钟回调与外部调用共用一把锁，阶段检查保证迟到的回调无害。
type Session struct {
	mu        sync.Mutex
	cfg       ModuleConfig
	exercises []Exercise
	clock     Clock

	phase     Phase
	idx       int
	remaining int
	completed bool
	closed    bool

	cap    *capture
	board  scoreboard
	result *ExerciseResult
}

// NewSession 创建会话。练习列表为空时会话直接视为已完成。
func NewSession(cfg ModuleConfig, exercises []Exercise) *Session {
	s := &Session{
		cfg:       cfg,
		exercises: exercises,
		phase:     PhaseIdle,
		cap:       newCapture(),
	}
	factory := cfg.NewClock
	if factory == nil {
		factory = NewTickClock
	}
	s.clock = factory(s.handleTick, s.TimeoutExpired)
	return s
}

// Start 开始第一道练习。只能从初始 idle 状态调用一次。
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.phase != PhaseIdle || s.idx != 0 || s.completed {
		return ErrNotReady
	}
	if len(s.exercises) == 0 {
		s.completed = true
		return nil
	}
	s.enterExercise()
	return nil
}

// Snapshot 返回当前状态快照。
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Module:        s.cfg.Key,
		Phase:         s.phase,
		ExerciseIndex: s.idx,
		ExerciseCount: len(s.exercises),
		Remaining:     s.remaining,
		Completed:     s.completed,
		Recording:     s.cap.recording,
		DeviceError:   s.cap.deviceErr,
		Artifact:      s.cap.artifact,
		Result:        s.result,
	}
	if len(s.cap.selections) > 0 {
		st.Selections = make(map[int]int, len(s.cap.selections))
		for q, o := range s.cap.selections {
			st.Selections[q] = o
		}
	}
	return st
}

// Exercise 当前练习。会话完成后返回最后一题。
func (s *Session) Exercise() Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.idx
	if i >= len(s.exercises) {
		i = len(s.exercises) - 1
	}
	if i < 0 {
		return Exercise{}
	}
	return s.exercises[i]
}

// SelectOption 记录一个选项，可重复选择覆盖之前的选择。
func (s *Session) SelectOption(question, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.phase != PhaseCapturing || s.cfg.Capture != CaptureChoice {
		return ErrNotReady
	}
	return s.cap.choose(question, option, s.exercises[s.idx])
}

// BeginRecording 开始录音。已有工件时视为重录，旧工件作废。
func (s *Session) BeginRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.phase != PhaseCapturing || s.cfg.Capture != CaptureRecording {
		return ErrNotReady
	}
	s.cap.beginRecording()
	return nil
}

// FailRecording 记录设备失败。会话停留在 capturing，学员可重试。
func (s *Session) FailRecording(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.phase != PhaseCapturing || s.cfg.Capture != CaptureRecording {
		return ErrNotReady
	}
	if reason == "" {
		reason = ErrDeviceUnavailable.Error()
	}
	s.cap.failRecording(reason)
	return nil
}

// FinishRecording 结束录音并产出工件。从未开始录音时是 no-op，返回 nil。
// 用时 = 时限 - 剩余秒数，夹在 [0, 时限] 内。
func (s *Session) FinishRecording(ref string) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.phase != PhaseCapturing || s.cfg.Capture != CaptureRecording {
		return nil, ErrNotReady
	}
	limit := s.cfg.answerSeconds(s.exercises[s.idx])
	elapsed := limit - s.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > limit {
		elapsed = limit
	}
	return s.cap.finishRecording(ref, elapsed), nil
}

// PlaybackFinished 播报结束（或播报不可用被跳过），进入作答阶段。
func (s *Session) PlaybackFinished() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.phase != PhasePriming || s.cfg.Priming != PrimingPlayback {
		return ErrNotReady
	}
	s.enterCapturing()
	return nil
}

// Submit 手动提交当前练习。前置条件不满足返回 ErrNotReady：
// choice 类要求至少一个选择（RequireAllAnswers 时要求答完所有子题），
// recording 类要求已有录音工件。
func (s *Session) Submit() (*ExerciseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.phase != PhaseCapturing {
		return nil, ErrNotReady
	}
	if !s.cap.ready(s.cfg, s.exercises[s.idx]) {
		return nil, ErrNotReady
	}
	s.score(false)
	return s.result, nil
}

// Advance 进入下一题。最后一题之后会话完成并产出模块结果。
func (s *Session) Advance() (*ModuleOutcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrSessionClosed
	}
	if s.phase != PhaseScored {
		return nil, false, ErrNotReady
	}
	s.idx++
	if s.idx >= len(s.exercises) {
		s.completed = true
		s.clock.Cancel()
		out := &ModuleOutcome{
			Completed: len(s.exercises),
			Score:     s.board.final(s.cfg.Capture),
		}
		return out, true, nil
	}
	s.enterExercise()
	return nil, false, nil
}

// TimeoutExpired 倒计时归零。priming 阶段转入作答；capturing 阶段
// 自动提交已有作答（缺失项计零分），不检查提交前置条件。
func (s *Session) TimeoutExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	switch s.phase {
	case PhasePriming:
		if s.cfg.Priming == PrimingCountdown {
			s.enterCapturing()
		}
	case PhaseCapturing:
		s.remaining = 0
		// 超时瞬间仍在录音：就地截停，用时记满时限
		if s.cap.recording {
			limit := s.cfg.answerSeconds(s.exercises[s.idx])
			s.cap.finishRecording("", limit)
		}
		s.score(true)
	}
}

// Close 终止会话并释放采集资源。幂等。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cap.recording = false
	s.clock.Cancel()
}

// Closed 会话是否已被关闭。
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) handleTick(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.phase == PhasePriming || s.phase == PhaseCapturing {
		s.remaining = remaining
	}
}

// enterExercise 进入当前下标的练习，按模块配置决定是否先 priming。
// 调用方持锁。
func (s *Session) enterExercise() {
	s.result = nil
	s.cap.reset()
	switch s.cfg.Priming {
	case PrimingCountdown:
		s.phase = PhasePriming
		s.remaining = s.cfg.PrepSeconds
		s.clock.Start(s.cfg.PrepSeconds)
	case PrimingPlayback:
		// 播报期间不走倒计时，等 PlaybackFinished
		s.phase = PhasePriming
		s.remaining = 0
	default:
		s.enterCapturing()
	}
}

// enterCapturing 进入作答阶段并启动作答倒计时。调用方持锁。
func (s *Session) enterCapturing() {
	s.phase = PhaseCapturing
	s.remaining = s.cfg.answerSeconds(s.exercises[s.idx])
	s.clock.Start(s.remaining)
}

// score 判分当前练习并转入 scored。调用方持锁。
func (s *Session) score(auto bool) {
	s.clock.Cancel()
	ex := s.exercises[s.idx]
	res := &ExerciseResult{ExerciseID: ex.ID, AutoScored: auto}

	switch s.cfg.Capture {
	case CaptureChoice:
		res.Questions = make([]QuestionResult, len(ex.Questions))
		for qi, q := range ex.Questions {
			sel, answered := s.cap.selections[qi]
			if !answered {
				sel = -1
			}
			right := answered && sel == q.Correct
			if right {
				res.CorrectCount++
			}
			res.Questions[qi] = QuestionResult{Selected: sel, Correct: q.Correct, Right: right}
		}
		s.board.addChoice(res.CorrectCount, len(ex.Questions))
	case CaptureRecording:
		res.Artifact = s.cap.artifact
		if s.cap.artifact != nil && s.cfg.Score != nil {
			res.HookScore = s.cfg.Score(ex, *s.cap.artifact)
		}
		s.board.addHook(res.HookScore)
	}

	s.result = res
	s.phase = PhaseScored
}
