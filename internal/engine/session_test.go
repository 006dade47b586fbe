package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 手动驱动的时钟，测试里直接触发 tick/expire。
type fakeClock struct {
	onTick   func(int)
	onExpire func()
	started  []int
	cancels  int
}

func (f *fakeClock) Start(seconds int) { f.started = append(f.started, seconds) }
func (f *fakeClock) Cancel()           { f.cancels++ }

func fakeClockFactory(fc *fakeClock) ClockFactory {
	return func(onTick func(int), onExpire func()) Clock {
		fc.onTick = onTick
		fc.onExpire = onExpire
		return fc
	}
}

func choiceExercise(id uint, correct ...int) Exercise {
	ex := Exercise{ID: id, Title: "ex", TimeLimit: 30}
	for _, c := range correct {
		ex.Questions = append(ex.Questions, Question{
			Content: "q",
			Options: []string{"A", "B", "C", "D"},
			Correct: c,
		})
	}
	return ex
}

func listeningSession(fc *fakeClock) *Session {
	cfg := ModuleConfig{
		Key:      "listening",
		Capture:  CaptureChoice,
		Priming:  PrimingPlayback,
		NewClock: fakeClockFactory(fc),
	}
	return NewSession(cfg, []Exercise{
		choiceExercise(1, 1),
		choiceExercise(2, 2),
		choiceExercise(3, 0),
	})
}

func TestListeningFlowScoresTwoOfThree(t *testing.T) {
	fc := &fakeClock{}
	s := listeningSession(fc)
	require.NoError(t, s.Start())

	// 播报阶段不能作答
	assert.ErrorIs(t, s.SelectOption(0, 1), ErrNotReady)
	assert.Equal(t, PhasePriming, s.Snapshot().Phase)

	answers := []int{1, 2, 2} // 前两题答对，第三题答错
	for i, a := range answers {
		require.NoError(t, s.PlaybackFinished())
		assert.Equal(t, PhaseCapturing, s.Snapshot().Phase)
		assert.Equal(t, 30, s.Snapshot().Remaining)

		require.NoError(t, s.SelectOption(0, a))
		res, err := s.Submit()
		require.NoError(t, err)
		assert.False(t, res.AutoScored)

		out, done, err := s.Advance()
		require.NoError(t, err)
		if i < len(answers)-1 {
			assert.False(t, done)
			assert.Nil(t, out)
			continue
		}
		require.True(t, done)
		assert.Equal(t, 3, out.Completed)
		assert.Equal(t, 67, out.Score) // round(100*2/3)
	}
	assert.True(t, s.Snapshot().Completed)
}

func TestSubmitRequiresSelection(t *testing.T) {
	fc := &fakeClock{}
	s := listeningSession(fc)
	require.NoError(t, s.Start())
	require.NoError(t, s.PlaybackFinished())

	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrNotReady)

	// 无效下标拒绝
	assert.ErrorIs(t, s.SelectOption(1, 0), ErrNotReady)
	assert.ErrorIs(t, s.SelectOption(0, 9), ErrNotReady)
	assert.ErrorIs(t, s.SelectOption(-1, 0), ErrNotReady)

	// 重复选择覆盖
	require.NoError(t, s.SelectOption(0, 0))
	require.NoError(t, s.SelectOption(0, 1))
	res, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 1, res.CorrectCount)
}

func readingSession(fc *fakeClock) *Session {
	cfg := ModuleConfig{
		Key:               "reading",
		Capture:           CaptureChoice,
		Priming:           PrimingNone,
		RequireAllAnswers: true,
		NewClock:          fakeClockFactory(fc),
	}
	return NewSession(cfg, []Exercise{
		choiceExercise(10, 0, 1, 2),
		choiceExercise(11, 3, 3, 3),
	})
}

func TestReadingManualSubmitNeedsAllAnswers(t *testing.T) {
	fc := &fakeClock{}
	s := readingSession(fc)
	require.NoError(t, s.Start())

	// 无 priming，直接进作答，倒计时取练习时限
	assert.Equal(t, PhaseCapturing, s.Snapshot().Phase)
	assert.Equal(t, []int{30}, fc.started)

	require.NoError(t, s.SelectOption(0, 0))
	require.NoError(t, s.SelectOption(1, 1))
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrNotReady) // 还差一题

	require.NoError(t, s.SelectOption(2, 0))
	res, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 2, res.CorrectCount)
}

func TestReadingTimeoutSubmitsPartial(t *testing.T) {
	fc := &fakeClock{}
	s := readingSession(fc)
	require.NoError(t, s.Start())

	require.NoError(t, s.SelectOption(0, 0)) // 只答了一题，且答对
	s.TimeoutExpired()

	st := s.Snapshot()
	assert.Equal(t, PhaseScored, st.Phase)
	require.NotNil(t, st.Result)
	assert.True(t, st.Result.AutoScored)
	assert.Equal(t, 1, st.Result.CorrectCount)
	assert.Equal(t, -1, st.Result.Questions[1].Selected)

	// 第二题全对：总分 round(100*4/6)
	_, done, err := s.Advance()
	require.NoError(t, err)
	require.False(t, done)
	for q := 0; q < 3; q++ {
		require.NoError(t, s.SelectOption(q, 3))
	}
	_, err = s.Submit()
	require.NoError(t, err)
	out, done, err := s.Advance()
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, 67, out.Score)
}

func speakingSession(fc *fakeClock, score ScoreFunc) *Session {
	cfg := ModuleConfig{
		Key:      "speaking",
		Capture:  CaptureRecording,
		Priming:  PrimingNone,
		Score:    score,
		NewClock: fakeClockFactory(fc),
	}
	return NewSession(cfg, []Exercise{
		{ID: 20, TimeLimit: 60},
		{ID: 21, TimeLimit: 45},
	})
}

func fixedScore(n int) ScoreFunc {
	return func(Exercise, Artifact) int { return n }
}

func TestRecordingCaptureProducesArtifact(t *testing.T) {
	fc := &fakeClock{}
	s := speakingSession(fc, fixedScore(90))
	require.NoError(t, s.Start())

	// 未开始录音时提交被拒
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrNotReady)

	// 从未开始就结束是 no-op
	art, err := s.FinishRecording("obj/early.webm")
	require.NoError(t, err)
	assert.Nil(t, art)

	require.NoError(t, s.BeginRecording())
	fc.onTick(42) // 用时 60-42=18 秒
	art, err = s.FinishRecording("obj/a.webm")
	require.NoError(t, err)
	require.NotNil(t, art)
	assert.Equal(t, "obj/a.webm", art.Ref)
	assert.Equal(t, 18, art.Duration)

	res, err := s.Submit()
	require.NoError(t, err)
	assert.Equal(t, 90, res.HookScore)
	assert.Equal(t, art, res.Artifact)
}

func TestDeviceFailureLeavesSessionRetryable(t *testing.T) {
	fc := &fakeClock{}
	s := speakingSession(fc, fixedScore(80))
	require.NoError(t, s.Start())

	require.NoError(t, s.FailRecording("microphone permission denied"))
	st := s.Snapshot()
	assert.Equal(t, PhaseCapturing, st.Phase)
	assert.Equal(t, "microphone permission denied", st.DeviceError)
	assert.False(t, st.Recording)

	// 重试成功后失败状态清掉
	require.NoError(t, s.BeginRecording())
	assert.Empty(t, s.Snapshot().DeviceError)
	_, err := s.FinishRecording("obj/retry.webm")
	require.NoError(t, err)
	_, err = s.Submit()
	require.NoError(t, err)
}

func TestRerecordDiscardsPreviousArtifact(t *testing.T) {
	fc := &fakeClock{}
	s := speakingSession(fc, fixedScore(80))
	require.NoError(t, s.Start())

	require.NoError(t, s.BeginRecording())
	_, err := s.FinishRecording("obj/first.webm")
	require.NoError(t, err)

	require.NoError(t, s.BeginRecording())
	assert.Nil(t, s.Snapshot().Artifact)
	art, err := s.FinishRecording("obj/second.webm")
	require.NoError(t, err)
	assert.Equal(t, "obj/second.webm", art.Ref)
}

func TestTimeoutDuringRecordingAutoStops(t *testing.T) {
	fc := &fakeClock{}
	s := speakingSession(fc, fixedScore(75))
	require.NoError(t, s.Start())

	require.NoError(t, s.BeginRecording())
	s.TimeoutExpired()

	st := s.Snapshot()
	assert.Equal(t, PhaseScored, st.Phase)
	require.NotNil(t, st.Result)
	assert.True(t, st.Result.AutoScored)
	require.NotNil(t, st.Result.Artifact)
	assert.Equal(t, 60, st.Result.Artifact.Duration) // 用满时限
}

func TestTimeoutWithoutArtifactScoresZero(t *testing.T) {
	fc := &fakeClock{}
	s := speakingSession(fc, fixedScore(75))
	require.NoError(t, s.Start())

	s.TimeoutExpired()
	st := s.Snapshot()
	require.NotNil(t, st.Result)
	assert.Equal(t, 0, st.Result.HookScore)

	// 第二题得 75，模块分取平均 round((0+75)/2)=38
	_, done, err := s.Advance()
	require.NoError(t, err)
	require.False(t, done)
	require.NoError(t, s.BeginRecording())
	_, err = s.FinishRecording("obj/b.webm")
	require.NoError(t, err)
	_, err = s.Submit()
	require.NoError(t, err)
	out, done, err := s.Advance()
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, 38, out.Score)
}

func TestCountdownPrimingTransitionsOnExpiry(t *testing.T) {
	fc := &fakeClock{}
	cfg := ModuleConfig{
		Key:         "mock_interview",
		Capture:     CaptureRecording,
		Priming:     PrimingCountdown,
		PrepSeconds: 30,
		Score:       fixedScore(85),
		NewClock:    fakeClockFactory(fc),
	}
	s := NewSession(cfg, []Exercise{{ID: 30, TimeLimit: 90}})
	require.NoError(t, s.Start())

	st := s.Snapshot()
	assert.Equal(t, PhasePriming, st.Phase)
	assert.Equal(t, 30, st.Remaining)
	assert.Equal(t, []int{30}, fc.started)

	// 准备期不能录音
	assert.ErrorIs(t, s.BeginRecording(), ErrNotReady)

	fc.onExpire()
	st = s.Snapshot()
	assert.Equal(t, PhaseCapturing, st.Phase)
	assert.Equal(t, 90, st.Remaining)
	assert.Equal(t, []int{30, 90}, fc.started)
}

func TestAdvanceRequiresScoredPhase(t *testing.T) {
	fc := &fakeClock{}
	s := readingSession(fc)
	require.NoError(t, s.Start())

	_, _, err := s.Advance()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestStartIsOneShot(t *testing.T) {
	fc := &fakeClock{}
	s := readingSession(fc)
	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrNotReady)
}

func TestEmptyExerciseListCompletesImmediately(t *testing.T) {
	fc := &fakeClock{}
	cfg := ModuleConfig{Key: "reading", Capture: CaptureChoice, NewClock: fakeClockFactory(fc)}
	s := NewSession(cfg, nil)
	require.NoError(t, s.Start())
	assert.True(t, s.Snapshot().Completed)
}

func TestCloseReleasesCaptureAndRejectsOps(t *testing.T) {
	fc := &fakeClock{}
	s := speakingSession(fc, fixedScore(80))
	require.NoError(t, s.Start())
	require.NoError(t, s.BeginRecording())

	s.Close()
	s.Close() // 幂等

	assert.True(t, s.Closed())
	assert.False(t, s.Snapshot().Recording)
	assert.GreaterOrEqual(t, fc.cancels, 1)

	assert.ErrorIs(t, s.BeginRecording(), ErrSessionClosed)
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, _, err = s.Advance()
	assert.ErrorIs(t, err, ErrSessionClosed)

	// 关闭后迟到的时钟回调无害
	s.TimeoutExpired()
	fc.onTick(5)
	assert.Equal(t, PhaseCapturing, s.Snapshot().Phase)
}

func TestLateTimeoutAfterScoreIsIgnored(t *testing.T) {
	fc := &fakeClock{}
	s := listeningSession(fc)
	require.NoError(t, s.Start())
	require.NoError(t, s.PlaybackFinished())
	require.NoError(t, s.SelectOption(0, 1))
	_, err := s.Submit()
	require.NoError(t, err)

	s.TimeoutExpired() // scored 阶段的迟到过期
	st := s.Snapshot()
	assert.Equal(t, PhaseScored, st.Phase)
	assert.False(t, st.Result.AutoScored)
	assert.Equal(t, 0, st.ExerciseIndex)
}
