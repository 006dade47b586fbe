package service

import (
	"bytes"
	"testing"

	"lsr_trainer_backend/internal/config"
	"lsr_trainer_backend/internal/engine"
	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/internal/repository"
	"lsr_trainer_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService(t *testing.T) *SessionService {
	t.Helper()
	db := testDB(t)

	cfg := &config.Config{}
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Session.MaxRecordingMB = 20
	// Speech.Provider 留空：播报不可用，听力跳过播报阶段

	catalogRepo := repository.NewCatalogRepository(db)
	catalog := NewCatalogService(catalogRepo)
	progress := NewProgressService(repository.NewProgressRepository(db), catalogRepo, nil)
	speech := NewSpeechService(cfg)
	storage := NewStorageService(cfg)
	recordings := repository.NewRecordingRepository(db)

	return NewSessionService(catalog, progress, speech, storage, recordings, nil, cfg)
}

func TestListeningSessionSkipsPlaybackWhenUnsupported(t *testing.T) {
	s := newSessionService(t)

	view, err := s.Start(1, model.ModuleListening)
	require.NoError(t, err)
	// 播报不可用，开场即进入作答
	assert.Equal(t, engine.PhaseCapturing, view.State.Phase)
	assert.Nil(t, view.Playback)
	require.NotNil(t, view.Exercise)
	assert.NotEmpty(t, view.Exercise.AudioText) // 文字稿兜底
	require.Len(t, view.Exercise.Questions, 1)
	assert.Len(t, view.Exercise.Questions[0].Options, 4)
}

func TestListeningFullRunReportsProgress(t *testing.T) {
	s := newSessionService(t)

	_, err := s.Start(1, model.ModuleListening)
	require.NoError(t, err)

	// 种子题库里三道听力题的正确答案都是选项 1
	for i := 0; i < 3; i++ {
		_, err := s.SelectOption(1, model.ModuleListening, 0, 1)
		require.NoError(t, err)
		view, err := s.Submit(1, model.ModuleListening)
		require.NoError(t, err)
		assert.Equal(t, engine.PhaseScored, view.State.Phase)
		require.NotNil(t, view.State.Result)
		assert.Equal(t, 1, view.State.Result.CorrectCount)

		view, err = s.Advance(1, model.ModuleListening)
		require.NoError(t, err)
		if i == 2 {
			require.NotNil(t, view.Outcome)
			assert.Equal(t, 3, view.Outcome.Completed)
			assert.Equal(t, 100, view.Outcome.Score)
		}
	}

	// 会话清理完毕，进度已入库
	_, err = s.Get(1, model.ModuleListening)
	assert.ErrorIs(t, err, util.ErrNoActiveSession)

	row, err := s.Progress.ProgressRepo.FindByUserAndModule(1, model.ModuleListening)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Completed)
	assert.Equal(t, 10, row.Total)
	assert.Equal(t, 100, row.Score)
}

func TestSecondStartRejectedUntilAbandon(t *testing.T) {
	s := newSessionService(t)

	_, err := s.Start(1, model.ModuleReading)
	require.NoError(t, err)

	_, err = s.Start(1, model.ModuleReading)
	assert.ErrorIs(t, err, util.ErrSessionExists)

	// 不同模块、不同用户互不影响
	_, err = s.Start(1, model.ModuleListening)
	require.NoError(t, err)
	_, err = s.Start(2, model.ModuleReading)
	require.NoError(t, err)

	require.NoError(t, s.Abandon(1, model.ModuleReading))
	_, err = s.Start(1, model.ModuleReading)
	require.NoError(t, err)
}

func TestReadingSubmitRequiresAllAnswers(t *testing.T) {
	s := newSessionService(t)

	view, err := s.Start(1, model.ModuleReading)
	require.NoError(t, err)
	assert.Equal(t, engine.PhaseCapturing, view.State.Phase)
	require.Len(t, view.Exercise.Questions, 3)
	assert.NotEmpty(t, view.Exercise.Passage)

	_, err = s.SelectOption(1, model.ModuleReading, 0, 1)
	require.NoError(t, err)
	_, err = s.Submit(1, model.ModuleReading)
	assert.ErrorIs(t, err, engine.ErrNotReady)

	_, err = s.SelectOption(1, model.ModuleReading, 1, 1)
	require.NoError(t, err)
	_, err = s.SelectOption(1, model.ModuleReading, 2, 2)
	require.NoError(t, err)
	view, err = s.Submit(1, model.ModuleReading)
	require.NoError(t, err)
	assert.Equal(t, 3, view.State.Result.CorrectCount)
}

func TestSpeakingRecordingFlow(t *testing.T) {
	s := newSessionService(t)

	view, err := s.Start(1, model.ModuleSpeaking)
	require.NoError(t, err)
	assert.Equal(t, engine.PhaseCapturing, view.State.Phase)
	assert.Equal(t, 60, view.Exercise.TimeLimit)
	assert.NotEmpty(t, view.Exercise.KeyPoints)

	// 设备失败可重试
	view, err = s.FailRecording(1, model.ModuleSpeaking, "microphone permission denied")
	require.NoError(t, err)
	assert.Equal(t, "microphone permission denied", view.State.DeviceError)

	_, err = s.BeginRecording(1, model.ModuleSpeaking)
	require.NoError(t, err)

	audio := bytes.Repeat([]byte{0x1a, 0x45, 0xdf, 0xa3}, 256)
	view, err = s.FinishRecording(1, model.ModuleSpeaking, "answer.webm", bytes.NewReader(audio), int64(len(audio)), "audio/webm")
	require.NoError(t, err)
	require.NotNil(t, view.State.Artifact)
	assert.NotEmpty(t, view.State.Artifact.Ref)

	// 录音行已入库
	rows, err := s.RecordingRepo.ListByUserAndModule(1, model.ModuleSpeaking)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, view.State.Artifact.Ref, rows[0].ObjectKey)
	assert.Equal(t, "webm", rows[0].Format)

	view, err = s.Submit(1, model.ModuleSpeaking)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, view.State.Result.HookScore, 70)
	assert.NotEmpty(t, view.Suggestions)
	assert.NotEmpty(t, view.SampleAnswer)
}

func TestFinishRecordingValidation(t *testing.T) {
	s := newSessionService(t)

	_, err := s.Start(1, model.ModuleSpeaking)
	require.NoError(t, err)
	_, err = s.BeginRecording(1, model.ModuleSpeaking)
	require.NoError(t, err)

	// 超过大小上限
	_, err = s.FinishRecording(1, model.ModuleSpeaking, "big.webm", bytes.NewReader(nil), 21*1024*1024, "audio/webm")
	assert.ErrorIs(t, err, util.ErrRecordingTooLarge)

	// 不允许的扩展名
	_, err = s.FinishRecording(1, model.ModuleSpeaking, "answer.exe", bytes.NewReader([]byte{1, 2, 3}), 3, "audio/webm")
	assert.Error(t, err)
}

func TestFinishWithoutBeginIsNoop(t *testing.T) {
	s := newSessionService(t)

	_, err := s.Start(1, model.ModuleSpeaking)
	require.NoError(t, err)

	audio := bytes.Repeat([]byte{0x1a, 0x45, 0xdf, 0xa3}, 16)
	view, err := s.FinishRecording(1, model.ModuleSpeaking, "a.webm", bytes.NewReader(audio), int64(len(audio)), "audio/webm")
	require.NoError(t, err)
	assert.Nil(t, view.State.Artifact)

	rows, err := s.RecordingRepo.ListByUserAndModule(1, model.ModuleSpeaking)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMockInterviewStartsInPreparation(t *testing.T) {
	s := newSessionService(t)

	view, err := s.Start(1, model.ModuleMockInterview)
	require.NoError(t, err)
	assert.Equal(t, engine.PhasePriming, view.State.Phase)
	assert.Equal(t, 30, view.State.Remaining)
	assert.Equal(t, 5, view.State.ExerciseCount)
	assert.Equal(t, "Personal Introduction", view.Exercise.Category)

	// 准备期不能录音
	_, err = s.BeginRecording(1, model.ModuleMockInterview)
	assert.ErrorIs(t, err, engine.ErrNotReady)

	require.NoError(t, s.Abandon(1, model.ModuleMockInterview))
}

func TestOpsWithoutSession(t *testing.T) {
	s := newSessionService(t)

	_, err := s.Get(1, model.ModuleListening)
	assert.ErrorIs(t, err, util.ErrNoActiveSession)
	_, err = s.Submit(1, model.ModuleListening)
	assert.ErrorIs(t, err, util.ErrNoActiveSession)
	err = s.Abandon(1, model.ModuleListening)
	assert.ErrorIs(t, err, util.ErrNoActiveSession)

	_, err = s.Get(1, "bogus")
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}
