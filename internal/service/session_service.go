package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lsr_trainer_backend/internal/config"
	"lsr_trainer_backend/internal/engine"
	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/internal/repository"
	"lsr_trainer_backend/internal/util"
	"lsr_trainer_backend/pkg/logger"
	"lsr_trainer_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// sessionLockTTL 跨实例会话锁的兜底过期时间，防止实例崩溃后锁永久残留
const sessionLockTTL = 2 * time.Hour

// ExerciseView 下发给学员端的练习视图，不含答案。
type ExerciseView struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Prompt    string         `json:"prompt,omitempty"`
	AudioText string         `json:"audioText,omitempty"`
	Passage   string         `json:"passage,omitempty"`
	Category  string         `json:"category,omitempty"`
	KeyPoints []string       `json:"keyPoints,omitempty"`
	TimeLimit int            `json:"timeLimit"`
	Questions []QuestionView `json:"questions,omitempty"`
}

type QuestionView struct {
	Content string   `json:"content"`
	Options []string `json:"options"`
}

// SessionView 会话操作统一返回的视图。
type SessionView struct {
	State        engine.State          `json:"state"`
	Exercise     *ExerciseView         `json:"exercise,omitempty"`
	Playback     *Playback             `json:"playback,omitempty"`
	Outcome      *engine.ModuleOutcome `json:"outcome,omitempty"`
	SampleAnswer string                `json:"sampleAnswer,omitempty"` // 判分后回看
	Suggestions  []string              `json:"suggestions,omitempty"`
}

type activeSession struct {
	session  *engine.Session
	module   *model.TrainingModule
	userID   uint
	reported bool
}

// SessionService 管理每个学员在每个模块上的活动会话。
// 同一 (user, module) 同时最多一个会话；完成或放弃后才能再开。
type SessionService struct {
	Catalog       *CatalogService
	Progress      *ProgressService
	Speech        *SpeechService
	Storage       *StorageService
	RecordingRepo *repository.RecordingRepository
	Redis         *redis.Client
	Cfg           *config.Config

	mu       sync.Mutex
	sessions map[string]*activeSession
}

func NewSessionService(
	catalog *CatalogService,
	progress *ProgressService,
	speech *SpeechService,
	storage *StorageService,
	recordingRepo *repository.RecordingRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *SessionService {
	return &SessionService{
		Catalog:       catalog,
		Progress:      progress,
		Speech:        speech,
		Storage:       storage,
		RecordingRepo: recordingRepo,
		Redis:         rdb,
		Cfg:           cfg,
		sessions:      make(map[string]*activeSession),
	}
}

func sessionKey(userID uint, key model.ModuleKey) string {
	return fmt.Sprintf("%d:%s", userID, key)
}

// Start 开启一个新会话。听力模块若服务端不支持语音播报，
// 直接跳过播报阶段进入作答。
func (s *SessionService) Start(userID uint, key model.ModuleKey) (*SessionView, error) {
	module, err := s.Catalog.GetModule(key)
	if err != nil {
		return nil, err
	}
	exercises, err := s.Catalog.EngineExercises(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, exists := s.sessions[sessionKey(userID, key)]; exists {
		s.mu.Unlock()
		return nil, util.ErrSessionExists
	}
	s.mu.Unlock()

	if !s.acquireLock(userID, key) {
		return nil, util.ErrSessionExists
	}

	cfg := s.Catalog.EngineConfig(module)
	session := engine.NewSession(cfg, exercises)
	active := &activeSession{session: session, module: module, userID: userID}

	s.mu.Lock()
	if _, exists := s.sessions[sessionKey(userID, key)]; exists {
		s.mu.Unlock()
		s.releaseLock(userID, key)
		session.Close()
		return nil, util.ErrSessionExists
	}
	s.sessions[sessionKey(userID, key)] = active
	s.mu.Unlock()

	if err := session.Start(); err != nil {
		s.remove(userID, key)
		session.Close()
		return nil, err
	}

	// 播报式 priming 但播报不可用：跳过，直接作答
	if module.Priming == model.PrimingPlayback && !s.Speech.Supported() {
		if err := session.PlaybackFinished(); err != nil {
			logger.Log.Warn("Failed to skip playback priming", zap.Error(err))
		}
	}

	monitoring.ActiveSessions.WithLabelValues(string(key)).Inc()
	logger.Log.Info("Training session started",
		zap.Uint("userID", userID),
		zap.String("module", string(key)),
		zap.Int("exercises", len(exercises)),
	)
	return s.view(active), nil
}

// Get 当前会话快照。
func (s *SessionService) Get(userID uint, key model.ModuleKey) (*SessionView, error) {
	active, err := s.find(userID, key)
	if err != nil {
		return nil, err
	}
	return s.view(active), nil
}

func (s *SessionService) SelectOption(userID uint, key model.ModuleKey, question, option int) (*SessionView, error) {
	active, err := s.find(userID, key)
	if err != nil {
		return nil, err
	}
	if err := active.session.SelectOption(question, option); err != nil {
		return nil, err
	}
	return s.view(active), nil
}

func (s *SessionService) PlaybackFinished(userID uint, key model.ModuleKey) (*SessionView, error) {
	active, err := s.find(userID, key)
	if err != nil {
		return nil, err
	}
	if err := active.session.PlaybackFinished(); err != nil {
		return nil, err
	}
	return s.view(active), nil
}

func (s *SessionService) BeginRecording(userID uint, key model.ModuleKey) (*SessionView, error) {
	active, err := s.find(userID, key)
	if err != nil {
		return nil, err
	}
	if err := active.session.BeginRecording(); err != nil {
		return nil, err
	}
	return s.view(active), nil
}

func (s *SessionService) FailRecording(userID uint, key model.ModuleKey, reason string) (*SessionView, error) {
	active, err := s.find(userID, key)
	if err != nil {
		return nil, err
	}
	if err := active.session.FailRecording(reason); err != nil {
		return nil, err
	}
	return s.view(active), nil
}

// FinishRecording 接收录音文件，落地到对象存储并结束引擎侧采集。
func (s *SessionService) FinishRecording(userID uint, key model.ModuleKey, filename string, reader io.Reader, size int64, declaredType string) (*SessionView, error) {
	active, err := s.find(userID, key)
	if err != nil {
		return nil, err
	}

	maxBytes := int64(s.Cfg.Session.MaxRecordingMB) * 1024 * 1024
	if size > maxBytes {
		return nil, util.ErrRecordingTooLarge
	}
	if !util.HasAllowedAudioExtension(filename) {
		return nil, fmt.Errorf("unsupported recording extension: %s", filepath.Ext(filename))
	}

	// 嗅探真实 MIME，防止扩展名伪装
	peek := make([]byte, 512)
	n, err := io.ReadFull(reader, peek)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	mimeType, err := util.ValidateMimeType(bytes.NewReader(peek[:n]), []string{
		util.MimeAudio, util.MimeWebm, util.MimeOggApp, util.MimeOctetStream,
	})
	if err != nil {
		return nil, err
	}
	body := io.MultiReader(bytes.NewReader(peek[:n]), reader)

	ext := strings.ToLower(filepath.Ext(filename))
	objectKey := fmt.Sprintf("recordings/%d/%s/%s%s", userID, key, model.GenerateUUID(), ext)

	url, err := s.Storage.Upload(context.Background(), objectKey, body, size, mimeType)
	if err != nil {
		return nil, err
	}

	artifact, err := active.session.FinishRecording(objectKey)
	if err != nil {
		// 引擎拒绝（阶段不对）时清掉孤儿对象
		_ = s.Storage.Delete(context.Background(), objectKey)
		return nil, err
	}
	if artifact == nil {
		// 从未开始录音，no-op；上传的文件不保留
		_ = s.Storage.Delete(context.Background(), objectKey)
		return s.view(active), nil
	}

	recording := &model.Recording{
		UserID:     userID,
		ModuleKey:  key,
		ExerciseID: active.session.Exercise().ID,
		ObjectKey:  objectKey,
		URL:        url,
		Duration:   artifact.Duration,
		Size:       size,
		Format:     strings.TrimPrefix(ext, "."),
	}

	// 本地存储时用 ffprobe 校正元数据；探测失败不影响主流程
	if s.Cfg.Storage.Type == util.StorageLocal {
		if info, err := util.GetAudioInfo(filepath.Join(s.Cfg.Storage.LocalPath, objectKey)); err == nil {
			recording.Format = info.Format
			if probed := int(info.Duration + 0.5); probed > 0 {
				recording.Duration = probed
			}
		}
	}
	if err := s.RecordingRepo.Create(recording); err != nil {
		logger.Log.Error("Failed to persist recording", zap.Error(err))
	}
	return s.view(active), nil
}

func (s *SessionService) Submit(userID uint, key model.ModuleKey) (*SessionView, error) {
	active, err := s.find(userID, key)
	if err != nil {
		return nil, err
	}
	if _, err := active.session.Submit(); err != nil {
		return nil, err
	}
	return s.view(active), nil
}

// Advance 进入下一题。最后一题之后会话完成：上报进度、记指标并清理。
func (s *SessionService) Advance(userID uint, key model.ModuleKey) (*SessionView, error) {
	active, err := s.find(userID, key)
	if err != nil {
		return nil, err
	}

	outcome, done, err := active.session.Advance()
	if err != nil {
		return nil, err
	}
	if !done {
		return s.view(active), nil
	}

	view := s.view(active)
	view.Outcome = outcome
	s.complete(active, key, outcome)
	return view, nil
}

// Abandon 放弃当前会话。不上报进度。
func (s *SessionService) Abandon(userID uint, key model.ModuleKey) error {
	active, err := s.find(userID, key)
	if err != nil {
		return err
	}
	active.session.Close()
	s.remove(userID, key)
	s.releaseLock(userID, key)
	monitoring.ActiveSessions.WithLabelValues(string(key)).Dec()
	monitoring.SessionsAbandoned.WithLabelValues(string(key)).Inc()
	logger.Log.Info("Training session abandoned",
		zap.Uint("userID", userID),
		zap.String("module", string(key)),
	)
	return nil
}

// complete 会话完成的收尾：进度只上报一次。
func (s *SessionService) complete(active *activeSession, key model.ModuleKey, outcome *engine.ModuleOutcome) {
	s.mu.Lock()
	already := active.reported
	active.reported = true
	s.mu.Unlock()

	if !already && outcome != nil {
		if err := s.Progress.Report(active.userID, key, *outcome); err != nil {
			logger.Log.Error("Failed to report module progress", zap.Error(err))
		}
		monitoring.SessionsCompleted.WithLabelValues(string(key)).Inc()
		monitoring.ModuleScores.WithLabelValues(string(key)).Observe(float64(outcome.Score))
	}

	active.session.Close()
	s.remove(active.userID, key)
	s.releaseLock(active.userID, key)
	monitoring.ActiveSessions.WithLabelValues(string(key)).Dec()
	logger.Log.Info("Training session completed",
		zap.Uint("userID", active.userID),
		zap.String("module", string(key)),
		zap.Int("score", outcome.Score),
	)
}

func (s *SessionService) find(userID uint, key model.ModuleKey) (*activeSession, error) {
	if !key.Valid() {
		return nil, util.ErrModuleNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.sessions[sessionKey(userID, key)]
	if !ok {
		return nil, util.ErrNoActiveSession
	}
	return active, nil
}

func (s *SessionService) remove(userID uint, key model.ModuleKey) {
	s.mu.Lock()
	delete(s.sessions, sessionKey(userID, key))
	s.mu.Unlock()
}

// acquireLock / releaseLock 跨实例的单会话约束，redis 不可用时退化为
// 仅进程内约束。
func (s *SessionService) acquireLock(userID uint, key model.ModuleKey) bool {
	if s.Redis == nil {
		return true
	}
	lockKey := fmt.Sprintf("trainer:session-lock:%d:%s", userID, key)
	ok, err := s.Redis.SetNX(context.Background(), lockKey, 1, sessionLockTTL).Result()
	if err != nil {
		logger.Log.Warn("Session lock unavailable, proceeding without it", zap.Error(err))
		return true
	}
	return ok
}

func (s *SessionService) releaseLock(userID uint, key model.ModuleKey) {
	if s.Redis == nil {
		return
	}
	lockKey := fmt.Sprintf("trainer:session-lock:%d:%s", userID, key)
	if err := s.Redis.Del(context.Background(), lockKey).Err(); err != nil {
		logger.Log.Warn("Failed to release session lock", zap.Error(err))
	}
}

// view 组装当前会话视图。
func (s *SessionService) view(active *activeSession) *SessionView {
	state := active.session.Snapshot()
	view := &SessionView{State: state}

	if state.Completed {
		return view
	}

	ex := active.session.Exercise()
	ev := &ExerciseView{
		ID:        ex.ID,
		Title:     ex.Title,
		Prompt:    ex.Prompt,
		Passage:   ex.Passage,
		Category:  ex.Category,
		KeyPoints: ex.KeyPoints,
		TimeLimit: ex.TimeLimit,
	}
	for _, q := range ex.Questions {
		ev.Questions = append(ev.Questions, QuestionView{Content: q.Content, Options: q.Options})
	}

	switch state.Phase {
	case engine.PhasePriming:
		if active.module.Priming == model.PrimingPlayback {
			if playback, err := s.Speech.PlaybackFor(ex.AudioText); err == nil {
				view.Playback = playback
			}
		}
	case engine.PhaseCapturing, engine.PhaseScored:
		// 作答与判分阶段放出文字稿
		ev.AudioText = ex.AudioText
	}

	if state.Phase == engine.PhaseScored {
		view.SampleAnswer = ex.SampleAnswer
		if active.module.Capture == model.CaptureRecording && state.Result != nil {
			view.Suggestions = suggestionsFor(state.Result.HookScore)
		}
	}

	view.Exercise = ev
	return view
}

// suggestionsFor 按得分档位给出改进建议。
func suggestionsFor(score int) []string {
	if score >= 90 {
		return []string{
			"Excellent delivery, keep practicing to stay sharp",
			"Try varying your sentence structures for more impact",
		}
	}
	if score >= 80 {
		return []string{
			"Work on speaking with more confidence",
			"Add specific examples to support your answers",
			"Practice maintaining a steady pace",
		}
	}
	return []string{
		"Practice speaking more slowly and clearly",
		"Structure your answer around the key points",
		"Provide more specific examples",
		"Rehearse common questions out loud",
	}
}
