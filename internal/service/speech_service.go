package service

import (
	"lsr_trainer_backend/internal/config"
	"lsr_trainer_backend/internal/engine"
)

// Playback 下发给客户端的播报描述。实际语音合成在客户端进行，
// 服务端只声明用什么念、念多快。
type Playback struct {
	Provider string  `json:"provider"`
	Text     string  `json:"text"`
	Rate     float64 `json:"rate"`
}

// SpeechService 听力播报边界。Provider 未配置时播报不可用，
// 听力会话跳过播报阶段，直接以文字稿作答。
type SpeechService struct {
	Cfg *config.Config
}

func NewSpeechService(cfg *config.Config) *SpeechService {
	return &SpeechService{Cfg: cfg}
}

func (s *SpeechService) Supported() bool {
	return s.Cfg.Speech.Provider != ""
}

func (s *SpeechService) PlaybackFor(text string) (*Playback, error) {
	if !s.Supported() {
		return nil, engine.ErrPlaybackUnsupported
	}
	rate := s.Cfg.Speech.Rate
	if rate <= 0 {
		rate = 0.9
	}
	return &Playback{
		Provider: s.Cfg.Speech.Provider,
		Text:     text,
		Rate:     rate,
	}, nil
}
