package engine

import "errors"

var (
	// ErrNotReady 操作在当前阶段不可用或前置条件不满足，调用方约定，静默拒绝即可。
	ErrNotReady = errors.New("operation not ready in current phase")
	// ErrDeviceUnavailable 采集设备不可用（如麦克风权限被拒）。
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	// ErrPlaybackUnsupported 语音播报不可用，直接跳到作答阶段。
	ErrPlaybackUnsupported = errors.New("audio playback unsupported")
	// ErrSessionClosed 会话已结束或被放弃。
	ErrSessionClosed = errors.New("session closed")
)
