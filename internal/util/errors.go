package util

import "errors"

var (
	ErrEmailRegistered = errors.New("该邮箱已被注册")

	ErrModuleNotFound    = errors.New("training module not found")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrNoActiveSession   = errors.New("no active session for this module")
	ErrSessionExists     = errors.New("a session for this module is already active")
	ErrRecordingTooLarge = errors.New("recording exceeds size limit")
	ErrEmptyCatalog      = errors.New("module has no exercises")
)
