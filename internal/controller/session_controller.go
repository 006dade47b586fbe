package controller

import (
	"errors"
	"net/http"

	"lsr_trainer_backend/internal/engine"
	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/internal/service"
	"lsr_trainer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Service *service.SessionService
}

func NewSessionController(svc *service.SessionService) *SessionController {
	return &SessionController{Service: svc}
}

type SelectOptionRequest struct {
	Question int `json:"question" binding:"min=0"`
	Option   int `json:"option" binding:"min=0"`
}

type FailRecordingRequest struct {
	Reason string `json:"reason"`
}

func moduleKeyParam(ctx *gin.Context) (model.ModuleKey, bool) {
	key := model.ModuleKey(ctx.Param("module"))
	if !key.Valid() {
		util.BadRequest(ctx, "unknown training module")
		return "", false
	}
	return key, true
}

// respondSessionError 把服务/引擎错误映射到 HTTP 状态码。
// ErrNotReady 表示当前阶段不接受该操作，按冲突处理。
func respondSessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNoActiveSession),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrExerciseNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrSessionExists),
		errors.Is(err, engine.ErrNotReady),
		errors.Is(err, engine.ErrSessionClosed):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrEmptyCatalog),
		errors.Is(err, util.ErrRecordingTooLarge):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 开启训练会话
// @Tags 训练会话
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识" Enums(listening, speaking, reading, mock_interview)
// @Success 201 {object} util.Response
// @Router /api/sessions/{module} [post]
func (c *SessionController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.Start(user.UserID, key)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary 会话快照
// @Tags 训练会话
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module} [get]
func (c *SessionController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.Get(user.UserID, key)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 选择答案
// @Tags 训练会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Param body body SelectOptionRequest true "子题与选项下标"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module}/select [post]
func (c *SessionController) SelectOption(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	var req SelectOptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.SelectOption(user.UserID, key, req.Question, req.Option)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 播报结束
// @Tags 训练会话
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module}/playback-finished [post]
func (c *SessionController) PlaybackFinished(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.PlaybackFinished(user.UserID, key)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 开始录音
// @Tags 训练会话
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module}/recording/begin [post]
func (c *SessionController) BeginRecording(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.BeginRecording(user.UserID, key)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 录音设备失败
// @Tags 训练会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Param body body FailRecordingRequest false "失败原因"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module}/recording/failed [post]
func (c *SessionController) FailRecording(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	var req FailRecordingRequest
	_ = ctx.ShouldBindJSON(&req)

	view, err := c.Service.FailRecording(user.UserID, key, req.Reason)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 结束录音并上传
// @Tags 训练会话
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Param file formData file true "录音文件"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module}/recording/finish [post]
func (c *SessionController) FinishRecording(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing recording file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	view, err := c.Service.FinishRecording(
		user.UserID, key,
		fileHeader.Filename, file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 提交当前练习
// @Tags 训练会话
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module}/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.Submit(user.UserID, key)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 进入下一题
// @Tags 训练会话
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module}/advance [post]
func (c *SessionController) Advance(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	view, err := c.Service.Advance(user.UserID, key)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 放弃会话
// @Tags 训练会话
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/sessions/{module} [delete]
func (c *SessionController) Abandon(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key, ok := moduleKeyParam(ctx)
	if !ok {
		return
	}

	if err := c.Service.Abandon(user.UserID, key); err != nil {
		respondSessionError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"abandoned": true})
}
