package controller

import (
	"encoding/json"
	"errors"

	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/internal/service"
	"lsr_trainer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	Service *service.CatalogService
}

func NewCatalogController(svc *service.CatalogService) *CatalogController {
	return &CatalogController{Service: svc}
}

type QuestionRequest struct {
	Content string   `json:"content" binding:"required"`
	Options []string `json:"options" binding:"required,min=2"`
	Correct int      `json:"correct" binding:"min=0"`
	Order   int      `json:"order"`
}

type ExerciseRequest struct {
	ModuleKey    model.ModuleKey   `json:"moduleKey" binding:"required"`
	Title        string            `json:"title" binding:"required,max=255"`
	Prompt       string            `json:"prompt"`
	AudioText    string            `json:"audioText"`
	Passage      string            `json:"passage"`
	Category     string            `json:"category"`
	TimeLimit    int               `json:"timeLimit" binding:"min=0"`
	KeyPoints    []string          `json:"keyPoints"`
	SampleAnswer string            `json:"sampleAnswer"`
	Order        int               `json:"order"`
	Questions    []QuestionRequest `json:"questions"`
}

func (r *ExerciseRequest) toModel() (*model.Exercise, error) {
	for _, q := range r.Questions {
		if q.Correct >= len(q.Options) {
			return nil, errors.New("correct index out of range")
		}
	}

	keyPoints, _ := json.Marshal(r.KeyPoints)
	exercise := &model.Exercise{
		ModuleKey:    r.ModuleKey,
		Title:        r.Title,
		Prompt:       r.Prompt,
		AudioText:    r.AudioText,
		Passage:      r.Passage,
		Category:     r.Category,
		TimeLimit:    r.TimeLimit,
		KeyPoints:    keyPoints,
		SampleAnswer: r.SampleAnswer,
		Order:        r.Order,
	}
	for i, q := range r.Questions {
		options, _ := json.Marshal(q.Options)
		order := q.Order
		if order == 0 {
			order = i + 1
		}
		exercise.Questions = append(exercise.Questions, model.ExerciseQuestion{
			Content: q.Content,
			Options: options,
			Correct: q.Correct,
			Order:   order,
		})
	}
	return exercise, nil
}

// @Summary 模块列表
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/modules [get]
func (c *CatalogController) ListModules(ctx *gin.Context) {
	modules, err := c.Service.ListModules()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// @Summary 模块详情
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/modules/{module} [get]
func (c *CatalogController) GetModule(ctx *gin.Context) {
	key := model.ModuleKey(ctx.Param("module"))
	module, err := c.Service.GetModule(key)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, module)
}

// ExercisePreview 学员端的练习预览，不含题目内容与答案。
type ExercisePreview struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category,omitempty"`
	TimeLimit int    `json:"timeLimit"`
	Questions int    `json:"questions"`
}

// @Summary 模块练习预览
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/modules/{module}/exercises [get]
func (c *CatalogController) ModuleExercises(ctx *gin.Context) {
	key := model.ModuleKey(ctx.Param("module"))
	exercises, err := c.Service.ListExercises(key)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	previews := make([]ExercisePreview, 0, len(exercises))
	for _, ex := range exercises {
		previews = append(previews, ExercisePreview{
			ID:        ex.ID,
			Title:     ex.Title,
			Category:  ex.Category,
			TimeLimit: ex.TimeLimit,
			Questions: len(ex.Questions),
		})
	}
	util.Success(ctx, previews)
}

// @Summary 管理端：模块练习列表（含答案）
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/catalog/modules/{module}/exercises [get]
func (c *CatalogController) ListExercises(ctx *gin.Context) {
	key := model.ModuleKey(ctx.Param("module"))
	page := util.ParseIntDefault(ctx.DefaultQuery("page", "1"), 1)
	limit := util.ParseIntDefault(ctx.DefaultQuery("limit", "20"), 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	exercises, total, err := c.Service.ListExercisesPage(key, page, limit)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exercises, Total: total, Page: page, Limit: limit})
}

// @Summary 管理端：新建练习
// @Tags 题库管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ExerciseRequest true "练习内容"
// @Success 201 {object} util.Response
// @Router /api/admin/catalog/exercises [post]
func (c *CatalogController) CreateExercise(ctx *gin.Context) {
	var req ExerciseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exercise, err := req.toModel()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.Service.CreateExercise(exercise); err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, exercise)
}

// @Summary 管理端：更新练习
// @Tags 题库管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "练习ID"
// @Param body body ExerciseRequest true "练习内容"
// @Success 200 {object} util.Response
// @Router /api/admin/catalog/exercises/{id} [put]
func (c *CatalogController) UpdateExercise(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req ExerciseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exercise, err := req.toModel()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exercise.ID = id
	if err := c.Service.UpdateExercise(exercise); err != nil {
		if errors.Is(err, util.ErrExerciseNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, exercise)
}

// @Summary 管理端：删除练习
// @Tags 题库管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "练习ID"
// @Success 200 {object} util.Response
// @Router /api/admin/catalog/exercises/{id} [delete]
func (c *CatalogController) DeleteExercise(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if err := c.Service.DeleteExercise(id); err != nil {
		if errors.Is(err, util.ErrExerciseNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}

type ModuleUpdateRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	PrepSeconds       int    `json:"prepSeconds" binding:"min=0"`
	AnswerSeconds     int    `json:"answerSeconds" binding:"min=0"`
	TotalPlanned      int    `json:"totalPlanned" binding:"min=0"`
	RequireAllAnswers *bool  `json:"requireAllAnswers"`
}

// @Summary 管理端：更新模块参数
// @Tags 题库管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Param body body ModuleUpdateRequest true "模块参数"
// @Success 200 {object} util.Response
// @Router /api/admin/catalog/modules/{module} [put]
func (c *CatalogController) UpdateModule(ctx *gin.Context) {
	key := model.ModuleKey(ctx.Param("module"))
	module, err := c.Service.GetModule(key)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	var req ModuleUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.Title != "" {
		module.Title = req.Title
	}
	if req.Description != "" {
		module.Description = req.Description
	}
	if req.PrepSeconds > 0 {
		module.PrepSeconds = req.PrepSeconds
	}
	if req.AnswerSeconds > 0 {
		module.AnswerSeconds = req.AnswerSeconds
	}
	if req.TotalPlanned > 0 {
		module.TotalPlanned = req.TotalPlanned
	}
	if req.RequireAllAnswers != nil {
		module.RequireAllAnswers = *req.RequireAllAnswers
	}

	if err := c.Service.UpdateModule(module); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, module)
}
