package controller

import (
	"errors"

	"lsr_trainer_backend/internal/model"
	"lsr_trainer_backend/internal/service"
	"lsr_trainer_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProgressController struct {
	Service *service.ProgressService
}

func NewProgressController(svc *service.ProgressService) *ProgressController {
	return &ProgressController{Service: svc}
}

// @Summary 进度总览
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) Overview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)

	overview, err := c.Service.Overview(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 单模块进度
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param module path string true "模块标识"
// @Success 200 {object} util.Response
// @Router /api/progress/{module} [get]
func (c *ProgressController) Module(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	key := model.ModuleKey(ctx.Param("module"))
	if !key.Valid() {
		util.BadRequest(ctx, "unknown training module")
		return
	}

	row, err := c.Service.ProgressRepo.FindByUserAndModule(user.UserID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 尚未完成过该模块
		util.Success(ctx, model.ModuleRecord{})
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, model.ModuleRecord{
		Completed: row.Completed,
		Total:     row.Total,
		Score:     row.Score,
	})
}
