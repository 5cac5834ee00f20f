package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/app/response"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

type CreateCompanionRequest struct {
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role"`
	Rules string `json:"rules"`
}

func (s *HttpSrv) CreateCompanion(c *gin.Context) {
	var req CreateCompanionRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	companion, err := v1.NewCompanionLogic(c, s.Core).Create(req.Name, req.Role, req.Rules)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, companion)
}

func (s *HttpSrv) GetCompanion(c *gin.Context) {
	id, _ := c.Params.Get("id")

	companion, err := v1.NewCompanionLogic(c, s.Core).Get(id)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, companion)
}

type UpdateCompanionRequest struct {
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role"`
	Rules string `json:"rules"`
}

func (s *HttpSrv) UpdateCompanion(c *gin.Context) {
	id, _ := c.Params.Get("id")

	var req UpdateCompanionRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	err := v1.NewCompanionLogic(c, s.Core).Update(id, types.UpdateCompanionArgs{
		Name:  req.Name,
		Role:  req.Role,
		Rules: req.Rules,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) DeleteCompanion(c *gin.Context) {
	id, _ := c.Params.Get("id")

	if err := v1.NewCompanionLogic(c, s.Core).Delete(id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) ListCompanions(c *gin.Context) {
	list, err := v1.NewCompanionLogic(c, s.Core).List()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}
