package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/app/response"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

func (s *HttpSrv) GetDocument(c *gin.Context) {
	id, _ := c.Params.Get("id")

	doc, err := v1.NewDocumentLogic(c, s.Core).Get(id)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, doc)
}

type ListDocumentsRequest struct {
	Page     uint64 `form:"page" json:"page"`
	PageSize uint64 `form:"pagesize" json:"pagesize"`
}

func (s *HttpSrv) ListDocuments(c *gin.Context) {
	var req ListDocumentsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	list, err := v1.NewDocumentLogic(c, s.Core).List(req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type UpdateDocumentRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

func (s *HttpSrv) UpdateDocument(c *gin.Context) {
	id, _ := c.Params.Get("id")

	var req UpdateDocumentRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewDocumentLogic(c, s.Core).Update(id, req.Title, req.Content); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) DeleteDocument(c *gin.Context) {
	id, _ := c.Params.Get("id")

	if err := v1.NewDocumentLogic(c, s.Core).Delete(id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) ListDocumentSuggestions(c *gin.Context) {
	id, _ := c.Params.Get("id")

	list, err := v1.NewDocumentLogic(c, s.Core).ListSuggestions(id)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

func (s *HttpSrv) ResolveDocumentSuggestion(c *gin.Context) {
	id, _ := c.Params.Get("id")
	suggestionID, _ := c.Params.Get("suggestionid")

	if err := v1.NewDocumentLogic(c, s.Core).ResolveSuggestion(id, suggestionID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}
