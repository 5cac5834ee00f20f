package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/app/response"
	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

type ListChatsRequest struct {
	Page     uint64 `form:"page" json:"page"`
	PageSize uint64 `form:"pagesize" json:"pagesize"`
}

func (s *HttpSrv) ListChats(c *gin.Context) {
	var req ListChatsRequest
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

	list, err := v1.NewChatLogic(c, s.Core).ListChats(req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

func (s *HttpSrv) ListChatMessages(c *gin.Context) {
	chatID, _ := c.Params.Get("chatid")

	list, err := v1.NewChatLogic(c, s.Core).ListMessages(chatID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

func (s *HttpSrv) DeleteTrailingMessages(c *gin.Context) {
	chatID, _ := c.Params.Get("chatid")
	messageID := c.Query("message_id")
	if messageID == "" {
		response.APIError(c, errors.New("handler.DeleteTrailingMessages.message_id", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest))
		return
	}

	if err := v1.NewChatLogic(c, s.Core).DeleteTrailingMessages(chatID, messageID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

type VoteRequest struct {
	MessageID string `json:"message_id" binding:"required"`
	IsUpvoted bool   `json:"is_upvoted"`
}

func (s *HttpSrv) VoteMessage(c *gin.Context) {
	chatID, _ := c.Params.Get("chatid")

	var req VoteRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewChatLogic(c, s.Core).Vote(chatID, req.MessageID, req.IsUpvoted); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

func (s *HttpSrv) ListChatVotes(c *gin.Context) {
	chatID, _ := c.Params.Get("chatid")

	list, err := v1.NewChatLogic(c, s.Core).ListVotes(chatID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}
