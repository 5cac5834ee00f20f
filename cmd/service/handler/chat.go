package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/app/response"
	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

// streamSink 首帧前才写响应头，终态错误仍可走 JSON 信封
func streamSink(c *gin.Context) v1.RawSink {
	headerWritten := false
	return func(payload string) error {
		if !headerWritten {
			c.Writer.Header().Set("Content-Type", "text/event-stream")
			c.Writer.Header().Set("Cache-Control", "no-cache")
			c.Writer.Header().Set("Connection", "keep-alive")
			c.Writer.WriteHeader(http.StatusOK)
			headerWritten = true
		}
		if _, err := c.Writer.WriteString(payload); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}
}

func (s *HttpSrv) ChatStream(c *gin.Context) {
	var req v1.ChatRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewChatLogic(c, s.Core).Stream(req, streamSink(c)); err != nil {
		response.APIError(c, err)
	}
}

func (s *HttpSrv) ResumeChat(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		response.APIError(c, errors.New("handler.ResumeChat.chat_id", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest))
		return
	}

	result, err := v1.NewChatLogic(c, s.Core).Resume(chatID, streamSink(c))
	if err != nil {
		response.APIError(c, err)
		return
	}
	if result == v1.ResumeNone {
		c.Status(http.StatusNoContent)
	}
}

func (s *HttpSrv) DeleteChat(c *gin.Context) {
	chatID := c.Query("id")
	if chatID == "" {
		response.APIError(c, errors.New("handler.DeleteChat.id", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest))
		return
	}

	if err := v1.NewChatLogic(c, s.Core).DeleteChat(chatID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}

type UpdateChatVisibilityRequest struct {
	Visibility string `json:"visibility" binding:"required"`
}

func (s *HttpSrv) UpdateChatVisibility(c *gin.Context) {
	chatID, _ := c.Params.Get("chatid")

	var req UpdateChatVisibilityRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewChatLogic(c, s.Core).UpdateVisibility(chatID, types.ChatVisibility(req.Visibility)); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, response.EmptyStruct{})
}
