package v1

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/streams"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/types/protocol"
)

// replayWindow 生成刚结束时允许整条回放的时间窗
const replayWindow = time.Second * 15

type ResumeResult int

const (
	// ResumeNone 没有可恢复的内容，响应 204
	ResumeNone ResumeResult = iota
	// ResumeStreamed 已向客户端写出了流（可能为空流）
	ResumeStreamed
)

// Resume 断线重连：以该 chat 最新登记的流为目标。
// 缓冲仍在则逐帧代理；已过期则在 15 秒窗口内回放最后一条
// assistant 消息，超窗返回空流。投递语义为 at-least-once。
func (l *ChatLogic) Resume(chatID string, sink RawSink) (ResumeResult, error) {
	user := l.GetUserInfo()
	if user.User == "" {
		return ResumeNone, errors.New("ChatLogic.Resume.unauthorized", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	chat, err := l.core.Store().ChatStore().GetChat(l.ctx, chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ResumeNone, errors.New("ChatLogic.Resume.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
		return ResumeNone, errors.New("ChatLogic.Resume.ChatStore.GetChat", i18n.ERROR_INTERNAL, err)
	}

	// 私有会话仅所有者可恢复
	if chat.Visibility != types.CHAT_VISIBILITY_PUBLIC && chat.UserID != user.User {
		return ResumeNone, errors.New("ChatLogic.Resume.forbidden", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}

	stream, err := l.core.Store().ChatStreamStore().LatestChatStream(l.ctx, chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			l.core.Metrics().StreamResumeInc("no_ledger")
			return ResumeNone, nil
		}
		return ResumeNone, errors.New("ChatLogic.Resume.ChatStreamStore.Latest", i18n.ERROR_INTERNAL, err)
	}

	hub := l.core.Srv().StreamHub()
	if !hub.Enabled() {
		// 未配置 redis 时恢复结构性不可用
		l.core.Metrics().StreamResumeInc("disabled")
		return ResumeNone, nil
	}

	frames, err := hub.Resume(l.ctx, stream.ID)
	if err != nil {
		if err == streams.ErrStreamNotFound {
			return l.replayRecentMessage(chatID, sink)
		}
		return ResumeNone, errors.New("ChatLogic.Resume.hub", i18n.ERROR_INTERNAL, err)
	}

	l.core.Metrics().StreamResumeInc("live")
	for payload := range frames {
		if err := sink(payload); err != nil {
			// 客户端又断开了，直接结束
			slog.Debug("resume sink write failed", slog.String("error", err.Error()))
			return ResumeStreamed, nil
		}
	}
	_ = sink(protocol.EncodeDone())
	return ResumeStreamed, nil
}

// replayRecentMessage 缓冲过期后的兜底：最后一条 assistant 消息
// 足够新则整条补投，否则返回空流。
func (l *ChatLogic) replayRecentMessage(chatID string, sink RawSink) (ResumeResult, error) {
	msg, err := l.core.Store().ChatMessageStore().LatestAssistantMessage(l.ctx, chatID)
	if err != nil && err != sql.ErrNoRows {
		return ResumeNone, errors.New("ChatLogic.replayRecentMessage.LatestAssistantMessage", i18n.ERROR_INTERNAL, err)
	}

	if msg != nil && time.Since(time.Unix(msg.CreatedAt, 0)) < replayWindow {
		raw, err := json.Marshal(msg)
		if err == nil {
			l.core.Metrics().StreamResumeInc("replay")
			_ = sink(protocol.EncodeFrame(protocol.Frame{
				Type:      protocol.FrameAppendMessage,
				MessageID: msg.ID,
				ChatID:    chatID,
				Message:   raw,
			}))
			_ = sink(protocol.EncodeDone())
			return ResumeStreamed, nil
		}
		slog.Error("failed to encode replay message", slog.String("error", err.Error()))
	}

	l.core.Metrics().StreamResumeInc("empty")
	_ = sink(protocol.EncodeDone())
	return ResumeStreamed, nil
}
