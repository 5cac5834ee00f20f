package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"
	openailib "github.com/sashabaranov/go-openai"

	"github.com/sidekick-ai/sidekick-ai/app/core"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai/dify"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai/openai"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai/tools"
	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/streams"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/types/protocol"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

// generationLockTTL 单次生成锁的最长持有时间
const generationLockTTL = time.Minute

type ChatLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewChatLogic(ctx context.Context, core *core.Core) *ChatLogic {
	return &ChatLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx),
	}
}

type ChatRequest struct {
	ChatID      string                  `json:"id" binding:"required"`
	Message     types.CreateMessageArgs `json:"message" binding:"required"`
	CompanionID string                  `json:"companion_id"`
	// Model 选择默认通路内的模型档位，空值走默认档
	Model string `json:"model"`
	// AgentID 非空时选择外部 agent 通路
	AgentID    string               `json:"agent_id"`
	Visibility types.ChatVisibility `json:"visibility"`
}

// RawSink 向客户端写入已编码帧（含结束标记行）
type RawSink func(payload string) error

// emitter 把同一份帧同时推给在线客户端与恢复缓冲
type emitter struct {
	ctx  context.Context
	sink RawSink
	hub  *streams.Writer
}

func (e *emitter) Emit(f protocol.Frame) {
	payload := protocol.EncodeFrame(f)
	if err := e.sink(payload); err != nil {
		// 客户端断开后继续写缓冲，生成不中断
		slog.Debug("client sink write failed", slog.String("error", err.Error()))
	}
	if err := e.hub.Append(e.ctx, payload); err != nil {
		slog.Error("failed to buffer stream frame", slog.String("error", err.Error()))
	}
}

func (e *emitter) Done() {
	if err := e.sink(protocol.EncodeDone()); err != nil {
		slog.Debug("client sink write failed", slog.String("error", err.Error()))
	}
	if err := e.hub.Close(e.ctx); err != nil {
		slog.Error("failed to close stream buffer", slog.String("error", err.Error()))
	}
}

// Stream 处理一轮对话生成，按状态机推进：
// 额度 → 会话归属 → 持久化用户消息 → 登记流 ID → 选择通路 → 流式输出 → 持久化回复。
func (l *ChatLogic) Stream(req ChatRequest, sink RawSink) error {
	user := l.GetUserInfo()
	if user.User == "" {
		return errors.New("ChatLogic.Stream.unauthorized", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	// 额度检查先于任何写入
	if err := l.checkQuota(user.User, user.Plan); err != nil {
		return err
	}

	chat, err := l.ensureChat(req, user.User)
	if err != nil {
		return err
	}

	// 同一 chat 的并发生成互斥，拿不到锁直接 429
	lockKey := protocol.GenChatGenerationLockKey(chat.ID)
	locked, err := l.core.Srv().Locker().TryLock(l.ctx, lockKey, generationLockTTL)
	if err != nil {
		return errors.New("ChatLogic.Stream.TryLock", i18n.ERROR_INTERNAL, err)
	}
	if !locked {
		return errors.New("ChatLogic.Stream.busy", i18n.ERROR_CHAT_BUSY, nil).Code(http.StatusTooManyRequests)
	}
	defer func() {
		if err := l.core.Srv().Locker().Unlock(context.WithoutCancel(l.ctx), lockKey); err != nil {
			slog.Error("failed to release generation lock", slog.String("chat_id", chat.ID), slog.String("error", err.Error()))
		}
	}()

	userMsg := &types.Message{
		ID:          req.Message.ID,
		ChatID:      chat.ID,
		Role:        types.MESSAGE_ROLE_USER,
		Parts:       types.MessageParts{{Type: types.MESSAGE_PART_TEXT, Text: req.Message.Text}},
		Attachments: req.Message.Attachments,
		CreatedAt:   time.Now().Unix(),
	}
	if userMsg.ID == "" {
		userMsg.ID = utils.GenUniqIDStr()
	}
	if err = l.core.Store().ChatMessageStore().Create(l.ctx, userMsg); err != nil {
		return errors.New("ChatLogic.Stream.ChatMessageStore.Create", i18n.ERROR_INTERNAL, err)
	}

	// 输出开始前登记流 ID，断线重连以最新一条为准
	streamID := utils.GenUniqIDStr()
	if err = l.core.Store().ChatStreamStore().Create(l.ctx, types.ChatStream{
		ID:        streamID,
		ChatID:    chat.ID,
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		return errors.New("ChatLogic.Stream.ChatStreamStore.Create", i18n.ERROR_INTERNAL, err)
	}

	out := &emitter{
		ctx:  l.ctx,
		sink: sink,
		hub:  l.core.Srv().StreamHub().NewWriter(streamID),
	}

	assistantID := utils.GenUniqIDStr()
	out.Emit(protocol.Frame{Type: protocol.FrameMessageStart, MessageID: assistantID, ChatID: chat.ID})

	var (
		parts types.MessageParts
		usage *openailib.Usage
	)

	// 两条通路的显式分支：agent 失败原因被捕获并以 notice 帧
	// 写入输出流，随后同一轮降级到默认模型
	agentText, fallbackReason := l.runAgentBranch(req, chat, assistantID, out)
	if agentText != "" {
		parts = append(parts, types.MessagePart{Type: types.MESSAGE_PART_TEXT, Text: agentText})
	}
	if fallbackReason != "" {
		l.core.Metrics().AgentFallbackInc(fallbackReason)
		out.Emit(protocol.NewNotice(l.localize(i18n.ERROR_AGENT_UNAVAILABLE)))
		parts = append(parts, types.MessagePart{Type: types.MESSAGE_PART_NOTICE, Text: fallbackReason})
	}

	if req.AgentID == "" || fallbackReason != "" {
		defaultText, defaultUsage, err := l.runDefaultBranch(chat, req.Model, assistantID, out)
		if err != nil {
			// 已经下发的内容保持有效，错误以帧收尾
			out.Emit(protocol.Frame{Type: protocol.FrameError, Text: "generation failed"})
			out.Done()
			if len(parts) == 0 {
				return nil
			}
			l.persistAssistant(chat.ID, assistantID, parts)
			return nil
		}
		usage = defaultUsage
		if defaultText != "" {
			parts = append(parts, types.MessagePart{Type: types.MESSAGE_PART_TEXT, Text: defaultText})
		}
	}

	if len(parts) > 0 {
		l.persistAssistant(chat.ID, assistantID, parts)
	} else {
		slog.Warn("generation produced no assistant content", slog.String("chat_id", chat.ID))
	}

	finish := protocol.Frame{Type: protocol.FrameFinish, MessageID: assistantID}
	if usage != nil {
		if raw, err := json.Marshal(usage); err == nil {
			finish.Message = raw
		}
	}
	out.Emit(finish)
	out.Done()
	return nil
}

// localize 按请求语言取提示文案，流内的 notice 帧也走 i18n 词表
func (l *ChatLogic) localize(id string) string {
	localizer, ok := l.ctx.Value("i18n").(i18n.Localizer)
	if !ok {
		return id
	}
	lang, ok := InjectLanguage(l.ctx)
	if !ok {
		lang = i18n.DEFAULT_LANG
	}
	return localizer.Get(lang, id)
}

func (l *ChatLogic) checkQuota(userID, plan string) error {
	since := time.Now().Add(-types.QuotaWindow).Unix()
	count, err := l.core.Store().ChatMessageStore().CountUserMessagesSince(l.ctx, userID, since)
	if err != nil {
		return errors.New("ChatLogic.checkQuota.CountUserMessagesSince", i18n.ERROR_INTERNAL, err)
	}

	entitlement := l.core.Cfg().Quota.Entitlement(types.UserPlan(plan))
	if count >= entitlement {
		return errors.New("ChatLogic.checkQuota.exceeded", i18n.ERROR_QUOTA_EXCEEDED, nil).Code(http.StatusTooManyRequests)
	}
	return nil
}

// ensureChat 会话不存在则以请求者为所有者创建，标题由短请求生成；
// 已存在但归属他人则拒绝。
func (l *ChatLogic) ensureChat(req ChatRequest, userID string) (*types.Chat, error) {
	chat, err := l.core.Store().ChatStore().GetChat(l.ctx, req.ChatID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("ChatLogic.ensureChat.ChatStore.GetChat", i18n.ERROR_INTERNAL, err)
	}

	if chat != nil {
		if chat.UserID != userID {
			return nil, errors.New("ChatLogic.ensureChat.forbidden", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
		}
		return chat, nil
	}

	visibility := req.Visibility
	if !visibility.Valid() {
		visibility = types.CHAT_VISIBILITY_PRIVATE
	}

	title, err := openai.GenerateTitle(l.ctx, l.core.Srv().AI().Title(), ai.TitlePrompt, req.Message.Text)
	if err != nil {
		slog.Error("failed to synthesize chat title", slog.String("error", err.Error()))
		title = req.Message.Text
		if len(title) > 80 {
			title = title[:80]
		}
	}

	newChat := types.Chat{
		ID:          req.ChatID,
		UserID:      userID,
		CompanionID: req.CompanionID,
		Title:       title,
		Visibility:  visibility,
		CreatedAt:   time.Now().Unix(),
	}
	if err = l.core.Store().ChatStore().Create(l.ctx, newChat); err != nil {
		return nil, errors.New("ChatLogic.ensureChat.ChatStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &newChat, nil
}

// runAgentBranch 外部 agent 通路。返回已产出的文本与降级原因，
// 原因为空表示未选择该通路或已正常完成。
func (l *ChatLogic) runAgentBranch(req ChatRequest, chat *types.Chat, assistantID string, out *emitter) (string, string) {
	if req.AgentID == "" {
		return "", ""
	}

	agent := l.core.Srv().AI().Agent()
	if agent == nil {
		return "", "agent_not_configured"
	}

	timer := l.core.Metrics().LLMRequestTimer("agent")
	defer timer.ObserveDuration()

	events, err := agent.ChatStream(l.ctx, dify.ChatRequest{
		Query:          req.Message.Text,
		ConversationID: chat.ID,
		User:           chat.UserID,
	})
	if err != nil {
		l.core.Metrics().LLMErrorInc("agent")
		slog.Error("agent request failed", slog.String("chat_id", chat.ID), slog.String("error", err.Error()))
		return "", "agent_request_failed"
	}

	var text string
	for ev := range events {
		switch ev.Type {
		case ai.EventTextDelta:
			text += ev.Text
			out.Emit(protocol.NewTextDelta(assistantID, ev.Text))
		case ai.EventError:
			l.core.Metrics().LLMErrorInc("agent")
			slog.Error("agent stream failed", slog.String("chat_id", chat.ID), slog.String("error", ev.Err.Error()))
			return text, "agent_stream_error"
		case ai.EventDone:
			return text, ""
		}
	}
	return text, ""
}

// runDefaultBranch 默认模型通路：拼装历史与系统提示词，带工具循环流式生成
func (l *ChatLogic) runDefaultBranch(chat *types.Chat, model, assistantID string, out *emitter) (string, *openailib.Usage, error) {
	driver := l.core.Srv().AI().ChatFor(model)

	var companionName, companionRules string
	if chat.CompanionID != "" {
		if companion := l.loadCompanion(chat.CompanionID); companion != nil {
			companionName = companion.Name
			companionRules = companion.Rules
		}
	}

	messages := []openailib.ChatCompletionMessage{
		{Role: openailib.ChatMessageRoleSystem, Content: ai.BuildSystemPrompt(driver.IsReasoningModel(), companionName, companionRules)},
	}

	history, err := l.core.Store().ChatMessageStore().ListChatMessages(l.ctx, chat.ID)
	if err != nil {
		return "", nil, err
	}
	messages = append(messages, lo.FilterMap(history, func(msg types.Message, _ int) (openailib.ChatCompletionMessage, bool) {
		role := openailib.ChatMessageRoleUser
		if msg.Role == types.MESSAGE_ROLE_ASSISTANT {
			role = openailib.ChatMessageRoleAssistant
		}
		text := msg.Parts.PlainText()
		return openailib.ChatCompletionMessage{Role: role, Content: text}, text != ""
	})...)

	registry := tools.NewRegistry(
		tools.NewWeatherTool("", l.core.HttpClient()),
		tools.NewCreateDocumentTool(l.core.Store().DocumentStore(), chat.UserID, utils.GenUniqIDStr),
		tools.NewUpdateDocumentTool(l.core.Store().DocumentStore(), chat.UserID),
		tools.NewRequestSuggestionsTool(driver, l.core.Store().DocumentStore(), l.core.Store().SuggestionStore(), chat.UserID, utils.GenUniqIDStr),
	)

	timer := l.core.Metrics().LLMRequestTimer("default")
	defer timer.ObserveDuration()

	var (
		text  string
		usage *openailib.Usage
	)
	for ev := range ai.HandleStream(l.ctx, driver, ai.StreamRequest{Messages: messages, Tools: registry}) {
		switch ev.Type {
		case ai.EventTextDelta:
			text += ev.Text
			out.Emit(protocol.NewTextDelta(assistantID, ev.Text))
		case ai.EventError:
			l.core.Metrics().LLMErrorInc("default")
			return text, usage, ev.Err
		case ai.EventDone:
			usage = ev.Usage
		}
	}
	return text, usage, nil
}

// companionCacheTTL companion 人设缓存时间，更新走主动失效
const companionCacheTTL = time.Minute * 10

// loadCompanion 人设读多写少，优先走缓存；缓存不可用时直读库
func (l *ChatLogic) loadCompanion(companionID string) *types.Companion {
	cacheKey := protocol.GenCompanionCacheKey(companionID)
	if cache := l.core.Cache(); cache != nil {
		if raw, err := cache.Get(l.ctx, cacheKey); err == nil && raw != "" {
			var companion types.Companion
			if err = json.Unmarshal([]byte(raw), &companion); err == nil {
				return &companion
			}
		}
	}

	companion, err := l.core.Store().CompanionStore().GetCompanion(l.ctx, companionID)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Error("failed to load companion", slog.String("companion_id", companionID), slog.String("error", err.Error()))
		}
		return nil
	}

	if cache := l.core.Cache(); cache != nil {
		if raw, err := json.Marshal(companion); err == nil {
			if err = cache.SetEx(l.ctx, cacheKey, string(raw), companionCacheTTL); err != nil {
				slog.Warn("failed to cache companion", slog.String("companion_id", companionID), slog.String("error", err.Error()))
			}
		}
	}
	return companion
}

// persistAssistant 保存失败只记录日志，已下发的流内容不回滚
func (l *ChatLogic) persistAssistant(chatID, assistantID string, parts types.MessageParts) {
	ctx := context.WithoutCancel(l.ctx)
	err := l.core.Store().ChatMessageStore().Create(ctx, &types.Message{
		ID:        assistantID,
		ChatID:    chatID,
		Role:      types.MESSAGE_ROLE_ASSISTANT,
		Parts:     parts,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		slog.Error("failed to persist assistant message",
			slog.String("chat_id", chatID),
			slog.String("message_id", assistantID),
			slog.String("error", err.Error()))
	}
}
