package v1_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/types/protocol"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

func Test_ResumeWithoutLedger(t *testing.T) {
	appCore := NewCore(t)
	ctx := context.Background()

	ownerID := utils.GenRandomID()
	chat := types.Chat{
		ID:         utils.GenRandomID(),
		UserID:     ownerID,
		Title:      "resume",
		Visibility: types.CHAT_VISIBILITY_PRIVATE,
		CreatedAt:  time.Now().Unix(),
	}
	if err := appCore.Store().ChatStore().Create(ctx, chat); err != nil {
		t.Fatal(err)
	}

	sink := &frameSink{}
	logic := v1.NewChatLogic(NewUserContext(ownerID, "regular"), appCore)

	// 从未登记过流：无内容可恢复，也不算错误
	result, err := logic.Resume(chat.ID, sink.write)
	assert.NoError(t, err)
	assert.Equal(t, v1.ResumeNone, result)
	assert.Empty(t, sink.frames)
	assert.False(t, sink.done)

	// 不存在的会话
	_, err = logic.Resume(utils.GenRandomID(), sink.write)
	assert.Error(t, err)

	// 私有会话对非所有者不可恢复
	stranger := v1.NewChatLogic(NewUserContext(utils.GenRandomID(), "regular"), appCore)
	_, err = stranger.Resume(chat.ID, sink.write)
	assert.Error(t, err)
}

func Test_ResumeReplayWindow(t *testing.T) {
	appCore := NewCore(t)
	if !appCore.Srv().StreamHub().Enabled() {
		t.Skip("SIDEKICK_TEST_CONFIG_PATH has no redis configured")
	}
	ctx := context.Background()

	newChatWithStream := func(assistantAge time.Duration) types.Chat {
		chat := types.Chat{
			ID:         utils.GenRandomID(),
			UserID:     utils.GenRandomID(),
			Title:      "replay",
			Visibility: types.CHAT_VISIBILITY_PRIVATE,
			CreatedAt:  time.Now().Unix(),
		}
		if err := appCore.Store().ChatStore().Create(ctx, chat); err != nil {
			t.Fatal(err)
		}
		// 登记一条缓冲已过期的流
		if err := appCore.Store().ChatStreamStore().Create(ctx, types.ChatStream{
			ID:        utils.GenRandomID(),
			ChatID:    chat.ID,
			CreatedAt: time.Now().Unix(),
		}); err != nil {
			t.Fatal(err)
		}
		msg := &types.Message{
			ID:        utils.GenRandomID(),
			ChatID:    chat.ID,
			Role:      types.MESSAGE_ROLE_ASSISTANT,
			Parts:     types.MessageParts{{Type: types.MESSAGE_PART_TEXT, Text: "answer"}},
			CreatedAt: time.Now().Add(-assistantAge).Unix(),
		}
		if err := appCore.Store().ChatMessageStore().Create(ctx, msg); err != nil {
			t.Fatal(err)
		}
		return chat
	}

	// 生成刚结束：最后一条 assistant 消息整条补投
	recent := newChatWithStream(time.Second)
	sink := &frameSink{}
	logic := v1.NewChatLogic(NewUserContext(recent.UserID, "regular"), appCore)
	result, err := logic.Resume(recent.ID, sink.write)
	assert.NoError(t, err)
	assert.Equal(t, v1.ResumeStreamed, result)
	assert.True(t, sink.done)
	require.Len(t, sink.frames, 1)
	assert.Equal(t, protocol.FrameAppendMessage, sink.frames[0].Type)
	assert.Equal(t, recent.ID, sink.frames[0].ChatID)
	assert.NotEmpty(t, sink.frames[0].Message)

	// 超出回放窗口：只返回空流
	stale := newChatWithStream(time.Minute)
	staleSink := &frameSink{}
	staleLogic := v1.NewChatLogic(NewUserContext(stale.UserID, "regular"), appCore)
	result, err = staleLogic.Resume(stale.ID, staleSink.write)
	assert.NoError(t, err)
	assert.Equal(t, v1.ResumeStreamed, result)
	assert.True(t, staleSink.done)
	assert.Empty(t, staleSink.frames)
}
