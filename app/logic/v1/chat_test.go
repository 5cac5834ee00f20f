package v1_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	v1 "github.com/sidekick-ai/sidekick-ai/app/logic/v1"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
	"github.com/sidekick-ai/sidekick-ai/pkg/utils"
)

func Test_ChatAccessControl(t *testing.T) {
	appCore := NewCore(t)
	ctx := context.Background()

	ownerID := utils.GenRandomID()
	strangerID := utils.GenRandomID()

	chat := types.Chat{
		ID:         utils.GenRandomID(),
		UserID:     ownerID,
		Title:      "access control",
		Visibility: types.CHAT_VISIBILITY_PRIVATE,
		CreatedAt:  time.Now().Unix(),
	}
	if err := appCore.Store().ChatStore().Create(ctx, chat); err != nil {
		t.Fatal(err)
	}

	ownerLogic := v1.NewChatLogic(NewUserContext(ownerID, "regular"), appCore)
	strangerLogic := v1.NewChatLogic(NewUserContext(strangerID, "regular"), appCore)

	// 私有会话仅所有者可读
	_, err := ownerLogic.ListMessages(chat.ID)
	assert.NoError(t, err)
	_, err = strangerLogic.ListMessages(chat.ID)
	assert.Error(t, err)

	// 可见性只能由所有者修改
	assert.Error(t, strangerLogic.UpdateVisibility(chat.ID, types.CHAT_VISIBILITY_PUBLIC))
	assert.NoError(t, ownerLogic.UpdateVisibility(chat.ID, types.CHAT_VISIBILITY_PUBLIC))

	// 公开后他人可读，仍不可删除
	_, err = strangerLogic.ListMessages(chat.ID)
	assert.NoError(t, err)
	assert.Error(t, strangerLogic.DeleteChat(chat.ID))

	assert.NoError(t, ownerLogic.DeleteChat(chat.ID))
	_, err = ownerLogic.ListMessages(chat.ID)
	assert.Error(t, err)
}

func Test_QuotaRejectsBeforePersist(t *testing.T) {
	appCore := NewCore(t)
	ctx := context.Background()

	userID := utils.GenRandomID()
	chat := types.Chat{
		ID:         utils.GenRandomID(),
		UserID:     userID,
		Title:      "quota",
		Visibility: types.CHAT_VISIBILITY_PRIVATE,
		CreatedAt:  time.Now().Unix(),
	}
	if err := appCore.Store().ChatStore().Create(ctx, chat); err != nil {
		t.Fatal(err)
	}

	// 填满 guest 档的滚动窗口额度
	entitlement := appCore.Cfg().Quota.Entitlement(types.USER_PLAN_GUEST)
	now := time.Now().Unix()
	for i := int64(0); i < entitlement; i++ {
		msg := &types.Message{
			ID:        utils.GenRandomID(),
			ChatID:    chat.ID,
			Role:      types.MESSAGE_ROLE_USER,
			Parts:     types.MessageParts{{Type: types.MESSAGE_PART_TEXT, Text: "filler"}},
			CreatedAt: now,
		}
		if err := appCore.Store().ChatMessageStore().Create(ctx, msg); err != nil {
			t.Fatal(err)
		}
	}

	logic := v1.NewChatLogic(NewUserContext(userID, string(types.USER_PLAN_GUEST)), appCore)
	err := logic.Stream(v1.ChatRequest{
		ChatID:  chat.ID,
		Message: types.CreateMessageArgs{Text: "one more"},
	}, func(payload string) error { return nil })
	assert.Error(t, err)

	// 超额请求在任何写入之前就被拒绝
	after, err := appCore.Store().ChatMessageStore().ListChatMessages(ctx, chat.ID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, after, int(entitlement))
}

func Test_VoteAndTrailingDelete(t *testing.T) {
	appCore := NewCore(t)
	ctx := context.Background()

	ownerID := utils.GenRandomID()
	chat := types.Chat{
		ID:         utils.GenRandomID(),
		UserID:     ownerID,
		Title:      "votes",
		Visibility: types.CHAT_VISIBILITY_PRIVATE,
		CreatedAt:  time.Now().Unix(),
	}
	if err := appCore.Store().ChatStore().Create(ctx, chat); err != nil {
		t.Fatal(err)
	}

	now := time.Now().Unix()
	messageIDs := make([]string, 0, 3)
	for i, role := range []types.MessageRole{types.MESSAGE_ROLE_USER, types.MESSAGE_ROLE_ASSISTANT, types.MESSAGE_ROLE_USER} {
		msg := &types.Message{
			ID:        utils.GenRandomID(),
			ChatID:    chat.ID,
			Role:      role,
			Parts:     types.MessageParts{{Type: types.MESSAGE_PART_TEXT, Text: "msg"}},
			CreatedAt: now + int64(i),
		}
		if err := appCore.Store().ChatMessageStore().Create(ctx, msg); err != nil {
			t.Fatal(err)
		}
		messageIDs = append(messageIDs, msg.ID)
	}

	logic := v1.NewChatLogic(NewUserContext(ownerID, "regular"), appCore)

	// 同一消息重复投票只保留最新方向
	assert.NoError(t, logic.Vote(chat.ID, messageIDs[1], true))
	assert.NoError(t, logic.Vote(chat.ID, messageIDs[1], false))

	votes, err := logic.ListVotes(chat.ID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, votes, 1)
	assert.False(t, votes[0].IsUpvoted)

	// 自指定消息起截断后续消息（含该消息）
	assert.NoError(t, logic.DeleteTrailingMessages(chat.ID, messageIDs[1]))
	remaining, err := logic.ListMessages(chat.ID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, remaining, 1)
	assert.Equal(t, messageIDs[0], remaining[0].ID)
}
