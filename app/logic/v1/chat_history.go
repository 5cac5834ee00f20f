package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

type ChatList struct {
	List  []types.Chat `json:"list"`
	Total int64        `json:"total"`
}

func (l *ChatLogic) ListChats(page, pageSize uint64) (*ChatList, error) {
	user := l.GetUserInfo()

	list, err := l.core.Store().ChatStore().ListUserChats(l.ctx, user.User, page, pageSize)
	if err != nil {
		return nil, errors.New("ChatLogic.ListChats.ChatStore.ListUserChats", i18n.ERROR_INTERNAL, err)
	}

	total, err := l.core.Store().ChatStore().Total(l.ctx, user.User)
	if err != nil {
		return nil, errors.New("ChatLogic.ListChats.ChatStore.Total", i18n.ERROR_INTERNAL, err)
	}

	return &ChatList{
		List:  list,
		Total: total,
	}, nil
}

// loadChatWithReadAccess 私有会话仅所有者可读，公开会话任何已登录用户可读
func (l *ChatLogic) loadChatWithReadAccess(chatID string) (*types.Chat, error) {
	chat, err := l.core.Store().ChatStore().GetChat(l.ctx, chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("ChatLogic.loadChat.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
		return nil, errors.New("ChatLogic.loadChat.ChatStore.GetChat", i18n.ERROR_INTERNAL, err)
	}

	if chat.Visibility != types.CHAT_VISIBILITY_PUBLIC && chat.UserID != l.GetUserInfo().User {
		return nil, errors.New("ChatLogic.loadChat.forbidden", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}
	return chat, nil
}

// loadOwnedChat 仅所有者可操作
func (l *ChatLogic) loadOwnedChat(chatID string) (*types.Chat, error) {
	chat, err := l.core.Store().ChatStore().GetChat(l.ctx, chatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("ChatLogic.loadOwnedChat.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
		return nil, errors.New("ChatLogic.loadOwnedChat.ChatStore.GetChat", i18n.ERROR_INTERNAL, err)
	}
	if chat.UserID != l.GetUserInfo().User {
		return nil, errors.New("ChatLogic.loadOwnedChat.forbidden", i18n.ERROR_FORBIDDEN, nil).Code(http.StatusForbidden)
	}
	return chat, nil
}

func (l *ChatLogic) ListMessages(chatID string) ([]types.Message, error) {
	if _, err := l.loadChatWithReadAccess(chatID); err != nil {
		return nil, err
	}

	list, err := l.core.Store().ChatMessageStore().ListChatMessages(l.ctx, chatID)
	if err != nil {
		return nil, errors.New("ChatLogic.ListMessages.ChatMessageStore.ListChatMessages", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

// DeleteChat 级联删除消息、投票与流账本
func (l *ChatLogic) DeleteChat(chatID string) error {
	if _, err := l.loadOwnedChat(chatID); err != nil {
		return err
	}

	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().ChatMessageStore().DeleteChatMessages(ctx, chatID); err != nil {
			return err
		}
		if err := l.core.Store().VoteStore().DeleteChatVotes(ctx, chatID); err != nil {
			return err
		}
		if err := l.core.Store().ChatStreamStore().DeleteChatStreams(ctx, chatID); err != nil {
			return err
		}
		return l.core.Store().ChatStore().Delete(ctx, chatID)
	})
	if err != nil {
		return errors.New("ChatLogic.DeleteChat.Transaction", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *ChatLogic) UpdateVisibility(chatID string, visibility types.ChatVisibility) error {
	if !visibility.Valid() {
		return errors.New("ChatLogic.UpdateVisibility.invalid", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	if _, err := l.loadOwnedChat(chatID); err != nil {
		return err
	}

	if err := l.core.Store().ChatStore().UpdateVisibility(l.ctx, chatID, visibility); err != nil {
		return errors.New("ChatLogic.UpdateVisibility.ChatStore.UpdateVisibility", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// DeleteTrailingMessages 删除指定消息及其之后的所有消息，配合客户端的消息编辑
func (l *ChatLogic) DeleteTrailingMessages(chatID, messageID string) error {
	if _, err := l.loadOwnedChat(chatID); err != nil {
		return err
	}

	msg, err := l.core.Store().ChatMessageStore().GetMessage(l.ctx, messageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("ChatLogic.DeleteTrailingMessages.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
		return errors.New("ChatLogic.DeleteTrailingMessages.GetMessage", i18n.ERROR_INTERNAL, err)
	}
	if msg.ChatID != chatID {
		return errors.New("ChatLogic.DeleteTrailingMessages.mismatch", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	if err = l.core.Store().ChatMessageStore().DeleteMessagesAfter(l.ctx, chatID, msg.CreatedAt); err != nil {
		return errors.New("ChatLogic.DeleteTrailingMessages.DeleteMessagesAfter", i18n.ERROR_INTERNAL, err)
	}
	return nil
}
