package v1

import (
	"database/sql"
	"net/http"

	"github.com/sidekick-ai/sidekick-ai/pkg/errors"
	"github.com/sidekick-ai/sidekick-ai/pkg/i18n"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

// Vote 对消息投票，重复投票覆盖方向
func (l *ChatLogic) Vote(chatID, messageID string, isUpvoted bool) error {
	if _, err := l.loadChatWithReadAccess(chatID); err != nil {
		return err
	}

	msg, err := l.core.Store().ChatMessageStore().GetMessage(l.ctx, messageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("ChatLogic.Vote.notfound", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
		}
		return errors.New("ChatLogic.Vote.GetMessage", i18n.ERROR_INTERNAL, err)
	}
	if msg.ChatID != chatID {
		return errors.New("ChatLogic.Vote.mismatch", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	if err = l.core.Store().VoteStore().Upsert(l.ctx, types.Vote{
		ChatID:    chatID,
		MessageID: messageID,
		IsUpvoted: isUpvoted,
	}); err != nil {
		return errors.New("ChatLogic.Vote.VoteStore.Upsert", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *ChatLogic) ListVotes(chatID string) ([]types.Vote, error) {
	if _, err := l.loadChatWithReadAccess(chatID); err != nil {
		return nil, err
	}

	list, err := l.core.Store().VoteStore().ListChatVotes(l.ctx, chatID)
	if err != nil {
		return nil, errors.New("ChatLogic.ListVotes.VoteStore.ListChatVotes", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}
