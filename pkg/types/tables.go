package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "sidekick_"

const (
	TABLE_USER         = TableName("user")
	TABLE_CHAT         = TableName("chat")
	TABLE_CHAT_MESSAGE = TableName("chat_message")
	TABLE_CHAT_STREAM  = TableName("chat_stream")
	TABLE_VOTE         = TableName("vote")
	TABLE_COMPANION    = TableName("companion")
	TABLE_DOCUMENT     = TableName("document")
	TABLE_SUGGESTION   = TableName("suggestion")
)

const NO_PAGING uint64 = 0
