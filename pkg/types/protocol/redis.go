package protocol

import "fmt"

// redis cache key generator
const REDIS_CACHE_KEY_PREFIX = "sidekick_"

// GenChatGenerationLockKey 同一 chat 同时只允许一次生成
func GenChatGenerationLockKey(chatID string) string {
	return fmt.Sprintf("%schat_generation_%s", REDIS_CACHE_KEY_PREFIX, chatID)
}

// GenStreamBufferKey 可恢复流的帧缓冲（list）
func GenStreamBufferKey(streamID string) string {
	return fmt.Sprintf("%sstream_buffer_%s", REDIS_CACHE_KEY_PREFIX, streamID)
}

// GenStreamChannelKey 可恢复流的实时推送频道（pubsub）
func GenStreamChannelKey(streamID string) string {
	return fmt.Sprintf("%sstream_channel_%s", REDIS_CACHE_KEY_PREFIX, streamID)
}

// GenCompanionCacheKey companion 人设缓存，更新或删除时失效
func GenCompanionCacheKey(companionID string) string {
	return fmt.Sprintf("%scompanion_%s", REDIS_CACHE_KEY_PREFIX, companionID)
}
