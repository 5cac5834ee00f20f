package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Localizer(t *testing.T) {
	l := NewLocalizer("en", "zh-CN")

	assert.Equal(t, "The external agent is unavailable, answering with the default model instead", l.Get("en", ERROR_AGENT_UNAVAILABLE))
	assert.Equal(t, "外部智能体暂不可用，已切换至默认模型回答", l.Get("zh-CN", ERROR_AGENT_UNAVAILABLE))

	// 未知语言与未知词条都退回原 key
	assert.Equal(t, ERROR_AGENT_UNAVAILABLE, l.Get("fr", ERROR_AGENT_UNAVAILABLE))
	assert.Equal(t, "error.unknown", l.Get("en", "error.unknown"))
}
