package ai

import (
	"fmt"
	"strings"
)

const basePrompt = `You are a friendly assistant. Keep your responses concise and helpful.`

const toolsPrompt = `You can look up the weather, create and update documents, and request writing suggestions with the provided tools. Use a tool only when it clearly helps answering the request.`

// BuildSystemPrompt 组装系统提示词。推理类模型不挂工具，
// 因此也不下发工具使用说明。companion 的规则附加在最后。
func BuildSystemPrompt(reasoningModel bool, companionName, companionRules string) string {
	parts := []string{basePrompt}
	if !reasoningModel {
		parts = append(parts, toolsPrompt)
	}
	if companionRules != "" {
		parts = append(parts, fmt.Sprintf("You are playing the role of %s. Follow these rules strictly:\n%s", companionName, companionRules))
	}
	return strings.Join(parts, "\n\n")
}

// TitlePrompt 根据用户首条消息生成会话标题的提示词
const TitlePrompt = `Generate a short title based on the first message a user begins a conversation with. Keep it under 80 characters. Summarize, do not answer. Do not use quotes or colons. Reply with the title only.`
