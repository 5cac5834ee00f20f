package srv

import (
	"net/http"
	"os"

	"github.com/sidekick-ai/sidekick-ai/pkg/ai"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai/dify"
	"github.com/sidekick-ai/sidekick-ai/pkg/ai/openai"
)

type AIConfig struct {
	OpenAI OpenAIConfig `toml:"openai"`
	Agent  dify.Config  `toml:"agent"`
}

type OpenAIConfig struct {
	Token    string `toml:"token"`
	Endpoint string `toml:"endpoint"`
	// ChatModel 默认对话模型；Reasoning 标记它是推理类模型
	ChatModel string `toml:"chat_model"`
	Reasoning bool   `toml:"reasoning"`
	// ReasoningModel 可选的推理模型，配置后客户端可按轮选择
	ReasoningModel string `toml:"reasoning_model"`
	TitleModel     string `toml:"title_model"`
}

func (c *AIConfig) FromENV() {
	c.OpenAI.Token = os.Getenv("SIDEKICK_OPENAI_TOKEN")
	c.OpenAI.Endpoint = os.Getenv("SIDEKICK_OPENAI_ENDPOINT")
	c.OpenAI.ChatModel = os.Getenv("SIDEKICK_OPENAI_CHAT_MODEL")
	c.OpenAI.ReasoningModel = os.Getenv("SIDEKICK_OPENAI_REASONING_MODEL")
	c.OpenAI.TitleModel = os.Getenv("SIDEKICK_OPENAI_TITLE_MODEL")
	c.Agent.APIKey = os.Getenv("SIDEKICK_AGENT_API_KEY")
	c.Agent.Endpoint = os.Getenv("SIDEKICK_AGENT_ENDPOINT")
}

// 客户端可选择的模型档位
const (
	MODEL_CHAT      = "chat-model"
	MODEL_REASONING = "chat-model-reasoning"
)

// AI 汇聚两条生成通路：默认模型与外部 agent。
// agent 未配置时 Agent() 返回 nil，选择逻辑走默认模型。
type AI struct {
	chatDefault   ai.ChatDriver
	chatReasoning ai.ChatDriver
	titleDefault  ai.ChatDriver
	agent         *dify.Client
}

func SetupAI(cfg AIConfig, httpClient *http.Client) *AI {
	a := &AI{
		chatDefault: openai.New(cfg.OpenAI.Token, cfg.OpenAI.Endpoint, cfg.OpenAI.ChatModel, cfg.OpenAI.Reasoning),
	}

	if cfg.OpenAI.ReasoningModel != "" {
		a.chatReasoning = openai.New(cfg.OpenAI.Token, cfg.OpenAI.Endpoint, cfg.OpenAI.ReasoningModel, true)
	}

	titleModel := cfg.OpenAI.TitleModel
	if titleModel == "" {
		titleModel = cfg.OpenAI.ChatModel
	}
	a.titleDefault = openai.New(cfg.OpenAI.Token, cfg.OpenAI.Endpoint, titleModel, false)

	if cfg.Agent.Available() {
		a.agent = dify.NewClient(cfg.Agent, httpClient)
	}
	return a
}

func (a *AI) Chat() ai.ChatDriver {
	return a.chatDefault
}

// ChatFor 按客户端选择的档位返回驱动，未配置推理模型时回落默认档
func (a *AI) ChatFor(model string) ai.ChatDriver {
	if model == MODEL_REASONING && a.chatReasoning != nil {
		return a.chatReasoning
	}
	return a.chatDefault
}

func (a *AI) Title() ai.ChatDriver {
	return a.titleDefault
}

func (a *AI) Agent() *dify.Client {
	return a.agent
}

func (a *AI) AgentAvailable() bool {
	return a.agent != nil
}
