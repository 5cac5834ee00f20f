package tools

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Tool 模型可调用的函数。Call 入参为模型生成的 arguments JSON，
// 返回值序列化后作为 tool 消息回填。
type Tool interface {
	Name() string
	Definition() openai.Tool
	Call(ctx context.Context, arguments string) (string, error)
}

type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
	}
	for _, t := range ts {
		r.order = append(r.order, t.Name())
		r.tools[t.Name()] = t
	}
	return r
}

func (r *Registry) Definitions() []openai.Tool {
	var defs []openai.Tool
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

func (r *Registry) Call(ctx context.Context, name string, arguments string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return t.Call(ctx, arguments)
}
