package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/sidekick-ai/sidekick-ai/pkg/ai"
	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

type SuggestionStore interface {
	BatchCreate(ctx context.Context, data []types.Suggestion) error
}

const suggestionPrompt = `You are a writing assistant. Given a document, propose improvements as a JSON array.
Each element must have the fields "original_text", "suggested_text" and "description".
Return at most 5 suggestions and nothing but the JSON array.`

type RequestSuggestionsTool struct {
	driver    ai.ChatDriver
	documents DocumentStore
	store     SuggestionStore
	userID    string
	genID     func() string
}

func NewRequestSuggestionsTool(driver ai.ChatDriver, documents DocumentStore, store SuggestionStore, userID string, genID func() string) *RequestSuggestionsTool {
	return &RequestSuggestionsTool{
		driver:    driver,
		documents: documents,
		store:     store,
		userID:    userID,
		genID:     genID,
	}
}

func (t *RequestSuggestionsTool) Name() string {
	return "requestSuggestions"
}

func (t *RequestSuggestionsTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "Request writing suggestions for an existing document.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"document_id": {
						Type:        jsonschema.String,
						Description: "ID of the document to review.",
					},
				},
				Required: []string{"document_id"},
			},
		},
	}
}

type requestSuggestionsArgs struct {
	DocumentID string `json:"document_id"`
}

type rawSuggestion struct {
	OriginalText  string `json:"original_text"`
	SuggestedText string `json:"suggested_text"`
	Description   string `json:"description"`
}

func (t *RequestSuggestionsTool) Call(ctx context.Context, arguments string) (string, error) {
	var args requestSuggestionsArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid requestSuggestions arguments, %w", err)
	}

	doc, err := t.documents.Get(ctx, args.DocumentID)
	if err != nil {
		return "", fmt.Errorf("document not found, %w", err)
	}
	if doc.UserID != t.userID {
		return "", fmt.Errorf("document %s does not belong to the caller", args.DocumentID)
	}

	resp, err := t.driver.Query(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: suggestionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: doc.Content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate suggestions, %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no suggestions")
	}

	var raws []rawSuggestion
	if err = json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raws); err != nil {
		return "", fmt.Errorf("model returned malformed suggestions, %w", err)
	}
	if len(raws) > 5 {
		raws = raws[:5]
	}

	list := make([]types.Suggestion, 0, len(raws))
	for _, v := range raws {
		list = append(list, types.Suggestion{
			ID:            t.genID(),
			DocumentID:    doc.ID,
			UserID:        t.userID,
			OriginalText:  v.OriginalText,
			SuggestedText: v.SuggestedText,
			Description:   v.Description,
			CreatedAt:     time.Now().Unix(),
		})
	}
	if len(list) > 0 {
		if err = t.store.BatchCreate(ctx, list); err != nil {
			return "", fmt.Errorf("failed to save suggestions, %w", err)
		}
	}

	raw, _ := json.Marshal(map[string]any{
		"document_id": doc.ID,
		"count":       len(list),
	})
	return string(raw), nil
}
