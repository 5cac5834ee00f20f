package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/sidekick-ai/sidekick-ai/pkg/types"
)

// DocumentStore 文档工具依赖的最小存储能力
type DocumentStore interface {
	Create(ctx context.Context, data *types.Document) error
	Get(ctx context.Context, id string) (*types.Document, error)
	UpdateContent(ctx context.Context, userID, id, title, content string) error
}

type CreateDocumentTool struct {
	store  DocumentStore
	userID string
	genID  func() string
}

func NewCreateDocumentTool(store DocumentStore, userID string, genID func() string) *CreateDocumentTool {
	return &CreateDocumentTool{
		store:  store,
		userID: userID,
		genID:  genID,
	}
}

func (t *CreateDocumentTool) Name() string {
	return "createDocument"
}

func (t *CreateDocumentTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "Create a document the user can edit later. Use it for substantial writing or code.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"title": {
						Type:        jsonschema.String,
						Description: "Title of the document.",
					},
					"kind": {
						Type:        jsonschema.String,
						Enum:        []string{string(types.DOCUMENT_KIND_TEXT), string(types.DOCUMENT_KIND_CODE)},
						Description: "Kind of document.",
					},
					"content": {
						Type:        jsonschema.String,
						Description: "Full content of the document.",
					},
				},
				Required: []string{"title", "kind", "content"},
			},
		},
	}
}

type createDocumentArgs struct {
	Title   string `json:"title"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

func (t *CreateDocumentTool) Call(ctx context.Context, arguments string) (string, error) {
	var args createDocumentArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid createDocument arguments, %w", err)
	}

	doc := &types.Document{
		ID:        t.genID(),
		UserID:    t.userID,
		Title:     args.Title,
		Content:   args.Content,
		Kind:      types.DocumentKind(args.Kind),
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	}
	if err := t.store.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create document, %w", err)
	}

	raw, _ := json.Marshal(map[string]string{
		"id":    doc.ID,
		"title": doc.Title,
		"kind":  string(doc.Kind),
	})
	return string(raw), nil
}

type UpdateDocumentTool struct {
	store  DocumentStore
	userID string
}

func NewUpdateDocumentTool(store DocumentStore, userID string) *UpdateDocumentTool {
	return &UpdateDocumentTool{
		store:  store,
		userID: userID,
	}
}

func (t *UpdateDocumentTool) Name() string {
	return "updateDocument"
}

func (t *UpdateDocumentTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "Rewrite an existing document with new content.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"id": {
						Type:        jsonschema.String,
						Description: "ID of the document to update.",
					},
					"content": {
						Type:        jsonschema.String,
						Description: "New full content of the document.",
					},
				},
				Required: []string{"id", "content"},
			},
		},
	}
}

type updateDocumentArgs struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func (t *UpdateDocumentTool) Call(ctx context.Context, arguments string) (string, error) {
	var args updateDocumentArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid updateDocument arguments, %w", err)
	}

	doc, err := t.store.Get(ctx, args.ID)
	if err != nil {
		return "", fmt.Errorf("document not found, %w", err)
	}
	if doc.UserID != t.userID {
		return "", fmt.Errorf("document %s does not belong to the caller", args.ID)
	}

	if err = t.store.UpdateContent(ctx, t.userID, args.ID, doc.Title, args.Content); err != nil {
		return "", fmt.Errorf("failed to update document, %w", err)
	}

	raw, _ := json.Marshal(map[string]string{"id": args.ID, "status": "updated"})
	return string(raw), nil
}
