// Package models provides chat-model adapters for question generation.
package models

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// ChatRequest is one prompt for a chat model.
type ChatRequest struct {
	// Instruction is the system prompt.
	Instruction string
	// Input is the user content.
	Input string
	// ResponseSchema, when set, constrains the model to structured JSON
	// output matching the schema.
	ResponseSchema *jsonschema.Schema
	// SchemaName labels the response schema for providers that require it.
	SchemaName string
}

// ChatModel is a single-turn chat completion client.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
