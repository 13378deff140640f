package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/clarity/internal/content"
	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/generate"
	"github.com/hpungsan/clarity/internal/manager"
)

// Deps are the services behind the tools.
type Deps struct {
	Manager   *manager.Manager
	Generator *generate.Hybrid
}

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	mgr *manager.Manager
	gen *generate.Hybrid
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	gen := deps.Generator
	if gen == nil {
		gen = generate.New(generate.Options{Brand: deps.Manager})
	}
	return &Handlers{mgr: deps.Manager, gen: gen}
}

// Request types for each tool

// ExportRequest represents the arguments for data_export and data_export_category.
type ExportRequest struct {
	Category string `json:"category,omitempty"`
	Path     string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for data_import.
type ImportRequest struct {
	Path     string `json:"path"`
	Merge    *bool  `json:"merge,omitempty"`
	Validate *bool  `json:"validate,omitempty"`
}

// CategoryRequest represents the arguments for data_get and data_put.
type CategoryRequest struct {
	Category string `json:"category"`
	Value    string `json:"value,omitempty"`
}

// ClearRequest represents the arguments for data_clear.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// FavoriteRequest represents the arguments for idea_favorite and idea_delete.
type FavoriteRequest struct {
	ID       int64 `json:"id"`
	Favorite *bool `json:"favorite,omitempty"`
}

// GenerateIdeasRequest represents the arguments for generate_ideas.
type GenerateIdeasRequest struct {
	Profile generate.Profile `json:"profile,omitempty"`
	Pillars []string         `json:"pillars,omitempty"`
	HTML    bool             `json:"html,omitempty"`
}

// GeneratePostRequest represents the arguments for generate_post.
type GeneratePostRequest struct {
	generate.PostRequest
	Save bool `json:"save,omitempty"`
	HTML bool `json:"html,omitempty"`
}

// InstantRequest represents the arguments for generate_instant.
type InstantRequest struct {
	Niche string `json:"niche,omitempty"`
	Shape string `json:"shape,omitempty"`
	Count int    `json:"count,omitempty"`
}

// ScoreRequest represents the arguments for content_score.
type ScoreRequest struct {
	Text string `json:"text"`
}

// GenerateOutput is returned by the generate tools.
type GenerateOutput struct {
	generate.Result
	HTML    string `json:"html,omitempty"`
	SavedID *int64 `json:"saved_id,omitempty"`
}

// Handler implementations

// HandleSummary handles the data_summary tool call.
func (h *Handlers) HandleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.mgr.Summary(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the data_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := h.mgr.ExportAll(ctx, manager.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExportCategory handles the data_export_category tool call.
func (h *Handlers) HandleExportCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if err := requireArg("category", input.Category); err != nil {
		return errorResult(err), nil
	}

	result, err := h.mgr.ExportCategory(ctx, input.Category, manager.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the data_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[ImportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if err := requireArg("path", input.Path); err != nil {
		return errorResult(err), nil
	}

	opts := manager.UserImportOptions()
	if input.Merge != nil {
		opts.Merge = *input.Merge
	}
	if input.Validate != nil {
		opts.Validate = *input.Validate
	}

	result, err := h.mgr.ImportFile(ctx, input.Path, opts)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the data_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[CategoryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	raw, err := h.mgr.Get(ctx, input.Category)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"category": input.Category, "value": raw})
}

// HandlePut handles the data_put tool call.
func (h *Handlers) HandlePut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[CategoryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	if err := h.mgr.Put(ctx, input.Category, json.RawMessage(input.Value)); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"category": input.Category, "stored": true})
}

// HandleClear handles the data_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[ClearRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	confirm := manager.ConfirmFunc(func(context.Context, string) (bool, error) {
		return input.Confirm, nil
	})
	cleared, err := h.mgr.ClearAll(ctx, confirm)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"cleared": cleared})
}

// HandleBackup handles the backup_create tool call.
func (h *Handlers) HandleBackup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := h.mgr.CreateAutoBackup(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"key": key})
}

// HandleRestore handles the backup_restore tool call.
func (h *Handlers) HandleRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.mgr.RestoreAutoBackup(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleIdeaAdd handles the idea_add tool call.
func (h *Handlers) HandleIdeaAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[manager.IdeaInput](req)
	if err != nil {
		return errorResult(err), nil
	}

	idea, err := h.mgr.AddIdea(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(idea)
}

// HandleIdeaList handles the idea_list tool call.
func (h *Handlers) HandleIdeaList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[manager.IdeaFilter](req)
	if err != nil {
		return errorResult(err), nil
	}

	ideas, err := h.mgr.ListIdeas(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"ideas": ideas, "count": len(ideas)})
}

// HandleIdeaFavorite handles the idea_favorite tool call.
func (h *Handlers) HandleIdeaFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[FavoriteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	favorite := false
	if input.Favorite != nil {
		favorite = *input.Favorite
		err = h.mgr.SetFavorite(ctx, input.ID, favorite)
	} else {
		favorite, err = h.mgr.ToggleFavorite(ctx, input.ID)
	}
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"id": input.ID, "favorite": favorite})
}

// HandleIdeaDelete handles the idea_delete tool call.
func (h *Handlers) HandleIdeaDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[FavoriteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	if err := h.mgr.DeleteIdea(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"id": input.ID, "deleted": true})
}

// HandleGenerateIdeas handles the generate_ideas tool call.
func (h *Handlers) HandleGenerateIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[GenerateIdeasRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	pillars := input.Pillars
	if len(pillars) == 0 {
		brand, err := h.mgr.BrandFoundation(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		if brand != nil {
			pillars = brand.Pillars()
		}
	}

	out := GenerateOutput{Result: h.gen.GenerateContentIdeas(ctx, input.Profile, pillars)}
	if input.HTML {
		if out.HTML, err = out.Result.HTML(); err != nil {
			return errorResult(errors.NewInternal(err)), nil
		}
	}
	return successResult(out)
}

// HandleGeneratePost handles the generate_post tool call.
func (h *Handlers) HandleGeneratePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[GeneratePostRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if err := requireArg("topic", input.Topic); err != nil {
		return errorResult(err), nil
	}

	out := GenerateOutput{Result: h.gen.GeneratePostContent(ctx, input.PostRequest)}
	if input.Save {
		idea, err := h.mgr.SaveGenerated(ctx, manager.GeneratedInput{
			Format:   input.Format,
			Topic:    input.Topic,
			Platform: input.Platform,
			Content:  out.Text,
		})
		if err != nil {
			return errorResult(err), nil
		}
		out.SavedID = &idea.ID
	}
	if input.HTML {
		if out.HTML, err = out.Result.HTML(); err != nil {
			return errorResult(errors.NewInternal(err)), nil
		}
	}
	return successResult(out)
}

// HandleGenerateInstant handles the generate_instant tool call.
func (h *Handlers) HandleGenerateInstant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[InstantRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	niche := content.DefaultNiche
	if input.Niche != "" {
		n, ok := content.ParseNiche(input.Niche)
		if !ok {
			return errorResult(errors.NewInvalidRequest("unknown niche: " + input.Niche)), nil
		}
		niche = n
	}

	if input.Count > 0 {
		return successResult(map[string]any{"items": h.gen.Variety(niche, input.Count)})
	}
	return successResult(h.gen.InstantContent(niche, content.ParseShape(input.Shape)))
}

// HandleContentScore handles the content_score tool call.
func (h *Handlers) HandleContentScore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeArgs[ScoreRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if err := requireArg("text", input.Text); err != nil {
		return errorResult(err), nil
	}
	return successResult(content.Assess(input.Text))
}

// HandleConnectionTest handles the connection_test tool call.
func (h *Handlers) HandleConnectionTest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.gen.TestAIAvailability(ctx))
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var ce *errors.ClarityError
	if errors.As(err, &ce) {
		errorObj := map[string]any{
			"code":    ce.Code,
			"message": ce.Message,
			"status":  ce.Status,
		}
		if ce.Code != errors.ErrInternal && ce.Details != nil {
			errorObj["details"] = ce.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	body, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(body)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
