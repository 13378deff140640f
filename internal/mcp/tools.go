package mcp

import "github.com/mark3labs/mcp-go/mcp"

var summaryToolDef = mcp.NewTool("data_summary",
	mcp.WithDescription("Per-category storage summary: whether each category exists, its size in bytes, item count and last modification time."),
)

var exportToolDef = mcp.NewTool("data_export",
	mcp.WithDescription("Export every category to a pretty-printed JSON backup file."),
	mcp.WithString("path",
		mcp.Description("Destination .json file. Defaults to <base>/exports/<practice>-Backup-<date>.json"),
	),
)

var exportCategoryToolDef = mcp.NewTool("data_export_category",
	mcp.WithDescription("Export a single category to a JSON file that can be imported on its own."),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Category key"),
		mcp.Enum("brandFoundation", "contentIdeas", "userSettings", "templateFavorites", "appPreferences"),
	),
	mcp.WithString("path",
		mcp.Description("Destination .json file. Defaults to <base>/exports/<category>-backup-<date>.json"),
	),
)

var importToolDef = mcp.NewTool("data_import",
	mcp.WithDescription("Import a backup file. Merge mode appends content ideas whose id is new; overwrite mode replaces each category wholesale."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Backup .json file to import"),
	),
	mcp.WithBoolean("merge",
		mcp.Description("Merge content ideas by id instead of overwriting (default true)"),
	),
	mcp.WithBoolean("validate",
		mcp.Description("Reject categories missing required fields (default true)"),
	),
)

var getToolDef = mcp.NewTool("data_get",
	mcp.WithDescription("Read the stored JSON value of one category."),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Category key"),
	),
)

var putToolDef = mcp.NewTool("data_put",
	mcp.WithDescription("Replace one category with the given JSON value. The value is validated first."),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Category key"),
	),
	mcp.WithString("value",
		mcp.Required(),
		mcp.Description("JSON text of the new value"),
	),
)

var clearToolDef = mcp.NewTool("data_clear",
	mcp.WithDescription("Delete all stored categories. Auto-backups are kept. Requires confirm=true."),
	mcp.WithBoolean("confirm",
		mcp.Required(),
		mcp.Description("Must be true to clear"),
	),
)

var backupToolDef = mcp.NewTool("backup_create",
	mcp.WithDescription("Take an auto-backup snapshot now, evicting the oldest beyond the retention limit."),
)

var restoreToolDef = mcp.NewTool("backup_restore",
	mcp.WithDescription("Restore every category from the most recent auto-backup (overwrite, no validation)."),
)

var ideaAddToolDef = mcp.NewTool("idea_add",
	mcp.WithDescription("Add an idea to the content vault."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Idea title")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Idea body")),
	mcp.WithString("platform", mcp.Description("Target platform")),
	mcp.WithString("category", mcp.Description("Idea category")),
	mcp.WithString("tags", mcp.Description("Comma-separated tags")),
)

var ideaListToolDef = mcp.NewTool("idea_list",
	mcp.WithDescription("List vault ideas, optionally filtered."),
	mcp.WithString("search", mcp.Description("Case-insensitive match on title, content and tags")),
	mcp.WithString("category", mcp.Description("Category filter; \"all\" or empty matches everything")),
	mcp.WithString("platform", mcp.Description("Platform filter; \"all\" or empty matches everything")),
)

var ideaFavoriteToolDef = mcp.NewTool("idea_favorite",
	mcp.WithDescription("Set or toggle the favorite flag of a vault idea."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Idea id")),
	mcp.WithBoolean("favorite", mcp.Description("New value; omitted toggles")),
)

var ideaDeleteToolDef = mcp.NewTool("idea_delete",
	mcp.WithDescription("Delete a vault idea."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Idea id")),
)

var generateIdeasToolDef = mcp.NewTool("generate_ideas",
	mcp.WithDescription("Generate five client-attraction content ideas. Uses the AI proxy when connected and the local content database otherwise."),
	mcp.WithObject("profile", mcp.Description("Therapist profile fields merged into the prompt")),
	mcp.WithArray("pillars",
		mcp.Description("Content pillars; defaults to the brand foundation's pillars"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithBoolean("html", mcp.Description("Also return the text rendered as HTML")),
)

var generatePostToolDef = mcp.NewTool("generate_post",
	mcp.WithDescription("Generate one social post."),
	mcp.WithString("format", mcp.Required(), mcp.Description("Post format, e.g. Single Post, Carousel, Reel")),
	mcp.WithString("platform", mcp.Required(), mcp.Description("Target platform")),
	mcp.WithString("tone", mcp.Description("Tone of voice")),
	mcp.WithString("topic", mcp.Required(), mcp.Description("Post topic")),
	mcp.WithBoolean("save", mcp.Description("Save the result to the vault")),
	mcp.WithBoolean("html", mcp.Description("Also return the text rendered as HTML")),
)

var generateInstantToolDef = mcp.NewTool("generate_instant",
	mcp.WithDescription("Generate content from the local database without calling the network."),
	mcp.WithString("niche",
		mcp.Description("Niche (default anxiety)"),
		mcp.Enum("anxiety", "trauma", "depression", "adhd"),
	),
	mcp.WithString("shape",
		mcp.Description("Layout (default full_post)"),
		mcp.Enum("full_post", "carousel", "reel_script", "hook_only"),
	),
	mcp.WithNumber("count", mcp.Description("Return a mixed batch of this many pieces instead of one")),
)

var contentScoreToolDef = mcp.NewTool("content_score",
	mcp.WithDescription("Score a draft for client attraction (0-100) and suggest edits. Runs locally."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Draft post text")),
)

var connectionTestToolDef = mcp.NewTool("connection_test",
	mcp.WithDescription("Test the AI proxy connection."),
)
