package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/config"
	"github.com/hpungsan/clarity/internal/store"
)

// newTestApp wires the app over an in-memory store in a temp base dir.
func newTestApp(t *testing.T, mutate ...func(*config.Config)) *app {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	for _, fn := range mutate {
		fn(cfg)
	}
	a := newApp(t.TempDir(), cfg, store.NewMemory(), zap.NewNop())
	t.Cleanup(a.close)
	return a
}

// runCLI runs the CLI with args and returns what it printed to stdout.
func runCLI(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := newCLIApp(a).Run(append([]string{"clarity"}, args...))

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), err
}

func decodeOutput(t *testing.T, out string) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("failed to parse output %q: %v", out, err)
	}
	return v
}

func TestCLIPutGetSummary(t *testing.T) {
	a := newTestApp(t)

	if _, err := runCLI(t, a, "put", "brandFoundation", `{"practiceName":"Calm Minds","contentPillars":"Rest, Boundaries"}`); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	out, err := runCLI(t, a, "get", "brandFoundation")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := decodeOutput(t, out)["practiceName"]; got != "Calm Minds" {
		t.Errorf("practiceName = %v, want Calm Minds", got)
	}

	out, err = runCLI(t, a, "summary")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	brand := decodeOutput(t, out)["brandFoundation"].(map[string]any)
	if brand["exists"] != true {
		t.Errorf("brandFoundation exists = %v", brand["exists"])
	}
}

func TestCLIErrors(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "get unknown category", args: []string{"get", "nope"}, wantErr: "[INVALID_REQUEST]"},
		{name: "get absent category", args: []string{"get", "userSettings"}, wantErr: "[CATEGORY_NOT_FOUND]"},
		{name: "put invalid json", args: []string{"put", "userSettings", "{"}, wantErr: "[INVALID_FORMAT]"},
		{name: "import without path", args: []string{"import"}, wantErr: "[INVALID_REQUEST]"},
		{name: "favorite bad id", args: []string{"idea", "favorite", "abc"}, wantErr: "[INVALID_REQUEST]"},
		{name: "post without topic", args: []string{"generate", "post"}, wantErr: "[INVALID_REQUEST]"},
		{name: "instant unknown niche", args: []string{"generate", "instant", "--niche", "grief"}, wantErr: "[INVALID_REQUEST]"},
		{name: "restore without backups", args: []string{"restore"}, wantErr: "[NO_BACKUPS_FOUND]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, a, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCLIExportImport(t *testing.T) {
	a := newTestApp(t)

	runCLI(t, a, "put", "contentIdeas", `[{"id":1,"title":"A","content":"a"}]`)

	path := filepath.Join(a.baseDir, "backup.json")
	out, err := runCLI(t, a, "export", "--path", path)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if got := decodeOutput(t, out)["path"]; got != path {
		t.Errorf("path = %v, want %v", got, path)
	}

	if _, err := runCLI(t, a, "clear", "--yes"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	out, err = runCLI(t, a, "import", path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	result := decodeOutput(t, out)
	if result["success"] != true || result["importCount"] != float64(1) {
		t.Errorf("import result = %v", result)
	}

	out, _ = runCLI(t, a, "idea", "list")
	if got := decodeOutput(t, out)["count"]; got != float64(1) {
		t.Errorf("count = %v, want 1", got)
	}

	out, err = runCLI(t, a, "export-category", "contentIdeas")
	if err != nil {
		t.Fatalf("export-category failed: %v", err)
	}
	if got := decodeOutput(t, out)["path"].(string); !strings.HasPrefix(filepath.Base(got), "contentIdeas-backup-") {
		t.Errorf("unexpected default path %q", got)
	}
}

func TestCLIIdeaLifecycle(t *testing.T) {
	a := newTestApp(t)

	out, err := runCLI(t, a, "idea", "add", "--title", "Sleep", "--content", "Rest matters", "--tags", "rest, sleep", "--platform", "instagram")
	if err != nil {
		t.Fatalf("idea add failed: %v", err)
	}
	idea := decodeOutput(t, out)
	id, ok := idea["id"].(float64)
	if !ok || id == 0 {
		t.Fatalf("missing id in %s", out)
	}
	idArg := strconv.FormatInt(int64(id), 10)

	out, err = runCLI(t, a, "idea", "favorite", idArg)
	if err != nil {
		t.Fatalf("favorite failed: %v", err)
	}
	if got := decodeOutput(t, out)["favorite"]; got != true {
		t.Errorf("favorite = %v, want true", got)
	}

	out, _ = runCLI(t, a, "idea", "favorite", "--set", "false", idArg)
	if got := decodeOutput(t, out)["favorite"]; got != false {
		t.Errorf("favorite = %v, want false", got)
	}

	out, _ = runCLI(t, a, "idea", "list", "--search", "REST")
	if got := decodeOutput(t, out)["count"]; got != float64(1) {
		t.Errorf("search count = %v, want 1", got)
	}

	if _, err := runCLI(t, a, "idea", "delete", idArg); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := runCLI(t, a, "idea", "delete", idArg); err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Errorf("second delete error = %v, want NOT_FOUND", err)
	}
}

func TestCLIGenerateLocal(t *testing.T) {
	a := newTestApp(t)

	out, err := runCLI(t, a, "generate", "post", "--format", "Reel", "--topic", "ADHD and focus", "--save")
	if err != nil {
		t.Fatalf("generate post failed: %v", err)
	}
	res := decodeOutput(t, out)
	if res["source"] != "local" {
		t.Errorf("source = %v, want local", res["source"])
	}
	if !strings.HasPrefix(res["text"].(string), "🎥 REEL SCRIPT FOR INSTAGRAM") {
		t.Errorf("unexpected text: %v", res["text"])
	}

	out, _ = runCLI(t, a, "idea", "list", "--category", "generated")
	if got := decodeOutput(t, out)["count"]; got != float64(1) {
		t.Errorf("saved generated ideas = %v, want 1", got)
	}

	out, err = runCLI(t, a, "generate", "ideas", "--html")
	if err != nil {
		t.Fatalf("generate ideas failed: %v", err)
	}
	if html := decodeOutput(t, out)["html"].(string); !strings.Contains(html, "<strong>CLIENT-ATTRACTION IDEA #1") {
		t.Errorf("html missing idea heading: %.200s", html)
	}

	out, err = runCLI(t, a, "generate", "instant", "--niche", "trauma", "--shape", "carousel")
	if err != nil {
		t.Fatalf("generate instant failed: %v", err)
	}
	if piece := decodeOutput(t, out); piece["niche"] != "trauma" || piece["carousel"] == nil {
		t.Errorf("unexpected piece: %v", piece)
	}
}

func TestCLIScore(t *testing.T) {
	a := newTestApp(t)

	out, err := runCLI(t, a, "score", "You're not alone.", "This is normal.")
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	res := decodeOutput(t, out)
	if res["attractionScore"] != float64(35) {
		t.Errorf("attractionScore = %v, want 35", res["attractionScore"])
	}
	if recs := res["recommendations"].([]any); len(recs) != 1 {
		t.Errorf("recommendations = %v, want one", recs)
	}
}

func TestCLIGenerateUsesProxyWhenConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"From the model"}}]}`)
	}))
	defer srv.Close()

	a := newTestApp(t, func(c *config.Config) { c.ProxyURL = srv.URL })

	out, err := runCLI(t, a, "generate", "post", "--topic", "boundaries")
	if err != nil {
		t.Fatalf("generate post failed: %v", err)
	}
	res := decodeOutput(t, out)
	if res["source"] != "ai" || res["text"] != "From the model" {
		t.Errorf("result = %v, want AI text", res)
	}

	out, _ = runCLI(t, a, "test-connection")
	if got := decodeOutput(t, out)["available"]; got != true {
		t.Errorf("available = %v, want true", got)
	}
}

func TestCLITestConnection_NoProxy(t *testing.T) {
	a := newTestApp(t)
	out, err := runCLI(t, a, "test-connection")
	if err != nil {
		t.Fatalf("test-connection failed: %v", err)
	}
	res := decodeOutput(t, out)
	if res["available"] != false || res["reason"] != "No API key configured" {
		t.Errorf("result = %v", res)
	}
}

func TestCLIBackupRestore(t *testing.T) {
	a := newTestApp(t)

	runCLI(t, a, "put", "userSettings", `{"theme":"dark"}`)
	out, err := runCLI(t, a, "backup")
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if key := decodeOutput(t, out)["key"].(string); !strings.HasPrefix(key, store.AutoBackupPrefix) {
		t.Errorf("key = %q", key)
	}

	runCLI(t, a, "clear", "--yes")
	if _, err := runCLI(t, a, "restore"); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	out, _ = runCLI(t, a, "get", "userSettings")
	if got := decodeOutput(t, out)["theme"]; got != "dark" {
		t.Errorf("theme = %v, want dark", got)
	}
}

func TestIsCLIMode(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		args []string
		want bool
	}{
		{args: []string{"clarity"}, want: false},
		{args: []string{"clarity", "summary"}, want: true},
		{args: []string{"clarity", "--verbose", "idea", "list"}, want: true},
		{args: []string{"clarity", "--version"}, want: true},
		{args: []string{"clarity", "score", "draft"}, want: true},
		{args: []string{"clarity", "bogus"}, want: false},
	}
	for _, tt := range tests {
		os.Args = tt.args
		if got := isCLIMode(); got != tt.want {
			t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
