package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/reachable/internal/output"
	"github.com/panbanda/reachable/internal/testutil"
	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	return NewServer("test", cfg, nil)
}

// copyFixture copies a document fixture into dir and returns its path.
func copyFixture(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "pkg", "document", "testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return testutil.WriteFile(t, dir, name, string(data))
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestNewServer(t *testing.T) {
	t.Chdir(t.TempDir())
	s := NewServer("", nil, nil)
	if s == nil || s.server == nil {
		t.Fatal("NewServer returned an incomplete server")
	}
	if s.config == nil {
		t.Error("nil config should select defaults")
	}
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"find":    describeFind,
		"explain": describeExplain,
	}
	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s", name, section)
				}
			}
		})
	}
}

func TestGetPaths(t *testing.T) {
	if got := getPaths(nil); len(got) != 1 || got[0] != "." {
		t.Errorf("getPaths(nil) = %v, want [.]", got)
	}
	in := []string{"a", "b"}
	if got := getPaths(in); len(got) != 2 || got[1] != "b" {
		t.Errorf("getPaths(%v) = %v", in, got)
	}
}

func TestGetFormat(t *testing.T) {
	tests := map[string]output.Format{
		"":         output.FormatTOON,
		"toon":     output.FormatTOON,
		"json":     output.FormatJSON,
		"md":       output.FormatMarkdown,
		"markdown": output.FormatMarkdown,
		"yaml":     output.FormatTOON,
	}
	for in, want := range tests {
		if got := getFormat(in); got != want {
			t.Errorf("getFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("no documents found")
	if err != nil {
		t.Fatalf("toolError returned error: %v", err)
	}
	if !result.IsError {
		t.Error("IsError should be set")
	}
	if got := resultText(t, result); got != "Error: no documents found" {
		t.Errorf("text = %q", got)
	}
}

func TestToolResult(t *testing.T) {
	result, _, err := toolResult(map[string]int{"reachable": 3}, output.FormatJSON)
	if err != nil {
		t.Fatalf("toolResult returned error: %v", err)
	}
	if result.IsError {
		t.Error("IsError should not be set")
	}
	var got map[string]int
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if got["reachable"] != 3 {
		t.Errorf("reachable = %d, want 3", got["reachable"])
	}
}

type findOutput struct {
	Units []struct {
		File      string `json:"file"`
		Name      string `json:"name"`
		Reachable int    `json:"reachable"`
		Entries   []struct {
			ID   ast.NodeID `json:"id"`
			Name string     `json:"name"`
		} `json:"entries"`
	} `json:"units"`
	Summary struct {
		Documents int `json:"documents"`
		Reachable int `json:"reachable"`
	} `json:"summary"`
	Errors []string `json:"errors"`
}

func TestHandleFindReachable(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	copyFixture(t, dir, "demo.ir.yaml")
	copyFixture(t, dir, "small.ir.json")

	result, _, err := s.handleFindReachable(context.Background(), nil, FindInput{
		Paths:  []string{dir},
		Format: "json",
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}

	var out findOutput
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Units) != 2 {
		t.Fatalf("got %d units, want 2", len(out.Units))
	}
	if out.Units[0].Name != "demo" || out.Units[0].Reachable != 10 {
		t.Errorf("first unit = %s with %d reachable, want demo with 10", out.Units[0].Name, out.Units[0].Reachable)
	}
	if out.Summary.Documents != 2 || out.Summary.Reachable != 13 {
		t.Errorf("summary = %+v", out.Summary)
	}
	if len(out.Errors) != 0 {
		t.Errorf("unexpected errors: %v", out.Errors)
	}
}

func TestHandleFindReachable_IDsOnly(t *testing.T) {
	s := newTestServer(t)
	doc := copyFixture(t, t.TempDir(), "small.ir.json")

	result, _, err := s.handleFindReachable(context.Background(), nil, FindInput{
		Paths:   []string{doc},
		Format:  "json",
		IDsOnly: true,
	})
	if err != nil || result.IsError {
		t.Fatalf("find failed: %v", err)
	}

	var out []struct {
		File string       `json:"file"`
		IDs  []ast.NodeID `json:"ids"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d units, want 1", len(out))
	}
	want := []ast.NodeID{1, 3, 4}
	if len(out[0].IDs) != len(want) {
		t.Fatalf("ids = %v, want %v", out[0].IDs, want)
	}
	for i := range want {
		if out[0].IDs[i] != want[i] {
			t.Errorf("ids = %v, want %v", out[0].IDs, want)
			break
		}
	}
}

func TestHandleFindReachable_PartialFailure(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	copyFixture(t, dir, "small.ir.json")
	testutil.WriteFile(t, dir, "broken.ir.yaml", "items: [{id: 1, kind: widget}]\n")

	result, _, err := s.handleFindReachable(context.Background(), nil, FindInput{Paths: []string{dir}, Format: "json"})
	if err != nil || result.IsError {
		t.Fatalf("find failed: %v", err)
	}
	var out findOutput
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Units) != 1 {
		t.Errorf("got %d units, want 1", len(out.Units))
	}
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0], "broken.ir.yaml") {
		t.Errorf("errors = %v, want one for broken.ir.yaml", out.Errors)
	}
}

func TestHandleFindReachable_Errors(t *testing.T) {
	s := newTestServer(t)

	empty := t.TempDir()
	result, _, _ := s.handleFindReachable(context.Background(), nil, FindInput{Paths: []string{empty}})
	if !result.IsError || !strings.Contains(resultText(t, result), "no documents found") {
		t.Errorf("empty dir: got %q", resultText(t, result))
	}

	bad := testutil.WriteFile(t, t.TempDir(), "only.ir.yaml", "items: [{id: 1, kind: widget}]\n")
	result, _, _ = s.handleFindReachable(context.Background(), nil, FindInput{Paths: []string{bad}})
	if !result.IsError {
		t.Error("a batch where every document fails should be a tool error")
	}

	result, _, _ = s.handleFindReachable(context.Background(), nil, FindInput{Paths: []string{filepath.Join(empty, "nope")}})
	if !result.IsError {
		t.Error("missing path should be a tool error")
	}
}

func TestHandleExplainReachable(t *testing.T) {
	s := newTestServer(t)
	doc := copyFixture(t, t.TempDir(), "demo.ir.yaml")

	result, _, err := s.handleExplainReachable(context.Background(), nil, ExplainInput{
		Document: doc,
		Node:     11,
		Format:   "json",
	})
	if err != nil || result.IsError {
		t.Fatalf("explain failed: %v", err)
	}

	var out struct {
		Explanation struct {
			Reachable bool `json:"reachable"`
			Chain     []struct {
				From   struct{ Kind string } `json:"from"`
				To     struct{ ID ast.NodeID } `json:"to"`
				Reason string                  `json:"reason"`
			} `json:"chain"`
		} `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	ex := out.Explanation
	if !ex.Reachable || len(ex.Chain) == 0 {
		t.Fatalf("explanation = %+v, want a reachable chain", ex)
	}
	if ex.Chain[0].From.Kind != "crate" {
		t.Errorf("chain starts at %q, want crate", ex.Chain[0].From.Kind)
	}
	if last := ex.Chain[len(ex.Chain)-1].To.ID; last != 11 {
		t.Errorf("chain ends at %d, want 11", last)
	}
}

func TestHandleExplainReachable_Errors(t *testing.T) {
	s := newTestServer(t)
	doc := copyFixture(t, t.TempDir(), "demo.ir.yaml")

	tests := []struct {
		name  string
		input ExplainInput
		want  string
	}{
		{"no document", ExplainInput{Node: 1}, "document is required"},
		{"nothing asked", ExplainInput{Document: doc}, "set node, cycles, or both"},
		{"unknown node", ExplainInput{Document: doc, Node: 999}, "node 999 does not exist"},
		{"missing file", ExplainInput{Document: filepath.Join(t.TempDir(), "x.ir.yaml"), Node: 1}, "no such file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := s.handleExplainReachable(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected a tool error")
			}
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("text = %q, want it to contain %q", text, tt.want)
			}
		})
	}
}

func TestHandleExplainReachable_Cycles(t *testing.T) {
	s := newTestServer(t)
	doc := testutil.WriteFile(t, t.TempDir(), "rec.ir.yaml", `items:
  - {id: 1, kind: fn, name: ping, generics: [T], body: {expr: {id: 2, kind: path, path: pong}}}
  - {id: 3, kind: fn, name: pong, generics: [T], body: {expr: {id: 4, kind: path, path: ping}}}
defs:
  "2": {kind: fn, node: 3}
  "4": {kind: fn, node: 1}
`)

	result, _, err := s.handleExplainReachable(context.Background(), nil, ExplainInput{
		Document: doc,
		Cycles:   true,
		Format:   "json",
	})
	if err != nil || result.IsError {
		t.Fatalf("explain failed: %v", err)
	}
	var out struct {
		Cycles [][]struct {
			Name string `json:"name"`
		} `json:"cycles"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Cycles) != 1 || len(out.Cycles[0]) != 2 {
		t.Fatalf("cycles = %+v, want one pair", out.Cycles)
	}
	if out.Cycles[0][0].Name != "ping" || out.Cycles[0][1].Name != "pong" {
		t.Errorf("cycle = %+v", out.Cycles[0])
	}
}

func TestLoadPrompts(t *testing.T) {
	defs, err := loadPrompts()
	if err != nil {
		t.Fatalf("loadPrompts: %v", err)
	}
	if len(defs) == 0 {
		t.Fatal("no prompts embedded")
	}
	for _, def := range defs {
		if def.Description == "" {
			t.Errorf("%s has no description", def.Name)
		}
		if strings.HasPrefix(def.Body, "---") {
			t.Errorf("%s body still carries its frontmatter", def.Name)
		}
		if len(def.Arguments) == 0 {
			t.Errorf("%s declares no arguments", def.Name)
		}
	}
}

func TestPromptHandler_SubstitutesArguments(t *testing.T) {
	def := promptDef{
		Name: "why",
		promptFrontmatter: promptFrontmatter{
			Description: "why",
			Arguments: []promptArgument{
				{Name: "node", Required: true},
				{Name: "paths", Default: "."},
			},
		},
		Body: "node {{node}} under {{paths}}",
	}

	result, err := makePromptHandler(def)(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "why", Arguments: map[string]string{"node": "11"}},
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(result.Messages) != 1 || result.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", result.Messages)
	}
	text := result.Messages[0].Content.(*mcp.TextContent).Text
	if text != "node 11 under ." {
		t.Errorf("text = %q", text)
	}
}

func TestParseFrontmatter(t *testing.T) {
	fm, body := parseFrontmatter([]byte("---\ndescription: d\n---\nbody\n"))
	if fm.Description != "d" || body != "body\n" {
		t.Errorf("got (%q, %q)", fm.Description, body)
	}

	fm, body = parseFrontmatter([]byte("plain text"))
	if fm.Description != "" || body != "plain text" {
		t.Errorf("got (%q, %q)", fm.Description, body)
	}

	fm, body = parseFrontmatter([]byte("---\nunterminated"))
	if fm.Description != "" || body != "---\nunterminated" {
		t.Errorf("got (%q, %q)", fm.Description, body)
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("v1.2.3")
	if err != nil {
		t.Fatalf("GenerateManifest: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Version != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", m.Version)
	}
	if len(m.Packages) != 1 || m.Packages[0].Identifier != "ghcr.io/panbanda/reachable:1.2.3" {
		t.Errorf("packages = %+v", m.Packages)
	}
	if m.Packages[0].Transport.Type != "stdio" {
		t.Errorf("transport = %q, want stdio", m.Packages[0].Transport.Type)
	}

	data, err = GenerateManifest("")
	if err != nil {
		t.Fatalf("GenerateManifest: %v", err)
	}
	if !strings.Contains(string(data), `"version": "0.0.0"`) {
		t.Errorf("empty version should render as 0.0.0: %s", data)
	}
}
