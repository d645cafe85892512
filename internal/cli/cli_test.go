package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/config"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/document"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/core/serialize"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

const editorGraph = `{
  "ROOT":  {"type": {"resolvedName": "Container"}, "nodes": ["page1"]},
  "page1": {"type": {"resolvedName": "Page"}, "nodes": ["n1"], "parent": "ROOT"},
  "n1":    {"type": {"resolvedName": "Text"}, "props": {"text": "Saved"}, "nodes": [], "parent": "page1"}
}`

const cyclicGraph = `{
  "ROOT":  {"type": "Container", "nodes": ["page1"]},
  "page1": {"type": "Page", "nodes": ["a"]},
  "a":     {"type": "Container", "nodes": ["b"]},
  "b":     {"type": "Container", "nodes": ["a"]}
}`

const twoPages = `{"version":1,"pages":[{"id":"home","children":["a"]},{"id":"about","children":["b"]}],"nodes":{"a":{"type":"Text","props":{"text":"Home"},"children":[]},"b":{"type":"Text","props":{"text":"About us"},"children":[]}}}`

// execute runs the root command with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(configEnv, "")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSerializeCommand(t *testing.T) {
	out, err := execute(t, "serialize", writeFile(t, "editor.json", editorGraph))
	if err != nil {
		t.Fatalf("serialize error = %v", err)
	}
	doc, err := document.Unmarshal([]byte(out))
	if err != nil {
		t.Fatalf("output is not a document: %v\n%s", err, out)
	}
	if len(doc.Pages) != 1 || doc.Nodes["n1"].Props.StringOr("text", "") != "Saved" {
		t.Errorf("serialized document = %+v", doc)
	}
}

func TestSerializeCommandStrictness(t *testing.T) {
	path := writeFile(t, "cyclic.json", cyclicGraph)

	if _, err := execute(t, "serialize", path); !errors.Is(err, errors.ErrCodeCorruptGraph) {
		t.Errorf("strict serialize error = %v, want CORRUPT_GRAPH", err)
	}
	out, err := execute(t, "serialize", "--lenient", path)
	if err != nil {
		t.Fatalf("lenient serialize error = %v", err)
	}
	if _, err := document.Unmarshal([]byte(out)); err != nil {
		t.Errorf("lenient output is not a document: %v", err)
	}
}

func TestSerializeCommandOutputFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out", "doc.json")
	out, err := execute(t, "serialize", "-o", dest, writeFile(t, "editor.json", editorGraph))
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want nothing with -o", out)
	}
	if _, err := document.ReadFile(dest); err != nil {
		t.Errorf("ReadFile(%s) error = %v", dest, err)
	}
}

func TestDeserializeCommand(t *testing.T) {
	out, err := execute(t, "deserialize", "--page", "1", writeFile(t, "doc.json", twoPages))
	if err != nil {
		t.Fatalf("deserialize error = %v", err)
	}
	if serialize.Detect([]byte(out)) != serialize.ShapeEditorGraph {
		t.Fatalf("output is not an editor graph:\n%s", out)
	}
	if !strings.Contains(out, "About us") || strings.Contains(out, `"Home"`) {
		t.Errorf("graph of page 1 =\n%s", out)
	}

	if _, err := execute(t, "deserialize", "--page", "5", writeFile(t, "doc.json", twoPages)); !errors.Is(err, errors.ErrCodePageNotFound) {
		t.Errorf("deserialize --page 5 error = %v, want PAGE_NOT_FOUND", err)
	}
}

func TestDeserializeFreshIDs(t *testing.T) {
	out, err := execute(t, "deserialize", "--fresh-ids", writeFile(t, "doc.json", twoPages))
	if err != nil {
		t.Fatal(err)
	}
	var graph map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &graph); err != nil {
		t.Fatal(err)
	}
	if _, kept := graph["a"]; kept {
		t.Errorf("node id a survived --fresh-ids: %s", out)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		shape    serialize.Shape
		problems int
		contains string
	}{
		{"valid document", twoPages, serialize.ShapeDocument, 0, ""},
		{"valid graph", editorGraph, serialize.ShapeEditorGraph, 0, ""},
		{
			name:     "broken document",
			input:    `{"version":1,"pages":[{"id":"p","children":["x","gone"]},{"id":"p","children":[]}],"nodes":{"x":{"type":"","children":["x"]}}}`,
			shape:    serialize.ShapeDocument,
			problems: 4,
			contains: "more than once",
		},
		{"cyclic graph", cyclicGraph, serialize.ShapeEditorGraph, 1, ""},
		{"unsupported version", `{"version":9,"pages":[],"nodes":{}}`, serialize.ShapeDocument, 1, "not supported"},
		{"not json", `<html>`, serialize.ShapeUnknown, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := check([]byte(tt.input))
			if v.shape != tt.shape {
				t.Errorf("shape = %s, want %s", v.shape, tt.shape)
			}
			if len(v.problems) != tt.problems {
				t.Errorf("problems = %q, want %d", v.problems, tt.problems)
			}
			if tt.contains != "" && !strings.Contains(strings.Join(v.problems, "\n"), tt.contains) {
				t.Errorf("problems %q do not mention %q", v.problems, tt.contains)
			}
		})
	}
}

func TestValidateCommandFails(t *testing.T) {
	_, err := execute(t, "validate", writeFile(t, "doc.json", `{"version":1,"pages":[{"id":"","children":[]}],"nodes":{}}`))
	if err == nil || !strings.Contains(err.Error(), "1 problem found") {
		t.Errorf("validate error = %v", err)
	}
}

func TestProblemTable(t *testing.T) {
	got := problemTable([]string{`page id "p" is used more than once`, `node "x" has an empty type`})
	for _, want := range []string{"Problem", "used more than once", "empty type", "2"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	path := writeFile(t, "doc.json", twoPages)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "fragment",
			args:    []string{"--fragment"},
			want:    []string{`<main class="site-page" data-page-id="home"><p class="block block-text">Home</p></main>`},
			notWant: []string{"<!DOCTYPE"},
		},
		{
			name: "shell with title",
			args: []string{"--title", "Shop"},
			want: []string{"<!DOCTYPE html>", "<title>Shop</title>"},
		},
		{
			name: "second page embedded",
			args: []string{"--page", "1", "--mode", "embedded", "--fragment"},
			want: []string{`data-page-id="about"`, `data-node-id="b"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"render", path}, tt.args...)...)
			if err != nil {
				t.Fatalf("render error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q", w)
				}
			}
		})
	}
}

func TestRenderCommandErrors(t *testing.T) {
	path := writeFile(t, "doc.json", twoPages)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad mode", []string{"render", path, "--mode", "print"}, errors.ErrCodeInvalidRenderOption},
		{"missing page", []string{"render", path, "--page", "7"}, errors.ErrCodePageNotFound},
		{"bad thumbnail format", []string{"thumbnail", path, "-f", "gif"}, errors.ErrCodeInvalidRenderOption},
		{"bad outline format", []string{"outline", path, "-f", "pdf"}, errors.ErrCodeInvalidRenderOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := execute(t, "render"); err == nil {
		t.Error("render without input should fail")
	}
	if _, err := execute(t, "render", path, "--project", "shop"); err == nil {
		t.Error("render with file and --project should fail")
	}
	if _, err := execute(t, "render", "--project", "shop", "--watch"); err == nil {
		t.Error("render --watch without a file should fail")
	}
}

func TestRenderLegacyContent(t *testing.T) {
	out, err := execute(t, "render", "--fragment", writeFile(t, "editor.json", editorGraph))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<p class="block block-text">Saved</p>`) {
		t.Errorf("render of editor graph = %s", out)
	}
}

func TestThumbnailCommand(t *testing.T) {
	path := writeFile(t, "doc.json", twoPages)

	out, err := execute(t, "thumbnail", path, "-f", "json")
	if err != nil {
		t.Fatal(err)
	}
	var p struct {
		Placeholder bool   `json:"placeholder"`
		PageID      string `json:"page_id"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("thumbnail json: %v\n%s", err, out)
	}
	if p.Placeholder || p.PageID != "home" {
		t.Errorf("preview = %+v", p)
	}

	svg, err := execute(t, "thumbnail", path, "--width", "320", "--height", "200")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, "<svg") || !strings.Contains(svg, "Home") {
		t.Errorf("thumbnail svg = %.120s", svg)
	}
}

func TestThumbnailPlaceholder(t *testing.T) {
	out, err := execute(t, "thumbnail", "-f", "json", writeFile(t, "junk.json", `{"foo":1}`))
	if err != nil {
		t.Fatalf("thumbnail of unusable content should not fail: %v", err)
	}
	if !strings.Contains(out, `"placeholder": true`) {
		t.Errorf("preview = %s", out)
	}
}

func TestOutlineDOT(t *testing.T) {
	out, err := execute(t, "outline", "-f", "dot", "--detailed", writeFile(t, "doc.json", twoPages))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph G {") || !strings.Contains(out, "Text") {
		t.Errorf("outline = %s", out)
	}
}

func TestDraftCommands(t *testing.T) {
	store := t.TempDir()
	draft := func(args ...string) (string, error) {
		return execute(t, append([]string{"--storage", config.StorageFile, "--storage-path", store, "draft"}, args...)...)
	}

	if _, err := draft("get", "shop"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("get before save error = %v, want NOT_FOUND", err)
	}
	if _, err := draft("save", "shop", writeFile(t, "editor.json", editorGraph)); err != nil {
		t.Fatalf("save error = %v", err)
	}
	second := strings.NewReplacer("page1", "page2", "n1", "n2").Replace(editorGraph)
	if _, err := draft("save", "--page", "1", "shop", writeFile(t, "editor.json", second)); err != nil {
		t.Fatalf("save appended page error = %v", err)
	}
	if _, err := draft("save", "shop", writeFile(t, "cyclic.json", cyclicGraph)); !errors.Is(err, errors.ErrCodeCorruptGraph) {
		t.Errorf("save of cyclic graph error = %v, want CORRUPT_GRAPH", err)
	}

	out, err := draft("get", "shop")
	if err != nil {
		t.Fatal(err)
	}
	doc, err := document.Unmarshal([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 2 {
		t.Errorf("pages = %d, want 2", len(doc.Pages))
	}

	graph, err := draft("editor", "--page", "1", "shop")
	if err != nil {
		t.Fatal(err)
	}
	if serialize.Detect([]byte(graph)) != serialize.ShapeEditorGraph {
		t.Errorf("editor output =\n%s", graph)
	}

	if _, err := draft("put", "blog", writeFile(t, "doc.json", twoPages)); err != nil {
		t.Fatalf("put error = %v", err)
	}
	if _, err := draft("put", "bad", writeFile(t, "doc.json", `{"version":1,"pages":[{"id":"","children":[]}],"nodes":{}}`)); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("put invalid error = %v, want INVALID_DOCUMENT", err)
	}

	list, err := draft("list")
	if err != nil {
		t.Fatal(err)
	}
	if list != "blog\nshop\n" {
		t.Errorf("list = %q", list)
	}

	html, err := execute(t, "--storage", config.StorageFile, "--storage-path", store, "render", "--project", "blog", "--no-cache", "--fragment")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, ">Home<") {
		t.Errorf("render --project = %s", html)
	}

	if _, err := draft("delete", "blog"); err != nil {
		t.Fatal(err)
	}
	if list, _ := draft("list"); list != "shop\n" {
		t.Errorf("list after delete = %q", list)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "sitebuilder.toml", `
[storage]
backend = "sqlite"
path = "drafts.db"

[render]
title = "Shop"
`)
	t.Setenv(configEnv, path)

	c := New(io.Discard, LogInfo)
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != config.StorageSQLite || cfg.Render.Title != "Shop" {
		t.Errorf("config = %+v", cfg)
	}

	c.storage = config.StorageMemory
	cfg, err = c.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != config.StorageMemory {
		t.Errorf("--storage did not override config: %s", cfg.Storage.Backend)
	}

	c.storage = "ftp"
	if _, err := c.loadConfig(); err == nil {
		t.Error("unknown backend should fail validation")
	}
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, "sitebuilder.toml", "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")

	out, err := execute(t, "--config", cfgPath, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
	if _, err := execute(t, "--config", cfgPath, "cache", "clear"); err != nil {
		t.Errorf("cache clear error = %v", err)
	}
}

func TestBinaryOutput(t *testing.T) {
	tests := []struct {
		output, format string
		src            source
		want           string
	}{
		{"", "svg", source{file: "site/doc.json"}, ""},
		{"x.png", "png", source{file: "site/doc.json"}, "x.png"},
		{"", "png", source{file: "site/doc.json"}, filepath.Join("site", "doc.png")},
		{"", "png", source{project: "shop"}, "shop.png"},
	}
	for _, tt := range tests {
		id := tt.src.project
		if id == "" {
			id = localProject
		}
		if got := binaryOutput(tt.output, tt.format, tt.src, id); got != tt.want {
			t.Errorf("binaryOutput(%q, %q, %+v) = %q, want %q", tt.output, tt.format, tt.src, got, tt.want)
		}
	}
}

func TestPageListModel(t *testing.T) {
	doc, err := document.Unmarshal([]byte(twoPages))
	if err != nil {
		t.Fatal(err)
	}
	entries := pageEntries(doc)
	if len(entries) != 2 || entries[1].ID != "about" || entries[1].Nodes != 1 {
		t.Fatalf("pageEntries = %+v", entries)
	}

	var m tea.Model = NewPageListModel(entries)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown}) // already at the end
	if got := m.(PageListModel).Cursor; got != 1 {
		t.Fatalf("cursor = %d, want 1", got)
	}
	if view := m.View(); !strings.Contains(view, "about") || !strings.Contains(view, "Select Page") {
		t.Errorf("view =\n%s", view)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("enter should quit")
	}
	sel := m.(PageListModel).Selected
	if sel == nil || sel.Index != 1 {
		t.Errorf("selected = %+v, want page 1", sel)
	}
}

func TestPickPageSinglePage(t *testing.T) {
	doc, _ := document.Unmarshal([]byte(`{"version":1,"pages":[{"id":"only","children":[]}],"nodes":{}}`))
	idx, ok, err := pickPage(context.Background(), doc)
	if err != nil || !ok || idx != 0 {
		t.Errorf("pickPage(single) = %d, %v, %v", idx, ok, err)
	}
}

func TestWatchFile(t *testing.T) {
	path := writeFile(t, "doc.json", twoPages)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, func() error {
			changed <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(twoPages), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange not called after write")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("watchFile() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}
