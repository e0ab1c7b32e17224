package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Time{} }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoaderLoad(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[editor]
windowLines = 40
scrollStep = 0.05

[logging]
level = "debug"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := GetPath(config, "editor.windowLines"); v != int64(40) {
		t.Errorf("windowLines = %v (%T), want 40", v, v)
	}
	if v, _ := GetPath(config, "editor.scrollStep"); v != 0.05 {
		t.Errorf("scrollStep = %v", v)
	}
	if v, _ := GetPath(config, "logging.level"); v != "debug" {
		t.Errorf("logging.level = %v", v)
	}
}

func TestTOMLLoaderMissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	if err != nil || config != nil {
		t.Errorf("Load(missing) = %v, %v, want nil, nil", config, err)
	}
}

func TestTOMLLoaderParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[editor\nwindowLines = 1\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" || perr.Line == 0 {
		t.Errorf("ParseError = %+v", perr)
	}
}

func TestYAMLLoader(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.yaml", `
editor:
  windowLines: 25
ui:
  markerColor: "#0000ff"
`)
	config, err := ForPath(memfs, "/config.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := GetPath(config, "editor.windowLines"); v != 25 {
		t.Errorf("windowLines = %v (%T), want 25", v, v)
	}
	if v, _ := GetPath(config, "ui.markerColor"); v != "#0000ff" {
		t.Errorf("markerColor = %v", v)
	}

	memfs.AddFile("/empty.yml", "")
	config, err = ForPath(memfs, "/empty.yml").Load()
	if err != nil || len(config) != 0 {
		t.Errorf("Load(empty) = %v, %v", config, err)
	}

	memfs.AddFile("/bad.yaml", "editor: [unclosed\n")
	if _, err := ForPath(memfs, "/bad.yaml").Load(); err == nil {
		t.Error("Load(bad yaml) succeeded")
	}
}

func TestLoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[save]\natomic = false\n"))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := GetPath(config, "save.atomic"); v != false {
		t.Errorf("save.atomic = %v", v)
	}

	config, err = NewYAMLLoader("").LoadFromReader(strings.NewReader("save:\n  atomic: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := GetPath(config, "save.atomic"); v != true {
		t.Errorf("save.atomic = %v", v)
	}
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader("CASTEDIT_")
	l.environ = func() []string {
		return []string{
			"CASTEDIT_EDITOR_WINDOW_LINES=30",
			"CASTEDIT_SAVE_ATOMIC=off",
			"CASTEDIT_SCRIPT_TIMEOUT=1500ms",
			"CASTEDIT_LOGGING_FILE=",
			"CASTEDIT_UI_OUTPUT_COLOR=#00ff00",
			"CASTEDIT_=ignored",
			"OTHER_VAR=1",
			"MY_LEVEL=warn",
		}
	}
	l.AddMapping("MY_LEVEL", "logging.level")

	config, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"editor.windowLines", int64(30)},
		{"save.atomic", false},
		{"script.timeout", "1.5s"},
		{"logging.file", ""},
		{"ui.outputColor", "#00ff00"},
		{"logging.level", "warn"},
	}
	for _, tt := range tests {
		got, ok := GetPath(config, tt.path)
		if !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
		}
	}
	if _, ok := config["other"]; ok {
		t.Error("unprefixed variable was loaded")
	}
	if len(config) != 5 {
		t.Errorf("sections = %v", config)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"No", false},
		{"1", int64(1)},
		{"0", int64(0)},
		{"2.5", 2.5},
		{"10s", "10s"},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
	if v, ok := parseValue(`{"a":1}`).(map[string]any); !ok || v["a"] != 1.0 {
		t.Errorf("parseValue(json) = %v", v)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"editor": map[string]any{"windowLines": 10, "scrollStep": 0.1},
		"save":   map[string]any{"atomic": true},
	}
	src := map[string]any{
		"editor": map[string]any{"windowLines": 20},
		"save":   false,
		"ui":     map[string]any{"markerColor": "#000000"},
	}
	out := DeepMerge(dst, src)

	if v, _ := GetPath(out, "editor.windowLines"); v != 20 {
		t.Errorf("windowLines = %v", v)
	}
	if v, _ := GetPath(out, "editor.scrollStep"); v != 0.1 {
		t.Errorf("scrollStep = %v", v)
	}
	if out["save"] != false {
		t.Errorf("save = %v", out["save"])
	}

	src["ui"].(map[string]any)["markerColor"] = "#ffffff"
	if v, _ := GetPath(out, "ui.markerColor"); v != "#000000" {
		t.Error("merged map aliases the source map")
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": []any{1, map[string]any{"c": 2}}}}
	dst := Clone(src)
	dst["a"].(map[string]any)["b"].([]any)[1].(map[string]any)["c"] = 3
	if v := src["a"].(map[string]any)["b"].([]any)[1].(map[string]any)["c"]; v != 2 {
		t.Errorf("Clone shares nested values: %v", v)
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) != nil")
	}
}

func TestSetGetPath(t *testing.T) {
	m := map[string]any{"editor": "scalar"}
	SetPath(m, "editor.windowLines", 5)
	if v, ok := GetPath(m, "editor.windowLines"); !ok || v != 5 {
		t.Errorf("GetPath = %v, %v", v, ok)
	}
	if _, ok := GetPath(m, "editor.windowLines.deeper"); ok {
		t.Error("GetPath through scalar succeeded")
	}
	if _, ok := GetPath(m, "missing"); ok {
		t.Error("GetPath(missing) succeeded")
	}
}
