package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

const testCast = `{"version": 2, "width": 80, "height": 24, "timestamp": 1700000000, "title": "demo", "env": {"SHELL": "/bin/zsh", "TERM": "xterm"}}
[1.0, "o", "$ make build\r\n"]
[2.0, "i", "two"]
[3.0, "o", "build ok\r\n"]
`

func setup(t *testing.T) (dir, castPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	castPath = filepath.Join(dir, "demo.cast")
	if err := os.WriteFile(castPath, []byte(testCast), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, castPath
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestInfo(t *testing.T) {
	_, path := setup(t)
	code, out, errOut := runCLI(t, "info", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{
		"title:       demo",
		"events:      3",
		"terminal:    80x24",
		"recorded:    2023-11-14T22:13:20Z",
		"env:         SHELL=/bin/zsh TERM=xterm",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestInfoPretty(t *testing.T) {
	_, path := setup(t)
	code, out, errOut := runCLI(t, "info", "--pretty", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "\n  \"title\": \"demo\"") {
		t.Errorf("pretty output =\n%s", out)
	}
	if gjson.Get(out, "env.SHELL").String() != "/bin/zsh" {
		t.Errorf("pretty output lost env: %s", out)
	}
}

func TestCat(t *testing.T) {
	_, path := setup(t)

	code, out, errOut := runCLI(t, "cat", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 3 || lines[1] != `[2, "i", "two"]` {
		t.Errorf("cat output =\n%s", out)
	}

	code, out, _ = runCLI(t, "cat", "--json", "-n", "1", path)
	if code != 0 {
		t.Fatalf("cat --json exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("cat -n 1 printed %d lines", len(lines))
	}
	if text := gjson.Get(lines[0], "text").String(); text != "$ make build\r\n" {
		t.Errorf("text = %q", text)
	}
}

func TestCatConfigFile(t *testing.T) {
	dir, path := setup(t)
	cfg := filepath.Join(dir, "castedit.toml")
	if err := os.WriteFile(cfg, []byte("[editor]\nwindowLines = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runCLI(t, "--config", cfg, "cat", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("cat printed %d lines, want 2 from config", n)
	}
}

func TestGrep(t *testing.T) {
	_, path := setup(t)

	code, out, _ := runCLI(t, "grep", path, "build")
	if code != 0 || strings.Count(out, "\n") != 2 {
		t.Errorf("grep build: exit %d output\n%s", code, out)
	}

	code, out, _ = runCLI(t, "grep", "--code", "i", path, "*")
	if code != 0 || out != "[2, \"i\", \"two\"]\n" {
		t.Errorf("grep --code i: exit %d output %q", code, out)
	}

	code, out, errOut := runCLI(t, "grep", path, "missing")
	if code != 1 || out != "" || errOut != "" {
		t.Errorf("grep with no match: exit %d out %q err %q", code, out, errOut)
	}
}

func TestScript(t *testing.T) {
	dir, path := setup(t)
	lua := filepath.Join(dir, "drop-input.lua")
	src := `
for _, ev in ipairs(cast.lines(0, 100)) do
    if ev.code == "i" then
        cast.delete(cast.order(ev.offset, ev.time), ev)
    end
end
print("done")
`
	if err := os.WriteFile(lua, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, "script", "--dry-run", path, lua)
	if code != 0 {
		t.Fatalf("dry run exit %d: %s", code, errOut)
	}
	if out != "done\n" {
		t.Errorf("script output = %q", out)
	}
	if data, _ := os.ReadFile(path); string(data) != testCast {
		t.Error("dry run modified the source")
	}

	dest := filepath.Join(dir, "out.cast")
	if code, _, errOut := runCLI(t, "script", "-o", dest, path, lua); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"two"`) || !strings.Contains(string(data), "build ok") {
		t.Errorf("saved file =\n%s", data)
	}
}

func TestScriptError(t *testing.T) {
	dir, path := setup(t)
	lua := filepath.Join(dir, "bad.lua")
	if err := os.WriteFile(lua, []byte(`os.exit(1)`), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runCLI(t, "script", path, lua)
	if code != 1 || !strings.HasPrefix(errOut, "Error: ") {
		t.Errorf("exit %d stderr %q", code, errOut)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, path := setup(t)
	code, _, errOut := runCLI(t, "--log-level", "loud", "info", path)
	if code != 1 || !strings.Contains(errOut, "invalid configuration") {
		t.Errorf("exit %d stderr %q", code, errOut)
	}
}

func TestMissingFile(t *testing.T) {
	dir, _ := setup(t)
	code, _, errOut := runCLI(t, "cat", filepath.Join(dir, "nope.cast"))
	if code != 1 || errOut == "" {
		t.Errorf("exit %d stderr %q", code, errOut)
	}
}
