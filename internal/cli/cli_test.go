package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/yaklabco/docmodel/internal/cli"
	"github.com/yaklabco/docmodel/pkg/config"
	"github.com/yaklabco/docmodel/pkg/fsutil"
	"github.com/yaklabco/docmodel/pkg/schema/basic"
)

const helloDoc = `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello world"}]}]}`

type result struct {
	stdout string
	stderr string
	err    error
}

func (r result) code() int {
	return cli.ExitCode(r.err)
}

// run executes the root command isolated from any config on the machine.
func run(t *testing.T, stdin io.Reader, args ...string) result {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append([]string{"--no-config", "--color", "never"}, args...))

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{})
	assert.Equal(t, "docmodel", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"check", "replace", "resolve", "diff", "schema", "import", "init", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
		assert.NotEmpty(t, sub.GroupID, "%s has a help group", name)
	}

	for _, flag := range []string{"debug", "log-level", "config", "no-config", "schema", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "global flag %s", flag)
	}
}

func TestHelp(t *testing.T) {
	t.Parallel()

	res := run(t, nil, "--help")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Document Commands:")
	assert.Contains(t, res.stdout, "Setup Commands:")
	assert.Contains(t, res.stdout, "replace")
	assert.Contains(t, res.stdout, "--no-config")

	res = run(t, nil, "replace", "--help")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "docmodel replace FILE")
	assert.Contains(t, res.stdout, "--slice")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	res := run(t, nil, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "docmodel")
	assert.Contains(t, res.stdout, "version=1.2.3")
	assert.Contains(t, res.stdout, "commit=abc123")

	res = run(t, nil, "version", "--short")
	require.NoError(t, res.err)
	assert.Equal(t, "1.2.3\n", res.stdout)
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	t.Parallel()

	res := run(t, nil, "check", "--bogus", "x.json")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitInvalidUsage, res.code())
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := writeFile(t, dir, "valid.json", helloDoc)
	empty := writeFile(t, dir, "empty.json", `{"type":"doc"}`)
	inlineInDoc := writeFile(t, dir, "inline.json", `{"type":"doc","content":[{"type":"text","text":"x"}]}`)
	malformed := writeFile(t, dir, "malformed.json", `{"type":`)
	unknown := writeFile(t, dir, "unknown.json", `{"type":"doc","content":[{"type":"widget"}]}`)

	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{name: "valid", args: []string{valid}, code: cli.ExitSuccess, stdout: "ok: " + valid + ": valid doc document of size 13"},
		{name: "empty doc", args: []string{empty}, code: cli.ExitInvalidContent, stderr: "error: " + empty},
		{name: "inline content in doc", args: []string{inlineInDoc}, code: cli.ExitInvalidContent, stderr: "invalid content"},
		{name: "malformed JSON", args: []string{malformed}, code: cli.ExitInvalidContent, stderr: "invalid JSON"},
		{name: "unknown type", args: []string{unknown}, code: cli.ExitInvalidContent, stderr: "widget"},
		{name: "missing file", args: []string{filepath.Join(dir, "nope.json")}, code: cli.ExitIOError, stderr: "nope.json"},
		{name: "first failure wins", args: []string{valid, empty, filepath.Join(dir, "nope.json")}, code: cli.ExitInvalidContent, stdout: "valid doc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := run(t, nil, append([]string{"check"}, tt.args...)...)
			assert.Equal(t, tt.code, res.code(), "stderr: %s", res.stderr)
			if tt.code != cli.ExitSuccess {
				assert.True(t, cli.IsReported(res.err))
			}
			assert.Contains(t, res.stdout, tt.stdout)
			assert.Contains(t, res.stderr, tt.stderr)
		})
	}
}

func TestCheck_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := writeFile(t, dir, "a.json", helloDoc)
	nested := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	invalid := writeFile(t, nested, "b.json", `{"type":"doc"}`)
	fixtures := filepath.Join(dir, "fixtures")
	require.NoError(t, os.MkdirAll(fixtures, 0o750))
	excluded := writeFile(t, fixtures, "c.json", `{"type":`)
	writeFile(t, dir, "notes.txt", "plain text")

	res := run(t, nil, "check", "--jobs", "2", "--exclude", "fixtures", dir)
	assert.Equal(t, cli.ExitInvalidContent, res.code(), "stderr: %s", res.stderr)
	assert.Contains(t, res.stdout, "ok: "+valid+": valid doc document")
	assert.Contains(t, res.stderr, invalid)
	assert.NotContains(t, res.stderr, excluded)
	assert.NotContains(t, res.stdout, "notes.txt")

	assert.Contains(t, res.stdout, "2 documents checked: 1 valid, 1 invalid")

	res = run(t, nil, "check", "--ext", ".txt", "--exclude", "*.txt", dir)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "no documents found")
}

func TestCheck_JSONReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	valid := writeFile(t, dir, "a.json", helloDoc)
	invalid := writeFile(t, dir, "b.json", `{"type":`)

	res := run(t, nil, "check", "--format", "json", "--compact", valid, invalid)
	assert.Equal(t, cli.ExitInvalidContent, res.code())

	var report struct {
		Files []struct {
			Path  string `json:"path"`
			Valid bool   `json:"valid"`
			Size  int    `json:"size"`
			Kind  string `json:"kind"`
		} `json:"files"`
		Summary struct {
			FilesChecked int `json:"filesChecked"`
			FilesFailed  int `json:"filesFailed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report), res.stdout)
	require.Len(t, report.Files, 2)
	assert.Equal(t, valid, report.Files[0].Path)
	assert.True(t, report.Files[0].Valid)
	assert.Equal(t, 13, report.Files[0].Size)
	assert.Equal(t, invalid, report.Files[1].Path)
	assert.Equal(t, "json", report.Files[1].Kind)
	assert.Equal(t, 2, report.Summary.FilesChecked)
	assert.Equal(t, 1, report.Summary.FilesFailed)

	res = run(t, nil, "check", "--format", "xml", valid)
	assert.Equal(t, cli.ExitInvalidUsage, res.code())
}

func TestCheck_Stdin(t *testing.T) {
	t.Parallel()

	res := run(t, strings.NewReader(helloDoc), "check", "-")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ok: -: valid doc document")
}

func TestReplace_Print(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", helloDoc)
	sliceFile := writeFile(t, dir, "slice.json", `{"content":[{"type":"horizontal_rule"}]}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "delete range",
			args: []string{"--from", "6", "--to", "12"},
			want: `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}`,
		},
		{
			name: "insert literal slice",
			args: []string{"--from", "1", "--slice", `{"content":[{"type":"text","text":"Oh, "}]}`},
			want: `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Oh, hello world"}]}]}`,
		},
		{
			name: "insert slice from file",
			args: []string{"--from", "13", "--to", "13", "--slice", "@" + sliceFile},
			want: `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello world"}]},{"type":"horizontal_rule"}]}`,
		},
		{
			name: "replace with marked text",
			args: []string{"--from", "7", "--to", "12", "--slice", `{"content":[{"type":"text","text":"there","marks":[{"type":"strong"}]}]}`},
			want: `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello "},{"type":"text","marks":[{"type":"strong"}],"text":"there"}]}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := run(t, nil, append([]string{"replace", path}, tt.args...)...)
			require.NoError(t, res.err, res.stderr)
			assert.JSONEq(t, tt.want, res.stdout)
		})
	}

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, helloDoc, string(original), "printing leaves the file alone")
}

func TestReplace_Rejected(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "doc.json", helloDoc)

	res := run(t, nil, "replace", path, "--from", "0", "--to", "13")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitEditRejected, res.code())
	assert.True(t, cli.IsReported(res.err))
	assert.Contains(t, res.stderr, "error: edit rejected")
	assert.Contains(t, res.stderr, "node: doc")
	assert.Empty(t, res.stdout)

	res = run(t, nil, "replace", path, "--from", "1", "--slice", `{"content":[{"type":"horizontal_rule"}]}`)
	assert.Equal(t, cli.ExitEditRejected, res.code())

	res = run(t, nil, "replace", path, "--from", "0", "--to", "99")
	assert.Equal(t, cli.ExitInvalidUsage, res.code())

	res = run(t, nil, "replace", path, "--slice", `{"content":[{"type":"blink"}]}`)
	assert.Equal(t, cli.ExitInvalidContent, res.code())

	res = run(t, nil, "replace", path, "--from", "10", "--to", "3", "--write")
	assert.Equal(t, cli.ExitInvalidUsage, res.code())
	unchanged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, helloDoc, string(unchanged))
}

func TestReplace_Write(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "doc.json", helloDoc)

	res := run(t, nil, "replace", path, "--from", "6", "--to", "12", "--write", "--backup")
	require.NoError(t, res.err, res.stderr)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "wrote document")

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}`, string(written))
	assert.True(t, strings.HasSuffix(string(written), "}\n"))

	backup, err := os.ReadFile(path + fsutil.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, helloDoc, string(backup))

	res = run(t, strings.NewReader(helloDoc), "replace", "-", "--write")
	assert.Equal(t, cli.ExitInvalidUsage, res.code())

	res = run(t, nil, "replace", path, "--backup")
	assert.Equal(t, cli.ExitInvalidUsage, res.code())
}

func TestReplace_DocPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	envelope := `{"meta":{"rev":7},"body":` + helloDoc + `}`
	path := writeFile(t, dir, "page.json", envelope)

	res := run(t, nil, "replace", path, "--doc-path", "body", "--from", "6", "--to", "12")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, int64(7), gjson.Get(res.stdout, "meta.rev").Int())
	assert.Equal(t, "hello", gjson.Get(res.stdout, "body.content.0.content.0.text").String())

	res = run(t, nil, "replace", path, "--doc-path", "body", "--from", "1", "--slice", `{"content":[{"type":"text","text":">"}]}`, "--write")
	require.NoError(t, res.err, res.stderr)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), gjson.GetBytes(written, "meta.rev").Int())
	assert.Equal(t, ">hello world", gjson.GetBytes(written, "body.content.0.content.0.text").String())

	res = run(t, nil, "replace", path, "--doc-path", "missing", "--from", "1")
	assert.Equal(t, cli.ExitInvalidContent, res.code())
	assert.Contains(t, res.err.Error(), "document path not found")
}

func TestResolve(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "doc.json", helloDoc)

	res := run(t, nil, "resolve", path, "3", "0")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "position: 3 (paragraph_0:2)")
	assert.Contains(t, res.stdout, "depth: 1")
	assert.Contains(t, res.stdout, "  hello world\n    ^")
	assert.Contains(t, res.stdout, "position: 0 (:0)")

	res = run(t, nil, "resolve", path, "14")
	assert.Equal(t, cli.ExitInvalidUsage, res.code())

	res = run(t, nil, "resolve", path, "three")
	assert.Equal(t, cli.ExitInvalidUsage, res.code())
}

func TestDiff(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", helloDoc)
	same := writeFile(t, dir, "same.json", helloDoc)
	b := writeFile(t, dir, "b.json", strings.Replace(helloDoc, "world", "there", 1))

	res := run(t, nil, "diff", a, same)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ok: documents are identical")

	res = run(t, nil, "diff", a, b)
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitFailure, res.code())
	assert.True(t, cli.IsReported(res.err))
	assert.Contains(t, res.stdout, "start: 7\n")
	assert.Contains(t, res.stdout, "end: a=12 b=12\n")
	assert.Contains(t, res.stdout, "- world\n")
	assert.Contains(t, res.stdout, "+ there\n")
}

func TestSchema(t *testing.T) {
	t.Parallel()

	res := run(t, nil, "schema")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "NODES\n")
	assert.Contains(t, res.stdout, "MARKS\n")
	assert.Contains(t, res.stdout, "block+")
	assert.Contains(t, res.stdout, "non-inclusive")

	res = run(t, nil, "schema", "--automaton", "list_item")
	require.NoError(t, res.err, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "list_item paragraph block*\n"), "got %q", res.stdout)
	assert.Contains(t, res.stdout, "STATE")
	assert.Contains(t, res.stdout, "paragraph -> 1")

	res = run(t, nil, "schema", "--automaton", "widget")
	require.Error(t, res.err)

	res = run(t, nil, "schema", "--automaton", "--export")
	require.Error(t, res.err)
}

func TestSchema_ExportRoundTrip(t *testing.T) {
	t.Parallel()

	res := run(t, nil, "schema", "--export")
	require.NoError(t, res.err, res.stderr)

	def, err := config.ParseSchemaDef([]byte(res.stdout))
	require.NoError(t, err)
	schema, err := def.Compile()
	require.NoError(t, err)
	assert.Len(t, schema.Nodes(), len(basic.Schema().Nodes()))
	assert.Len(t, schema.Marks(), len(basic.Schema().Marks()))

	path := writeFile(t, t.TempDir(), "schema.yml", res.stdout)
	doc := writeFile(t, filepath.Dir(path), "doc.json", helloDoc)
	res = run(t, nil, "--schema", path, "check", doc)
	require.NoError(t, res.err, res.stderr)
}

func TestImport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	md := writeFile(t, dir, "README.md", "# Title\n\nHello *world*\n")
	want := `{"type":"doc","content":[
		{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Title"}]},
		{"type":"paragraph","content":[{"type":"text","text":"Hello "},{"type":"text","marks":[{"type":"em"}],"text":"world"}]}]}`

	res := run(t, nil, "import", md)
	require.NoError(t, res.err, res.stderr)
	assert.JSONEq(t, want, res.stdout)

	res = run(t, nil, "import", "--format", "tree", md)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "heading {level=1}")

	out := filepath.Join(dir, "doc.json")
	res = run(t, nil, "import", "-o", out, md)
	require.NoError(t, res.err, res.stderr)
	assert.Empty(t, res.stdout)
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(written))

	res = run(t, nil, "check", out)
	require.NoError(t, res.err, res.stderr)
}

func TestImport_Options(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	md := writeFile(t, dir, "code.md", "~~old~~\n\n```\npackage main\n```\n")

	res := run(t, nil, "import", "--flavor", "gfm", md)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "old", gjson.Get(res.stdout, "content.0.content.0.text").String())
	assert.Equal(t, "go", gjson.Get(res.stdout, "content.1.attrs.params").String())

	res = run(t, nil, "import", "--no-detect", md)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "~~old~~", gjson.Get(res.stdout, "content.0.content.0.text").String())
	assert.Empty(t, gjson.Get(res.stdout, "content.1.attrs.params").String())

	res = run(t, nil, "import", "--flavor", "pandoc", md)
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitConfigError, res.code())
}

func TestInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".docmodel.yml")

	res := run(t, nil, "init", "--output", cfgPath, "--with-schema")
	require.NoError(t, res.err, res.stderr)
	assert.FileExists(t, cfgPath)
	assert.FileExists(t, filepath.Join(dir, "schema.yml"))

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "schema: schema.yml")

	doc := writeFile(t, dir, "doc.json", helloDoc)
	res = run(t, nil, "--config", cfgPath, "check", doc)
	require.NoError(t, res.err, res.stderr)

	res = run(t, nil, "init", "--output", cfgPath)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "already exists")

	res = run(t, nil, "init", "--output", cfgPath, "--full", "--force")
	require.NoError(t, res.err, res.stderr)
	content, err = os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "resolve_cache_size: 12")
}

func TestConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", helloDoc)
	badCfg := writeFile(t, dir, "bad.yml", "output:\n  format: xml\n")
	badSchema := writeFile(t, dir, "schema.yml", "nodes:\n  - name: doc\n    content: \"paragraph+\"\n")

	res := run(t, nil, "--config", badCfg, "check", doc)
	assert.Equal(t, cli.ExitConfigError, res.code())

	res = run(t, nil, "--schema", badSchema, "check", doc)
	assert.Equal(t, cli.ExitConfigError, res.code())
}
