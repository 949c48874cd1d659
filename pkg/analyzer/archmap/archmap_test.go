package archmap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelantern/lantern/pkg/source"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestAnalyzeProject_SingleFileScenario(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "main.py"), "def main():\n    load()\n\ndef load():\n    pass\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)

	require.Len(t, m.Files, 1)
	file := m.Files[0]
	assert.Equal(t, "main.py", file.FilePath)
	require.Len(t, file.Functions, 2)

	main := file.Functions[0]
	load := file.Functions[1]
	assert.Equal(t, "main.py-main", main.FunctionName)
	assert.Equal(t, []string{"main.py-load"}, main.Calls)
	assert.Equal(t, 1, main.Complexity)
	assert.Empty(t, load.Calls)
	assert.Equal(t, 1, load.Complexity)

	assert.Equal(t, 1, m.TotalFiles)
	assert.Equal(t, 2, m.TotalFunctions)
	assert.Empty(t, m.Edges, "same-file calls are not cross-file edges")
}

func TestAnalyzeProject_BranchingComplexity(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "calc.py"), `def total(items):
    if not items:
        return 0
    s = 0
    for i in items:
        s += i
    return s
`)

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)
	require.Len(t, m.Files, 1)
	require.Len(t, m.Files[0].Functions, 1)
	assert.Equal(t, 3, m.Files[0].Functions[0].Complexity)
}

func TestAnalyzeProject_UnresolvedBuiltin(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "hello.py"), "def greet():\n    print(\"hi\")\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)
	require.Len(t, m.Files, 1)
	assert.Equal(t, []string{"print"}, m.Files[0].Functions[0].Calls)
}

func TestAnalyzeProject_JSXReportedAsJavaScript(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "App.jsx"), `function App() {
    return <div onClick={() => handleClick()}>hello</div>;
}
`)

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)

	require.Len(t, m.Files, 1)
	file := m.Files[0]
	assert.Equal(t, "App.jsx", file.FilePath)
	assert.Equal(t, "javascript", file.Language)
	require.NotEmpty(t, file.Functions)
	assert.Equal(t, "App.jsx-App", file.Functions[0].FunctionName)
}

func TestAnalyzeProject_CrossFileEdges(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "app.py"), "def start():\n    fetch()\n")
	writeFile(t, filepath.Join(tmpDir, "net.py"), "def fetch():\n    pass\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)

	require.Len(t, m.Edges, 1)
	assert.Equal(t, Edge{
		Source:     "app.py-start",
		Target:     "net.py-fetch",
		SourceFile: "app.py",
		TargetFile: "net.py",
	}, m.Edges[0])
}

func TestAnalyzeProject_ResolutionLocality(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.py"), "def helper():\n    pass\n\ndef work():\n    helper()\n")
	writeFile(t, filepath.Join(tmpDir, "b.py"), "def helper():\n    pass\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)

	work := m.Function("a.py-work")
	require.NotNil(t, work)
	assert.Equal(t, []string{"a.py-helper"}, work.Calls)
}

func TestAnalyzeProject_Determinism(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "z.py"), "def zfn():\n    afn()\n")
	writeFile(t, filepath.Join(tmpDir, "a.py"), "def afn():\n    pass\n")
	writeFile(t, filepath.Join(tmpDir, "sub", "m.js"), "function go() { run(); }\n")

	run := func() []byte {
		a := New(nil)
		defer a.Close()
		m, err := a.AnalyzeProject(context.Background(), tmpDir)
		require.NoError(t, err)
		data, err := m.JSON()
		require.NoError(t, err)
		return data
	}

	first := run()
	for range 3 {
		assert.Equal(t, string(first), string(run()), "repeated runs must be byte-identical")
	}
}

func TestAnalyzeProject_OrderInvariant(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "b.py"), "def one():\n    pass\n")
	writeFile(t, filepath.Join(tmpDir, "a.py"), "def two():\n    pass\n")
	writeFile(t, filepath.Join(tmpDir, "c.py"), "def late():\n    pass\n\ndef early_name():\n    pass\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)

	require.Len(t, m.Files, 3)
	assert.Equal(t, "a.py", m.Files[0].FilePath)
	assert.Equal(t, "b.py", m.Files[1].FilePath)
	assert.Equal(t, "c.py", m.Files[2].FilePath)

	fns := m.Files[2].Functions
	require.Len(t, fns, 2)
	assert.Less(t, fns[0].Line, fns[1].Line, "functions sorted by line, not name")
}

func TestAnalyzeProject_ExcludedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "keep.py"), "def keep():\n    pass\n")
	writeFile(t, filepath.Join(tmpDir, "node_modules", "lib.js"), "function lib() {}\n")
	writeFile(t, filepath.Join(tmpDir, "node_modules", "deep", "x.py"), "def x():\n    pass\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)

	require.Len(t, m.Files, 1)
	assert.Equal(t, "keep.py", m.Files[0].FilePath)
}

func TestAnalyzeProject_MissingRootFatal(t *testing.T) {
	a := New(nil)
	defer a.Close()

	_, err := a.AnalyzeProject(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestAnalyzeProject_EmptyFileSkipped(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "real.py"), "def f():\n    pass\n")
	writeFile(t, filepath.Join(tmpDir, "empty.py"), "   \n\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)

	require.Len(t, m.Files, 1)
	assert.Equal(t, "real.py", m.Files[0].FilePath)
	assert.Empty(t, m.FailedFiles, "empty files are skipped, not failed")
}

// failingSource fails reads for one path, standing in for unreadable or
// undecodable content.
type failingSource struct {
	inner   source.ContentSource
	failFor string
}

func (f *failingSource) Read(path string) ([]byte, error) {
	if filepath.Base(path) == f.failFor {
		return nil, errors.New("read error")
	}
	return f.inner.Read(path)
}

func TestAnalyze_FailureIsolation(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "good.py"), "def good():\n    pass\n")
	writeFile(t, filepath.Join(tmpDir, "bad.py"), "def bad():\n    pass\n")

	a := New(nil,
		WithRoot(tmpDir),
		WithSource(&failingSource{inner: source.NewFilesystem(), failFor: "bad.py"}),
	)
	defer a.Close()

	m, err := a.Analyze(context.Background(), []string{
		filepath.Join(tmpDir, "bad.py"),
		filepath.Join(tmpDir, "good.py"),
	})
	require.NoError(t, err, "per-file failures must never abort the run")

	require.Len(t, m.Files, 1)
	assert.Equal(t, "good.py", m.Files[0].FilePath)
	assert.Equal(t, []string{"bad.py"}, m.FailedFiles)
}

func TestAnalyzeProject_MalformedSyntaxContributesNoFunctions(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "ok.py"), "def ok():\n    pass\n")
	writeFile(t, filepath.Join(tmpDir, "broken.py"), "def (((\n@@@!!!\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)

	ok := m.File("ok.py")
	require.NotNil(t, ok)
	require.Len(t, ok.Functions, 1)

	if broken := m.File("broken.py"); broken != nil {
		assert.Empty(t, broken.Functions)
	}
}

func TestMap_SchemaValidation(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "app.py"), "def run():\n    helper()\n")
	writeFile(t, filepath.Join(tmpDir, "lib.py"), "def helper():\n    pass\n")

	a := New(nil)
	defer a.Close()

	m, err := a.AnalyzeProject(context.Background(), tmpDir)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
}

func TestValidateJSON_RejectsBrokenContract(t *testing.T) {
	err := ValidateJSON([]byte(`{"listOfFiles": "not an array"}`))
	require.Error(t, err)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := New(nil)
	defer a.Close()

	m, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Files)
	assert.Zero(t, m.TotalFiles)
	assert.Zero(t, m.TotalFunctions)

	data, err := m.JSON()
	require.NoError(t, err)
	require.NoError(t, ValidateJSON(data))
}

func TestMap_Lookups(t *testing.T) {
	m := &Map{Files: []FileRecord{
		fileWithFunctions("a.py", fn("a.py", "x", 1)),
	}}

	assert.NotNil(t, m.File("a.py"))
	assert.Nil(t, m.File("b.py"))
	assert.NotNil(t, m.Function("a.py-x"))
	assert.Nil(t, m.Function("a.py-y"))
}
