package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const catHat = "The cat and the hat. The end!"

func testRoot(t *testing.T) string {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte(catHat), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "b.txt"), []byte("the story"), 0o644))
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	cmd := newRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCount(t *testing.T) {
	root := testRoot(t)
	out, _, err := execute(t, "count", "--root", root, "--format", "csv", "--top", "2", "--verify", "a.txt", "docs/b.txt")
	require.NoError(t, err)
	require.Contains(t, out, "1,4,the")
	require.Contains(t, out, "2,1,and cat end hat story")
}

func TestCount_Table(t *testing.T) {
	root := testRoot(t)
	out, _, err := execute(t, "count", "--root", root, "--workers", "1", "a.txt")
	require.NoError(t, err)
	require.Contains(t, out, "word frequencies")
	require.Contains(t, out, "the")
}

func TestRank(t *testing.T) {
	root := testRoot(t)
	out, _, err := execute(t, "rank", "--root", root, "--format", "csv", "--word", "the", "--word", "dog,the", "a.txt")
	require.NoError(t, err)
	require.Contains(t, out, "the,3,5,1,1")
	require.Contains(t, out, "dog,0,-,-,-")

	_, _, err = execute(t, "rank", "--root", root, "a.txt")
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	root := testRoot(t)
	out, _, err := execute(t, "select", "--root", root, "--format", "csv", "--k", "1", "--k", "9", "a.txt")
	require.NoError(t, err)
	require.Contains(t, out, "1,and,1,3,the")
	require.Contains(t, out, "9,-,-,-,-")

	_, _, err = execute(t, "select", "--root", root, "a.txt")
	require.Error(t, err)
}

func TestDump(t *testing.T) {
	root := testRoot(t)
	out, _, err := execute(t, "dump", "--root", root, "--format", "csv", "--order", "in", "a.txt")
	require.NoError(t, err)
	require.Contains(t, out, "1,and,1")
	require.Contains(t, out, "5,the,3")

	_, _, err = execute(t, "dump", "--root", root, "--order", "zigzag", "a.txt")
	require.Error(t, err)
}

func TestErrors(t *testing.T) {
	root := testRoot(t)
	_, _, err := execute(t, "count", "--root", root, "missing.txt")
	require.Error(t, err)

	_, _, err = execute(t, "count", "--root", root, "../a.txt")
	require.Error(t, err)

	_, _, err = execute(t, "count", "--root", root)
	require.Error(t, err)

	_, _, err = execute(t, "count", "--root", root, "--format", "html", "a.txt")
	require.Error(t, err)

	_, _, err = execute(t, "count", "--root", root, "--log-encoder", "yaml", "a.txt")
	require.Error(t, err)
}

func TestConfigSources(t *testing.T) {
	root := testRoot(t)

	t.Setenv("XRANK_FORMAT", "csv")
	out, _, err := execute(t, "count", "--root", root, "a.txt")
	require.NoError(t, err)
	require.Contains(t, out, "1,3,the")

	cfgFile := filepath.Join(t.TempDir(), "xrank.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("format: markdown\nmin-len: 4\n"), 0o644))
	out, _, err = execute(t, "count", "--config", cfgFile, "--root", root, "a.txt", "docs/b.txt")
	require.NoError(t, err)
	// The env var beats the config file, min-len comes from the file.
	require.Contains(t, out, "1,1,story")
	require.NotContains(t, out, "the")

	t.Setenv("XRANK_FORMAT", "")
	_, _, err = execute(t, "count", "--config", filepath.Join(root, "none.yaml"), "--root", root, "a.txt")
	require.Error(t, err)
}

func TestMetrics(t *testing.T) {
	root := testRoot(t)
	_, errOut, err := execute(t, "count", "--root", root, "--metrics", "a.txt")
	require.NoError(t, err)
	require.Contains(t, errOut, "xrank/omap/words")
	require.Contains(t, errOut, "omap.insert.count")
}
