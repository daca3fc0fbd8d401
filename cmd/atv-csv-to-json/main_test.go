package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogCSV = "id,name,description,uri,video,thumbnail,background,category,duration,TVSeriesUri,episodeNumber,type,seasonNumber,TVSeasonUri\n" +
	"m1,Big Movie,A movie,https://tv.example.com/m1,https://cdn.example.com/m1.mp4,https://cdn.example.com/m1.jpg,https://cdn.example.com/m1-bg.jpg,Films,PT1H30M,,,movie,,\n"

func setupTestInput(t *testing.T, content string) (dir, in string) {
	dir = t.TempDir()
	in = filepath.Join(dir, "catalog.csv")
	if err := os.WriteFile(in, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test input: %v", err)
	}
	return dir, in
}

func TestRun_WritesAPIDocument(t *testing.T) {
	dir, in := setupTestInput(t, catalogCSV)
	out := filepath.Join(dir, "api.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{in, out}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Equal(t, "JSON written to "+out+"\n", stdout.String())
	assert.Empty(t, stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc struct {
		Content []map[string]any `json:"content"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Content, 1)
	assert.Equal(t, "Big Movie", doc.Content[0]["name"])
}

func TestRun_WrongArgumentCount(t *testing.T) {
	for _, args := range [][]string{nil, {"only.csv"}, {"a", "b", "c"}} {
		var stdout, stderr bytes.Buffer
		code := run(args, &stdout, &stderr)

		assert.Equal(t, 2, code)
		assert.Contains(t, stderr.String(), "usage: atv-csv-to-json")
		assert.Empty(t, stdout.String())
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-x", "a", "b"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.NotEmpty(t, stderr.String())
}

func TestRun_OutputExists(t *testing.T) {
	dir, in := setupTestInput(t, catalogCSV)
	out := filepath.Join(dir, "api.json")
	require.NoError(t, os.WriteFile(out, []byte("keep"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{in, out}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "already exists; aborting")
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "api.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(dir, "missing.csv"), out}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "File doesn't exist")
	assert.NoFileExists(t, out)
}

func TestRun_MissingColumn(t *testing.T) {
	dir, in := setupTestInput(t, "id,name\n1,x\n")
	out := filepath.Join(dir, "api.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{in, out}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Missing key in input CSV: description")
	assert.NoFileExists(t, out)
}
