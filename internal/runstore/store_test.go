package runstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"headerflow/internal/core"
)

func TestSave_CreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	store := New(dir)

	path, err := store.Save(map[string]string{"k": "v"}, "out.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"k": "v"`)
}

func TestSave_DefaultFilename(t *testing.T) {
	store := New(t.TempDir())

	path, err := store.Save([]int{1, 2}, "")
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "headers_"))
	assert.True(t, strings.HasSuffix(base, ".json"))
}

func TestSaveResults_OrderedRecords(t *testing.T) {
	store := New(t.TempDir())

	results := map[string]*core.StepResult{
		"second": {Name: "second", Success: false, Error: "boom", ExecutionTime: 20 * time.Millisecond},
		"first": {
			Name:          "first",
			Success:       true,
			Data:          map[string]any{"ip": "1.2.3.4"},
			ExecutionTime: 150 * time.Millisecond,
			Response: &core.Response{
				StatusCode: 200,
				FinalURL:   "https://x.test/get",
			},
		},
	}

	path, err := store.SaveResults([]string{"first", "second"}, results, "run.json")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []StepRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, "first", records[0].Name)
	assert.Equal(t, 200, records[0].StatusCode)
	assert.Equal(t, "https://x.test/get", records[0].FinalURL)
	assert.Equal(t, "150ms", records[0].ExecutionTime)
	assert.Equal(t, "1.2.3.4", records[0].Data["ip"])

	assert.Equal(t, "second", records[1].Name)
	assert.False(t, records[1].Success)
	assert.Equal(t, "boom", records[1].Error)
	assert.Zero(t, records[1].StatusCode)
}

func TestSaveResults_SkipsUnknownNames(t *testing.T) {
	store := New(t.TempDir())

	path, err := store.SaveResults([]string{"ghost"}, map[string]*core.StepResult{}, "run.json")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []StepRecord
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Empty(t, records)
}
