package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/taurus/pkg/types"
)

// --- test helpers ---

const sampleCSV = `Sample ID,raw_material,PS_Temp,C_condition,Carbon,LiCap,DeliCap,FCE
1,S5,600,1,30.5,1800,1500,83.3
2,S5,650,2,31.0,1820,1530,84.1
3,DS7,600,1,28.2,1750,1450,82.9
4,OTC,650,2,,1700,1400,82.4
5,S5,600,1,29.9,1790,1490,83.2
`

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(types.DatasetConfig{DataDir: filepath.Join(dir, "data")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "taurus.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ingested(t *testing.T) *Store {
	t.Helper()
	store, dir := testStore(t)
	var buf strings.Builder
	_, err := store.Ingest(context.Background(), writeCSV(t, dir, sampleCSV), &buf)
	require.NoError(t, err)
	return store
}

// --- ingest ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testStore(t)
	for _, table := range []string{"columns", "samples", "sample_values", "ingest_status"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}
}

func TestIngest(t *testing.T) {
	store, dir := testStore(t)
	path := writeCSV(t, dir, sampleCSV)
	ctx := context.Background()

	var buf strings.Builder
	summary, err := store.Ingest(ctx, path, &buf)
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Rows: 5, Columns: 6}, summary)
	assert.Contains(t, buf.String(), "ingested")

	cols, err := store.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"PS_Temp", "C_condition", "Carbon", "LiCap", "DeliCap", "FCE"}, cols)

	rows, err := store.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "OTC", rows[3].RawMaterial)
	assert.Nil(t, rows[3].Values["Carbon"])
	require.NotNil(t, rows[0].Values["FCE"])
	assert.Equal(t, 83.3, *rows[0].Values["FCE"])
	_, hasID := rows[0].Values["Sample ID"]
	assert.False(t, hasID)
}

func TestIngestSkipsUnchangedFile(t *testing.T) {
	store, dir := testStore(t)
	path := writeCSV(t, dir, sampleCSV)
	ctx := context.Background()

	var buf strings.Builder
	_, err := store.Ingest(ctx, path, &buf)
	require.NoError(t, err)

	summary, err := store.Ingest(ctx, path, &buf)
	require.NoError(t, err)
	assert.True(t, summary.Skipped)
	assert.Contains(t, buf.String(), "skipped")

	// A rewritten file replaces the dataset.
	require.NoError(t, os.WriteFile(path, []byte("raw_material,FCE\nS6,80\n"), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	summary, err = store.Ingest(ctx, path, &buf)
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Rows: 1, Columns: 1}, summary)

	comp, err := store.Composition(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.MaterialCount{{RawMaterial: "S6", Count: 1}}, comp)
}

func TestIngestErrors(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		errMsg string
	}{
		{"missing raw_material", "Sample ID,FCE\n1,80\n", "missing raw_material column"},
		{"bad number", "raw_material,FCE\nS5,eighty\n", `line 2 column "FCE"`},
		{"empty material", "raw_material,FCE\n,80\n", "line 2: empty raw_material"},
		{"duplicate column", "raw_material,FCE,FCE\nS5,1,2\n", `duplicate column "FCE"`},
		{"empty file", "", "reading header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := testStore(t)
			var buf strings.Builder
			_, err := store.Ingest(context.Background(), writeCSV(t, dir, tt.csv), &buf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIngestMissingFile(t *testing.T) {
	store, dir := testStore(t)
	var buf strings.Builder
	_, err := store.Ingest(context.Background(), filepath.Join(dir, "nope.csv"), &buf)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// --- chart queries ---

func TestComposition(t *testing.T) {
	store := ingested(t)
	got, err := store.Composition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.MaterialCount{
		{RawMaterial: "S5", Count: 3},
		{RawMaterial: "DS7", Count: 1},
		{RawMaterial: "OTC", Count: 1},
	}, got)
}

func TestBoxByRawMaterial(t *testing.T) {
	store := ingested(t)
	got, err := store.Box(context.Background(), "raw_material", "FCE")
	require.NoError(t, err)

	assert.Equal(t, []types.BoxGroup{
		{Key: "DS7", Values: []float64{82.9}},
		{Key: "OTC", Values: []float64{82.4}},
		{Key: "S5", Values: []float64{83.3, 84.1, 83.2}},
	}, got.Groups)
	assert.InDelta(t, 82.4*0.95, got.Range[0], 1e-9)
	assert.InDelta(t, 84.1*1.05, got.Range[1], 1e-9)
}

func TestBoxByNumericGroup(t *testing.T) {
	store := ingested(t)
	got, err := store.Box(context.Background(), "PS_Temp", "LiCap")
	require.NoError(t, err)

	assert.Equal(t, []types.BoxGroup{
		{Key: "600", Values: []float64{1800, 1750, 1790}},
		{Key: "650", Values: []float64{1820, 1700}},
	}, got.Groups)
}

func TestBoxRejectsColumns(t *testing.T) {
	store := ingested(t)
	ctx := context.Background()

	_, err := store.Box(ctx, "Carbon", "FCE")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, err = store.Box(ctx, "raw_material", "PS_Ratio")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestScatter(t *testing.T) {
	store := ingested(t)
	ctx := context.Background()

	got, err := store.Scatter(ctx, "Carbon", "FCE")
	require.NoError(t, err)
	assert.Equal(t, []string{"Carbon", "FCE"}, got.Columns)
	// Sample 4 has no Carbon value and is left out.
	assert.Equal(t, [][]float64{{30.5, 83.3}, {31.0, 84.1}, {28.2, 82.9}, {29.9, 83.2}}, got.Points)

	got3, err := store.Scatter(ctx, "PS_Temp", "LiCap", "PS_Temp")
	require.NoError(t, err)
	require.Len(t, got3.Points, 5)
	assert.Equal(t, []float64{600, 1800, 600}, got3.Points[0])
}

func TestScatterRejectsColumns(t *testing.T) {
	store := ingested(t)
	ctx := context.Background()

	_, err := store.Scatter(ctx, "raw_material", "FCE")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, err = store.Scatter(ctx, "Nope", "FCE")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, err = store.Scatter(ctx, "FCE")
	assert.ErrorContains(t, err, "needs 2 or 3 columns")
}

// --- export ---

func TestExportYAML(t *testing.T) {
	store := ingested(t)
	path, err := store.ExportYAML(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var samples []types.Sample
	require.NoError(t, yaml.Unmarshal(data, &samples))
	assert.Len(t, samples, 5)
	assert.Equal(t, "S5", samples[0].RawMaterial)
}

func TestExportJSON(t *testing.T) {
	store := ingested(t)
	path, err := store.ExportJSON(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "export.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"raw_material": "DS7"`)
}
