// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/taurus/pkg/types"
)

// Columns returns the numeric column names in file order.
func (s *Store) Columns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM columns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// Rows returns every sample in file order.
func (s *Store) Rows(ctx context.Context) ([]types.Sample, error) {
	sampleRows, err := s.db.QueryContext(ctx, `SELECT id, raw_material FROM samples ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer sampleRows.Close()

	var samples []types.Sample
	index := make(map[int64]int)
	for sampleRows.Next() {
		var id int64
		var material string
		if err := sampleRows.Scan(&id, &material); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		index[id] = len(samples)
		samples = append(samples, types.Sample{RawMaterial: material, Values: map[string]*float64{}})
	}
	if err := sampleRows.Err(); err != nil {
		return nil, err
	}

	valueRows, err := s.db.QueryContext(ctx, `SELECT sample_id, column_name, value FROM sample_values`)
	if err != nil {
		return nil, fmt.Errorf("querying values: %w", err)
	}
	defer valueRows.Close()

	for valueRows.Next() {
		var id int64
		var name string
		var v *float64
		if err := valueRows.Scan(&id, &name, &v); err != nil {
			return nil, fmt.Errorf("scanning value: %w", err)
		}
		if i, ok := index[id]; ok {
			samples[i].Values[name] = v
		}
	}
	return samples, valueRows.Err()
}

// Composition counts samples per raw material, largest first.
func (s *Store) Composition(ctx context.Context) ([]types.MaterialCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT raw_material, count(*) AS n FROM samples
		 GROUP BY raw_material ORDER BY n DESC, raw_material`)
	if err != nil {
		return nil, fmt.Errorf("querying composition: %w", err)
	}
	defer rows.Close()

	var out []types.MaterialCount
	for rows.Next() {
		var mc types.MaterialCount
		if err := rows.Scan(&mc.RawMaterial, &mc.Count); err != nil {
			return nil, fmt.Errorf("scanning composition: %w", err)
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// Box groups the values of result column y by column x. x must be one of
// types.BoxGroupColumns and y one of types.ResultColumns.
func (s *Store) Box(ctx context.Context, x, y string) (types.BoxSeries, error) {
	if !slices.Contains(types.BoxGroupColumns, x) {
		return types.BoxSeries{}, fmt.Errorf("%w: %q cannot group a box plot", ErrUnknownColumn, x)
	}
	if !slices.Contains(types.ResultColumns, y) {
		return types.BoxSeries{}, fmt.Errorf("%w: %q is not a result column", ErrUnknownColumn, y)
	}
	if err := s.requireColumns(ctx, y); err != nil {
		return types.BoxSeries{}, err
	}

	var query string
	var args []any
	if x == types.RawMaterialColumn {
		query = `SELECT s.raw_material, v.value
			FROM samples s JOIN sample_values v ON v.sample_id = s.id
			WHERE v.column_name = ? AND v.value IS NOT NULL
			ORDER BY s.raw_material, s.id`
		args = []any{y}
	} else {
		if err := s.requireColumns(ctx, x); err != nil {
			return types.BoxSeries{}, err
		}
		query = `SELECT g.value, v.value
			FROM sample_values g JOIN sample_values v ON v.sample_id = g.sample_id
			WHERE g.column_name = ? AND v.column_name = ?
			  AND g.value IS NOT NULL AND v.value IS NOT NULL
			ORDER BY g.value, g.sample_id`
		args = []any{x, y}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.BoxSeries{}, fmt.Errorf("querying box series: %w", err)
	}
	defer rows.Close()

	series := types.BoxSeries{X: x, Y: y}
	lo, hi := math.Inf(1), math.Inf(-1)
	for rows.Next() {
		var key string
		var v float64
		if x == types.RawMaterialColumn {
			if err := rows.Scan(&key, &v); err != nil {
				return types.BoxSeries{}, fmt.Errorf("scanning box value: %w", err)
			}
		} else {
			var g float64
			if err := rows.Scan(&g, &v); err != nil {
				return types.BoxSeries{}, fmt.Errorf("scanning box value: %w", err)
			}
			key = strconv.FormatFloat(g, 'f', -1, 64)
		}

		if n := len(series.Groups); n == 0 || series.Groups[n-1].Key != key {
			series.Groups = append(series.Groups, types.BoxGroup{Key: key})
		}
		g := &series.Groups[len(series.Groups)-1]
		g.Values = append(g.Values, v)
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if err := rows.Err(); err != nil {
		return types.BoxSeries{}, err
	}
	if len(series.Groups) > 0 {
		series.Range = [2]float64{lo * 0.95, hi * 1.05}
	}
	return series, nil
}

// Scatter returns one point per sample with a value in every requested
// column. It takes two columns for the 2D chart or three for the 3D chart.
func (s *Store) Scatter(ctx context.Context, columns ...string) (types.ScatterSeries, error) {
	if len(columns) != 2 && len(columns) != 3 {
		return types.ScatterSeries{}, fmt.Errorf("scatter needs 2 or 3 columns, got %d", len(columns))
	}
	for _, c := range columns {
		if c == types.RawMaterialColumn {
			return types.ScatterSeries{}, fmt.Errorf("%w: %s is categorical", ErrUnknownColumn, c)
		}
	}
	if err := s.requireColumns(ctx, columns...); err != nil {
		return types.ScatterSeries{}, err
	}

	sorted := slices.Clone(columns)
	slices.Sort(sorted)
	distinct := slices.Compact(sorted)
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(distinct)), ",")
	args := make([]any, len(distinct))
	for i, c := range distinct {
		args[i] = c
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT sample_id, column_name, value FROM sample_values
		 WHERE column_name IN (`+placeholders+`) AND value IS NOT NULL
		 ORDER BY sample_id`, args...)
	if err != nil {
		return types.ScatterSeries{}, fmt.Errorf("querying scatter values: %w", err)
	}
	defer rows.Close()

	series := types.ScatterSeries{Columns: slices.Clone(columns)}
	var (
		current int64 = -1
		values  map[string]float64
	)
	flush := func() {
		if values == nil {
			return
		}
		point := make([]float64, 0, len(columns))
		for _, c := range columns {
			v, ok := values[c]
			if !ok {
				return
			}
			point = append(point, v)
		}
		series.Points = append(series.Points, point)
	}

	for rows.Next() {
		var id int64
		var name string
		var v float64
		if err := rows.Scan(&id, &name, &v); err != nil {
			return types.ScatterSeries{}, fmt.Errorf("scanning scatter value: %w", err)
		}
		if id != current {
			flush()
			current = id
			values = make(map[string]float64, len(distinct))
		}
		values[name] = v
	}
	if err := rows.Err(); err != nil {
		return types.ScatterSeries{}, err
	}
	flush()
	return series, nil
}

func (s *Store) requireColumns(ctx context.Context, names ...string) error {
	cols, err := s.Columns(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if !slices.Contains(cols, n) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, n)
		}
	}
	return nil
}
