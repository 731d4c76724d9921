// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"errors"
	"fmt"
)

// DropFirst drops the first fitted category, which then encodes as all zeros.
const DropFirst = "first"

// ErrUnknownCategory is returned by OneHotEncoder.Transform for a value
// outside the fitted vocabulary.
var ErrUnknownCategory = errors.New("category not in fitted vocabulary")

// OneHotEncoder is a fitted one-hot encoder for a single categorical column.
type OneHotEncoder struct {
	// Categories is the fitted vocabulary in fitted order.
	Categories []string `yaml:"categories"`

	// Drop is "" (keep all columns) or "first".
	Drop string `yaml:"drop,omitempty"`
}

func (e *OneHotEncoder) validate() error {
	if len(e.Categories) == 0 {
		return fmt.Errorf("encoder has no categories")
	}
	seen := make(map[string]bool, len(e.Categories))
	for _, c := range e.Categories {
		if c == "" {
			return fmt.Errorf("encoder has an empty category")
		}
		if seen[c] {
			return fmt.Errorf("encoder category %q is duplicated", c)
		}
		seen[c] = true
	}
	switch e.Drop {
	case "", DropFirst:
	default:
		return fmt.Errorf("unsupported drop %q", e.Drop)
	}
	if e.Drop == DropFirst && len(e.Categories) < 2 {
		return fmt.Errorf("drop=first needs at least two categories")
	}
	return nil
}

// kept returns the categories that produce an output column.
func (e *OneHotEncoder) kept() []string {
	if e.Drop == DropFirst {
		return e.Categories[1:]
	}
	return e.Categories
}

// FeatureNames returns the encoded column names, "<prefix>_<category>" for
// each kept category.
func (e *OneHotEncoder) FeatureNames(prefix string) []string {
	kept := e.kept()
	names := make([]string, len(kept))
	for i, c := range kept {
		names[i] = prefix + "_" + c
	}
	return names
}

// Transform encodes category into one indicator per kept category.
func (e *OneHotEncoder) Transform(category string) ([]float64, error) {
	idx := -1
	for i, c := range e.Categories {
		if c == category {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q (fitted: %v)", ErrUnknownCategory, category, e.Categories)
	}

	out := make([]float64, len(e.kept()))
	if e.Drop == DropFirst {
		idx--
	}
	if idx >= 0 {
		out[idx] = 1
	}
	return out, nil
}
