// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact loads the trained model, encoder, and scaler from a single
// bundle file. The bundle is a YAML stream of exactly three documents in fixed
// order: model, encoder, scaler. Each document names its kind; the loader
// validates the fitted arrays and the feature schema linking the three before
// anything is served.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/taurus/pkg/types"
)

// Document kinds accepted in each bundle slot.
const (
	KindRidge    = "ridge"
	KindLinear   = "linear"
	KindOneHot   = "one_hot"
	KindStandard = "standard"
	KindMinMax   = "min_max"
)

// bundleDocuments is the number of documents a bundle must contain.
const bundleDocuments = 3

// ModelOutputs is the number of values the model must predict per row:
// discharge capacity and initial efficiency.
const ModelOutputs = 2

// LoadError reports a bundle that cannot serve predictions. It is fatal: the
// caller must not start the inference surface.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading artifact bundle %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is, or wraps, a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Scaler is a fitted per-column transform with a fit-time schema.
type Scaler interface {
	// Kind returns the document kind the scaler was decoded from.
	Kind() string

	// FeatureNames returns the fit-time column names in order.
	FeatureNames() []string

	// Transform scales one row. The row length must match FeatureNames.
	Transform(row []float64) ([]float64, error)
}

// Bundle holds the three trained artifacts. They are immutable after Load and
// safe for concurrent use.
type Bundle struct {
	Path    string
	Model   *LinearModel
	Encoder *OneHotEncoder
	Scaler  Scaler
}

// header is decoded first from every document to pick the concrete type.
type header struct {
	Kind string `yaml:"kind"`
}

// Load reads and validates the bundle at path. Any failure is returned as a
// *LoadError; there is no partial result.
func Load(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	b, err := Decode(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	b.Path = path
	return b, nil
}

// Decode reads a bundle stream from r and validates it.
func Decode(r io.Reader) (*Bundle, error) {
	docs, err := readDocuments(r)
	if err != nil {
		return nil, err
	}
	if len(docs) != bundleDocuments {
		return nil, fmt.Errorf("bundle holds %d documents, want %d (model, encoder, scaler)", len(docs), bundleDocuments)
	}

	model, err := decodeModel(docs[0])
	if err != nil {
		return nil, fmt.Errorf("document 1 (model): %w", err)
	}
	encoder, err := decodeEncoder(docs[1])
	if err != nil {
		return nil, fmt.Errorf("document 2 (encoder): %w", err)
	}
	scaler, err := decodeScaler(docs[2])
	if err != nil {
		return nil, fmt.Errorf("document 3 (scaler): %w", err)
	}

	b := &Bundle{Model: model, Encoder: encoder, Scaler: scaler}
	if err := b.validateSchema(); err != nil {
		return nil, err
	}
	return b, nil
}

func readDocuments(r io.Reader) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(r)
	var docs []*yaml.Node
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parsing bundle: %w", err)
		}
		docs = append(docs, &node)
	}
}

func kindOf(node *yaml.Node) (string, error) {
	var h header
	if err := node.Decode(&h); err != nil {
		return "", fmt.Errorf("reading kind: %w", err)
	}
	if h.Kind == "" {
		return "", fmt.Errorf("missing kind")
	}
	return h.Kind, nil
}

func decodeModel(node *yaml.Node) (*LinearModel, error) {
	kind, err := kindOf(node)
	if err != nil {
		return nil, err
	}
	if kind != KindRidge && kind != KindLinear {
		return nil, fmt.Errorf("kind %q is not a model (want %s or %s)", kind, KindRidge, KindLinear)
	}
	var m LinearModel
	if err := node.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding %s model: %w", kind, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeEncoder(node *yaml.Node) (*OneHotEncoder, error) {
	kind, err := kindOf(node)
	if err != nil {
		return nil, err
	}
	if kind != KindOneHot {
		return nil, fmt.Errorf("kind %q is not an encoder (want %s)", kind, KindOneHot)
	}
	var e OneHotEncoder
	if err := node.Decode(&e); err != nil {
		return nil, fmt.Errorf("decoding encoder: %w", err)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

func decodeScaler(node *yaml.Node) (Scaler, error) {
	kind, err := kindOf(node)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindStandard:
		var s StandardScaler
		if err := node.Decode(&s); err != nil {
			return nil, fmt.Errorf("decoding standard scaler: %w", err)
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		return &s, nil
	case KindMinMax:
		var s MinMaxScaler
		if err := node.Decode(&s); err != nil {
			return nil, fmt.Errorf("decoding min_max scaler: %w", err)
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("kind %q is not a scaler (want %s or %s)", kind, KindStandard, KindMinMax)
	}
}

// ExpectedColumns returns the feature row the encoder and the fixed numeric
// schema produce together: NumericFeatures followed by the encoded columns.
func ExpectedColumns(enc *OneHotEncoder) []string {
	cols := slices.Clone(types.NumericFeatures)
	return append(cols, enc.FeatureNames(types.RawMaterialColumn)...)
}

// validateSchema checks that the scaler was fit on exactly the row the
// assembler will build, and that the model consumes the scaler's output.
func (b *Bundle) validateSchema() error {
	want := ExpectedColumns(b.Encoder)
	got := b.Scaler.FeatureNames()
	if !slices.Equal(want, got) {
		return fmt.Errorf("scaler schema mismatch: fit on %v, assembler builds %v", got, want)
	}
	if b.Model.InputWidth() != len(want) {
		return fmt.Errorf("model expects %d features, scaler produces %d", b.Model.InputWidth(), len(want))
	}
	if b.Model.OutputWidth() != ModelOutputs {
		return fmt.Errorf("model predicts %d outputs, want %d", b.Model.OutputWidth(), ModelOutputs)
	}
	return nil
}

// Description summarizes a loaded bundle for display.
type Description struct {
	Path         string   `json:"path" yaml:"path"`
	ModelKind    string   `json:"model_kind" yaml:"model_kind"`
	Outputs      []string `json:"outputs" yaml:"outputs"`
	Categories   []string `json:"categories" yaml:"categories"`
	Drop         string   `json:"drop,omitempty" yaml:"drop,omitempty"`
	ScalerKind   string   `json:"scaler_kind" yaml:"scaler_kind"`
	FeatureCount int      `json:"feature_count" yaml:"feature_count"`
	Features     []string `json:"features" yaml:"features"`
}

// Describe returns a summary of b.
func (b *Bundle) Describe() Description {
	return Description{
		Path:         b.Path,
		ModelKind:    b.Model.Kind,
		Outputs:      b.Model.OutputNames(),
		Categories:   slices.Clone(b.Encoder.Categories),
		Drop:         b.Encoder.Drop,
		ScalerKind:   b.Scaler.Kind(),
		FeatureCount: len(b.Scaler.FeatureNames()),
		Features:     b.Scaler.FeatureNames(),
	}
}
