// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the pipeline wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrEncoding       = errors.New("encoding error")
	ErrInference      = errors.New("inference error")
)

// Stage names reported in StageError.
const (
	StageAssemble = "assemble"
	StageScale    = "scale"
	StageInfer    = "infer"
)

// StageError records which stage failed, the error kind, and the cause.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error { return []error{e.Kind, e.Err} }

func stageErr(stage string, kind error, format string, args ...any) error {
	return &StageError{Stage: stage, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Code returns a stable machine-readable code for err's kind.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrEncoding):
		return "encoding_error"
	case errors.Is(err, ErrInference):
		return "inference_error"
	default:
		return "unknown"
	}
}

// UserMessage renders err as the single message shown on the prediction
// page, whatever the kind.
func UserMessage(err error) string {
	return fmt.Sprintf("예측 중 오류가 발생했습니다: %v", err)
}
