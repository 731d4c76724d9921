// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes bounds request bodies read by DecodeJSON.
const DefaultMaxBytes = 1 << 20

// BindError reports a request body that could not be decoded or failed
// validation. Field is the JSON name of the offending field, if known.
type BindError struct {
	Field string
	Msg   string
}

func (e *BindError) Error() string { return e.Msg }

// IsBindError reports whether err is a *BindError.
func IsBindError(err error) bool {
	var be *BindError
	return errors.As(err, &be)
}

type validatorSvc struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

// validatorInstance returns the shared validator. Registration is fixed at
// build time, so a failure is a programming error and panics.
func validatorInstance() *validatorSvc {
	vOnce.Do(func() {
		svc, err := newValidator()
		if err != nil {
			panic(fmt.Sprintf("httputil: %v", err))
		}
		vSvc = svc
	})
	return vSvc
}

func newValidator() (*validatorSvc, error) {
	enLoc := en.New()
	trans, found := ut.New(enLoc, enLoc).GetTranslator("en")
	if !found {
		return nil, errors.New("english translator not found")
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("registering validator translations: %w", err)
	}
	return &validatorSvc{validate: v, translator: trans}, nil
}

// DecodeJSON reads one JSON object from r into dst, rejecting unknown
// fields and trailing data, then validates dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, DefaultMaxBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &BindError{Msg: "empty body"}
		}
		return &BindError{Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return &BindError{Msg: "unexpected trailing data"}
	}
	return Validate(dst)
}

// Validate runs struct validation on v and returns the first failure as a
// *BindError with a translated message.
func Validate(v any) error {
	svc := validatorInstance()
	err := svc.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &BindError{Field: fe.Field(), Msg: fe.Translate(svc.translator)}
	}
	return &BindError{Msg: err.Error()}
}
