// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type materialRequest struct {
	RawMaterial string  `json:"raw_material" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		field  string
		errMsg string
	}{
		{name: "valid", body: `{"raw_material":"DS8","amount":1.5}`},
		{name: "empty body", body: ``, errMsg: "empty body"},
		{name: "malformed", body: `{"raw_material":`, errMsg: "invalid JSON"},
		{name: "unknown field", body: `{"raw_material":"S5","color":"red"}`, errMsg: "unknown field"},
		{name: "trailing data", body: `{"raw_material":"S5"} {}`, errMsg: "unexpected trailing data"},
		{name: "missing material", body: `{"amount":2}`, field: "raw_material", errMsg: "raw_material is a required field"},
		{
			name:   "negative amount",
			body:   `{"raw_material":"S5","amount":-1}`,
			field:  "amount",
			errMsg: "amount must be 0 or greater",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst materialRequest
			err := DecodeJSON(req, &dst)
			if tt.errMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, materialRequest{RawMaterial: "DS8", Amount: 1.5}, dst)
				return
			}
			require.Error(t, err)
			assert.True(t, IsBindError(err))
			assert.Contains(t, err.Error(), tt.errMsg)
			if tt.field != "" {
				var be *BindError
				require.ErrorAs(t, err, &be)
				assert.Equal(t, tt.field, be.Field)
			}
		})
	}
}

func TestNewValidator(t *testing.T) {
	svc, err := newValidator()
	require.NoError(t, err)
	require.NotNil(t, svc.translator)

	err = svc.validate.Struct(materialRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "raw_material is a required field", verrs[0].Translate(svc.translator))
}

func TestRespond(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	RespondOK(rec, req, map[string]int{"n": 1})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var ok struct {
		StatusCode int            `json:"status_code"`
		Data       map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.Equal(t, 200, ok.StatusCode)
	assert.Equal(t, 1, ok.Data["n"])

	rec = httptest.NewRecorder()
	RespondError(rec, req, http.StatusUnprocessableEntity, "encoding_error", "bad material")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "encoding_error", env.Code)
	assert.Equal(t, "bad material", env.Error)
	assert.Nil(t, env.Data)
}
