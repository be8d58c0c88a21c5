package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		{name: "number", input: `12.5`, wantValid: true, wantValue: 12.5},
		{name: "integer", input: `3`, wantValid: true, wantValue: 3},
		{name: "numeric string", input: `"4.2"`, wantValid: true, wantValue: 4.2},
		{name: "padded string", input: `" 7 "`, wantValid: true, wantValue: 7},
		{name: "null", input: `null`},
		{name: "text", input: `"abc"`},
		{name: "empty string", input: `""`},
		{name: "nan string", input: `"NaN"`},
		{name: "infinity string", input: `"Inf"`},
		{name: "bool", input: `true`},
		{name: "object", input: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var holder struct {
				V Number `json:"v"`
			}
			err := json.Unmarshal([]byte(`{"v":`+tt.input+`}`), &holder)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, holder.V.Valid)
			assert.Equal(t, tt.wantValue, holder.V.Float())
		})
	}
}

func TestNumber_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Set   Number `json:"set"`
		Unset Number `json:"unset"`
	}{Set: NewNumber(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"set":1.5,"unset":null}`, string(data))
}

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Text
	}{
		{`"Nutella"`, "Nutella"},
		{`42`, "42"},
		{`false`, "false"},
		{`null`, ""},
		{`["a"]`, ""},
		{`{"en":"x"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var holder struct {
				V Text `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"v":`+tt.input+`}`), &holder))
			assert.Equal(t, tt.want, holder.V)
		})
	}
}

func TestTags_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "strings", input: `["en:milk","en:nuts"]`, want: []string{"en:milk", "en:nuts"}},
		{name: "mixed scalars", input: `["en:soy", 3, null, ""]`, want: []string{"en:soy", "3"}},
		{name: "null", input: `null`, want: []string{}},
		{name: "not an array", input: `"en:milk"`, want: []string{}},
		{name: "nested values dropped", input: `[["x"], {"y":1}, "en:eggs"]`, want: []string{"en:eggs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var holder struct {
				V Tags `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"v":`+tt.input+`}`), &holder))
			assert.Equal(t, tt.want, holder.V.Strings())
		})
	}

	t.Run("nil strings", func(t *testing.T) {
		var tags Tags
		assert.NotNil(t, tags.Strings())
		assert.Empty(t, tags.Strings())
	})
}

func TestParseFloat(t *testing.T) {
	v, ok := ParseFloat(" 0.25 ")
	assert.True(t, ok)
	assert.Equal(t, 0.25, v)

	_, ok = ParseFloat("1e400")
	assert.False(t, ok)

	_, ok = ParseFloat("twelve")
	assert.False(t, ok)
}

func TestErrorHelpers(t *testing.T) {
	t.Run("input errors", func(t *testing.T) {
		for _, err := range []error{ErrInvalidRequest, ErrNoInput, ErrUnsupportedFile, ErrNoBarcode, ErrMultipleBarcodes} {
			assert.True(t, IsInputError(fmt.Errorf("wrapped: %w", err)), err.Error())
		}
		assert.False(t, IsInputError(ErrProductNotFound))
	})

	t.Run("lookup error", func(t *testing.T) {
		err := fmt.Errorf("assess: %w", &LookupError{Barcode: "3017620422003", Err: ErrProductNotFound})

		assert.True(t, IsNotFound(err))
		assert.Equal(t, "3017620422003", FailedBarcode(err))
		assert.Contains(t, err.Error(), "product 3017620422003: product not found")
	})

	t.Run("api failure counts as not found", func(t *testing.T) {
		assert.True(t, IsNotFound(&LookupError{Barcode: "1", Err: ErrProductAPIFailure}))
	})

	t.Run("no lookup error", func(t *testing.T) {
		assert.Empty(t, FailedBarcode(ErrNoInput))
		assert.False(t, IsNotFound(ErrReasoningUnavailable))
	})
}

func TestConditions_JSON(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantString   string
		wantAdvisory string
		wantJSON     string
	}{
		{name: "text", input: `"Keep cool"`, wantString: "Keep cool", wantAdvisory: "Keep cool", wantJSON: `"Keep cool"`},
		{name: "null", input: `null`, wantJSON: `""`},
		{name: "list", input: `["Keep cool", "Away from light"]`,
			wantString: "Keep cool, Away from light", wantAdvisory: "mKeep cool, Away from light",
			wantJSON: `["Keep cool","Away from light"]`},
		{name: "empty list", input: `[]`, wantAdvisory: "m", wantJSON: `[]`},
		{name: "object", input: `{"en":"x"}`, wantJSON: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var holder struct {
				V Conditions `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"v":`+tt.input+`}`), &holder))

			assert.Equal(t, tt.wantString, holder.V.String())
			assert.Equal(t, tt.wantAdvisory, holder.V.Advisory())

			data, err := json.Marshal(holder.V)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(data))
		})
	}
}
