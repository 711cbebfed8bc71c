package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGrade(t *testing.T) {
	tests := []struct {
		grade string
		want  Label
		ok    bool
	}{
		{"Good", LabelPositive, true},
		{"Neutral", LabelNeutral, true},
		{"Bad", LabelNegative, true},
		{"good", 0, false},
		{"Excellent", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			got, ok := ParseGrade(tt.grade)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHumanLabel(t *testing.T) {
	for code, want := range map[string]string{"0": "NEUTRAL", "1": "POSITIVE", "2": "NEGATIVE"} {
		got, ok := HumanLabel(code)
		assert.True(t, ok, code)
		assert.Equal(t, want, got)
	}

	_, ok := HumanLabel("3")
	assert.False(t, ok)
	_, ok = HumanLabel("")
	assert.False(t, ok)
}

func TestLabel_Code(t *testing.T) {
	assert.Equal(t, "2", LabelNegative.Code())
	assert.True(t, LabelNegative.Valid())
	assert.False(t, Label(7).Valid())
	assert.Equal(t, "UNKNOWN", Label(7).String())
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Inference.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Corpus.LabelPolicy = "passthrough"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.Mode = "production"
	assert.Error(t, cfg.Validate())
}

func TestParamTensor_Count(t *testing.T) {
	p := ParamTensor{Shape: []int{30000, 8}, BytesPerElement: 4}
	assert.Equal(t, int64(240000), p.Count())
	assert.Equal(t, int64(960000), p.Bytes())
	assert.Equal(t, int64(0), ParamTensor{}.Count())
}
