package jsoncodec

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Speed     float32    `json:"speed"`
	Size      [3]float32 `json:"size"`
	Resources []float32  `json:"resources"`
	Ratio     float64    `json:"ratio,omitempty"`
	Name      string     `json:"name"`
}

func TestMarshal_NonFinite(t *testing.T) {
	in := sample{
		Speed:     float32(math.NaN()),
		Size:      [3]float32{0.5, float32(math.Inf(1)), float32(math.Inf(-1))},
		Resources: []float32{200, 1.25},
		Name:      "VMBAS",
	}

	data, err := Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"speed": "NaN",
		"size": [0.5, "+Inf", "-Inf"],
		"resources": [200, 1.25],
		"name": "VMBAS"
	}`, string(data))

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.True(t, math.IsNaN(float64(out.Speed)))
	assert.True(t, math.IsInf(float64(out.Size[1]), 1))
	assert.True(t, math.IsInf(float64(out.Size[2]), -1))
	assert.Equal(t, []float32{200, 1.25}, out.Resources)
}

func TestMarshal_FiniteMatchesStdlibShape(t *testing.T) {
	data, err := Marshal(sample{Speed: 0.8, Ratio: 1e-7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"speed":0.8,"size":[0,0,0],"resources":null,"ratio":1e-7,"name":""}`, string(data))
}

func TestUnmarshal_BadFloatString(t *testing.T) {
	var out sample
	assert.Error(t, Unmarshal([]byte(`{"speed":"fast"}`), &out))
}

func TestNewEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(map[string]float64{"x": math.Inf(1)}))
	assert.Equal(t, "{\"x\":\"+Inf\"}\n", buf.String())
}
