package json

import (
	"bytes"
	"math"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/structcol/pkg/dist"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

func TestMarshalRowKeepsColumnOrder(t *testing.T) {
	row := map[string]structured.Scalar{
		"z": dist.Bernoulli{P: 0.25},
		"a": nil,
		"m": dist.LogNormal{Mu: 1, Sigma: math.NaN()},
	}
	data, err := MarshalRow([]string{"z", "a", "m"}, row)
	require.NoError(t, err)
	assert.Equal(t, `{"z":{"p":0.25},"a":null,"m":{"mu":1,"sigma":null}}`, string(data))
}

func TestMarshalRowEmpty(t *testing.T) {
	data, err := MarshalRow(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestStreamingEncoderLines(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamingEncoder(&buf, false)
	cols := []string{"p"}
	require.NoError(t, enc.EncodeRow(cols, map[string]structured.Scalar{"p": dist.Bernoulli{P: 1}}))
	require.NoError(t, enc.EncodeRow(cols, map[string]structured.Scalar{"p": nil}))
	require.NoError(t, enc.Close())

	assert.Equal(t, "{\"p\":{\"p\":1}}\n{\"p\":null}\n", buf.String())
}

func TestStreamingEncoderArray(t *testing.T) {
	var buf bytes.Buffer
	enc := NewStreamingEncoder(&buf, true)
	cols := []string{"p"}
	for _, p := range []float64{0.1, 0.2} {
		require.NoError(t, enc.EncodeRow(cols, map[string]structured.Scalar{"p": dist.Bernoulli{P: p}}))
	}
	require.NoError(t, enc.Close())

	var decoded []map[string]map[string]float64
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, 0.2, decoded[1]["p"]["p"])
}

func TestStreamingEncoderEmptyArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStreamingEncoder(&buf, true).Close())
	assert.Equal(t, "[]\n", buf.String())
}
