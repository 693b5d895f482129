package iojson

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalError(t *testing.T) {
	out := MarshalError("boom", map[string]any{"code": 2})

	var got Error
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "boom", got.Message)
	assert.EqualValues(t, 2, got.Data["code"])
}

func TestMarshalErrorUnmarshalableData(t *testing.T) {
	// Channels cannot be marshaled, forcing the fallback path.
	out := MarshalError("boom", map[string]any{"ch": make(chan int)})

	var got Error
	require.NoError(t, json.Unmarshal([]byte(out), &got), "fallback output must stay valid JSON")
	assert.Equal(t, "boom", got.Message)
	assert.Contains(t, got.Data, "json_error")
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]string{"ok": "yes"}))
	assert.Contains(t, out.String(), `"ok": "yes"`)
	assert.Empty(t, errOut.String())
}

func TestWriteWithMarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, make(chan int)))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "json_error")
}
