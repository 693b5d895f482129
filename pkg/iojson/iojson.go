// Package iojson writes command output as JSON, with a fallback path so
// a marshal failure still produces valid JSON on the error stream.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Error is the envelope emitted for error output in JSON mode.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// fallbackError hand-builds an Error blob when marshaling itself failed.
// json.Marshal on the plain strings handles the escaping.
func fallbackError(msg string, jsonErr error) string {
	msgBytes, _ := json.Marshal(msg)
	errBytes, _ := json.Marshal(jsonErr.Error())
	return fmt.Sprintf(`{"message":%s,"data":{"json_error":%s}}`, msgBytes, errBytes)
}

// MarshalError renders an error envelope. If the data cannot be marshaled,
// which indicates a bug in the caller, the result still carries msg plus
// the marshal error so the output stays machine readable.
func MarshalError(msg string, data map[string]any) string {
	resp := Error{Message: msg, Data: data}

	bits, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fallbackError(msg, err)
	}

	return string(bits)
}

// WriteError prints an error envelope to stderr.
func WriteError(str string, data map[string]any) error {
	_, err := fmt.Fprintln(os.Stderr, MarshalError(str, data))
	return err
}

// WriteWith marshals obj onto w, routing a marshal failure to ew instead.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		errStr := fallbackError("error marshaling in iojson.Write", err)
		_, err = fmt.Fprintln(ew, errStr)
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// Write calls WriteWith with [os.Stdout] and [os.Stderr].
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}
