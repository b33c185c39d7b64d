// Package jsoncodec wraps the sonic JSON implementation behind the small
// surface the client needs, so the codec can be swapped in one place.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

// MarshalString marshals v for log output; failures degrade to an empty
// string rather than interrupting the caller.
func MarshalString(v any) string {
	s, err := defaultConfig.MarshalToString(v)
	if err != nil {
		return ""
	}
	return s
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	return defaultConfig.NewEncoder(w).Encode(v)
}

func Decode(r io.Reader, v any) error {
	return defaultConfig.NewDecoder(r).Decode(v)
}
