// Package snapshot serializes a whole model, fitted state and cache handle
// included, into a single versioned blob on disk.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var (
	ErrVersionMismatch = errors.New("snapshot version mismatch")
	// ErrTypeMismatch is returned when a loaded snapshot does not hold the
	// expected model kind.
	ErrTypeMismatch = errors.New("snapshot holds a different model kind")
)

// Record is the serialized form of a model. The cache handle is captured
// as its backend kind and storage location, not its contents: every load
// of the same record joins the same persistent store.
type Record struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`

	Kind        string `json:"kind"`
	Trained     bool   `json:"trained"`
	InputShape  []int  `json:"input_shape"`
	OutputShape []int  `json:"output_shape"`
	CheckOutput bool   `json:"check_output"`

	CacheBackend    string `json:"cache_backend"`
	CacheRoot       string `json:"cache_root"`
	CacheGeneration string `json:"cache_generation"`

	Engine json.RawMessage `json:"engine,omitempty"`
}

func Encode(r Record) ([]byte, error) {
	r.SchemaVersion = CurrentSchemaVersion
	r.CodecVersion = CurrentCodecVersion
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if r.SchemaVersion != CurrentSchemaVersion || r.CodecVersion != CurrentCodecVersion {
		return Record{}, fmt.Errorf("%w: schema %d codec %d", ErrVersionMismatch, r.SchemaVersion, r.CodecVersion)
	}
	return r, nil
}
