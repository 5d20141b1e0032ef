package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a snapshot.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Marshal encodes the whole snapshot in memory. Nothing is returned on
// failure, so a partial snapshot is never written.
func Marshal(s *Snapshot, f Format) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(s); err == nil {
			err = enc.Close()
		}
		out = buf.Bytes()
	case FormatJSON, "":
		f = FormatJSON
		out, err = json.MarshalIndent(s, "", "  ")
		if err == nil {
			out = append(out, '\n')
		}
	default:
		err = fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return nil, &SerializationError{Format: f, Err: err}
	}
	return out, nil
}

// Unmarshal decodes a snapshot and checks its version.
func Unmarshal(data []byte, f Format) (*Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatJSON, "":
		f = FormatJSON
		err = json.Unmarshal(data, &s)
	default:
		err = fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return nil, &SerializationError{Format: f, Err: err}
	}
	if s.Version != SnapshotVersion {
		return nil, &SerializationError{
			Format: f,
			Err:    fmt.Errorf("unsupported snapshot version %d (want %d)", s.Version, SnapshotVersion),
		}
	}
	return &s, nil
}
