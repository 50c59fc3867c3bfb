package fs

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// Serializer defines how a record set is read from and written to one file format.
type Serializer interface {
	// Parse reads a snapshot from r. Empty input yields an empty snapshot.
	Parse(r io.Reader) (core.Snapshot, error)
	// Serialize converts the snapshot to bytes.
	Serialize(snap core.Snapshot) ([]byte, error)
}

// DefaultSerializers returns the serializers keyed by file extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// --- JSON Serializer ---

// JSONSerializer handles JSON record files.
type JSONSerializer struct {
	// Indent is the indentation of written files. Empty writes compact JSON.
	Indent string
}

// NewJSONSerializer creates a JSON serializer with two-space indentation.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{Indent: "  "}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Snapshot{}, err
	}
	var snap core.Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("invalid json: %w", err)
	}
	return snap, nil
}

func (s *JSONSerializer) Serialize(snap core.Snapshot) ([]byte, error) {
	snap = withEmptyClients(snap)
	if s.Indent == "" {
		return json.Marshal(snap)
	}
	return json.MarshalIndent(snap, "", s.Indent)
}

// --- YAML Serializer ---

// YAMLSerializer handles YAML record files.
type YAMLSerializer struct{}

func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Snapshot{}, err
	}
	var snap core.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("invalid yaml: %w", err)
	}
	return snap, nil
}

func (s *YAMLSerializer) Serialize(snap core.Snapshot) ([]byte, error) {
	return yaml.Marshal(withEmptyClients(snap))
}

// withEmptyClients writes an empty list rather than null for a fresh record set.
func withEmptyClients(snap core.Snapshot) core.Snapshot {
	if snap.Clients == nil {
		snap.Clients = []core.ClientEngagement{}
	}
	return snap
}
