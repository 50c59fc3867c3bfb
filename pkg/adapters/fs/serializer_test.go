package fs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

func TestSerializers_EmptyRecordSet(t *testing.T) {
	for ext, s := range DefaultSerializers() {
		t.Run(ext, func(t *testing.T) {
			data, err := s.Serialize(core.Snapshot{})
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if strings.Contains(string(data), "null") {
				t.Errorf("expected an empty list, got %s", data)
			}

			snap, err := s.Parse(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(snap.Clients) != 0 {
				t.Errorf("expected no clients, got %d", len(snap.Clients))
			}
		})
	}
}

func TestJSONSerializer_EmptyInput(t *testing.T) {
	snap, err := NewJSONSerializer().Parse(strings.NewReader("  \n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(snap.Clients) != 0 {
		t.Errorf("expected empty snapshot")
	}
}

func TestJSONSerializer_FieldNames(t *testing.T) {
	data, err := NewJSONSerializer().Serialize(core.Snapshot{
		Clients: []core.ClientEngagement{{ID: "c1", CompanyName: "Acme", ContractValue: 10}},
	})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	for _, key := range []string{`"clients"`, `"adminNotifications"`, `"companyName"`, `"contractValue"`, `"notifications"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("expected key %s in %s", key, data)
		}
	}
}

func TestYAMLSerializer_Invalid(t *testing.T) {
	if _, err := NewYAMLSerializer().Parse(strings.NewReader("clients: [unterminated")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
