package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRecordFile(t *testing.T) {
	// /tmp/
	//   crm/ (portal.json)
	//     subdir/
	//       nested/
	//   empty/

	baseDir := t.TempDir()
	crmDir := filepath.Join(baseDir, "crm")
	subDir := filepath.Join(crmDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, d := range []string{nestedDir, emptyDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	record := filepath.Join(crmDir, DefaultRecordFile)
	if err := os.WriteFile(record, []byte(`{"clients":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	// a directory with the same name must not match
	if err := os.Mkdir(filepath.Join(subDir, DefaultRecordFile+".d"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		file      string
		want      string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: crmDir, file: DefaultRecordFile, want: record},
		{name: "Start Nested Deeply", startPath: nestedDir, file: DefaultRecordFile, want: record},
		{name: "Absolute Path", startPath: emptyDir, file: record, want: record},
		{name: "Directory Is Not a Record", startPath: subDir, file: DefaultRecordFile + ".d", wantErr: true},
		{name: "Not Found", startPath: emptyDir, file: DefaultRecordFile, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRecordFile(tt.startPath, tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindRecordFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && filepath.Clean(got) != filepath.Clean(tt.want) {
				t.Errorf("FindRecordFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri, bucket, key string
		wantErr          bool
	}{
		{uri: "s3://crm/records/portal.json", bucket: "crm", key: "records/portal.json"},
		{uri: "crm", bucket: "crm", key: DefaultRecordFile},
		{uri: "s3://", wantErr: true},
	}
	for _, tt := range tests {
		bucket, key, err := ParseS3URI(tt.uri)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseS3URI(%q) error = %v", tt.uri, err)
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3URI(%q) = %q, %q", tt.uri, bucket, key)
		}
	}
}
