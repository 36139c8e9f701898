package gcs

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"valid", "gs://my-bucket/uploads/2026/file.csv", "my-bucket", "uploads/2026/file.csv", false},
		{"no scheme", "my-bucket/file.csv", "", "", true},
		{"no object", "gs://my-bucket", "", "", true},
		{"trailing slash only", "gs://my-bucket/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestFilenameFromURI(t *testing.T) {
	if got := FilenameFromURI("gs://bucket/folder/statement.xlsx"); got != "statement.xlsx" {
		t.Errorf("got %q, want statement.xlsx", got)
	}
	if got := FilenameFromURI("gs://bucket-only"); got != "bucket-only" {
		t.Errorf("got %q, want bucket-only", got)
	}
}
