package todo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecode(t *testing.T) {
	original := List{
		{ID: "1718031234567", Text: "Buy milk", Completed: false},
		{ID: "1718031240112", Text: "  padded  ", Completed: true},
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `[{"id":"1718031234567","text":"Buy milk","completed":false},{"id":"1718031240112","text":"  padded  ","completed":true}]`
	if string(data) != want {
		t.Errorf("Encode: got %s, want %s", data, want)
	}

	loaded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff(original, loaded); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeEmpty(t *testing.T) {
	for _, l := range []List{nil, {}} {
		data, err := Encode(l)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("Encode(%#v): got %s, want []", l, data)
		}
	}
}

func TestDecodeEmptyArray(t *testing.T) {
	l, err := Decode([]byte("[]"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if l == nil || len(l) != 0 {
		t.Errorf("Decode([]): got %#v, want empty non-nil list", l)
	}
}

func TestDecodeOriginalAppFormat(t *testing.T) {
	// Written by the mobile app: compact, no envelope.
	data := []byte(`[{"id":"1700000000000","text":"Water plants","completed":true}]`)
	l, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := List{{ID: "1700000000000", Text: "Water plants", Completed: true}}
	if diff := cmp.Diff(want, l); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantPath string
	}{
		{name: "empty document", data: "", wantPath: ""},
		{name: "whitespace", data: "  \n", wantPath: ""},
		{name: "syntax error", data: `[{"id":`, wantPath: ""},
		{name: "null", data: `null`, wantPath: ""},
		{name: "envelope object", data: `{"tasks":[]}`, wantPath: ""},
		{name: "completed not boolean", data: `[{"id":"1","text":"a","completed":"yes"}]`, wantPath: "[0].completed"},
		{name: "missing completed", data: `[{"id":"1","text":"a"}]`, wantPath: "[0]"},
		{name: "id not string", data: `[{"id":1,"text":"a","completed":false}]`, wantPath: "[0].id"},
		{name: "empty id", data: `[{"id":"","text":"a","completed":false}]`, wantPath: "[0].id"},
		{name: "duplicate id", data: `[{"id":"1","text":"a","completed":false},{"id":"1","text":"b","completed":false}]`, wantPath: "[1].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var de *DeserializationError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DeserializationError, got %T: %v", err, err)
			}
			if de.Path != tt.wantPath {
				t.Errorf("Path: got %q, want %q (err: %v)", de.Path, tt.wantPath, err)
			}
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	data := []byte(`[{"id":"1","text":"a","completed":false},{"id":"1","text":"b","completed":false},{"id":"1","text":"c","completed":true}]`)
	errs := DefaultValidator().Validate(data)
	if len(errs) != 2 {
		t.Fatalf("Validate: got %d errors, want 2: %v", len(errs), errs)
	}
}

func TestNewValidator(t *testing.T) {
	t.Run("empty path uses embedded schema", func(t *testing.T) {
		v, warnings := NewValidator("")
		if v.Source() != "embedded" {
			t.Errorf("Source: got %q, want embedded", v.Source())
		}
		if len(warnings) != 0 {
			t.Errorf("unexpected warnings: %v", warnings)
		}
	})

	t.Run("missing file falls back with warning", func(t *testing.T) {
		v, warnings := NewValidator(filepath.Join(t.TempDir(), "nope.json"))
		if v.Source() != "embedded" {
			t.Errorf("Source: got %q, want embedded", v.Source())
		}
		if len(warnings) == 0 || !strings.Contains(warnings[0], "schema file not found") {
			t.Errorf("expected not-found warning, got %v", warnings)
		}
	})

	t.Run("invalid schema falls back with warning", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.schema.json")
		if err := os.WriteFile(path, []byte(`{"type": 12}`), 0644); err != nil {
			t.Fatal(err)
		}
		v, warnings := NewValidator(path)
		if v.Source() != "embedded" {
			t.Errorf("Source: got %q, want embedded", v.Source())
		}
		if len(warnings) == 0 || !strings.Contains(warnings[0], "invalid schema file") {
			t.Errorf("expected invalid-schema warning, got %v", warnings)
		}
	})

	t.Run("custom schema is enforced", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "strict.schema.json")
		schema := `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "maxItems": 1
}`
		if err := os.WriteFile(path, []byte(schema), 0644); err != nil {
			t.Fatal(err)
		}
		v, warnings := NewValidator(path)
		if len(warnings) != 0 {
			t.Fatalf("unexpected warnings: %v", warnings)
		}
		if v.Source() == "embedded" {
			t.Fatal("expected custom schema source")
		}
		_, err := v.Decode([]byte(`[{"id":"1","text":"a","completed":false},{"id":"2","text":"b","completed":false}]`))
		if err == nil {
			t.Error("expected maxItems violation, got nil")
		}
	})
}

func TestListHelpers(t *testing.T) {
	l := List{
		{ID: "a", Text: "A"},
		{ID: "b", Text: "B", Completed: true},
		{ID: "c", Text: "C"},
	}

	if got := l.Index("b"); got != 1 {
		t.Errorf("Index(b): got %d, want 1", got)
	}
	if got := l.Index("zz"); got != -1 {
		t.Errorf("Index(zz): got %d, want -1", got)
	}

	without := l.Without(0)
	want := List{{ID: "b", Text: "B", Completed: true}, {ID: "c", Text: "C"}}
	if diff := cmp.Diff(want, without); diff != "" {
		t.Errorf("Without(0) mismatch (-want +got):\n%s", diff)
	}
	if len(l) != 3 {
		t.Errorf("Without mutated receiver: len %d", len(l))
	}

	clone := l.Clone()
	clone[0].Text = "changed"
	if l[0].Text != "A" {
		t.Error("Clone shares backing array with original")
	}

	active, completed := l.Counts()
	if active != 2 || completed != 1 {
		t.Errorf("Counts: got (%d, %d), want (2, 1)", active, completed)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"open", FilterActive, false},
		{"Active", FilterActive, false},
		{"done", FilterCompleted, false},
		{"completed", FilterCompleted, false},
		{"someday", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"#":             "",
		"/0":            "[0]",
		"/2/completed":  "[2].completed",
		"#/1/id":        "[1].id",
		"/0/a~1b/c~0d":  "[0].a/b.c~d",
	}
	for in, want := range tests {
		if got := jsonPointerToPath(in); got != want {
			t.Errorf("jsonPointerToPath(%q): got %q, want %q", in, got, want)
		}
	}
}
