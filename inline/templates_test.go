package inline

import (
	"testing"

	"styliner/config"
)

func TestExpandTemplate(t *testing.T) {
	got, err := expandTemplate(config.OutputNameTemplateFieldName, "{{ .Title }} ({{ .SourceFile }})", "Digest", "in/note.html")
	if err != nil {
		t.Fatalf("expandTemplate() error = %v", err)
	}
	if got != "Digest (note)" {
		t.Errorf("expandTemplate() = %q", got)
	}
}

func TestExpandTemplate_SprigFunctions(t *testing.T) {
	got, err := expandTemplate(config.OutputNameTemplateFieldName, `{{ .Title | lower | replace " " "-" }}`, "Monthly Digest", "note.html")
	if err != nil {
		t.Fatalf("expandTemplate() error = %v", err)
	}
	if got != "monthly-digest" {
		t.Errorf("expandTemplate() = %q", got)
	}
}

func TestExpandTemplate_BadSyntax(t *testing.T) {
	if _, err := expandTemplate(config.OutputNameTemplateFieldName, "{{ .Title", "x", "y"); err == nil {
		t.Error("Expected error for malformed template")
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{`<html><head><title> My Page </title></head><body></body></html>`, "My Page"},
		{`<html><head></head><body><p>no title</p></body></html>`, ""},
		{``, ""},
	}
	for _, tc := range tests {
		if got := documentTitle([]byte(tc.doc)); got != tc.want {
			t.Errorf("documentTitle(%q) = %q, want %q", tc.doc, got, tc.want)
		}
	}
}
