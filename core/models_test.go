package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_DifferentContent(t *testing.T) {
	id1 := IDFromContent("first")
	id2 := IDFromContent("second")
	if id1 == id2 {
		t.Errorf("IDFromContent() produced identical IDs for different content: %d", id1)
	}
}

func TestEntryIDFor(t *testing.T) {
	base := EntryIDFor("doc-1", 0, "some chunk text")

	if got := EntryIDFor("doc-1", 0, "some chunk text"); got != base {
		t.Errorf("EntryIDFor() not deterministic: %d vs %d", got, base)
	}
	if got := EntryIDFor("doc-2", 0, "some chunk text"); got == base {
		t.Error("EntryIDFor() ignored document ID")
	}
	if got := EntryIDFor("doc-1", 1, "some chunk text"); got == base {
		t.Error("EntryIDFor() ignored chunk index")
	}
	if got := EntryIDFor("doc-1", 0, "other chunk text"); got == base {
		t.Error("EntryIDFor() ignored chunk text")
	}
}

func TestContentTypeString(t *testing.T) {
	tests := []struct {
		ct   ContentType
		want string
	}{
		{ContentTypeText, "text"},
		{ContentTypeCode, "code"},
		{ContentTypeMarkdown, "markdown"},
		{ContentTypeDocumentation, "documentation"},
		{ContentTypeConfig, "config"},
		{ContentType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("ContentType(%d).String() = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestParseContentType(t *testing.T) {
	for _, name := range []string{"text", "code", "markdown", "documentation", "config"} {
		ct, err := ParseContentType(name)
		if err != nil {
			t.Errorf("ParseContentType(%q) returned error: %v", name, err)
		}
		if ct.String() != name {
			t.Errorf("ParseContentType(%q) round-trip = %q", name, ct.String())
		}
	}

	if _, err := ParseContentType("binary"); err == nil {
		t.Error("ParseContentType() accepted unknown name")
	}
}
