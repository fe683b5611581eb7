package mdpreview

// Notes:
// - MIMETypes / HandlesMIME: registered types, parameters, case
// - Stage.String / MenuItem.String: labels used in logs and menus

import (
	"slices"
	"testing"
)

// ---------------------------------------------------------------------------
// TestHandlesMIME - MIME Registration
// ---------------------------------------------------------------------------

func TestMIMETypes(t *testing.T) {
	t.Parallel()

	want := []string{"text/markdown", "text/x-markdown", "application/x-markdown", "text/x-web-markdown"}
	got := MIMETypes()
	if !slices.Equal(got, want) {
		t.Fatalf("MIMETypes() = %v, want %v", got, want)
	}

	got[0] = "text/plain"
	if MIMETypes()[0] != "text/markdown" {
		t.Error("MIMETypes() returned shared backing array")
	}
}

func TestHandlesMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mime string
		want bool
	}{
		{"text/markdown", true},
		{"TEXT/Markdown", true},
		{"text/markdown; charset=utf-8", true},
		{"application/x-markdown", true},
		{"text/x-web-markdown", true},
		{"text/plain", false},
		{"text/html", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			t.Parallel()

			if got := HandlesMIME(tt.mime); got != tt.want {
				t.Errorf("HandlesMIME(%q) = %v, want %v", tt.mime, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStrings - Labels
// ---------------------------------------------------------------------------

func TestStage_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage Stage
		want  string
	}{
		{StageUser, "user"},
		{StageSystem, "system"},
		{StageGeneric, "generic"},
		{StageRaw, "raw"},
		{Stage(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", tt.stage, got, tt.want)
		}
	}
}

func TestMenuItem_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		item MenuItem
		want string
	}{
		{MenuPrint, "Print"},
		{MenuSeparator, "---"},
		{MenuCopy, "Copy"},
		{MenuSelectAll, "Select All"},
	}
	for _, tt := range tests {
		if got := tt.item.String(); got != tt.want {
			t.Errorf("MenuItem(%d).String() = %q, want %q", tt.item, got, tt.want)
		}
	}
}
