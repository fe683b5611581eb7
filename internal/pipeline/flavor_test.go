package pipeline

import "testing"

func TestParseFlavor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Flavor
		wantOK bool
	}{
		{"gfm", FlavorGFM, true},
		{"GitLab", FlavorGitLab, true},
		{" mmd ", FlavorMMD, true},
		{"commonmark", FlavorCommonMark, true},
		{"extra", FlavorExtra, true},
		{"standard", FlavorStandard, true},
		{"pymdown", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseFlavor(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseFlavor(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFlavor_References(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flavor Flavor
		want   ReferenceStyle
	}{
		{FlavorGFM, GitHubReferences},
		{FlavorGitLab, GitLabReferences},
		{FlavorCommonMark, NoReferences},
		{FlavorMMD, NoReferences},
	}
	for _, tt := range tests {
		if got := tt.flavor.References(); got != tt.want {
			t.Errorf("%s.References() = %v, want %v", tt.flavor, got, tt.want)
		}
	}
}

func TestFlavors_Unique(t *testing.T) {
	t.Parallel()

	seen := map[Flavor]bool{}
	for _, info := range Flavors() {
		if seen[info.Name] {
			t.Errorf("duplicate flavor %q", info.Name)
		}
		if info.Description == "" {
			t.Errorf("flavor %q has no description", info.Name)
		}
		seen[info.Name] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 flavors, got %d", len(seen))
	}
}
