package candidate

import "testing"

func TestWorkContext(t *testing.T) {
	t.Parallel()

	p := &Profile{ExperienceText: "Built REST APIs", ProjectsText: "Go CLI"}
	if got := p.WorkContext(); got != "built rest apis go cli" {
		t.Fatalf("unexpected work context %q", got)
	}

	var empty *Profile
	if got := empty.WorkContext(); got != " " {
		t.Fatalf("unexpected nil work context %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile *Profile
		expect  string
	}{
		{name: "extracted name", profile: &Profile{Name: "Jane Doe"}, expect: "Jane Doe"},
		{name: "missing name", profile: &Profile{}, expect: "jane_cv"},
		{name: "unknown placeholder", profile: &Profile{Name: "Unknown"}, expect: "jane_cv"},
		{name: "nil profile", profile: nil, expect: "jane_cv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.profile.DisplayName("jane_cv"); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
