package vocab

import (
	"reflect"
	"testing"
)

func TestSkillsMatcherVocabularyOrder(t *testing.T) {
	t.Parallel()

	m := Default().MustCompile()

	got := m.Skills.Find("mongodb rest apis node.js and python, some docker")
	want := []string{"python", "node.js", "mongodb", "docker", "rest"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSkillsMatcherWholeWord(t *testing.T) {
	t.Parallel()

	m := Default().MustCompile()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "api is not matched inside apis", text: "rest apis", want: []string{"rest"}},
		{name: "java is not javascript", text: "javascript only", want: []string{"javascript"}},
		{name: "dot is literal", text: "nodexjs", want: []string{}},
		{name: "multi word skill", text: "Machine Learning and NLP", want: []string{"machine learning", "nlp"}},
		{name: "case insensitive", text: "Kubernetes, AWS", want: []string{"aws", "kubernetes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := m.Skills.Find(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEducationMatcher(t *testing.T) {
	t.Parallel()

	m := Default().MustCompile()

	got := m.Education.Find("Ph.D. in Physics, MBA")
	want := []string{"ph.d", "mba"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNilMatcher(t *testing.T) {
	t.Parallel()

	var m *Matcher
	if got := m.Find("anything"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if m.Keywords() != nil {
		t.Fatalf("expected nil keywords")
	}
}

func TestNewPatternMatcherInvalid(t *testing.T) {
	t.Parallel()

	if _, err := NewPatternMatcher([]string{"("}); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	set, err := Decode(map[string]any{
		"skills": []any{"go", "grpc"},
		"roles":  "sre",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(set.Skills, []string{"go", "grpc"}) {
		t.Fatalf("unexpected skills: %v", set.Skills)
	}
	if !reflect.DeepEqual(set.Roles, []string{"sre"}) {
		t.Fatalf("unexpected roles: %v", set.Roles)
	}
	if !reflect.DeepEqual(set.Education, Default().Education) {
		t.Fatalf("expected default education to be kept")
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	if _, err := Decode(map[string]any{"hobbies": []string{"chess"}}); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDecodeEmpty(t *testing.T) {
	t.Parallel()

	set, err := Decode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(set, Default()) {
		t.Fatalf("expected default set")
	}
}
