package statediff

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	txt, err := Render(map[string]any{"count": 1, "user": map[string]any{"name": "Ada"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"count: 1", "name: Ada"} {
		if !strings.Contains(txt, want) {
			t.Errorf("rendering %q missing %q", txt, want)
		}
	}
}

func TestDiff(t *testing.T) {
	from := map[string]any{"count": 1, "user": map[string]any{"name": "Ada"}}
	to := map[string]any{"count": 2, "user": map[string]any{"name": "Ada"}}

	txt, err := Diff(from, to, false)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !strings.Contains(txt, "- count: 1") {
		t.Errorf("diff missing deletion:\n%s", txt)
	}
	if !strings.Contains(txt, "+ count: 2") {
		t.Errorf("diff missing insertion:\n%s", txt)
	}
	if !strings.Contains(txt, "  name: Ada") {
		t.Errorf("diff missing unchanged line:\n%s", txt)
	}
}

func TestDiff_Equal(t *testing.T) {
	v := map[string]any{"a": 1}
	txt, err := Diff(v, v, false)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if strings.Contains(txt, "+") || strings.Contains(txt, "-") {
		t.Errorf("diff of equal values has changes:\n%s", txt)
	}
}
