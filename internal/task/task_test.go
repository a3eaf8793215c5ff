package task

import (
	"testing"

	"gopkg.in/yaml.v3"

	uperrors "github.com/up-stack/up/internal/errors"
)

// mk builds a task from alternating key, value pairs.
func mk(pairs ...any) *Task {
	t := New()
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Set(pairs[i].(string), pairs[i+1])
	}
	return t
}

func TestTask_SetPreservesOrder(t *testing.T) {
	tk := mk("a", 1, "b", 2, "c", 3)

	got := tk.Keys()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Overwriting keeps the position.
	tk.Set("b", 99)
	if got := tk.Keys(); got[1] != "b" {
		t.Errorf("after overwrite, Keys()[1] = %q, want b", got[1])
	}
	if v, _ := tk.Get("b"); v != 99 {
		t.Errorf("Get(b) = %v, want 99", v)
	}
	if tk.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tk.Len())
	}
}

func TestTask_Delete(t *testing.T) {
	tk := mk("a", 1, "b", 2, "c", 3)
	tk.Delete("b")

	if tk.Has("b") {
		t.Error("Has(b) = true after Delete")
	}
	got := tk.Keys()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Keys() = %v, want [a c]", got)
	}

	// Deleting a missing key is a no-op.
	tk.Delete("missing")
	if tk.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tk.Len())
	}
}

func TestTask_CloneIsIndependent(t *testing.T) {
	orig := mk("a", 1, "b", 2)
	clone := orig.Clone()

	clone.Set("c", 3)
	clone.Set("a", 42)

	if orig.Has("c") {
		t.Error("mutating clone leaked a key into the original")
	}
	if v, _ := orig.Get("a"); v != 1 {
		t.Errorf("original a = %v, want 1", v)
	}
	if !orig.Equal(mk("a", 1, "b", 2)) {
		t.Errorf("original changed: %v", orig)
	}
}

func TestTask_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b *Task
		want bool
	}{
		{"same", mk("a", 1, "b", 2), mk("a", 1, "b", 2), true},
		{"different value", mk("a", 1), mk("a", 2), false},
		{"different order", mk("a", 1, "b", 2), mk("b", 2, "a", 1), false},
		{"different length", mk("a", 1), mk("a", 1, "b", 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTask_UnmarshalYAML_OrderPreserved(t *testing.T) {
	src := "zeta: 1\nalpha: 2\nmiddle: 3\n"

	var tk Task
	if err := yaml.Unmarshal([]byte(src), &tk); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	got := tk.Keys()
	want := []string{"zeta", "alpha", "middle"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestTask_UnmarshalYAML_Loop(t *testing.T) {
	src := `
name: install packages
loop:
  - pkg: curl
  - pkg: git
`
	var tk Task
	if err := yaml.Unmarshal([]byte(src), &tk); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	raw, ok := tk.Get(KeyLoop)
	if !ok {
		t.Fatal("loop key missing")
	}
	items, ok := raw.([]*Task)
	if !ok {
		t.Fatalf("loop value is %T, want []*Task", raw)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if v, _ := items[1].Get("pkg"); v != "git" {
		t.Errorf("items[1].pkg = %v, want git", v)
	}
}

func TestTask_UnmarshalYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"duplicate key", "a: 1\na: 2\n"},
		{"loop not a sequence", "loop: 42\n"},
		{"loop item not a mapping", "loop:\n  - just-a-string\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tk Task
			err := yaml.Unmarshal([]byte(tt.src), &tk)
			if err == nil {
				t.Fatal("Unmarshal succeeded, want error")
			}
			if !uperrors.HasCode(err, uperrors.CodePlaybookInvalid) {
				t.Errorf("error = %v, want code %s", err, uperrors.CodePlaybookInvalid)
			}
		})
	}
}

func TestTask_MarshalYAML_Roundtrip(t *testing.T) {
	orig := mk("name", "copy config", "src", "app.conf.j2", "mode", "u=rw,g=r,o=")

	data, err := yaml.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Task
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !orig.Equal(&back) {
		t.Errorf("roundtrip changed task: %v -> %v", orig, &back)
	}
}
