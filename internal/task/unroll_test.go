package task

import (
	"testing"

	uperrors "github.com/up-stack/up/internal/errors"
)

func assertTasksEqual(t *testing.T, got, want []*Task) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tasks, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("task %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUnroll_NoLoop(t *testing.T) {
	input := []*Task{mk("a", 1, "b", 2), mk("c", 3, "d", 4)}

	got, err := Unroll(input)
	if err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	assertTasksEqual(t, got, []*Task{mk("a", 1, "b", 2), mk("c", 3, "d", 4)})
}

func TestUnroll_Loop(t *testing.T) {
	input := []*Task{
		mk("a", 1, "b", 2, KeyLoop, []*Task{mk("c", 3), mk("d", 4)}),
	}

	got, err := Unroll(input)
	if err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	assertTasksEqual(t, got, []*Task{
		mk("a", 1, "b", 2, "c", 3),
		mk("a", 1, "b", 2, "d", 4),
	})
}

func TestUnroll_LoopOverride(t *testing.T) {
	// The item's "b" overwrites the base value but keeps the base
	// position; the fresh key "d" is appended.
	input := []*Task{
		mk("a", 1, "b", 2, KeyLoop, []*Task{mk("c", 3), mk("b", 5, "d", 4)}),
	}

	got, err := Unroll(input)
	if err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	assertTasksEqual(t, got, []*Task{
		mk("a", 1, "b", 2, "c", 3),
		mk("a", 1, "b", 5, "d", 4),
	})
}

func TestUnroll_EmptyInput(t *testing.T) {
	got, err := Unroll([]*Task{})
	if err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d tasks, want 0", len(got))
	}
}

func TestUnroll_ExpansionStaysInPlace(t *testing.T) {
	// Expanded tasks are emitted contiguously where the looped task sat.
	input := []*Task{
		mk("first", 1),
		mk("n", 0, KeyLoop, []*Task{mk("n", 1), mk("n", 2)}),
		mk("last", 1),
	}

	got, err := Unroll(input)
	if err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	assertTasksEqual(t, got, []*Task{
		mk("first", 1),
		mk("n", 1),
		mk("n", 2),
		mk("last", 1),
	})
}

func TestUnroll_EmptyLoopDropsTask(t *testing.T) {
	input := []*Task{mk("a", 1, KeyLoop, []*Task{}), mk("b", 2)}

	got, err := Unroll(input)
	if err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	assertTasksEqual(t, got, []*Task{mk("b", 2)})
}

func TestUnroll_DoesNotMutateInput(t *testing.T) {
	base := mk("a", 1, KeyLoop, []*Task{mk("b", 2)})
	input := []*Task{base}

	if _, err := Unroll(input); err != nil {
		t.Fatalf("Unroll failed: %v", err)
	}
	if !base.Has(KeyLoop) {
		t.Error("Unroll removed the loop key from the input task")
	}
	if base.Has("b") {
		t.Error("Unroll merged item keys into the input task")
	}
}

func TestUnroll_NestedLoopRejected(t *testing.T) {
	input := []*Task{
		mk("a", 1, KeyLoop, []*Task{
			mk("b", 2, KeyLoop, []*Task{mk("c", 3)}),
		}),
	}

	_, err := Unroll(input)
	if err == nil {
		t.Fatal("Unroll succeeded, want error")
	}
	if !uperrors.HasCode(err, uperrors.CodePlaybookInvalid) {
		t.Errorf("error = %v, want code %s", err, uperrors.CodePlaybookInvalid)
	}
}

func TestUnroll_BadLoopValueRejected(t *testing.T) {
	input := []*Task{mk("a", 1, KeyLoop, "not-a-sequence")}

	_, err := Unroll(input)
	if err == nil {
		t.Fatal("Unroll succeeded, want error")
	}
	if !uperrors.HasCode(err, uperrors.CodePlaybookInvalid) {
		t.Errorf("error = %v, want code %s", err, uperrors.CodePlaybookInvalid)
	}
}
