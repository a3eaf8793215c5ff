package task

import (
	"fmt"

	"github.com/up-stack/up/internal/errors"
)

// Unroll expands tasks carrying a "loop" key into one task per loop
// item. Tasks without a loop pass through unchanged, preserving their
// relative order; expanded tasks are emitted contiguously at the
// original task's position, in the loop sequence's order.
//
// Each output task is the base task without its loop key: keys also
// present in the loop item keep their position and take the item's
// value, remaining item keys are appended in the item's own order.
//
// A loop item carrying its own loop key is rejected: nested loop
// expansion is not supported.
func Unroll(tasks []*Task) ([]*Task, error) {
	out := make([]*Task, 0, len(tasks))

	for i, t := range tasks {
		raw, ok := t.Get(KeyLoop)
		if !ok {
			out = append(out, t)
			continue
		}

		items, ok := raw.([]*Task)
		if !ok {
			return nil, errors.PlaybookInvalid(
				fmt.Sprintf("task %d: loop must be a sequence of mappings, got %T", i, raw))
		}

		for j, item := range items {
			if item.Has(KeyLoop) {
				return nil, errors.PlaybookInvalid(
					fmt.Sprintf("task %d: loop item %d carries a nested loop", i, j))
			}

			merged := t.Clone()
			merged.Delete(KeyLoop)
			for _, k := range item.Keys() {
				v, _ := item.Get(k)
				merged.Set(k, v)
			}
			out = append(out, merged)
		}
	}

	return out, nil
}
