//go:build property

package watcher

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties checks that a flush yields one sorted event per
// distinct path.
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("flush deduplicates and sorts by path", prop.ForAll(
		func(ids []int) bool {
			if len(ids) == 0 {
				return true
			}
			d := newDebouncer(time.Hour)
			distinct := make(map[string]bool)
			for _, id := range ids {
				path := fmt.Sprintf("/project/test/%02d.test.ts", id)
				distinct[path] = true
				d.pending = append(d.pending, ChangeEvent{Path: path, Type: EventTypeModified})
			}
			d.flush()

			events := <-d.output
			if len(events) != len(distinct) {
				return false
			}
			if len(d.pending) != 0 {
				return false
			}
			return sort.SliceIsSorted(events, func(i, j int) bool { return events[i].Path < events[j].Path })
		},
		gen.SliceOf(gen.IntRange(0, 30)),
	))

	properties.Property("last event for a path wins", prop.ForAll(
		func(types []int) bool {
			if len(types) == 0 {
				return true
			}
			d := newDebouncer(time.Hour)
			for _, tp := range types {
				d.pending = append(d.pending, ChangeEvent{Path: "/project/package.json", Type: EventType(tp)})
			}
			d.flush()
			events := <-d.output
			return len(events) == 1 && events[0].Type == EventType(types[len(types)-1])
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
