package bytecode

import (
	"maps"
	"slices"

	"github.com/trebuchet-org/anchor/internal/domain"
)

// FlattenImmutables merges the per AST node ranges compilers report into one
// list ordered by offset.
func FlattenImmutables(refs map[string][]domain.ImmutableReference) []domain.ImmutableReference {
	var out []domain.ImmutableReference
	for _, id := range slices.Sorted(maps.Keys(refs)) {
		out = append(out, refs[id]...)
	}
	slices.SortStableFunc(out, func(a, b domain.ImmutableReference) int {
		return a.Offset - b.Offset
	})
	return out
}
