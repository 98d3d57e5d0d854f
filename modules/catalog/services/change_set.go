package services

import (
	"context"
	"sort"

	"github.com/wI2L/jsondiff"

	"github.com/iota-uz/catalog-api/modules/catalog/domain/aggregates/service"
	"github.com/iota-uz/catalog-api/pkg/composables"
)

// changedFields lists the JSON pointers that differ between two versions of a document.
// A failed comparison only costs the log field.
func changedFields(ctx context.Context, before, after service.Document) []string {
	patch, err := jsondiff.Compare(map[string]any(before), map[string]any(after))
	if err != nil {
		composables.UseLogger(ctx).WithError(err).Debug("catalog.service.diff_failed")
		return nil
	}
	paths := make([]string, 0, len(patch))
	seen := make(map[string]struct{}, len(patch))
	for _, op := range patch {
		if _, ok := seen[op.Path]; ok {
			continue
		}
		seen[op.Path] = struct{}{}
		paths = append(paths, op.Path)
	}
	sort.Strings(paths)
	return paths
}
