package nostr

import "sort"

// MergeIssues flattens batches, keeps the first issue seen for each id and
// orders the result newest first. Equal timestamps keep first-seen order.
func MergeIssues(batches ...[]*Issue) []*Issue {
	seen := make(map[string]struct{})
	merged := make([]*Issue, 0)

	for _, batch := range batches {
		for _, issue := range batch {
			if issue == nil {
				continue
			}
			if _, ok := seen[issue.ID]; ok {
				continue
			}
			seen[issue.ID] = struct{}{}
			merged = append(merged, issue)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	return merged
}
