package curriculum

import "sort"

// MergeProgress returns the proposed updates that must be written.
//
// Proposals for the same (child, work) are first collapsed to their highest status,
// then kept only when strictly higher than the existing status (absent means not_started).
// Stored progress therefore never moves down. The result is sorted by child then work.
func MergeProgress(existing map[ProgressKey]Status, proposed []ProgressUpdate) []ProgressUpdate {
	best := dedupeProgress(proposed)

	out := make([]ProgressUpdate, 0, len(best))
	for key, status := range best {
		if status <= existing[key] {
			continue
		}
		out = append(out, ProgressUpdate{ChildID: key.ChildID, WorkID: key.WorkID, Status: status})
	}
	sortProgress(out)
	return out
}

// ProgressKeys returns the distinct (child, work) pairs of updates, sorted.
func ProgressKeys(updates []ProgressUpdate) []ProgressKey {
	best := dedupeProgress(updates)
	keys := make([]ProgressKey, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

func dedupeProgress(updates []ProgressUpdate) map[ProgressKey]Status {
	best := make(map[ProgressKey]Status, len(updates))
	for _, u := range updates {
		k := u.Key()
		if s, ok := best[k]; !ok || u.Status > s {
			best[k] = u.Status
		}
	}
	return best
}

func sortProgress(updates []ProgressUpdate) {
	sort.Slice(updates, func(i, j int) bool { return keyLess(updates[i].Key(), updates[j].Key()) })
}

func keyLess(a, b ProgressKey) bool {
	if a.ChildID != b.ChildID {
		return a.ChildID < b.ChildID
	}
	return a.WorkID < b.WorkID
}
