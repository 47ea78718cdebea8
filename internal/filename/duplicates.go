package filename

import "fmt"

type NameEntry struct {
	ID   string
	Name string
	Ext  string
}

// ResolveDuplicates assigns final names in input order. The first entry with a given
// name+ext keeps it; the nth gets name-v{n}{ext}. Collisions are detected on the
// original name+ext only, so a generated "a-v2.txt" can still clash with a literal
// "a-v2.txt" elsewhere in the batch.
func ResolveDuplicates(entries []NameEntry) map[string]string {
	result := make(map[string]string, len(entries))
	counts := make(map[string]int, len(entries))

	for _, e := range entries {
		full := e.Name + e.Ext
		count := counts[full]
		if count == 0 {
			result[e.ID] = full
		} else {
			result[e.ID] = fmt.Sprintf("%s-v%d%s", e.Name, count+1, e.Ext)
		}
		counts[full] = count + 1
	}

	return result
}

// ResolveDuplicatesReserved resolves entries against names already taken by entries
// outside the batch. A reserved name counts as a first occurrence, and versioned
// candidates that are themselves reserved are skipped.
func ResolveDuplicatesReserved(reserved []string, entries []NameEntry) map[string]string {
	result := make(map[string]string, len(entries))
	counts := make(map[string]int, len(entries)+len(reserved))
	taken := make(map[string]bool, len(entries)+len(reserved))
	for _, name := range reserved {
		counts[name] = 1
		taken[name] = true
	}

	for _, e := range entries {
		full := e.Name + e.Ext
		count := counts[full]
		if count == 0 && !taken[full] {
			result[e.ID] = full
			counts[full] = 1
			taken[full] = true
			continue
		}
		if count == 0 {
			count = 1
		}
		candidate := ""
		for {
			count++
			candidate = fmt.Sprintf("%s-v%d%s", e.Name, count, e.Ext)
			if !taken[candidate] {
				break
			}
		}
		result[e.ID] = candidate
		counts[full] = count
		taken[candidate] = true
	}

	return result
}
