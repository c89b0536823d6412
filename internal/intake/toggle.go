package intake

// Toggle applies a checkbox change to a multi-select value. Checking adds id if it is
// absent, unchecking removes it. The input slice is never modified.
func Toggle(set []string, id string, checked bool) []string {
	out := make([]string, 0, len(set)+1)
	found := false
	for _, v := range set {
		if v == id {
			if !checked || found {
				continue
			}
			found = true
		}
		out = append(out, v)
	}
	if checked && !found {
		out = append(out, id)
	}
	return out
}

// Normalize drops duplicate selections, keeping first-seen order. It never returns nil.
func Normalize(set []string) []string {
	out := make([]string, 0, len(set))
	seen := make(map[string]struct{}, len(set))
	for _, v := range set {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
