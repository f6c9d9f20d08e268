package model

// MergeGroup is an equivalence class of courses that must share one slot
// (spec.md §3). Grouping is transitive through a shared GroupID: if A merges
// with B and B merges with C, all three land in one group.
type MergeGroup struct {
	GroupID string
	Members []string // raw course codes
}

// MergeTable collapses a flat list of (group_id, course_code) pairs into
// MergeGroups, resolving transitive membership via union-find. Mirrors the
// merge semantics of the original ingest's merged_courses table
// (original_source/db/models, group_id -> course_code rows).
type MergeTable struct {
	groups map[string][]string // group id -> member course codes, post transitive-close
	owner  map[string]string   // course code -> owning group id
}

// NewMergeTable builds a MergeTable from raw (groupID, courseCode) pairs.
// Groups that transitively share a course code through different group ids
// are unioned into one.
func NewMergeTable(pairs [][2]string) *MergeTable {
	parent := map[string]string{}
	find := func(x string) string {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	courseGroup := map[string]string{}
	for _, p := range pairs {
		groupID, code := p[0], p[1]
		groupNode := "group:" + groupID
		if _, ok := parent[groupNode]; !ok {
			parent[groupNode] = groupNode
		}
		if _, ok := parent[code]; !ok {
			parent[code] = code
		}
		union(groupNode, code)
		if prev, ok := courseGroup[code]; !ok || groupID < prev {
			courseGroup[code] = groupID
		}
	}

	roots := map[string][]string{}
	for _, p := range pairs {
		code := p[1]
		root := find(code)
		roots[root] = append(roots[root], code)
	}

	mt := &MergeTable{groups: map[string][]string{}, owner: map[string]string{}}
	for _, members := range roots {
		seen := map[string]bool{}
		uniq := make([]string, 0, len(members))
		for _, m := range members {
			if !seen[m] {
				seen[m] = true
				uniq = append(uniq, m)
			}
		}
		// Canonical group id: the smallest group id declared for any member.
		canonical := courseGroup[uniq[0]]
		for _, m := range uniq {
			if g := courseGroup[m]; g < canonical {
				canonical = g
			}
		}
		mt.groups[canonical] = uniq
		for _, m := range uniq {
			mt.owner[m] = canonical
		}
	}
	return mt
}

// GroupOf returns the merge-group id owning courseCode, and whether one exists.
func (mt *MergeTable) GroupOf(courseCode string) (string, bool) {
	g, ok := mt.owner[courseCode]
	return g, ok
}

// Members returns the raw course codes belonging to groupID.
func (mt *MergeTable) Members(groupID string) []string {
	return mt.groups[groupID]
}

// Groups returns every group id known to the table.
func (mt *MergeTable) Groups() []string {
	out := make([]string, 0, len(mt.groups))
	for g := range mt.groups {
		out = append(out, g)
	}
	return out
}
