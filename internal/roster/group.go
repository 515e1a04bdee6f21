package roster

import "github.com/mediapoint/roster/internal/domain"

// groupIndex maps a key to the indices of its members in record order.
// Keys are kept in order of first appearance so reductions are
// deterministic.
type groupIndex struct {
	keys    []string
	members map[string][]int
}

// groupBy partitions the records accepted by include on key in one pass.
func groupBy(records []domain.Subscriber, include func(domain.Subscriber) bool, key func(domain.Subscriber) string) groupIndex {
	g := groupIndex{members: make(map[string][]int)}
	for i, r := range records {
		if include != nil && !include(r) {
			continue
		}
		k := key(r)
		if _, ok := g.members[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.members[k] = append(g.members[k], i)
	}
	return g
}

func (g groupIndex) size(key string) int { return len(g.members[key]) }
