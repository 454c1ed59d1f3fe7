package grouping

import (
	"strconv"
	"strings"

	"github.com/jackzampolin/rxscan/internal/candidate"
)

// IdentityName is the registry name of the identity strategy.
const IdentityName = "identity"

// Identity collapses candidates to one per case-insensitive name, keeping
// the highest-confidence instance. The first instance wins ties. Groups come
// out in first-seen order and are numbered 1..n.
type Identity struct{}

// Name implements Strategy.
func (Identity) Name() string { return IdentityName }

// Group implements Strategy.
func (Identity) Group(candidates []candidate.Candidate) []Group {
	best := make(map[string]candidate.Candidate)
	var order []string
	for _, c := range candidates {
		key := strings.ToLower(c.Name)
		prev, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = c
			continue
		}
		if c.Confidence > prev.Confidence {
			best[key] = c
		}
	}

	groups := make([]Group, 0, len(order))
	for i, key := range order {
		c := best[key]
		members := []candidate.Candidate{c}
		groups = append(groups, Group{
			Key:      "name:" + key,
			Position: i + 1,
			Members:  members,
			Summary:  summarize(strconv.Itoa(i+1), members),
		})
	}
	return groups
}
