package grouping

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jackzampolin/rxscan/internal/candidate"
)

// PositionalName is the registry name of the positional strategy.
const PositionalName = "positional"

// Positional groups candidates by their parsed ordinal, one group per
// position, regardless of how differently the passes spelled the name.
// Candidates without an ordinal (position 0) are dropped.
//
// Members are sorted by confidence (desc) then name so the result does not
// depend on the order the passes were parsed in.
type Positional struct{}

// Name implements Strategy.
func (Positional) Name() string { return PositionalName }

// Group implements Strategy.
func (Positional) Group(candidates []candidate.Candidate) []Group {
	byPos := make(map[int][]candidate.Candidate)
	for _, c := range candidates {
		if c.Position <= 0 {
			continue
		}
		byPos[c.Position] = append(byPos[c.Position], c)
	}

	positions := make([]int, 0, len(byPos))
	for p := range byPos {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	groups := make([]Group, 0, len(positions))
	for _, p := range positions {
		members := byPos[p]
		sort.SliceStable(members, func(i, j int) bool {
			if members[i].Confidence != members[j].Confidence {
				return members[i].Confidence > members[j].Confidence
			}
			if members[i].Name != members[j].Name {
				return members[i].Name < members[j].Name
			}
			return members[i].Dosage < members[j].Dosage
		})
		groups = append(groups, Group{
			Key:      fmt.Sprintf("position:%d", p),
			Position: p,
			Members:  members,
			Summary:  summarize(strconv.Itoa(p), members),
		})
	}
	return groups
}
