package workload

import (
	"github.com/taskscout/taskscout/models"
)

// Fallback scores used when the workload model cannot answer.
const (
	noRosterAvailability = 0.8
	unknownAvailability  = 0.6
	neutralSkillMatch    = 0.7
	noRosterSkillMatch   = 0.6
	unknownSkillMatch    = 0.6
	unknownMemberRatio   = 0.5
)

// Availability scores how free the people attached to an item are. An
// unassigned item scores as the most available member, so work flows toward
// spare capacity. An assigned item scores as the mean availability of its
// assignees known to the workload model.
func Availability(item models.WorkItem, workloads []models.TeamMemberWorkload) float64 {
	if !item.Assigned() {
		if len(workloads) == 0 {
			return noRosterAvailability
		}
		best := 0.0
		for _, w := range workloads {
			if w.AvailabilityScore > best {
				best = w.AvailabilityScore
			}
		}
		return best
	}

	byName := indexByName(workloads)
	sum := 0.0
	known := 0
	for _, username := range item.Assignees {
		if w, ok := byName[username]; ok {
			sum += w.AvailabilityScore
			known++
		}
	}
	if known == 0 {
		return unknownAvailability
	}
	return sum / float64(known)
}

// SkillMatch scores the overlap between an item's required skill domains and
// the skill areas inferred for team members. Items with no identifiable
// skill requirements score neutral. For unassigned items the best member
// wins; for assigned items the ratio is averaged over the assignees, with
// members missing from the model counted at a flat ratio.
func SkillMatch(item models.WorkItem, requiredSkills []string, workloads []models.TeamMemberWorkload) float64 {
	if len(requiredSkills) == 0 {
		return neutralSkillMatch
	}

	if !item.Assigned() {
		if len(workloads) == 0 {
			return noRosterSkillMatch
		}
		best := 0.0
		for _, w := range workloads {
			if r := overlapScore(requiredSkills, w.SkillAreas); r > best {
				best = r
			}
		}
		return best
	}

	byName := indexByName(workloads)
	sum := 0.0
	known := 0
	for _, username := range item.Assignees {
		w, ok := byName[username]
		if !ok {
			sum += unknownMemberRatio
			continue
		}
		sum += overlapScore(requiredSkills, w.SkillAreas)
		known++
	}
	if known == 0 {
		return unknownSkillMatch
	}
	return sum / float64(len(item.Assignees))
}

// overlapScore maps the fraction of required skills a member covers onto the
// score scale. Even zero overlap keeps a floor score: an unfamiliar domain
// is a handicap, not a veto.
func overlapScore(required, skills []string) float64 {
	matched := 0
	for _, r := range required {
		for _, s := range skills {
			if r == s {
				matched++
				break
			}
		}
	}

	ratio := float64(matched) / float64(len(required))
	switch {
	case ratio >= 1.0:
		return 1.0
	case ratio >= 0.7:
		return 0.9
	case ratio >= 0.5:
		return 0.7
	case ratio >= 0.3:
		return 0.6
	default:
		return 0.4
	}
}

func indexByName(workloads []models.TeamMemberWorkload) map[string]models.TeamMemberWorkload {
	byName := make(map[string]models.TeamMemberWorkload, len(workloads))
	for _, w := range workloads {
		byName[w.Username] = w
	}
	return byName
}
