package configurator

import (
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

// Policy decides which groups need a selection before a configuration counts as complete.
// The zero value requires nothing.
type Policy struct {
	RequiredGroups []uint `json:"required_groups"`
}

// ResolvePolicy maps required group labels onto the ids of the given groups.
// Labels match case-insensitively; labels naming no group of this product are dropped.
func ResolvePolicy(labels []string, groups []model.FeatureGroup) Policy {
	var required []uint
	for _, label := range labels {
		label = strings.TrimSpace(label)
		for _, g := range groups {
			if strings.EqualFold(g.Label, label) && !containsID(required, g.ID) {
				required = append(required, g.ID)
				break
			}
		}
	}
	return Policy{RequiredGroups: required}
}

// IsComplete reports whether every required group has at least one selected value
// that exists and is available. A required group missing from groups is never satisfied.
func IsComplete(groups []model.FeatureGroup, selections Selections, required []uint) bool {
	return len(MissingGroups(groups, selections, required)) == 0
}

// MissingGroups returns the required group ids that are not yet satisfied, in the order given.
func MissingGroups(groups []model.FeatureGroup, selections Selections, required []uint) []uint {
	var missing []uint
	for _, groupID := range required {
		if !groupSatisfied(findGroup(groups, groupID), selections[groupID]) {
			missing = append(missing, groupID)
		}
	}
	return missing
}

func groupSatisfied(group *model.FeatureGroup, valueIDs []uint) bool {
	if group == nil {
		return false
	}
	for _, valueID := range valueIDs {
		if v := group.FindValue(valueID); v != nil && v.Available {
			return true
		}
	}
	return false
}
