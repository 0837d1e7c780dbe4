package configurator

import "sort"

// Selections maps a feature group id to the value ids selected in it.
type Selections map[uint][]uint

// Clone returns a deep copy. Groups with no selected values are dropped.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for groupID, valueIDs := range s {
		if len(valueIDs) == 0 {
			continue
		}
		out[groupID] = append([]uint(nil), valueIDs...)
	}
	return out
}

func (s Selections) Has(groupID, valueID uint) bool {
	return containsID(s[groupID], valueID)
}

// Count returns the number of selected values across all groups.
func (s Selections) Count() int {
	n := 0
	for _, valueIDs := range s {
		n += len(valueIDs)
	}
	return n
}

// GroupIDs returns the ids of groups holding at least one selection, ascending.
func (s Selections) GroupIDs() []uint {
	ids := make([]uint, 0, len(s))
	for groupID, valueIDs := range s {
		if len(valueIDs) > 0 {
			ids = append(ids, groupID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// State is the serializable snapshot of a configuration session.
type State struct {
	ProductID  uint       `json:"product_id"`
	Selections Selections `json:"selections"`
	Quantity   int        `json:"quantity"`
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []uint, id uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
