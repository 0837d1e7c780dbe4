package configurator

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, policy Policy) *Session {
	t.Helper()
	s := NewSession(policy)
	s.Initialize(testProduct(1, "100"), testGroups())
	return s
}

func TestSession_InitializeDefaults(t *testing.T) {
	s := newTestSession(t, Policy{})

	assert.Empty(t, s.CurrentSelections())
	assert.Equal(t, 1, s.Quantity())
	assert.Equal(t, "100", s.UnitPrice().String())
	assert.True(t, s.Complete(), "default policy requires nothing")
}

func TestSession_ToggleMulti(t *testing.T) {
	s := newTestSession(t, Policy{})

	assert.True(t, s.ToggleValue(colorGroup, blue))
	assert.True(t, s.ToggleValue(colorGroup, red))
	assert.ElementsMatch(t, []uint{blue, red}, s.CurrentSelections()[colorGroup])

	assert.True(t, s.ToggleValue(colorGroup, blue))
	assert.Equal(t, []uint{red}, s.CurrentSelections()[colorGroup])
}

func TestSession_ToggleMultiIsSelfInverse(t *testing.T) {
	s := newTestSession(t, Policy{})
	s.ToggleValue(colorGroup, red)

	for _, v := range []uint{red, blue, black} {
		before := s.CurrentSelections()
		s.ToggleValue(colorGroup, v)
		s.ToggleValue(colorGroup, v)
		assert.ElementsMatch(t, before[colorGroup], s.CurrentSelections()[colorGroup], "value %d", v)
	}
}

func TestSession_ToggleSingleExclusivity(t *testing.T) {
	s := newTestSession(t, Policy{})

	s.ToggleValue(storageGroup, gb128)
	s.ToggleValue(storageGroup, gb256)
	assert.Equal(t, []uint{gb256}, s.CurrentSelections()[storageGroup])

	// toggling the selected value clears the group
	s.ToggleValue(storageGroup, gb256)
	_, selected := s.CurrentSelections()[storageGroup]
	assert.False(t, selected)
}

func TestSession_ToggleIgnoresUnavailableAndUnknown(t *testing.T) {
	s := newTestSession(t, Policy{})

	assert.False(t, s.ToggleValue(storageGroup, gb512), "unavailable")
	assert.False(t, s.ToggleValue(storageGroup, 999), "unknown value")
	assert.False(t, s.ToggleValue(999, red), "unknown group")
	assert.False(t, s.ToggleValue(emptyGroup, 1), "group without values")
	assert.Empty(t, s.CurrentSelections())
}

func TestSession_LastAppliedSelectionWins(t *testing.T) {
	s := newTestSession(t, Policy{})

	for _, v := range []uint{gb128, gb256, gb128} {
		s.ToggleValue(storageGroup, v)
	}
	assert.Equal(t, []uint{gb128}, s.CurrentSelections()[storageGroup])
}

func TestSession_SetQuantityClamps(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{0, 1},
		{-3, 1},
		{4, 4},
		{1, 1},
	}

	for _, tt := range tests {
		s := newTestSession(t, Policy{})
		s.SetQuantity(tt.in)
		assert.Equal(t, tt.expected, s.Quantity(), "SetQuantity(%d)", tt.in)
	}
}

func TestSession_SetQuantityInput(t *testing.T) {
	s := newTestSession(t, Policy{})

	require.NoError(t, s.SetQuantityInput(" 3 "))
	assert.Equal(t, 3, s.Quantity())

	for _, raw := range []string{"0", "-2", "1.5", "abc", ""} {
		err := s.SetQuantityInput(raw)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "raw %q", raw)
		assert.Equal(t, 3, s.Quantity(), "invalid input leaves quantity alone")
	}
}

func TestSession_ResetIsolation(t *testing.T) {
	s := newTestSession(t, Policy{})
	s.ToggleValue(colorGroup, blue)
	s.ToggleValue(storageGroup, gb256)
	s.SetQuantity(5)

	// product B reuses the same group ids; nothing may carry over
	s.Initialize(testProduct(2, "300"), testGroups())

	assert.Empty(t, s.CurrentSelections())
	assert.Equal(t, 1, s.Quantity())
	assert.Equal(t, "300", s.UnitPrice().String())
}

func TestSession_CurrentSelectionsIsACopy(t *testing.T) {
	s := newTestSession(t, Policy{})
	s.ToggleValue(colorGroup, blue)

	snap := s.CurrentSelections()
	snap[colorGroup][0] = red
	snap[storageGroup] = []uint{gb256}

	assert.Equal(t, []uint{blue}, s.CurrentSelections()[colorGroup])
	assert.Equal(t, "110", s.UnitPrice().String())
}

func TestSession_IsComplete(t *testing.T) {
	s := newTestSession(t, Policy{RequiredGroups: []uint{colorGroup, storageGroup}})

	assert.False(t, s.Complete())
	assert.Equal(t, []uint{colorGroup, storageGroup}, s.MissingGroups())

	s.ToggleValue(colorGroup, red)
	assert.False(t, s.Complete())
	assert.Equal(t, []uint{storageGroup}, s.MissingGroups())

	s.ToggleValue(storageGroup, gb128)
	assert.True(t, s.Complete())

	assert.True(t, s.IsComplete(nil))
	assert.False(t, s.IsComplete([]uint{emptyGroup}), "group without values can never be satisfied")
	assert.False(t, s.IsComplete([]uint{999}), "unknown group")
}

func TestSession_IsCompleteIgnoresStaleSelections(t *testing.T) {
	s := newTestSession(t, Policy{RequiredGroups: []uint{colorGroup}})
	s.ToggleValue(colorGroup, blue)
	require.True(t, s.Complete())

	s.Refresh(withAvailability(testGroups(), blue, false))
	assert.False(t, s.Complete())
}

func TestSession_RefreshKeepsSelections(t *testing.T) {
	s := newTestSession(t, Policy{})
	s.ToggleValue(colorGroup, blue)

	s.Refresh(withAvailability(testGroups(), blue, false))

	// still recorded, no longer priced
	assert.Equal(t, []uint{blue}, s.CurrentSelections()[colorGroup])
	assert.Equal(t, "100", s.UnitPrice().String())

	s.Refresh(testGroups())
	assert.Equal(t, "110", s.UnitPrice().String())
}

func TestSession_Restore(t *testing.T) {
	state := State{ProductID: 1, Selections: Selections{colorGroup: {blue}, storageGroup: {gb256}}, Quantity: 3}

	t.Run("same product", func(t *testing.T) {
		s := NewSession(Policy{})
		assert.True(t, s.Restore(testProduct(1, "100"), testGroups(), state))
		assert.Equal(t, 3, s.Quantity())
		assert.Equal(t, "160", s.UnitPrice().String())
		assert.Equal(t, "480", s.LineTotal().String())
	})

	t.Run("other product discards state", func(t *testing.T) {
		s := NewSession(Policy{})
		assert.False(t, s.Restore(testProduct(2, "100"), testGroups(), state))
		assert.Empty(t, s.CurrentSelections())
		assert.Equal(t, 1, s.Quantity())
	})

	t.Run("quantity clamped", func(t *testing.T) {
		s := NewSession(Policy{})
		s.Restore(testProduct(1, "100"), testGroups(), State{ProductID: 1, Quantity: 0})
		assert.Equal(t, 1, s.Quantity())
	})

	t.Run("state is not aliased", func(t *testing.T) {
		s := NewSession(Policy{})
		s.Restore(testProduct(1, "100"), testGroups(), state)
		s.ToggleValue(colorGroup, red)
		assert.Equal(t, []uint{blue}, state.Selections[colorGroup])
	})
}

func TestSession_State(t *testing.T) {
	s := NewSession(Policy{})
	assert.Equal(t, uint(0), s.State().ProductID)

	s.Initialize(testProduct(1, "100"), testGroups())
	s.ToggleValue(colorGroup, blue)
	s.SetQuantity(2)

	state := s.State()
	assert.Equal(t, uint(1), state.ProductID)
	assert.Equal(t, 2, state.Quantity)
	assert.Equal(t, Selections{colorGroup: {blue}}, state.Selections)
}

func TestSession_Observers(t *testing.T) {
	s := newTestSession(t, Policy{RequiredGroups: []uint{colorGroup}})

	type call struct {
		price    string
		complete bool
	}
	var calls []call
	unsubscribe := s.Subscribe(func(unitPrice decimal.Decimal, complete bool) {
		calls = append(calls, call{unitPrice.String(), complete})
	})

	s.ToggleValue(colorGroup, blue)
	s.SetQuantity(3)
	s.ToggleValue(storageGroup, gb512) // no-op still notifies
	s.ToggleValue(colorGroup, blue)

	assert.Equal(t, []call{
		{"110", true},
		{"110", true},
		{"110", true},
		{"100", false},
	}, calls)

	// observers survive re-initialization
	s.Initialize(testProduct(2, "50"), testGroups())
	s.SetQuantity(2)
	require.Len(t, calls, 5)
	assert.Equal(t, call{"50", false}, calls[4])

	unsubscribe()
	s.SetQuantity(4)
	assert.Len(t, calls, 5)
}

func TestSession_MultipleObserversFireInOrder(t *testing.T) {
	s := newTestSession(t, Policy{})

	var order []string
	s.Subscribe(func(decimal.Decimal, bool) { order = append(order, "a") })
	unsubB := s.Subscribe(func(decimal.Decimal, bool) { order = append(order, "b") })
	s.Subscribe(func(decimal.Decimal, bool) { order = append(order, "c") })

	s.SetQuantity(2)
	unsubB()
	unsubB()
	s.SetQuantity(3)

	assert.Equal(t, []string{"a", "b", "c", "a", "c"}, order)
}

func TestSession_BuildScenario(t *testing.T) {
	s := newTestSession(t, Policy{})
	s.ToggleValue(colorGroup, blue)
	s.SetQuantity(2)

	item, err := s.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), item.ProductID)
	assert.Equal(t, "110", item.UnitPrice.String())
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "220", item.LineTotal.String())
	assert.Equal(t, []model.SelectionSummaryEntry{
		{GroupID: colorGroup, GroupLabel: "Color", ValueIDs: []uint{blue}, ValueLabels: []string{"Blue"}},
	}, item.SelectionSummary)
}

func TestSession_BuildWithoutProduct(t *testing.T) {
	s := NewSession(Policy{})
	_, err := s.Build(nil)
	assert.ErrorIs(t, err, ErrEmptyProduct)
}
