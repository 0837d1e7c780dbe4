package configurator

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// Observer receives the recomputed unit price and completeness after each change.
type Observer func(unitPrice decimal.Decimal, complete bool)

type observerEntry struct {
	id int
	fn Observer
}

// Session holds the selections and quantity of one product configuration.
// It is not safe for concurrent use.
type Session struct {
	policy     Policy
	product    *model.Product
	groups     []model.FeatureGroup
	selections Selections
	quantity   int

	observers      []observerEntry
	nextObserverID int
}

func NewSession(policy Policy) *Session {
	return &Session{
		policy:     policy,
		selections: Selections{},
		quantity:   MinQuantity,
	}
}

// Initialize loads a product and clears every selection. Quantity goes back to 1.
// Subscribed observers stay attached.
func (s *Session) Initialize(product *model.Product, groups []model.FeatureGroup) {
	s.product = product
	s.groups = groups
	s.selections = Selections{}
	s.quantity = MinQuantity
}

// Restore initializes the session and re-applies state when it belongs to the same
// product. It reports whether the state was applied.
func (s *Session) Restore(product *model.Product, groups []model.FeatureGroup, state State) bool {
	s.Initialize(product, groups)
	if product == nil || state.ProductID != product.ID {
		return false
	}
	s.selections = state.Selections.Clone()
	s.quantity = ClampQuantity(state.Quantity)
	return true
}

// Refresh swaps in reloaded feature data for the current product. Selections are kept
// as they are; ids that no longer resolve are ignored by pricing and summaries.
func (s *Session) Refresh(groups []model.FeatureGroup) {
	s.groups = groups
}

func (s *Session) SetPolicy(policy Policy) {
	s.policy = policy
}

// ToggleValue flips valueID in groupID and reports whether the selection changed.
// Unknown groups, unknown values and unavailable values are ignored.
// Observers fire after every call.
func (s *Session) ToggleValue(groupID, valueID uint) bool {
	changed := s.toggle(groupID, valueID)
	s.notify()
	return changed
}

func (s *Session) toggle(groupID, valueID uint) bool {
	group := findGroup(s.groups, groupID)
	if group == nil {
		return false
	}
	value := group.FindValue(valueID)
	if value == nil || !value.Available {
		return false
	}

	current := s.selections[groupID]
	switch {
	case containsID(current, valueID) && group.IsSingle():
		delete(s.selections, groupID)
	case containsID(current, valueID):
		remaining := removeID(current, valueID)
		if len(remaining) == 0 {
			delete(s.selections, groupID)
		} else {
			s.selections[groupID] = remaining
		}
	case group.IsSingle():
		s.selections[groupID] = []uint{valueID}
	default:
		s.selections[groupID] = append(append([]uint(nil), current...), valueID)
	}
	return true
}

// SetQuantity stores n, raised to 1 if lower. Observers fire after every call.
func (s *Session) SetQuantity(n int) {
	s.quantity = ClampQuantity(n)
	s.notify()
}

// SetQuantityInput parses raw input and stores it. Invalid input leaves the session untouched.
func (s *Session) SetQuantityInput(raw string) error {
	n, err := ParseQuantity(raw)
	if err != nil {
		return err
	}
	s.SetQuantity(n)
	return nil
}

func (s *Session) IsComplete(required []uint) bool {
	return IsComplete(s.groups, s.selections, required)
}

// Complete evaluates the session's own policy.
func (s *Session) Complete() bool {
	return s.IsComplete(s.policy.RequiredGroups)
}

func (s *Session) MissingGroups() []uint {
	return MissingGroups(s.groups, s.selections, s.policy.RequiredGroups)
}

// CurrentSelections returns a copy; mutating it does not affect the session.
func (s *Session) CurrentSelections() Selections {
	return s.selections.Clone()
}

func (s *Session) Quantity() int                { return s.quantity }
func (s *Session) Product() *model.Product      { return s.product }
func (s *Session) Groups() []model.FeatureGroup { return s.groups }
func (s *Session) Policy() Policy               { return s.policy }

func (s *Session) State() State {
	var productID uint
	if s.product != nil {
		productID = s.product.ID
	}
	return State{
		ProductID:  productID,
		Selections: s.selections.Clone(),
		Quantity:   s.quantity,
	}
}

func (s *Session) UnitPrice() decimal.Decimal {
	return ComputeUnitPrice(s.product, s.groups, s.selections)
}

func (s *Session) LineTotal() decimal.Decimal {
	return ComputeLineTotal(s.UnitPrice(), s.quantity)
}

// Build emits a fresh descriptor for the current configuration. A nil builder uses
// the default placeholder image.
func (s *Session) Build(builder *Builder) (*LineItemDescriptor, error) {
	if builder == nil {
		builder = NewBuilder("")
	}
	return builder.Build(s.product, s.groups, s.selections, s.quantity)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Session) Subscribe(fn Observer) (unsubscribe func()) {
	s.nextObserverID++
	id := s.nextObserverID
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})

	return func() {
		for i, entry := range s.observers {
			if entry.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) notify() {
	if len(s.observers) == 0 {
		return
	}
	unitPrice := s.UnitPrice()
	complete := s.Complete()
	for _, entry := range s.observers {
		entry.fn(unitPrice, complete)
	}
}
