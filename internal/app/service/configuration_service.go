package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/configurator"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound         = errors.New("configuration session not found")
	ErrIncompleteConfiguration = errors.New("configuration is missing required selections")
	ErrSessionAccessDenied     = errors.New("configuration session belongs to another user")
)

const (
	EventPriceChanged  = "price_changed"
	EventSessionClosed = "session_closed"
)

// PolicyResolver returns the labels of the groups a product requires before commit.
type PolicyResolver interface {
	RequiredLabels(productID uint) []string
}

// PriceNotifier pushes session events to live displays and disconnects them once the session ends.
type PriceNotifier interface {
	SendToSession(sessionID string, message interface{}) error
	CloseSession(sessionID string)
}

type PriceUpdate struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Quantity  int             `json:"quantity"`
	Complete  bool            `json:"complete"`
}

type SessionEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

type SessionView struct {
	ID             string                        `json:"id"`
	ProductID      uint                          `json:"product_id"`
	ProductName    string                        `json:"product_name"`
	Selections     configurator.Selections       `json:"selections"`
	Quantity       int                           `json:"quantity"`
	UnitPrice      decimal.Decimal               `json:"unit_price"`
	LineTotal      decimal.Decimal               `json:"line_total"`
	Complete       bool                          `json:"complete"`
	RequiredGroups []uint                        `json:"required_groups"`
	MissingGroups  []uint                        `json:"missing_groups"`
	Summary        []model.SelectionSummaryEntry `json:"selection_summary"`
	ExpiresAt      time.Time                     `json:"expires_at"`
}

type ConfigurationService interface {
	Start(ctx context.Context, productID, userID uint) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	Toggle(ctx context.Context, id string, groupID, valueID uint) (*SessionView, error)
	SetQuantity(ctx context.Context, id string, raw string) (*SessionView, error)
	Commit(ctx context.Context, id string, userID uint) (*configurator.LineItemDescriptor, *model.CartItem, error)
	Discard(ctx context.Context, id string, userID uint) error
}

type configurationService struct {
	store    repository.SessionStore
	catalog  CatalogProvider
	cart     CartStore
	builder  *configurator.Builder
	policies PolicyResolver
	notifier PriceNotifier
	locks    *sessionLocks
}

// NewConfigurationService hosts engine sessions on top of a session store.
// notifier may be nil; price changes are then not pushed anywhere.
func NewConfigurationService(
	store repository.SessionStore,
	catalog CatalogProvider,
	cart CartStore,
	builder *configurator.Builder,
	policies PolicyResolver,
	notifier PriceNotifier,
) ConfigurationService {
	if builder == nil {
		builder = configurator.NewBuilder("")
	}
	return &configurationService{
		store:    store,
		catalog:  catalog,
		cart:     cart,
		builder:  builder,
		policies: policies,
		notifier: notifier,
		locks:    newSessionLocks(),
	}
}

func (s *configurationService) Start(ctx context.Context, productID, userID uint) (*SessionView, error) {
	logger.Info("Starting configuration session", map[string]interface{}{
		"product_id": productID,
		"user_id":    userID,
	})

	session, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	record := &repository.SessionRecord{
		ID:         uuid.New().String(),
		ProductID:  productID,
		UserID:     userID,
		Selections: session.CurrentSelections(),
		Quantity:   session.Quantity(),
	}
	if err := s.store.Save(ctx, record); err != nil {
		logger.Error("Failed to save configuration session", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	logger.Info("Configuration session started", map[string]interface{}{
		"session_id": record.ID,
		"product_id": productID,
	})
	return newSessionView(record, session), nil
}

func (s *configurationService) Get(ctx context.Context, id string) (*SessionView, error) {
	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	session, err := s.restore(ctx, record)
	if err != nil {
		return nil, err
	}
	return newSessionView(record, session), nil
}

func (s *configurationService) Toggle(ctx context.Context, id string, groupID, valueID uint) (*SessionView, error) {
	logger.Info("Toggling feature value", map[string]interface{}{
		"session_id": id,
		"group_id":   groupID,
		"value_id":   valueID,
	})

	return s.mutate(ctx, id, func(session *configurator.Session) error {
		if !session.ToggleValue(groupID, valueID) {
			logger.Warn("Toggle ignored: unknown or unavailable value", map[string]interface{}{
				"session_id": id,
				"group_id":   groupID,
				"value_id":   valueID,
			})
		}
		return nil
	})
}

func (s *configurationService) SetQuantity(ctx context.Context, id string, raw string) (*SessionView, error) {
	logger.Info("Setting configuration quantity", map[string]interface{}{
		"session_id": id,
		"input":      raw,
	})

	return s.mutate(ctx, id, func(session *configurator.Session) error {
		return session.SetQuantityInput(raw)
	})
}

// Commit hands the current configuration to the cart and ends the session.
func (s *configurationService) Commit(ctx context.Context, id string, userID uint) (*configurator.LineItemDescriptor, *model.CartItem, error) {
	logger.Info("Committing configuration session", map[string]interface{}{
		"session_id": id,
		"user_id":    userID,
	})

	unlock := s.locks.Lock(id)
	defer unlock()

	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if userID == 0 || (record.UserID != 0 && record.UserID != userID) {
		logger.Warn("Configuration commit denied", map[string]interface{}{
			"session_id": id,
			"user_id":    userID,
			"owner_id":   record.UserID,
		})
		return nil, nil, ErrSessionAccessDenied
	}

	session, err := s.restore(ctx, record)
	if err != nil {
		return nil, nil, err
	}

	if !session.Complete() {
		missing := session.MissingGroups()
		logger.Warn("Configuration commit rejected: incomplete", map[string]interface{}{
			"session_id":     id,
			"missing_groups": missing,
		})
		return nil, nil, fmt.Errorf("%w: groups %v", ErrIncompleteConfiguration, missing)
	}

	descriptor, err := session.Build(s.builder)
	if err != nil {
		logger.Error("Failed to build line item", err, map[string]interface{}{
			"session_id": id,
		})
		return nil, nil, err
	}

	cartItem, err := s.cart.AddLineItem(ctx, userID, descriptor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add line item to cart: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		logger.Warn("Failed to delete committed session", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
	}
	s.closeLive(id, "committed")

	logger.Info("Configuration session committed", map[string]interface{}{
		"session_id":   id,
		"cart_item_id": cartItem.ID,
		"unit_price":   descriptor.UnitPrice.String(),
		"quantity":     descriptor.Quantity,
	})
	return descriptor, cartItem, nil
}

// Discard drops a session. Only its owner may discard a signed-in user's session.
func (s *configurationService) Discard(ctx context.Context, id string, userID uint) error {
	logger.Info("Discarding configuration session", map[string]interface{}{
		"session_id": id,
		"user_id":    userID,
	})

	unlock := s.locks.Lock(id)
	defer unlock()

	record, err := s.getRecord(ctx, id)
	if err != nil {
		return err
	}
	if record.UserID != 0 && record.UserID != userID {
		logger.Warn("Configuration discard denied", map[string]interface{}{
			"session_id": id,
			"user_id":    userID,
			"owner_id":   record.UserID,
		})
		return ErrSessionAccessDenied
	}
	if err := s.store.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete configuration session", err, map[string]interface{}{
			"session_id": id,
		})
		return err
	}
	s.closeLive(id, "discarded")
	return nil
}

// mutate runs fn against the restored session while holding the session's lock.
// Price updates raised by fn are pushed only after the record is saved.
func (s *configurationService) mutate(ctx context.Context, id string, fn func(*configurator.Session) error) (*SessionView, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	record, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	session, err := s.restore(ctx, record)
	if err != nil {
		return nil, err
	}

	var updates []PriceUpdate
	unsubscribe := session.Subscribe(func(unitPrice decimal.Decimal, complete bool) {
		updates = append(updates, PriceUpdate{
			Type:      EventPriceChanged,
			SessionID: id,
			UnitPrice: unitPrice,
			LineTotal: configurator.ComputeLineTotal(unitPrice, session.Quantity()),
			Quantity:  session.Quantity(),
			Complete:  complete,
		})
	})
	err = fn(session)
	unsubscribe()
	if err != nil {
		return nil, err
	}

	record.Selections = session.CurrentSelections()
	record.Quantity = session.Quantity()
	if err := s.store.Save(ctx, record); err != nil {
		logger.Error("Failed to save configuration session", err, map[string]interface{}{
			"session_id": id,
		})
		return nil, err
	}

	for _, update := range updates {
		s.publish(id, update)
	}
	return newSessionView(record, session), nil
}

func (s *configurationService) publish(id string, message interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendToSession(id, message); err != nil {
		logger.Warn("Failed to push session event", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
	}
}

// closeLive tells live displays the session ended, then disconnects them
func (s *configurationService) closeLive(id, reason string) {
	s.publish(id, SessionEvent{Type: EventSessionClosed, SessionID: id, Reason: reason})
	if s.notifier != nil {
		s.notifier.CloseSession(id)
	}
}

func (s *configurationService) getRecord(ctx context.Context, id string) (*repository.SessionRecord, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			logger.Warn("Configuration session not found", map[string]interface{}{
				"session_id": id,
			})
			return nil, ErrSessionNotFound
		}
		logger.Error("Failed to fetch configuration session", err, map[string]interface{}{
			"session_id": id,
		})
		return nil, err
	}
	return record, nil
}

// load fetches the product with its current feature data and opens an empty session on it.
func (s *configurationService) load(ctx context.Context, productID uint) (*configurator.Session, error) {
	product, err := s.catalog.FetchProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	groups, err := s.catalog.FetchFeatureGroups(ctx, productID)
	if err != nil {
		return nil, err
	}

	var labels []string
	if s.policies != nil {
		labels = s.policies.RequiredLabels(productID)
	}
	session := configurator.NewSession(configurator.ResolvePolicy(labels, groups))
	session.Initialize(product, groups)
	return session, nil
}

func (s *configurationService) restore(ctx context.Context, record *repository.SessionRecord) (*configurator.Session, error) {
	session, err := s.load(ctx, record.ProductID)
	if err != nil {
		return nil, err
	}
	session.Restore(session.Product(), session.Groups(), record.State())
	return session, nil
}

func newSessionView(record *repository.SessionRecord, session *configurator.Session) *SessionView {
	view := &SessionView{
		ID:             record.ID,
		ProductID:      record.ProductID,
		Selections:     session.CurrentSelections(),
		Quantity:       session.Quantity(),
		UnitPrice:      session.UnitPrice(),
		LineTotal:      session.LineTotal(),
		Complete:       session.Complete(),
		RequiredGroups: session.Policy().RequiredGroups,
		MissingGroups:  session.MissingGroups(),
		Summary:        configurator.Summarize(session.Groups(), session.CurrentSelections()),
		ExpiresAt:      record.ExpiresAt,
	}
	if product := session.Product(); product != nil {
		view.ProductName = product.Name
	}
	if view.RequiredGroups == nil {
		view.RequiredGroups = []uint{}
	}
	if view.MissingGroups == nil {
		view.MissingGroups = []uint{}
	}
	return view
}
