package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/notification"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

// FeeEntryID is the idempotency key of the moderation fee charged for item id
func FeeEntryID(itemID string) string {
	return "moderation-fee:" + itemID
}

// Engine turns moderation decisions into ledger entries and notifications
type Engine struct {
	uow          persistence.UnitOfWork
	queues       *serial.Manager
	ledger       usecase.LedgerUseCase
	dispatcher   notification.Dispatcher
	policy       entity.FeePolicy
	idGenerator  coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.ModerationUseCase = (*Engine)(nil)

// NewEngine creates a moderation side effect engine
func NewEngine(
	uow persistence.UnitOfWork,
	queues *serial.Manager,
	ledger usecase.LedgerUseCase,
	dispatcher notification.Dispatcher,
	policy entity.FeePolicy,
	idGenerator coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Engine {
	return &Engine{
		uow:          uow,
		queues:       queues,
		ledger:       ledger,
		dispatcher:   dispatcher,
		policy:       policy,
		idGenerator:  idGenerator,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Register stores a new item awaiting moderation
func (e *Engine) Register(ctx context.Context, ownerID uint64, kind entity.ContentKind, title string) (*entity.ContentItem, error) {
	item, err := entity.NewContentItem(e.idGenerator.NewID(), ownerID, kind, title, e.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := e.uow.GetContentRepository(ctx).Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store content item: %w", err)
	}

	e.logger.Info("Content item registered", map[string]any{
		"item_id":  item.ID,
		"owner_id": item.OwnerID,
		"kind":     item.Kind,
	})
	return item, nil
}

// Approve charges the moderation fee and approves the item atomically.
// If the fee cannot be recorded the item stays pending.
func (e *Engine) Approve(ctx context.Context, itemID, note string) (*entity.ContentItem, error) {
	item, err := e.decide(ctx, itemID, func(ctx context.Context, p entity.PersistedItem) error {
		item := p.Item()
		if err := p.Approve(note, e.timeProvider); err != nil {
			return err
		}
		if err := e.uow.GetContentRepository(ctx).Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update content item: %w", err)
		}

		_, err := e.ledger.Record(ctx, entity.NewTransaction{
			ID:                FeeEntryID(item.ID),
			UserID:            item.OwnerID,
			Type:              entity.TypeFee,
			Amount:            e.policy.ModerationFee.Neg(),
			Description:       fmt.Sprintf("Moderation fee for %s %q", item.Kind, item.Title),
			RelatedEntityType: entity.RelatedContentItem,
			RelatedEntityID:   item.ID,
		})
		if err != nil {
			return fmt.Errorf("failed to charge moderation fee: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notify(ctx, item, entity.NotificationTrackApproved, "Content approved",
		fmt.Sprintf("%q passed moderation. A fee of %s was charged.", item.Title, e.policy.ModerationFee))
	return item, nil
}

// Reject marks the item rejected. No money moves.
func (e *Engine) Reject(ctx context.Context, itemID, reason string) (*entity.ContentItem, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errs.NewValidationError("reason", "must not be empty")
	}

	item, err := e.decide(ctx, itemID, func(ctx context.Context, p entity.PersistedItem) error {
		if err := p.Reject(reason, e.timeProvider); err != nil {
			return err
		}
		if err := e.uow.GetContentRepository(ctx).Update(ctx, p.Item()); err != nil {
			return fmt.Errorf("failed to update content item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notify(ctx, item, entity.NotificationTrackRejected, "Content rejected",
		fmt.Sprintf("%q did not pass moderation: %s", item.Title, item.RejectionReason))
	return item, nil
}

// decide resolves the item and runs apply on the owner's queue in one unit of work
func (e *Engine) decide(
	ctx context.Context,
	itemID string,
	apply func(ctx context.Context, p entity.PersistedItem) error,
) (*entity.ContentItem, error) {
	found, err := e.resolve(ctx, itemID)
	if err != nil {
		return nil, err
	}
	ownerID := found.Item().OwnerID

	item, err := serial.Run(ctx, e.queues, ownerID, func(ctx context.Context) (*entity.ContentItem, error) {
		return serial.InUnitOfWork(ctx, e.uow, func(ctx context.Context) (*entity.ContentItem, error) {
			if _, err := e.uow.GetAccountRepository(ctx).Lock(ctx, ownerID); err != nil {
				return nil, fmt.Errorf("failed to lock account: %w", err)
			}

			// Re-resolve under the lock: another decision may have landed first
			p, err := e.resolve(ctx, itemID)
			if err != nil {
				return nil, err
			}
			if err := apply(ctx, p); err != nil {
				return nil, err
			}
			return p.Item(), nil
		})
	})
	if err != nil {
		fields := errs.LogFields(err)
		fields["item_id"] = itemID
		e.logger.Warn("Moderation decision failed", fields)
		return nil, err
	}

	e.logger.Info("Moderation decision applied", map[string]any{
		"item_id":  item.ID,
		"owner_id": item.OwnerID,
		"status":   item.Status,
	})
	return item, nil
}

func (e *Engine) resolve(ctx context.Context, itemID string) (entity.PersistedItem, error) {
	if strings.TrimSpace(itemID) == "" {
		return entity.PersistedItem{}, errs.NewValidationError("itemId", "must not be empty")
	}
	item, err := e.uow.GetContentRepository(ctx).GetByID(ctx, itemID)
	if err != nil && !errs.IsNotFoundError(err) {
		return entity.PersistedItem{}, err
	}
	return entity.AsPersisted(item, itemID)
}

func (e *Engine) notify(ctx context.Context, item *entity.ContentItem, kind, title, message string) {
	n := &entity.Notification{
		UserID:    item.OwnerID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: e.timeProvider.Now(),
	}
	if err := e.dispatcher.Dispatch(context.WithoutCancel(ctx), n); err != nil {
		e.logger.Warn("Failed to dispatch moderation notification", map[string]any{
			"item_id": item.ID,
			"type":    kind,
			"error":   err.Error(),
		})
	}
}
