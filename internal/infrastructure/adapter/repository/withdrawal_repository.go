package repository

import (
	"context"
	"maps"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/promo-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/infrastructure/adapter/model"
)

const entityWithdrawal = "withdrawal_request"

// WithdrawalRepository implements persistence.WithdrawalRepository using GORM
type WithdrawalRepository struct {
	db     *gorm.DB
	logger coreport.Logger
}

var _ persistence.WithdrawalRepository = (*WithdrawalRepository)(nil)

// NewWithdrawalRepository creates a new WithdrawalRepository instance
func NewWithdrawalRepository(db *gorm.DB, logger coreport.Logger) *WithdrawalRepository {
	return &WithdrawalRepository{db: db, logger: logger}
}

func withdrawalToModel(w *entity.WithdrawalRequest) model.WithdrawalRequest {
	return model.WithdrawalRequest{
		ID:                    w.ID,
		UserID:                w.UserID,
		Amount:                int64(w.Amount),
		PaymentMethod:         string(w.PaymentMethod),
		PaymentDetails:        maps.Clone(map[string]string(w.PaymentDetails)),
		Status:                string(w.Status),
		AdminNotes:            w.AdminNotes,
		RejectionReason:       w.RejectionReason,
		ProcessedBy:           w.ProcessedBy,
		ProcessedDate:         dbTimePtr(w.ProcessedDate),
		CompletedDate:         dbTimePtr(w.CompletedDate),
		TransactionID:         w.TransactionID,
		ExternalTransactionID: w.ExternalTransactionID,
		PaymentReceiptURL:     w.PaymentReceiptURL,
		CreatedAt:             dbTime(w.CreatedAt),
		UpdatedAt:             dbTime(w.UpdatedAt),
	}
}

func withdrawalToEntity(m *model.WithdrawalRequest) *entity.WithdrawalRequest {
	return &entity.WithdrawalRequest{
		ID:                    m.ID,
		UserID:                m.UserID,
		Amount:                entity.Money(m.Amount),
		PaymentMethod:         entity.PaymentMethod(m.PaymentMethod),
		PaymentDetails:        entity.PaymentDetails(m.PaymentDetails),
		Status:                entity.WithdrawalStatus(m.Status),
		AdminNotes:            m.AdminNotes,
		RejectionReason:       m.RejectionReason,
		ProcessedBy:           m.ProcessedBy,
		ProcessedDate:         dbTimePtr(m.ProcessedDate),
		CompletedDate:         dbTimePtr(m.CompletedDate),
		TransactionID:         m.TransactionID,
		ExternalTransactionID: m.ExternalTransactionID,
		PaymentReceiptURL:     m.PaymentReceiptURL,
		CreatedAt:             m.CreatedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
	}
}

func statusStrings(statuses []entity.WithdrawalStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Create saves a new request
func (r *WithdrawalRepository) Create(ctx context.Context, request *entity.WithdrawalRequest) error {
	row := withdrawalToModel(request)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return mapError(r.logger, "creating", entityWithdrawal, request.ID, err)
	}
	request.CreatedAt = row.CreatedAt
	request.UpdatedAt = row.UpdatedAt
	return nil
}

// Update saves every mutable field of a request
func (r *WithdrawalRepository) Update(ctx context.Context, request *entity.WithdrawalRequest) error {
	row := withdrawalToModel(request)

	result := r.db.WithContext(ctx).Model(&model.WithdrawalRequest{}).
		Where("id = ?", request.ID).
		Updates(map[string]any{
			"status":                  row.Status,
			"admin_notes":             row.AdminNotes,
			"rejection_reason":        row.RejectionReason,
			"processed_by":            row.ProcessedBy,
			"processed_date":          row.ProcessedDate,
			"completed_date":          row.CompletedDate,
			"transaction_id":          row.TransactionID,
			"external_transaction_id": row.ExternalTransactionID,
			"payment_receipt_url":     row.PaymentReceiptURL,
			"updated_at":              row.UpdatedAt,
		})
	if result.Error != nil {
		return mapError(r.logger, "updating", entityWithdrawal, request.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError(entityWithdrawal, request.ID)
	}
	return nil
}

// GetByID retrieves a request
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*entity.WithdrawalRequest, error) {
	var row model.WithdrawalRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, mapError(r.logger, "reading", entityWithdrawal, id, err)
	}
	return withdrawalToEntity(&row), nil
}

// List returns one keyset page of a user's requests, newest first
func (r *WithdrawalRepository) List(
	ctx context.Context,
	userID uint64,
	statuses []entity.WithdrawalStatus,
	after *entity.WithdrawalCursor,
	limit int,
) ([]*entity.WithdrawalRequest, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(statuses))
	}
	if after != nil {
		at := dbTime(after.CreatedAt)
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", at, at, after.ID)
	}

	var rows []model.WithdrawalRequest
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, mapError(r.logger, "listing", entityWithdrawal, formatUserID(userID), err)
	}

	page := make([]*entity.WithdrawalRequest, len(rows))
	for i := range rows {
		page[i] = withdrawalToEntity(&rows[i])
	}
	return page, nil
}

// SumAmount totals a user's requests in the given statuses
func (r *WithdrawalRepository) SumAmount(ctx context.Context, userID uint64, statuses []entity.WithdrawalStatus) (entity.Money, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	var total int64
	err := r.db.WithContext(ctx).Model(&model.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND status IN ?", userID, statusStrings(statuses)).
		Scan(&total).Error
	if err != nil {
		return 0, mapError(r.logger, "summing", entityWithdrawal, formatUserID(userID), err)
	}
	return entity.Money(total), nil
}

// CountByStatus counts a user's requests per status
func (r *WithdrawalRepository) CountByStatus(ctx context.Context, userID uint64) (map[entity.WithdrawalStatus]int, error) {
	var rows []struct {
		Status string
		Count  int
	}
	err := r.db.WithContext(ctx).Model(&model.WithdrawalRequest{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, mapError(r.logger, "counting", entityWithdrawal, formatUserID(userID), err)
	}

	counts := make(map[entity.WithdrawalStatus]int, len(rows))
	for _, row := range rows {
		counts[entity.WithdrawalStatus(row.Status)] = row.Count
	}
	return counts, nil
}
