package ledger

import (
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

// DefaultPageSize is the number of entries fetched per page while iterating
const DefaultPageSize = 100

// Service is the transaction ledger
type Service struct {
	uow          persistence.UnitOfWork
	queues       *serial.Manager
	idGenerator  coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	pageSize     int
}

var _ usecase.LedgerUseCase = (*Service)(nil)

// NewService creates a ledger service
func NewService(
	uow persistence.UnitOfWork,
	queues *serial.Manager,
	idGenerator coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	pageSize int,
) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		uow:          uow,
		queues:       queues,
		idGenerator:  idGenerator,
		timeProvider: timeProvider,
		logger:       logger,
		pageSize:     pageSize,
	}
}
