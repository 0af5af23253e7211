package withdrawal

import (
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/promo-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/notification"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/promo-ledger/internal/domain/usecase/serial"
)

const listPageSize = 50

// Processor owns the withdrawal request state machine
type Processor struct {
	uow          persistence.UnitOfWork
	queues       *serial.Manager
	ledger       usecase.LedgerUseCase
	balances     usecase.BalanceUseCase
	dispatcher   notification.Dispatcher
	policy       entity.FeePolicy
	idGenerator  coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.WithdrawalUseCase = (*Processor)(nil)

// NewProcessor creates a withdrawal processor
func NewProcessor(
	uow persistence.UnitOfWork,
	queues *serial.Manager,
	ledger usecase.LedgerUseCase,
	balances usecase.BalanceUseCase,
	dispatcher notification.Dispatcher,
	policy entity.FeePolicy,
	idGenerator coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Processor {
	return &Processor{
		uow:          uow,
		queues:       queues,
		ledger:       ledger,
		balances:     balances,
		dispatcher:   dispatcher,
		policy:       policy,
		idGenerator:  idGenerator,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Quote computes the display fee for amount
func (p *Processor) Quote(amount entity.Money) entity.FeeQuote {
	return p.policy.QuoteWithdrawal(amount)
}
