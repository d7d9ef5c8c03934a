package domain

import (
	"context"
	"errors"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/internal/model"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/idutil"
	"github.com/habitquest/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// LedgerRef tells what caused a currency mutation.
type LedgerRef struct {
	TaskKind entity.TaskKind
	TaskID   string
	Reason   string
}

// EconomyLedger is the only writer of user balances. Every applied delta is
// recorded as a ledger entry in the same transaction.
type EconomyLedger struct {
	userRepo        repository.UserRepository
	ledgerEntryRepo repository.LedgerEntryRepository
	idGenerator     idutil.Generator
}

func NewEconomyLedger(
	userRepo repository.UserRepository,
	ledgerEntryRepo repository.LedgerEntryRepository,
	idGenerator idutil.Generator,
) *EconomyLedger {
	return &EconomyLedger{
		userRepo:        userRepo,
		ledgerEntryRepo: ledgerEntryRepo,
		idGenerator:     idGenerator,
	}
}

// Credit adds the amounts to the balances of the user.
func (l *EconomyLedger) Credit(ctx context.Context, userID string, gold, gems int64, ref LedgerRef) error {
	if gold < 0 || gems < 0 {
		return errorx.New(errorx.BadRequest, "Credit amounts must not be negative")
	}

	if gold == 0 && gems == 0 {
		return nil
	}

	return xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		if err := l.userRepo.IncreaseBalance(ctx, userID, gold, gems); err != nil {
			return err
		}

		return l.record(ctx, userID, gold, gems, ref)
	})
}

// Debit subtracts at most the given amounts from the balances of the user.
// Balances stop at zero; the amounts actually removed are returned.
func (l *EconomyLedger) Debit(
	ctx context.Context, userID string, gold, gems int64, ref LedgerRef,
) (int64, int64, error) {
	if gold < 0 || gems < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Debit amounts must not be negative")
	}

	if gold == 0 && gems == 0 {
		return 0, 0, nil
	}

	var appliedGold, appliedGems int64
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := l.userRepo.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		appliedGold = applicable(user.Gold, gold)
		appliedGems = applicable(user.Gems, gems)
		if appliedGold == 0 && appliedGems == 0 {
			return nil
		}

		if err := l.userRepo.DecreaseBalance(ctx, userID, appliedGold, appliedGems); err != nil {
			return err
		}

		return l.record(ctx, userID, -appliedGold, -appliedGems, ref)
	})
	if err != nil {
		return 0, 0, err
	}

	return appliedGold, appliedGems, nil
}

func (l *EconomyLedger) record(ctx context.Context, userID string, gold, gems int64, ref LedgerRef) error {
	return l.ledgerEntryRepo.Create(ctx, &entity.LedgerEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: l.idGenerator.Generate().Int64()},
		UserID:        userID,
		TaskKind:      ref.TaskKind,
		TaskID:        ref.TaskID,
		Gold:          gold,
		Gems:          gems,
		Reason:        ref.Reason,
	})
}

// applicable returns how much of amount a balance can pay.
func applicable(balance, amount int64) int64 {
	if balance <= 0 {
		return 0
	}

	if balance < amount {
		return balance
	}

	return amount
}

type LedgerDomain interface {
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	GetLedger(context.Context, *model.GetLedgerRequest) (*model.GetLedgerResponse, error)
}

type ledgerDomain struct {
	userRepo        repository.UserRepository
	ledgerEntryRepo repository.LedgerEntryRepository
}

func NewLedgerDomain(
	userRepo repository.UserRepository,
	ledgerEntryRepo repository.LedgerEntryRepository,
) LedgerDomain {
	return &ledgerDomain{
		userRepo:        userRepo,
		ledgerEntryRepo: ledgerEntryRepo,
	}
}

func (d *ledgerDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return (*model.GetBalanceResponse)(&model.Balance{Gold: user.Gold, Gems: user.Gems}), nil
}

func (d *ledgerDomain) GetLedger(
	ctx context.Context, req *model.GetLedgerRequest,
) (*model.GetLedgerResponse, error) {
	offset, limit, err := checkPagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	entries, err := d.ledgerEntryRepo.GetListByUserID(ctx, xcontext.RequestUserID(ctx), offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ledger entries: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.LedgerEntry{}
	for i := range entries {
		result = append(result, model.ConvertLedgerEntry(&entries[i]))
	}

	return &model.GetLedgerResponse{Entries: result}, nil
}
