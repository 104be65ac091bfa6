package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
)

// Operators are present only while approved. Approving an operator that is
// already present, or revoking one that is absent, changes nothing.

func (d *dispatcher) handleUpdateGlobalTransferOperator(ctx context.Context, s store.EntityStore, e *domain.UpdateGlobalTransferOperator) error {
	id := domain.AddressKey(e.Operator)
	operator, err := store.Get[schema.GlobalTransferOperator](ctx, s, id)
	if err != nil {
		return err
	}

	switch {
	case e.Approved && operator == nil:
		operator = &schema.GlobalTransferOperator{ID: id}
		operator.Stamp(&e.EventMeta)
		if err := s.Save(ctx, operator); err != nil {
			return err
		}
		logger.DebugCtx(ctx, "Approved global transfer operator", zap.String("operator", id))
	case !e.Approved && operator != nil:
		if err := s.Delete(ctx, operator); err != nil {
			return err
		}
		logger.DebugCtx(ctx, "Revoked global transfer operator", zap.String("operator", id))
	}
	return nil
}

func (d *dispatcher) handleUpdateAuthorizedCallbackContract(ctx context.Context, s store.EntityStore, e *domain.UpdateAuthorizedCallbackContract) error {
	id := domain.AddressKey(e.Operator)
	contract, err := store.Get[schema.AuthorizedCallbackContract](ctx, s, id)
	if err != nil {
		return err
	}

	switch {
	case e.Approved && contract == nil:
		name, err := recoverMetadata(d.accessor.TokenName(ctx, e.BlockNumber, e.Operator))
		if err != nil {
			return err
		}
		contract = &schema.AuthorizedCallbackContract{ID: id, Name: name}
		contract.Stamp(&e.EventMeta)
		if err := s.Save(ctx, contract); err != nil {
			return err
		}
		logger.DebugCtx(ctx, "Authorized callback contract", zap.String("operator", id), zap.String("name", name))
	case !e.Approved && contract != nil:
		if err := s.Delete(ctx, contract); err != nil {
			return err
		}
		logger.DebugCtx(ctx, "Revoked callback contract", zap.String("operator", id))
	}
	return nil
}
