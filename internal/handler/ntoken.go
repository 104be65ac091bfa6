package handler

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/codec"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/projection"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
	"github.com/notional-finance/notional-indexer/internal/types"
)

var internalTokenPrecision = big.NewInt(domain.InternalTokenPrecision)

func (d *dispatcher) handleDeployNToken(ctx context.Context, s store.EntityStore, e *domain.DeployNToken) error {
	name, symbol, err := d.tokenMetadata(ctx, e.BlockNumber, e.NTokenAddress)
	if err != nil {
		return err
	}

	nToken, err := projection.GetNToken(ctx, s, e.CurrencyId)
	if err != nil {
		return err
	}
	nToken.TokenAddress = domain.AddressKey(e.NTokenAddress)
	nToken.Name = name
	nToken.Symbol = symbol
	nToken.Decimals = types.BigIntStringPtr(internalTokenPrecision)
	nToken.TotalSupply = types.StringPtr("0")
	nToken.IntegralTotalSupply = types.StringPtr("0")
	nToken.LastSupplyChangeTime = types.StringPtr("0")
	nToken.Stamp(&e.EventMeta)
	if err := s.Save(ctx, nToken); err != nil {
		return err
	}

	// the nToken holds its own portfolio, track it as an account from deployment
	accountID := domain.AddressKey(e.NTokenAddress)
	balance, err := projection.GetBalance(ctx, s, accountID, e.CurrencyId)
	if err != nil {
		return err
	}
	balance.Stamp(&e.EventMeta)
	if err := s.Save(ctx, balance); err != nil {
		return err
	}

	account := &schema.Account{
		ID:                  accountID,
		AssetBitmapCurrency: types.StringPtr(domain.CurrencyKey(e.CurrencyId)),
		Balances:            []string{balance.ID},
		Portfolio:           []string{},
		NToken:              types.StringPtr(nToken.ID),
	}
	account.Stamp(&e.EventMeta)
	if err := s.Save(ctx, account); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Deployed nToken",
		zap.String("currency", nToken.ID),
		zap.String("tokenAddress", nToken.TokenAddress))
	return nil
}

func (d *dispatcher) handleUpdateDepositParameters(ctx context.Context, s store.EntityStore, e *domain.UpdateDepositParameters) error {
	params, err := d.accessor.GetDepositParameters(ctx, e.BlockNumber, e.CurrencyId)
	if err != nil {
		return err
	}

	nToken, err := projection.GetNToken(ctx, s, e.CurrencyId)
	if err != nil {
		return err
	}
	nToken.DepositShares = types.BigIntsToInt64s(params.DepositShares)
	nToken.LeverageThresholds = types.BigIntsToInt64s(params.LeverageThresholds)
	nToken.Stamp(&e.EventMeta)
	return s.Save(ctx, nToken)
}

func (d *dispatcher) handleUpdateInitializationParameters(ctx context.Context, s store.EntityStore, e *domain.UpdateInitializationParameters) error {
	params, err := d.accessor.GetInitializationParameters(ctx, e.BlockNumber, e.CurrencyId)
	if errors.Is(err, domain.ErrReverted) {
		// the getter reverts until every market of the currency is enabled
		logger.WarnCtx(ctx, "Initialization parameters not readable, skipping",
			zap.Uint16("currencyId", e.CurrencyId))
		return nil
	}
	if err != nil {
		return err
	}

	nToken, err := projection.GetNToken(ctx, s, e.CurrencyId)
	if err != nil {
		return err
	}
	nToken.AnnualizedAnchorRates = types.BigIntsToInt64s(params.AnnualizedAnchorRates)
	nToken.Proportions = types.BigIntsToInt64s(params.Proportions)
	nToken.Stamp(&e.EventMeta)
	return s.Save(ctx, nToken)
}

func (d *dispatcher) handleUpdateIncentiveEmissionRate(ctx context.Context, s store.EntityStore, e *domain.UpdateIncentiveEmissionRate) error {
	nToken, state, err := d.deployedNToken(ctx, s, e.CurrencyId, &e.EventMeta)
	if err != nil {
		return err
	}

	// stored as whole tokens on-chain
	rate := new(big.Int).Mul(types.BigIntOrZero(state.IncentiveAnnualEmissionRate), internalTokenPrecision)
	nToken.IncentiveEmissionRate = types.BigIntStringPtr(rate)
	nToken.Stamp(&e.EventMeta)
	return s.Save(ctx, nToken)
}

func (d *dispatcher) handleUpdateTokenCollateralParameters(ctx context.Context, s store.EntityStore, e *domain.UpdateTokenCollateralParameters) error {
	nToken, state, err := d.deployedNToken(ctx, s, e.CurrencyId, &e.EventMeta)
	if err != nil {
		return err
	}

	params, err := codec.DecodeTokenCollateralParameters(state.NTokenParameters[:])
	if err != nil {
		return err
	}

	nToken.LiquidationHaircutPercentage = types.Int32Ptr(params.LiquidationHaircutPercentage)
	nToken.CashWithholdingBufferBasisPoints = types.Int64Ptr(params.CashWithholdingBufferBasisPoints)
	nToken.ResidualPurchaseTimeBufferSeconds = types.Int64Ptr(params.ResidualPurchaseTimeBufferSeconds)
	nToken.PVHaircutPercentage = types.Int32Ptr(params.PVHaircutPercentage)
	nToken.ResidualPurchaseIncentiveBasisPoints = types.Int64Ptr(params.ResidualPurchaseIncentiveBasisPoints)
	nToken.Stamp(&e.EventMeta)
	return s.Save(ctx, nToken)
}

// deployedNToken loads the nToken of a currency together with its on-chain state
func (d *dispatcher) deployedNToken(ctx context.Context, s store.EntityStore, currencyID uint16, meta *domain.EventMeta) (*schema.NToken, notional.NTokenAccount, error) {
	nToken, err := projection.GetNToken(ctx, s, currencyID)
	if err != nil {
		return nil, notional.NTokenAccount{}, err
	}
	if !types.IsEthereumAddress(nToken.TokenAddress) {
		return nil, notional.NTokenAccount{}, fmt.Errorf("nToken of currency %d is not deployed", currencyID)
	}

	state, err := d.accessor.GetNTokenAccount(ctx, meta.BlockNumber, common.HexToAddress(nToken.TokenAddress))
	if err != nil {
		return nil, notional.NTokenAccount{}, err
	}
	return nToken, state, nil
}
