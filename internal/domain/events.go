package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind names a protocol event
type EventKind string

const (
	EventKindListCurrency                     EventKind = "ListCurrency"
	EventKindUpdateMaxCollateralBalance       EventKind = "UpdateMaxCollateralBalance"
	EventKindUpdateETHRate                    EventKind = "UpdateETHRate"
	EventKindUpdateAssetRate                  EventKind = "UpdateAssetRate"
	EventKindUpdateCashGroup                  EventKind = "UpdateCashGroup"
	EventKindDeployNToken                     EventKind = "DeployNToken"
	EventKindUpdateDepositParameters          EventKind = "UpdateDepositParameters"
	EventKindUpdateInitializationParameters   EventKind = "UpdateInitializationParameters"
	EventKindUpdateIncentiveEmissionRate      EventKind = "UpdateIncentiveEmissionRate"
	EventKindUpdateTokenCollateralParameters  EventKind = "UpdateTokenCollateralParameters"
	EventKindUpdateGlobalTransferOperator     EventKind = "UpdateGlobalTransferOperator"
	EventKindUpdateAuthorizedCallbackContract EventKind = "UpdateAuthorizedCallbackContract"
	EventKindSetSettlementRate                EventKind = "SetSettlementRate"
	EventKindMarketsInitialized               EventKind = "MarketsInitialized"
	EventKindSweepCashIntoMarkets             EventKind = "SweepCashIntoMarkets"
	EventKindAccountContextUpdate             EventKind = "AccountContextUpdate"
	EventKindAccountSettled                   EventKind = "AccountSettled"
	EventKindNTokenSupplyChange               EventKind = "nTokenSupplyChange"
	EventKindAddRemoveLiquidity               EventKind = "AddRemoveLiquidity"
	EventKindSettledCashDebt                  EventKind = "SettledCashDebt"
	EventKindNTokenResidualPurchase           EventKind = "nTokenResidualPurchase"
	EventKindLendBorrowTrade                  EventKind = "LendBorrowTrade"
	EventKindLiquidateLocalCurrency           EventKind = "LiquidateLocalCurrency"
	EventKindLiquidateCollateralCurrency      EventKind = "LiquidateCollateralCurrency"
	EventKindLiquidatefCash                   EventKind = "LiquidatefCashEvent"
)

// AllEventKinds lists every event kind the indexer handles
var AllEventKinds = []EventKind{
	EventKindListCurrency,
	EventKindUpdateMaxCollateralBalance,
	EventKindUpdateETHRate,
	EventKindUpdateAssetRate,
	EventKindUpdateCashGroup,
	EventKindDeployNToken,
	EventKindUpdateDepositParameters,
	EventKindUpdateInitializationParameters,
	EventKindUpdateIncentiveEmissionRate,
	EventKindUpdateTokenCollateralParameters,
	EventKindUpdateGlobalTransferOperator,
	EventKindUpdateAuthorizedCallbackContract,
	EventKindSetSettlementRate,
	EventKindMarketsInitialized,
	EventKindSweepCashIntoMarkets,
	EventKindAccountContextUpdate,
	EventKindAccountSettled,
	EventKindNTokenSupplyChange,
	EventKindAddRemoveLiquidity,
	EventKindSettledCashDebt,
	EventKindNTokenResidualPurchase,
	EventKindLendBorrowTrade,
	EventKindLiquidateLocalCurrency,
	EventKindLiquidateCollateralCurrency,
	EventKindLiquidatefCash,
}

// EventMeta carries the block and transaction context of a decoded log
type EventMeta struct {
	Address        common.Address
	BlockNumber    uint64
	BlockTimestamp uint64
	BlockHash      common.Hash
	TxHash         common.Hash
	LogIndex       uint
	TxOrigin       common.Address
}

// Metadata returns the event context
func (m *EventMeta) Metadata() *EventMeta {
	return m
}

// Event is a decoded protocol event. Concrete types are pointers to the
// structs below.
//
// Payload fields are named after the ABI arguments (abi.ToCamelCase) and must
// precede the embedded EventMeta: single argument events are decoded into the
// first struct field.
type Event interface {
	Kind() EventKind
	Metadata() *EventMeta
}

type ListCurrency struct {
	NewCurrencyId uint16
	EventMeta
}

type UpdateMaxCollateralBalance struct {
	CurrencyId           uint16
	MaxCollateralBalance *big.Int
	EventMeta
}

type UpdateETHRate struct {
	CurrencyId uint16
	EventMeta
}

type UpdateAssetRate struct {
	CurrencyId uint16
	EventMeta
}

type UpdateCashGroup struct {
	CurrencyId uint16
	EventMeta
}

type DeployNToken struct {
	CurrencyId    uint16
	NTokenAddress common.Address
	EventMeta
}

type UpdateDepositParameters struct {
	CurrencyId uint16
	EventMeta
}

type UpdateInitializationParameters struct {
	CurrencyId uint16
	EventMeta
}

type UpdateIncentiveEmissionRate struct {
	CurrencyId      uint16
	NewEmissionRate uint32
	EventMeta
}

type UpdateTokenCollateralParameters struct {
	CurrencyId uint16
	EventMeta
}

type UpdateGlobalTransferOperator struct {
	Operator common.Address
	Approved bool
	EventMeta
}

type UpdateAuthorizedCallbackContract struct {
	Operator common.Address
	Approved bool
	EventMeta
}

type SetSettlementRate struct {
	CurrencyId *big.Int
	Maturity   *big.Int
	Rate       *big.Int
	EventMeta
}

type MarketsInitialized struct {
	CurrencyId uint16
	EventMeta
}

type SweepCashIntoMarkets struct {
	CurrencyId      uint16
	CashIntoMarkets *big.Int
	EventMeta
}

type AccountContextUpdate struct {
	Account common.Address
	EventMeta
}

type AccountSettled struct {
	Account common.Address
	EventMeta
}

type NTokenSupplyChange struct {
	Account           common.Address
	CurrencyId        uint16
	TokenSupplyChange *big.Int
	EventMeta
}

type AddRemoveLiquidity struct {
	Account            common.Address
	CurrencyId         uint16
	Maturity           *big.Int
	NetAssetCash       *big.Int
	NetfCash           *big.Int
	NetLiquidityTokens *big.Int
	EventMeta
}

type SettledCashDebt struct {
	SettledAccount      common.Address
	CurrencyId          uint16
	Settler             common.Address
	AmountToSettleAsset *big.Int
	FCashAmount         *big.Int
	EventMeta
}

type NTokenResidualPurchase struct {
	CurrencyId            uint16
	Maturity              *big.Int
	Purchaser             common.Address
	FCashAmountToPurchase *big.Int
	NetAssetCashNToken    *big.Int
	EventMeta
}

type LendBorrowTrade struct {
	Account      common.Address
	CurrencyId   uint16
	Maturity     *big.Int
	NetAssetCash *big.Int
	NetfCash     *big.Int
	EventMeta
}

type LiquidateLocalCurrency struct {
	Liquidated             common.Address
	Liquidator             common.Address
	LocalCurrencyId        uint16
	NetLocalFromLiquidator *big.Int
	EventMeta
}

type LiquidateCollateralCurrency struct {
	Liquidated             common.Address
	Liquidator             common.Address
	LocalCurrencyId        uint16
	CollateralCurrencyId   uint16
	NetLocalFromLiquidator *big.Int
	NetCollateralTransfer  *big.Int
	NetNTokenTransfer      *big.Int
	EventMeta
}

type LiquidatefCash struct {
	Liquidated             common.Address
	Liquidator             common.Address
	LocalCurrencyId        uint16
	FCashCurrency          uint16
	NetLocalFromLiquidator *big.Int
	FCashMaturities        []*big.Int
	FCashNotionalTransfer  []*big.Int
	EventMeta
}

func (*ListCurrency) Kind() EventKind               { return EventKindListCurrency }
func (*UpdateMaxCollateralBalance) Kind() EventKind { return EventKindUpdateMaxCollateralBalance }
func (*UpdateETHRate) Kind() EventKind              { return EventKindUpdateETHRate }
func (*UpdateAssetRate) Kind() EventKind            { return EventKindUpdateAssetRate }
func (*UpdateCashGroup) Kind() EventKind            { return EventKindUpdateCashGroup }
func (*DeployNToken) Kind() EventKind               { return EventKindDeployNToken }
func (*UpdateDepositParameters) Kind() EventKind    { return EventKindUpdateDepositParameters }
func (*UpdateInitializationParameters) Kind() EventKind {
	return EventKindUpdateInitializationParameters
}
func (*UpdateIncentiveEmissionRate) Kind() EventKind { return EventKindUpdateIncentiveEmissionRate }
func (*UpdateTokenCollateralParameters) Kind() EventKind {
	return EventKindUpdateTokenCollateralParameters
}
func (*UpdateGlobalTransferOperator) Kind() EventKind { return EventKindUpdateGlobalTransferOperator }
func (*UpdateAuthorizedCallbackContract) Kind() EventKind {
	return EventKindUpdateAuthorizedCallbackContract
}
func (*SetSettlementRate) Kind() EventKind           { return EventKindSetSettlementRate }
func (*MarketsInitialized) Kind() EventKind          { return EventKindMarketsInitialized }
func (*SweepCashIntoMarkets) Kind() EventKind        { return EventKindSweepCashIntoMarkets }
func (*AccountContextUpdate) Kind() EventKind        { return EventKindAccountContextUpdate }
func (*AccountSettled) Kind() EventKind              { return EventKindAccountSettled }
func (*NTokenSupplyChange) Kind() EventKind          { return EventKindNTokenSupplyChange }
func (*AddRemoveLiquidity) Kind() EventKind          { return EventKindAddRemoveLiquidity }
func (*SettledCashDebt) Kind() EventKind             { return EventKindSettledCashDebt }
func (*NTokenResidualPurchase) Kind() EventKind      { return EventKindNTokenResidualPurchase }
func (*LendBorrowTrade) Kind() EventKind             { return EventKindLendBorrowTrade }
func (*LiquidateLocalCurrency) Kind() EventKind      { return EventKindLiquidateLocalCurrency }
func (*LiquidateCollateralCurrency) Kind() EventKind { return EventKindLiquidateCollateralCurrency }
func (*LiquidatefCash) Kind() EventKind              { return EventKindLiquidatefCash }

// NewEvent returns an empty event of the given kind, ready to be decoded into
func NewEvent(kind EventKind) (Event, bool) {
	switch kind {
	case EventKindListCurrency:
		return &ListCurrency{}, true
	case EventKindUpdateMaxCollateralBalance:
		return &UpdateMaxCollateralBalance{}, true
	case EventKindUpdateETHRate:
		return &UpdateETHRate{}, true
	case EventKindUpdateAssetRate:
		return &UpdateAssetRate{}, true
	case EventKindUpdateCashGroup:
		return &UpdateCashGroup{}, true
	case EventKindDeployNToken:
		return &DeployNToken{}, true
	case EventKindUpdateDepositParameters:
		return &UpdateDepositParameters{}, true
	case EventKindUpdateInitializationParameters:
		return &UpdateInitializationParameters{}, true
	case EventKindUpdateIncentiveEmissionRate:
		return &UpdateIncentiveEmissionRate{}, true
	case EventKindUpdateTokenCollateralParameters:
		return &UpdateTokenCollateralParameters{}, true
	case EventKindUpdateGlobalTransferOperator:
		return &UpdateGlobalTransferOperator{}, true
	case EventKindUpdateAuthorizedCallbackContract:
		return &UpdateAuthorizedCallbackContract{}, true
	case EventKindSetSettlementRate:
		return &SetSettlementRate{}, true
	case EventKindMarketsInitialized:
		return &MarketsInitialized{}, true
	case EventKindSweepCashIntoMarkets:
		return &SweepCashIntoMarkets{}, true
	case EventKindAccountContextUpdate:
		return &AccountContextUpdate{}, true
	case EventKindAccountSettled:
		return &AccountSettled{}, true
	case EventKindNTokenSupplyChange:
		return &NTokenSupplyChange{}, true
	case EventKindAddRemoveLiquidity:
		return &AddRemoveLiquidity{}, true
	case EventKindSettledCashDebt:
		return &SettledCashDebt{}, true
	case EventKindNTokenResidualPurchase:
		return &NTokenResidualPurchase{}, true
	case EventKindLendBorrowTrade:
		return &LendBorrowTrade{}, true
	case EventKindLiquidateLocalCurrency:
		return &LiquidateLocalCurrency{}, true
	case EventKindLiquidateCollateralCurrency:
		return &LiquidateCollateralCurrency{}, true
	case EventKindLiquidatefCash:
		return &LiquidatefCash{}, true
	}
	return nil, false
}
