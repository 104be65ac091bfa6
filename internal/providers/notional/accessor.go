package notional

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/adapter"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
)

// Accessor reads protocol state from the Notional router. Every read is pinned
// to a block number so that it reflects the state as of the triggering event.
// A call that reverts returns an error wrapping domain.ErrReverted.
//
//go:generate mockgen -source=accessor.go -destination=../../mocks/accessor.go -package=mocks -mock_names=Accessor=MockAccessor
type Accessor interface {
	// GetCurrency returns the asset and underlying token of a currency
	GetCurrency(ctx context.Context, blockNumber uint64, currencyID uint16) (Token, Token, error)
	// GetRateStorage returns the ETH rate and asset rate configuration of a currency
	GetRateStorage(ctx context.Context, blockNumber uint64, currencyID uint16) (ETHRateStorage, AssetRateStorage, error)
	// GetCashGroup returns the cash group configuration of a currency
	GetCashGroup(ctx context.Context, blockNumber uint64, currencyID uint16) (CashGroupSettings, error)
	// GetDepositParameters returns the nToken deposit parameters of a currency
	GetDepositParameters(ctx context.Context, blockNumber uint64, currencyID uint16) (DepositParameters, error)
	// GetInitializationParameters returns the nToken initialization parameters of a currency
	GetInitializationParameters(ctx context.Context, blockNumber uint64, currencyID uint16) (InitializationParameters, error)
	// GetNTokenAccount returns the state of an nToken
	GetNTokenAccount(ctx context.Context, blockNumber uint64, nToken common.Address) (NTokenAccount, error)
	// NTokenAddress returns the nToken of a currency
	NTokenAddress(ctx context.Context, blockNumber uint64, currencyID uint16) (common.Address, error)
	// GetActiveMarketsAtBlockTime returns the active markets of a currency in slot order
	GetActiveMarketsAtBlockTime(ctx context.Context, blockNumber uint64, currencyID uint16, blockTime uint32) ([]MarketParameters, error)
	// GetAccount returns the context, balances and portfolio of an account
	GetAccount(ctx context.Context, blockNumber uint64, account common.Address) (Account, error)
	// GetCurrencyAndRates returns a currency with its current ETH and asset rates
	GetCurrencyAndRates(ctx context.Context, blockNumber uint64, currencyID uint16) (CurrencyAndRates, error)
	// TokenName returns the ERC20 name of a token
	TokenName(ctx context.Context, blockNumber uint64, token common.Address) (string, error)
	// TokenSymbol returns the ERC20 symbol of a token
	TokenSymbol(ctx context.Context, blockNumber uint64, token common.Address) (string, error)
}

// Config holds the configuration of the accessor
type Config struct {
	// RouterAddress is the Notional router (proxy) contract
	RouterAddress common.Address
	// TokenCacheSize is the number of token names and symbols kept in memory
	TokenCacheSize int
	// RetryInitialInterval is the first wait after a failed RPC call
	RetryInitialInterval time.Duration
	// RetryMaxElapsedTime bounds the time spent retrying a single read
	RetryMaxElapsedTime time.Duration
}

type accessor struct {
	client adapter.EthClient
	config Config
	tokens *lru.Cache[string, string]
}

// NewAccessor creates an accessor reading through an Ethereum RPC client
func NewAccessor(client adapter.EthClient, cfg Config) (Accessor, error) {
	if cfg.TokenCacheSize <= 0 {
		cfg.TokenCacheSize = 256
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = time.Second
	}
	if cfg.RetryMaxElapsedTime <= 0 {
		cfg.RetryMaxElapsedTime = time.Minute
	}

	tokens, err := lru.New[string, string](cfg.TokenCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cache: %w", err)
	}

	return &accessor{client: client, config: cfg, tokens: tokens}, nil
}

func (a *accessor) GetCurrency(ctx context.Context, blockNumber uint64, currencyID uint16) (Token, Token, error) {
	out, err := a.callRouter(ctx, blockNumber, "getCurrency", currencyID)
	if err != nil {
		return Token{}, Token{}, err
	}
	assetToken, err := convert[Token](out[0])
	if err != nil {
		return Token{}, Token{}, err
	}
	underlyingToken, err := convert[Token](out[1])
	if err != nil {
		return Token{}, Token{}, err
	}
	return assetToken, underlyingToken, nil
}

func (a *accessor) GetRateStorage(ctx context.Context, blockNumber uint64, currencyID uint16) (ETHRateStorage, AssetRateStorage, error) {
	out, err := a.callRouter(ctx, blockNumber, "getRateStorage", currencyID)
	if err != nil {
		return ETHRateStorage{}, AssetRateStorage{}, err
	}
	ethRate, err := convert[ETHRateStorage](out[0])
	if err != nil {
		return ETHRateStorage{}, AssetRateStorage{}, err
	}
	assetRate, err := convert[AssetRateStorage](out[1])
	if err != nil {
		return ETHRateStorage{}, AssetRateStorage{}, err
	}
	return ethRate, assetRate, nil
}

func (a *accessor) GetCashGroup(ctx context.Context, blockNumber uint64, currencyID uint16) (CashGroupSettings, error) {
	out, err := a.callRouter(ctx, blockNumber, "getCashGroup", currencyID)
	if err != nil {
		return CashGroupSettings{}, err
	}
	return convert[CashGroupSettings](out[0])
}

func (a *accessor) GetDepositParameters(ctx context.Context, blockNumber uint64, currencyID uint16) (DepositParameters, error) {
	out, err := a.callRouter(ctx, blockNumber, "getDepositParameters", currencyID)
	if err != nil {
		return DepositParameters{}, err
	}
	shares, err := convert[[]*big.Int](out[0])
	if err != nil {
		return DepositParameters{}, err
	}
	thresholds, err := convert[[]*big.Int](out[1])
	if err != nil {
		return DepositParameters{}, err
	}
	return DepositParameters{DepositShares: shares, LeverageThresholds: thresholds}, nil
}

func (a *accessor) GetInitializationParameters(ctx context.Context, blockNumber uint64, currencyID uint16) (InitializationParameters, error) {
	out, err := a.callRouter(ctx, blockNumber, "getInitializationParameters", currencyID)
	if err != nil {
		return InitializationParameters{}, err
	}
	rates, err := convert[[]*big.Int](out[0])
	if err != nil {
		return InitializationParameters{}, err
	}
	proportions, err := convert[[]*big.Int](out[1])
	if err != nil {
		return InitializationParameters{}, err
	}
	return InitializationParameters{AnnualizedAnchorRates: rates, Proportions: proportions}, nil
}

func (a *accessor) GetNTokenAccount(ctx context.Context, blockNumber uint64, nToken common.Address) (NTokenAccount, error) {
	out, err := a.callRouter(ctx, blockNumber, "getNTokenAccount", nToken)
	if err != nil {
		return NTokenAccount{}, err
	}

	var account NTokenAccount
	if err := RouterABI.Methods["getNTokenAccount"].Outputs.Copy(&account, out); err != nil {
		return NTokenAccount{}, fmt.Errorf("%w: failed to copy getNTokenAccount: %v", domain.ErrDecode, err)
	}
	return account, nil
}

func (a *accessor) NTokenAddress(ctx context.Context, blockNumber uint64, currencyID uint16) (common.Address, error) {
	out, err := a.callRouter(ctx, blockNumber, "nTokenAddress", currencyID)
	if err != nil {
		return common.Address{}, err
	}
	return convert[common.Address](out[0])
}

func (a *accessor) GetActiveMarketsAtBlockTime(ctx context.Context, blockNumber uint64, currencyID uint16, blockTime uint32) ([]MarketParameters, error) {
	out, err := a.callRouter(ctx, blockNumber, "getActiveMarketsAtBlockTime", currencyID, blockTime)
	if err != nil {
		return nil, err
	}
	return convertSlice[MarketParameters](out[0])
}

func (a *accessor) GetAccount(ctx context.Context, blockNumber uint64, account common.Address) (Account, error) {
	out, err := a.callRouter(ctx, blockNumber, "getAccount", account)
	if err != nil {
		return Account{}, err
	}
	accountContext, err := convert[AccountContext](out[0])
	if err != nil {
		return Account{}, err
	}
	balances, err := convertSlice[AccountBalance](out[1])
	if err != nil {
		return Account{}, err
	}
	portfolio, err := convertSlice[PortfolioAsset](out[2])
	if err != nil {
		return Account{}, err
	}
	return Account{Context: accountContext, Balances: balances, Portfolio: portfolio}, nil
}

func (a *accessor) GetCurrencyAndRates(ctx context.Context, blockNumber uint64, currencyID uint16) (CurrencyAndRates, error) {
	out, err := a.callRouter(ctx, blockNumber, "getCurrencyAndRates", currencyID)
	if err != nil {
		return CurrencyAndRates{}, err
	}
	var result CurrencyAndRates
	if result.AssetToken, err = convert[Token](out[0]); err != nil {
		return CurrencyAndRates{}, err
	}
	if result.UnderlyingToken, err = convert[Token](out[1]); err != nil {
		return CurrencyAndRates{}, err
	}
	if result.ETHRate, err = convert[ETHRate](out[2]); err != nil {
		return CurrencyAndRates{}, err
	}
	if result.AssetRate, err = convert[AssetRateParameters](out[3]); err != nil {
		return CurrencyAndRates{}, err
	}
	return result, nil
}

func (a *accessor) TokenName(ctx context.Context, blockNumber uint64, token common.Address) (string, error) {
	return a.tokenString(ctx, blockNumber, token, "name")
}

func (a *accessor) TokenSymbol(ctx context.Context, blockNumber uint64, token common.Address) (string, error) {
	return a.tokenString(ctx, blockNumber, token, "symbol")
}

// tokenString reads a string getter of a token. Successful reads are cached
// since token names and symbols do not change.
func (a *accessor) tokenString(ctx context.Context, blockNumber uint64, token common.Address, method string) (string, error) {
	key := method + ":" + domain.AddressKey(token)
	if value, ok := a.tokens.Get(key); ok {
		return value, nil
	}

	out, err := a.call(ctx, blockNumber, token, ERC20ABI, method)
	if err != nil {
		return "", err
	}
	value, err := convert[string](out[0])
	if err != nil {
		return "", err
	}

	a.tokens.Add(key, value)
	return value, nil
}

func (a *accessor) callRouter(ctx context.Context, blockNumber uint64, method string, args ...interface{}) ([]interface{}, error) {
	return a.call(ctx, blockNumber, a.config.RouterAddress, RouterABI, method, args...)
}

// call performs an eth_call against a contract at a block and unpacks the result.
// Transport failures are retried with exponential backoff, reverts are not.
func (a *accessor) call(ctx context.Context, blockNumber uint64, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	var block *big.Int
	if blockNumber > 0 {
		block = new(big.Int).SetUint64(blockNumber)
	}

	var result []byte
	operation := func() error {
		out, err := a.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, block)
		if err != nil {
			if isRevert(err) {
				return backoff.Permanent(fmt.Errorf("%w: %s on %s: %v", domain.ErrReverted, method, contract.Hex(), err))
			}
			return fmt.Errorf("failed to call %s on %s: %w", method, contract.Hex(), err)
		}
		if len(out) == 0 {
			// a call to an address without code returns no data
			return backoff.Permanent(fmt.Errorf("%w: %s on %s returned no data", domain.ErrReverted, method, contract.Hex()))
		}
		result = out
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.config.RetryInitialInterval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = a.config.RetryMaxElapsedTime
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	notify := func(err error, wait time.Duration) {
		logger.WarnCtx(ctx, "Contract call failed, retrying",
			zap.Error(err),
			zap.String("method", method),
			zap.Uint64("block", blockNumber),
			zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}

	out, err := contractABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unpack %s: %v", domain.ErrDecode, method, err)
	}
	return out, nil
}

// isRevert reports whether a call error is an execution revert rather than a
// node failure. Gas errors come from the node's eth_call gas cap and are retried.
func isRevert(err error) bool {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") ||
		strings.Contains(msg, "invalid opcode")
}

// convert turns a decoded ABI value into T. Tuples decode into anonymous
// structs which convert into named structs with the same fields.
func convert[T any](v interface{}) (T, error) {
	var out T
	rv := reflect.ValueOf(v)
	target := reflect.TypeOf(out)
	if !rv.IsValid() || !rv.Type().ConvertibleTo(target) {
		return out, fmt.Errorf("%w: cannot convert %T into %T", domain.ErrDecode, v, out)
	}
	return rv.Convert(target).Interface().(T), nil
}

// convertSlice converts a decoded ABI array element by element
func convertSlice[T any](v interface{}) ([]T, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: expected a slice, got %T", domain.ErrDecode, v)
	}
	out := make([]T, rv.Len())
	for i := range out {
		elem, err := convert[T](rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = elem
	}
	return out, nil
}
