package notional

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/notional-finance/notional-indexer/internal/domain"
)

// eventKinds maps an event signature hash to the event kind it identifies
var eventKinds = buildEventKinds()

func buildEventKinds() map[common.Hash]domain.EventKind {
	kinds := make(map[common.Hash]domain.EventKind, len(domain.AllEventKinds))
	for _, kind := range domain.AllEventKinds {
		event, ok := RouterABI.Events[string(kind)]
		if !ok {
			panic(fmt.Sprintf("event %s missing from router ABI", kind))
		}
		kinds[event.ID] = kind
	}
	return kinds
}

// EventTopics returns the signature hash of every handled event, in handler order
func EventTopics() []common.Hash {
	topics := make([]common.Hash, 0, len(domain.AllEventKinds))
	for _, kind := range domain.AllEventKinds {
		topics = append(topics, RouterABI.Events[string(kind)].ID)
	}
	return topics
}

// EventKindOf resolves the kind of a log from its signature hash
func EventKindOf(topic common.Hash) (domain.EventKind, bool) {
	kind, ok := eventKinds[topic]
	return kind, ok
}

// DecodeLog decodes a protocol log into its typed event and attaches the block
// and transaction context. Logs with an unknown signature return
// domain.ErrUnknownEvent and malformed logs return domain.ErrDecode.
func DecodeLog(pl *domain.ProtocolLog) (event domain.Event, err error) {
	if len(pl.Log.Topics) == 0 {
		return nil, fmt.Errorf("%w: log without topics", domain.ErrUnknownEvent)
	}

	kind, ok := EventKindOf(pl.Log.Topics[0])
	if !ok {
		return nil, fmt.Errorf("%w: topic %s", domain.ErrUnknownEvent, pl.Log.Topics[0].Hex())
	}

	event, _ = domain.NewEvent(kind)
	abiEvent := RouterABI.Events[string(kind)]

	defer func() {
		if r := recover(); r != nil {
			event = nil
			err = fmt.Errorf("%w: %s: %v", domain.ErrDecode, kind, r)
		}
	}()

	if len(abiEvent.Inputs.NonIndexed()) > 0 {
		if err := RouterABI.UnpackIntoInterface(event, abiEvent.Name, pl.Log.Data); err != nil {
			return nil, fmt.Errorf("%w: %s data: %v", domain.ErrDecode, kind, err)
		}
	}

	var indexed abi.Arguments
	for _, input := range abiEvent.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopics(event, indexed, pl.Log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("%w: %s topics: %v", domain.ErrDecode, kind, err)
	}

	*event.Metadata() = domain.EventMeta{
		Address:        pl.Log.Address,
		BlockNumber:    pl.Log.BlockNumber,
		BlockTimestamp: pl.BlockTimestamp,
		BlockHash:      pl.Log.BlockHash,
		TxHash:         pl.Log.TxHash,
		LogIndex:       pl.Log.Index,
		TxOrigin:       common.HexToAddress(pl.TxOrigin),
	}

	return event, nil
}
