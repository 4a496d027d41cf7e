package execution

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/execution/signer"
	"go.uber.org/zap"
)

// TxRequest describes one transaction before nonce and gas price are known.
// A nil To deploys a contract.
type TxRequest struct {
	To    *common.Address
	Value *big.Int
	Data  []byte
	Gas   uint64
}

// Submitter signs and broadcasts transactions for a single account.
type Submitter struct {
	client *NetworkClient
	signer signer.Signer
	log    *zap.Logger
}

func NewSubmitter(client *NetworkClient, txSigner signer.Signer) *Submitter {
	return &Submitter{client: client, signer: txSigner, log: client.log.Named("submitter")}
}

func (s *Submitter) Address() common.Address { return s.signer.Address() }

func (s *Submitter) Client() *NetworkClient { return s.client }

var accountLocks sync.Map

func accountLock(chainID *big.Int, addr common.Address) *sync.Mutex {
	key := chainID.String() + ":" + addr.Hex()
	mu, _ := accountLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Submit reads the pending nonce and gas price, signs and broadcasts while
// holding the account's lock, so concurrent submissions never share a nonce.
func (s *Submitter) Submit(ctx context.Context, req TxRequest) (common.Hash, error) {
	if s.signer == nil {
		return common.Hash{}, clierr.New(clierr.CodeSigner, "missing signer")
	}
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	from := s.signer.Address()
	mu := accountLock(s.client.chainID, from)
	mu.Lock()
	defer mu.Unlock()

	nonce, err := s.client.PendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, err
	}
	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      req.Gas,
		To:       req.To,
		Value:    value,
		Data:     req.Data,
	})
	signed, err := s.signer.SignTx(s.client.chainID, tx)
	if err != nil {
		return common.Hash{}, clierr.Wrap(clierr.CodeSigner, "sign transaction", err)
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}
	s.log.Info("transaction broadcast",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", req.Gas),
	)
	return signed.Hash(), nil
}
