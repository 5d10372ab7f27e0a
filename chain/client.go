package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	log "github.com/sirupsen/logrus"
)

// RPCClient is the subset of the Solana JSON-RPC API the issuer needs.
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetGenesisHash(ctx context.Context) (solana.Hash, error)
}

type solanaClient struct {
	client  *rpc.Client
	timeout time.Duration
}

var _ RPCClient = &solanaClient{}

// NewClient returns an RPCClient that bounds every call by timeout.
func NewClient(endpoint string, timeout time.Duration) RPCClient {
	return &solanaClient{
		client:  rpc.New(endpoint),
		timeout: timeout,
	}
}

func (c *solanaClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *solanaClient) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.client.GetLatestBlockhash(ctx, commitment)
}

func (c *solanaClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.client.SendTransactionWithOpts(ctx, tx, opts)
}

func (c *solanaClient) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.client.GetSignatureStatuses(ctx, searchTransactionHistory, signatures...)
}

func (c *solanaClient) GetGenesisHash(ctx context.Context) (solana.Hash, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.client.GetGenesisHash(ctx)
}

// ValidateNetwork checks that the node behind client serves cluster.
func ValidateNetwork(ctx context.Context, client RPCClient, cluster Cluster) error {
	log.Debugln("[CHAIN]", "Validating network", cluster)

	expected, ok := cluster.GenesisHash()
	if !ok {
		log.Infoln("[CHAIN]", "Skipping genesis check for", cluster)
		return nil
	}

	genesis, err := client.GetGenesisHash(ctx)
	if err != nil {
		return fmt.Errorf("failed to get genesis hash: %w", err)
	}

	log.Debugln("[CHAIN]", "genesis", genesis)

	if genesis != expected {
		return fmt.Errorf("genesis hash mismatch for %s: expected %s, got %s", cluster, expected, genesis)
	}

	log.Infoln("[CHAIN]", "Validated network")
	return nil
}
