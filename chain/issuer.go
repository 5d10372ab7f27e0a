package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/inspikalu/sol-capsule/signer"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultConfirmTimeout = 90 * time.Second
	DefaultPollInterval   = 2 * time.Second
)

type IssuerOptions struct {
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	// NewKeypair generates the address keypair for each new account.
	NewKeypair func() (signer.Signer, error)
}

// Issuance is a finalized account creation.
type Issuance struct {
	Address   solana.PublicKey
	Signature solana.Signature
}

// Issuer creates mpl-core collections and assets and waits for each
// transaction to reach finalized commitment.
type Issuer struct {
	client         RPCClient
	cluster        Cluster
	confirmTimeout time.Duration
	pollInterval   time.Duration
	newKeypair     func() (signer.Signer, error)
}

func NewIssuer(client RPCClient, cluster Cluster, opts IssuerOptions) *Issuer {
	issuer := &Issuer{
		client:         client,
		cluster:        cluster,
		confirmTimeout: opts.ConfirmTimeout,
		pollInterval:   opts.PollInterval,
		newKeypair:     opts.NewKeypair,
	}
	if issuer.confirmTimeout <= 0 {
		issuer.confirmTimeout = DefaultConfirmTimeout
	}
	if issuer.pollInterval <= 0 {
		issuer.pollInterval = DefaultPollInterval
	}
	if issuer.newKeypair == nil {
		issuer.newKeypair = func() (signer.Signer, error) {
			return signer.NewRandomKeypairSigner()
		}
	}
	return issuer
}

func (i *Issuer) Cluster() Cluster {
	return i.cluster
}

func (i *Issuer) CreateCollection(ctx context.Context, payer signer.Signer, args CollectionArgs) (*Issuance, error) {
	const op = "create collection"

	collection, err := i.newKeypair()
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}
	defer collection.Destroy()

	ix, err := NewCreateCollectionV1Instruction(collection.PublicKey(), payer.PublicKey(), args)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}

	log.Debugln("[CHAIN]", "Creating collection", collection.PublicKey(), "on", i.cluster)

	sig, err := i.submit(ctx, op, ix, payer, collection)
	if err != nil {
		return nil, err
	}

	return &Issuance{Address: collection.PublicKey(), Signature: sig}, nil
}

func (i *Issuer) CreateAsset(ctx context.Context, payer signer.Signer, args AssetArgs) (*Issuance, error) {
	const op = "create asset"

	asset, err := i.newKeypair()
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}
	defer asset.Destroy()

	ix, err := NewCreateV1Instruction(asset.PublicKey(), payer.PublicKey(), args)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}

	log.Debugln("[CHAIN]", "Creating asset", asset.PublicKey(), "in collection", args.Collection)

	sig, err := i.submit(ctx, op, ix, payer, asset)
	if err != nil {
		return nil, err
	}

	return &Issuance{Address: asset.PublicKey(), Signature: sig}, nil
}

func (i *Issuer) submit(ctx context.Context, op string, ix solana.Instruction, payer signer.Signer, signers ...signer.Signer) (solana.Signature, error) {
	var sig solana.Signature

	blockhash, err := i.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return sig, &SubmissionError{Op: op, Err: fmt.Errorf("failed to get latest blockhash: %w", err)}
	}
	if blockhash == nil || blockhash.Value == nil {
		return sig, &SubmissionError{Op: op, Err: errors.New("empty blockhash response")}
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return sig, &SubmissionError{Op: op, Err: fmt.Errorf("failed to build transaction: %w", err)}
	}

	if err := signTransaction(ctx, tx, append([]signer.Signer{payer}, signers...)); err != nil {
		return sig, &SubmissionError{Op: op, Err: err}
	}

	sig, err = i.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return sig, &SubmissionError{Op: op, Err: fmt.Errorf("failed to send transaction: %w", err)}
	}

	log.Debugln("[CHAIN]", "Sent transaction", sig)

	if err := i.WaitForFinalized(ctx, op, sig); err != nil {
		return sig, err
	}

	log.Infoln("[CHAIN]", "Finalized transaction", sig)
	return sig, nil
}

func signTransaction(ctx context.Context, tx *solana.Transaction, signers []signer.Signer) error {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if required > len(tx.Message.AccountKeys) {
		return fmt.Errorf("message requires %d signatures but has %d keys", required, len(tx.Message.AccountKeys))
	}

	tx.Signatures = make([]solana.Signature, required)
	for idx, key := range tx.Message.AccountKeys[:required] {
		var s signer.Signer
		for _, candidate := range signers {
			if candidate.PublicKey().Equals(key) {
				s = candidate
				break
			}
		}
		if s == nil {
			return fmt.Errorf("missing signer for %s", key)
		}

		sig, err := s.Sign(ctx, message)
		if err != nil {
			return fmt.Errorf("failed to sign with %s: %w", key, err)
		}
		tx.Signatures[idx] = sig
	}
	return nil
}

// WaitForFinalized polls the signature status until it is finalized, the
// transaction fails, or the confirm timeout elapses.
func (i *Issuer) WaitForFinalized(ctx context.Context, op string, sig solana.Signature) error {
	waitCtx, cancel := context.WithTimeout(ctx, i.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(i.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return &SubmissionError{Op: op, Err: ctx.Err()}
			}
			return &ConfirmationTimeoutError{Op: op, Signature: sig, Timeout: i.confirmTimeout}
		case <-ticker.C:
		}

		statuses, err := i.client.GetSignatureStatuses(waitCtx, true, sig)
		if err != nil {
			log.Warnln("[CHAIN]", "Failed to get signature status", sig, err)
			continue
		}
		if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
			continue
		}

		status := statuses.Value[0]
		if status.Err != nil {
			return &SubmissionError{Op: op, Err: fmt.Errorf("transaction %s failed: %v", sig, status.Err)}
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return nil
		}
	}
}
