package capsule

import (
	"context"
	"time"

	"github.com/inspikalu/sol-capsule/chain"
	"github.com/inspikalu/sol-capsule/signer"
)

// WalletProvider is the connected wallet a session signs with.
type WalletProvider interface {
	Address() string
	Signer(ctx context.Context) (signer.Signer, error)
}

type Session struct {
	RPCEndpoint string
	Wallet      WalletProvider
	// Owner receives the asset. Empty means the wallet itself.
	Owner string
}

func (s Session) owner() string {
	if s.Owner != "" {
		return s.Owner
	}
	if s.Wallet == nil {
		return ""
	}
	return s.Wallet.Address()
}

type ChainIssuer interface {
	Cluster() chain.Cluster
	CreateCollection(ctx context.Context, payer signer.Signer, args chain.CollectionArgs) (*chain.Issuance, error)
	CreateAsset(ctx context.Context, payer signer.Signer, args chain.AssetArgs) (*chain.Issuance, error)
}

// BoundSession is a signer paired with a chain client for one run.
type BoundSession struct {
	Signer signer.Signer
	Issuer ChainIssuer
}

func (b *BoundSession) Cluster() chain.Cluster {
	return b.Issuer.Cluster()
}

func (b *BoundSession) Close() {
	if b.Signer != nil {
		b.Signer.Destroy()
	}
}

type SessionBinder interface {
	Bind(ctx context.Context, session Session) (*BoundSession, error)
}

// ChainBinder binds sessions to the configured cluster. It does no network
// I/O; the rpc client connects lazily.
type ChainBinder struct {
	cluster    chain.Cluster
	rpcTimeout time.Duration
	opts       chain.IssuerOptions
}

var _ SessionBinder = &ChainBinder{}

func NewChainBinder(cluster chain.Cluster, rpcTimeout time.Duration, opts chain.IssuerOptions) *ChainBinder {
	return &ChainBinder{
		cluster:    cluster,
		rpcTimeout: rpcTimeout,
		opts:       opts,
	}
}

func (b *ChainBinder) Bind(ctx context.Context, session Session) (*BoundSession, error) {
	s, err := session.Wallet.Signer(ctx)
	if err != nil {
		return nil, &chain.SubmissionError{Op: "bind session", Err: err}
	}

	client := chain.NewClient(session.RPCEndpoint, b.rpcTimeout)

	return &BoundSession{
		Signer: s,
		Issuer: chain.NewIssuer(client, b.cluster, b.opts),
	}, nil
}
