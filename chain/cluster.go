package chain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type Cluster string

const (
	ClusterDevnet      Cluster = "devnet"
	ClusterTestnet     Cluster = "testnet"
	ClusterMainnetBeta Cluster = "mainnet-beta"
	ClusterLocalnet    Cluster = "localnet"
)

var genesisHashes = map[Cluster]solana.Hash{
	ClusterDevnet:      solana.MustHashFromBase58("EtWTRABZaYq6iMfeYKouRu166VU2xqa1wcaWoxPkrZBG"),
	ClusterTestnet:     solana.MustHashFromBase58("4uhcVJyU9pJkvQyS88uRDiswHXSCkY3zQawwpjk2NsNY"),
	ClusterMainnetBeta: solana.MustHashFromBase58("5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d"),
}

func ParseCluster(name string) (Cluster, error) {
	switch c := Cluster(name); c {
	case ClusterDevnet, ClusterTestnet, ClusterMainnetBeta, ClusterLocalnet:
		return c, nil
	}
	return "", fmt.Errorf("unknown cluster %q", name)
}

// GenesisHash returns the well-known genesis hash. Localnet has none.
func (c Cluster) GenesisHash() (solana.Hash, bool) {
	hash, ok := genesisHashes[c]
	return hash, ok
}

func (c Cluster) ExplorerURL(signature string) string {
	url := "https://explorer.solana.com/tx/" + signature
	switch c {
	case ClusterMainnetBeta:
		return url
	case ClusterLocalnet:
		return url + "?cluster=custom"
	default:
		return url + "?cluster=" + string(c)
	}
}

func (c Cluster) String() string {
	return string(c)
}
