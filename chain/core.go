package chain

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/inspikalu/sol-capsule/models"
)

// CoreProgramID is the Metaplex Core program.
var CoreProgramID = solana.MustPublicKeyFromBase58("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d")

const (
	createV1Discriminator           uint8 = 0
	createCollectionV1Discriminator uint8 = 1

	dataStateAccountState uint8 = 0
	pluginRoyalties       uint8 = 0

	ruleSetNone uint8 = 0
)

type CollectionArgs struct {
	Name    string
	URI     string
	Royalty models.RoyaltyConfig
}

type AssetArgs struct {
	Name       string
	URI        string
	Collection solana.PublicKey
	// Owner defaults to the payer when zero.
	Owner   solana.PublicKey
	Royalty models.RoyaltyConfig
}

type borshEncoder struct {
	buf bytes.Buffer
}

func (e *borshEncoder) u8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *borshEncoder) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *borshEncoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *borshEncoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf.WriteString(s)
}

func (e *borshEncoder) pubkey(pk solana.PublicKey) {
	e.buf.Write(pk[:])
}

func (e *borshEncoder) bytes() []byte {
	return e.buf.Bytes()
}

func encodeRuleSet(ruleSet string) (uint8, error) {
	switch ruleSet {
	case "", models.RuleSetNone:
		return ruleSetNone, nil
	}
	// allow/deny lists carry program vectors which capsules never set
	return 0, fmt.Errorf("unsupported royalty rule set %q", ruleSet)
}

// encodeRoyaltyPlugins writes Some(vec![PluginAuthorityPair{Royalties, None}]).
func encodeRoyaltyPlugins(e *borshEncoder, royalty models.RoyaltyConfig) error {
	total := 0
	creators := make([]solana.PublicKey, 0, len(royalty.Creators))
	for _, creator := range royalty.Creators {
		pk, err := solana.PublicKeyFromBase58(creator.Address)
		if err != nil {
			return fmt.Errorf("invalid royalty creator %q: %w", creator.Address, err)
		}
		creators = append(creators, pk)
		total += int(creator.Percentage)
	}
	if total != 100 {
		return fmt.Errorf("royalty creator shares sum to %d, expected 100", total)
	}
	if royalty.BasisPoints > 10000 {
		return fmt.Errorf("royalty basis points %d exceed 10000", royalty.BasisPoints)
	}
	ruleSet, err := encodeRuleSet(royalty.RuleSet)
	if err != nil {
		return err
	}

	e.u8(1) // Some
	e.u32(1)
	e.u8(pluginRoyalties)
	e.u16(royalty.BasisPoints)
	e.u32(uint32(len(creators)))
	for i, pk := range creators {
		e.pubkey(pk)
		e.u8(royalty.Creators[i].Percentage)
	}
	e.u8(ruleSet)
	e.u8(0) // authority: None
	return nil
}

func encodeCreateCollectionV1(args CollectionArgs) ([]byte, error) {
	e := &borshEncoder{}
	e.u8(createCollectionV1Discriminator)
	e.str(args.Name)
	e.str(args.URI)
	if err := encodeRoyaltyPlugins(e, args.Royalty); err != nil {
		return nil, err
	}
	return e.bytes(), nil
}

func encodeCreateV1(args AssetArgs) ([]byte, error) {
	e := &borshEncoder{}
	e.u8(createV1Discriminator)
	e.u8(dataStateAccountState)
	e.str(args.Name)
	e.str(args.URI)
	if err := encodeRoyaltyPlugins(e, args.Royalty); err != nil {
		return nil, err
	}
	return e.bytes(), nil
}

func meta(pk solana.PublicKey, writable, signer bool) *solana.AccountMeta {
	return &solana.AccountMeta{PublicKey: pk, IsWritable: writable, IsSigner: signer}
}

// omitted optional accounts are passed as the program id
func none() *solana.AccountMeta {
	return meta(CoreProgramID, false, false)
}

func NewCreateCollectionV1Instruction(collection, payer solana.PublicKey, args CollectionArgs) (solana.Instruction, error) {
	data, err := encodeCreateCollectionV1(args)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		meta(collection, true, true),
		none(), // update authority: payer
		meta(payer, true, true),
		meta(solana.SystemProgramID, false, false),
	}

	return solana.NewInstruction(CoreProgramID, accounts, data), nil
}

func NewCreateV1Instruction(asset, payer solana.PublicKey, args AssetArgs) (solana.Instruction, error) {
	data, err := encodeCreateV1(args)
	if err != nil {
		return nil, err
	}

	collection := none()
	if !args.Collection.IsZero() {
		collection = meta(args.Collection, true, false)
	}
	owner := none()
	if !args.Owner.IsZero() && !args.Owner.Equals(payer) {
		owner = meta(args.Owner, false, false)
	}

	accounts := solana.AccountMetaSlice{
		meta(asset, true, true),
		collection,
		none(), // authority: payer
		meta(payer, true, true),
		owner,
		none(), // update authority: inherited from the collection
		meta(solana.SystemProgramID, false, false),
		none(), // log wrapper
	}

	return solana.NewInstruction(CoreProgramID, accounts, data), nil
}
