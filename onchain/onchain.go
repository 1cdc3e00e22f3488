// Package onchain reads Anchor IDL accounts from a Solana RPC node.
//
// Anchor stores a program's IDL in an account derived from the program ID:
//
//	base    = find_program_address([], programID)
//	address = create_with_seed(base, "anchor:idl", programID)
//
// The account data is laid out as
//
//	discriminator [8]byte | authority [32]byte | len uint32 (LE) | zlib(IDL JSON)
package onchain

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/klauspost/compress/zlib"
)

// IDLSeed is the seed Anchor uses for the IDL account address.
const IDLSeed = "anchor:idl"

const (
	discriminatorLen = 8
	authorityLen     = 32
	headerLen        = discriminatorLen + authorityLen + 4

	// MaxIDLSize bounds the inflated IDL size.
	MaxIDLSize = 16 << 20
)

var (
	// ErrIDLNotFound is returned when the program has no IDL account.
	ErrIDLNotFound = errors.New("onchain: IDL account not found")
	// ErrShortAccount is returned when the account is smaller than its header or
	// its declared payload.
	ErrShortAccount = errors.New("onchain: IDL account data truncated")
	// ErrNotIDLAccount is returned when the account discriminator is not IdlAccount's.
	ErrNotIDLAccount = errors.New("onchain: account is not an Anchor IDL account")
	// ErrIDLTooLarge is returned when the inflated IDL exceeds MaxIDLSize.
	ErrIDLTooLarge = errors.New("onchain: IDL exceeds size limit")
)

// IDLAddress derives the Anchor IDL account address of a program.
func IDLAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	base, _, err := solana.FindProgramAddress([][]byte{}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("onchain: derive program signer: %w", err)
	}
	addr, err := solana.CreateWithSeed(base, IDLSeed, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("onchain: derive IDL address: %w", err)
	}
	return addr, nil
}

// Header is the fixed part of an IDL account.
type Header struct {
	Discriminator [discriminatorLen]byte
	Authority     solana.PublicKey
	DataLen       uint32
}

// DecodeIDLAccount validates the account layout and returns the inflated IDL
// JSON.
func DecodeIDLAccount(data []byte) ([]byte, error) {
	h, payload, err := splitAccount(data)
	if err != nil {
		return nil, err
	}
	if h.Discriminator != accountDiscriminator {
		return nil, ErrNotIDLAccount
	}
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("onchain: open zlib stream: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, MaxIDLSize+1))
	if err != nil {
		return nil, fmt.Errorf("onchain: inflate IDL: %w", err)
	}
	if len(out) > MaxIDLSize {
		return nil, ErrIDLTooLarge
	}
	return out, nil
}

// ReadHeader decodes the fixed header of an IDL account.
func ReadHeader(data []byte) (Header, error) {
	h, _, err := splitAccount(data)
	return h, err
}

func splitAccount(data []byte) (Header, []byte, error) {
	var h Header
	if len(data) < headerLen {
		return h, nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrShortAccount, len(data), headerLen)
	}
	copy(h.Discriminator[:], data[:discriminatorLen])
	copy(h.Authority[:], data[discriminatorLen:discriminatorLen+authorityLen])
	h.DataLen = binary.LittleEndian.Uint32(data[discriminatorLen+authorityLen : headerLen])
	end := uint64(headerLen) + uint64(h.DataLen)
	if uint64(len(data)) < end {
		return h, nil, fmt.Errorf("%w: declared %d payload bytes, have %d", ErrShortAccount, h.DataLen, len(data)-headerLen)
	}
	return h, data[headerLen:end], nil
}

// EncodeIDLAccount builds IDL account data around a JSON document. It is the
// inverse of DecodeIDLAccount and is used to stage fixtures.
func EncodeIDLAccount(authority solana.PublicKey, idlJSON []byte) ([]byte, error) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(idlJSON); err != nil {
		return nil, fmt.Errorf("onchain: deflate IDL: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("onchain: deflate IDL: %w", err)
	}
	out := make([]byte, headerLen, headerLen+z.Len())
	copy(out[:discriminatorLen], accountDiscriminator[:])
	copy(out[discriminatorLen:], authority[:])
	binary.LittleEndian.PutUint32(out[discriminatorLen+authorityLen:], uint32(z.Len()))
	return append(out, z.Bytes()...), nil
}

var accountDiscriminator = func() (d [discriminatorLen]byte) {
	sum := sha256.Sum256([]byte("account:IdlAccount"))
	copy(d[:], sum[:discriminatorLen])
	return d
}()

// AccountReader is the subset of *rpc.Client used by Fetcher.
type AccountReader interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// Fetcher downloads and inflates Anchor IDL accounts.
type Fetcher struct {
	client     AccountReader
	commitment rpc.CommitmentType
}

// NewFetcher returns a Fetcher reading through client at confirmed commitment.
func NewFetcher(client AccountReader) *Fetcher {
	return &Fetcher{client: client, commitment: rpc.CommitmentConfirmed}
}

// NewRPCFetcher dials endpoint with the solana-go JSON-RPC client.
func NewRPCFetcher(endpoint string) *Fetcher {
	return NewFetcher(rpc.New(endpoint))
}

// Fetch returns the IDL JSON stored on-chain for programID.
func (f *Fetcher) Fetch(ctx context.Context, programID solana.PublicKey) ([]byte, error) {
	addr, err := IDLAddress(programID)
	if err != nil {
		return nil, err
	}
	res, err := f.client.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: f.commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrIDLNotFound, addr)
		}
		return nil, fmt.Errorf("onchain: get account %s: %w", addr, err)
	}
	if res == nil || res.Value == nil || res.Value.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrIDLNotFound, addr)
	}
	if !res.Value.Owner.Equals(programID) {
		return nil, fmt.Errorf("onchain: IDL account %s is owned by %s, not %s", addr, res.Value.Owner, programID)
	}
	return DecodeIDLAccount(res.Value.Data.GetBinary())
}
