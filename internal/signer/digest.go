// Package signer implements the finalize signer: it validates a
// terminal arena's result, builds the canonical EIP-712-style digest,
// and obtains a 65-byte recoverable signature from an injected
// SigningService, without ever holding the operator key itself.
package signer

import (
	"math/big"

	"golang.org/x/crypto/sha3"
)

const (
	domainName    = "ClawArena"
	domainVersion = "1"

	domainTypeString = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	structTypeString = "Finalize(address arena,bytes32 winnersHash,bytes32 amountsHash,uint256 nonce)"
)

// keccak256 is the hash the on-chain verifier expects — for an EVM
// escrow contract, that is Keccak-256, not SHA-256/SHA-3.
func keccak256(chunks ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Address is a 20-byte chain address, hex-encoded with a "0x" prefix
// in its external form.
type Address [20]byte

// ParseAddress decodes a "0x"-prefixed 40-hex-digit address.
func ParseAddress(s string) (Address, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Address{}, err
	}
	if len(b) != 20 {
		return Address{}, errLenf("address must be 20 bytes, got %d", len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

func (a Address) Bytes() []byte { return a[:] }
func (a Address) String() string { return encodeHex(a[:]) }

// amountTo32 big-endian-encodes amt into a 32-byte word, the packing
// each amount needs before it is hashed.
func amountTo32(amt *big.Int) [32]byte {
	var out [32]byte
	b := amt.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// nonceTo32 big-endian-encodes a uint64 nonce into a 32-byte word, the
// same packing EVM's uint256 expects.
func nonceTo32(nonce uint64) [32]byte {
	var out [32]byte
	big.NewInt(0).SetUint64(nonce).FillBytes(out[:])
	return out
}

// chainIDTo32 big-endian-encodes a chain ID into a 32-byte word.
func chainIDTo32(chainID uint64) [32]byte {
	var out [32]byte
	big.NewInt(0).SetUint64(chainID).FillBytes(out[:])
	return out
}

// DomainSeparator computes the EIP-712 domain separator.
func DomainSeparator(chainID uint64, arena Address) [32]byte {
	nameHash := keccak256([]byte(domainName))
	versionHash := keccak256([]byte(domainVersion))
	typeHash := keccak256([]byte(domainTypeString))
	chainIDWord := chainIDTo32(chainID)
	return keccak256(typeHash[:], nameHash[:], versionHash[:], chainIDWord[:], arena[:])
}

// StructHash computes the EIP-712 struct hash.
func StructHash(arena Address, winners []Address, amounts []*big.Int, nonce uint64) [32]byte {
	typeHash := keccak256([]byte(structTypeString))

	var winnersPacked []byte
	for _, w := range winners {
		winnersPacked = append(winnersPacked, w[:]...)
	}
	winnersHash := keccak256(winnersPacked)

	var amountsPacked []byte
	for _, amt := range amounts {
		word := amountTo32(amt)
		amountsPacked = append(amountsPacked, word[:]...)
	}
	amountsHash := keccak256(amountsPacked)

	nonceWord := nonceTo32(nonce)
	return keccak256(typeHash[:], arena[:], winnersHash[:], amountsHash[:], nonceWord[:])
}

// Digest computes the final digest = H(0x19 || 0x01 ||
// domain_separator || struct_hash), the standard EIP-712 envelope.
func Digest(chainID uint64, arena Address, winners []Address, amounts []*big.Int, nonce uint64) [32]byte {
	domainSep := DomainSeparator(chainID, arena)
	structHash := StructHash(arena, winners, amounts, nonce)
	return keccak256([]byte{0x19, 0x01}, domainSep[:], structHash[:])
}
