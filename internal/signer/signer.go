package signer

import (
	"context"
	"crypto/ecdsa"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Signature is the 65-byte (r, s, v) recoverable signature, with v
// normalized into {27, 28}.
type Signature [65]byte

// SigningService is the external collaborator holding the operator
// key: the orchestrator never sees the key, only calls Sign with a
// digest and gets bytes back.
type SigningService interface {
	Sign(ctx context.Context, digest [32]byte) (Signature, error)
}

// LocalKeySigner is a development/test SigningService backed by an
// in-process ECDSA key. Production deployments inject a remote secure
// runtime implementing the same interface instead; only the logical
// Sign contract is implemented here.
type LocalKeySigner struct {
	key *ecdsa.PrivateKey
}

func NewLocalKeySigner(key *ecdsa.PrivateKey) *LocalKeySigner {
	return &LocalKeySigner{key: key}
}

// OperatorAddress returns the address recoverable from this signer's
// signatures, for tests that want to check that recovering the signer
// from the signature and digest yields the operator address.
func (s *LocalKeySigner) OperatorAddress() Address {
	var a Address
	copy(a[:], gethcrypto.PubkeyToAddress(s.key.PublicKey).Bytes())
	return a
}

func (s *LocalKeySigner) Sign(ctx context.Context, digest [32]byte) (Signature, error) {
	sig, err := gethcrypto.Sign(digest[:], s.key)
	if err != nil {
		return Signature{}, err
	}
	return normalizeV(sig), nil
}

// normalizeV normalizes v into {27, 28} (adding 27 when v < 27).
// go-ethereum's crypto.Sign returns v in {0, 1}.
func normalizeV(sig []byte) Signature {
	var out Signature
	copy(out[:], sig)
	if out[64] < 27 {
		out[64] += 27
	}
	return out
}

// Recover recovers the signer address from a digest and signature.
func Recover(digest [32]byte, sig Signature) (Address, error) {
	raw := append([]byte(nil), sig[:]...)
	if raw[64] >= 27 {
		raw[64] -= 27
	}
	pub, err := gethcrypto.SigToPub(digest[:], raw)
	if err != nil {
		return Address{}, err
	}
	var a Address
	copy(a[:], gethcrypto.PubkeyToAddress(*pub).Bytes())
	return a, nil
}
