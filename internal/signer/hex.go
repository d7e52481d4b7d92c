package signer

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// decodeHex and encodeHex are "0x"-tolerant hex helpers, generalized
// from curve-point byte strings to chain addresses here.
func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("signer: empty hex string")
	}
	ss := strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(ss)%2 != 0 {
		return nil, fmt.Errorf("signer: odd-length hex string")
	}
	b, err := hex.DecodeString(ss)
	if err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}
	return b, nil
}

func encodeHex(b []byte) string {
	return "0x" + strings.ToLower(hex.EncodeToString(b))
}

func errLenf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
