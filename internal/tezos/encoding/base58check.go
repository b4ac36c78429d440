// Package encoding validates and builds Tezos base58check strings.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Prefix is a base58check version prefix together with the payload size it guards.
type Prefix struct {
	Name    string
	Bytes   []byte
	Payload int
}

var (
	PrefixTz1      = Prefix{Name: "tz1", Bytes: []byte{6, 161, 159}, Payload: 20}
	PrefixTz2      = Prefix{Name: "tz2", Bytes: []byte{6, 161, 161}, Payload: 20}
	PrefixTz3      = Prefix{Name: "tz3", Bytes: []byte{6, 161, 164}, Payload: 20}
	PrefixKT1      = Prefix{Name: "KT1", Bytes: []byte{2, 90, 121}, Payload: 20}
	PrefixBlock    = Prefix{Name: "B", Bytes: []byte{1, 52}, Payload: 32}
	PrefixProtocol = Prefix{Name: "P", Bytes: []byte{2, 170}, Payload: 32}
)

const checksumSize = 4

var errChecksum = errors.New("invalid checksum")

// Encode builds a base58check string for payload under prefix.
func Encode(p Prefix, payload []byte) (string, error) {
	if len(payload) != p.Payload {
		return "", fmt.Errorf("%s payload must be %d bytes, got %d", p.Name, p.Payload, len(payload))
	}
	buf := make([]byte, 0, len(p.Bytes)+len(payload)+checksumSize)
	buf = append(buf, p.Bytes...)
	buf = append(buf, payload...)
	buf = append(buf, chainhash.DoubleHashB(buf)[:checksumSize]...)
	return base58.Encode(buf), nil
}

// Decode checks s against prefix and returns the payload.
func Decode(p Prefix, s string) ([]byte, error) {
	raw := base58.Decode(s)
	if len(raw) != len(p.Bytes)+p.Payload+checksumSize {
		return nil, fmt.Errorf("decode %s %q: unexpected length %d", p.Name, s, len(raw))
	}
	body, sum := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	if !bytes.Equal(chainhash.DoubleHashB(body)[:checksumSize], sum) {
		return nil, fmt.Errorf("decode %s %q: %w", p.Name, s, errChecksum)
	}
	if !bytes.HasPrefix(body, p.Bytes) {
		return nil, fmt.Errorf("decode %s %q: unexpected prefix", p.Name, s)
	}
	return body[len(p.Bytes):], nil
}

// ValidateAddress accepts implicit (tz1/tz2/tz3) and originated (KT1) addresses.
func ValidateAddress(addr string) error {
	p, ok := addressPrefix(addr)
	if !ok {
		return fmt.Errorf("address %q: unknown prefix", addr)
	}
	_, err := Decode(p, addr)
	return err
}

// ValidateBlockHash checks a block hash.
func ValidateBlockHash(hash string) error {
	_, err := Decode(PrefixBlock, hash)
	return err
}

// IsOriginated reports whether addr names an originated contract.
func IsOriginated(addr string) bool {
	return strings.HasPrefix(addr, PrefixKT1.Name)
}

func addressPrefix(addr string) (Prefix, bool) {
	for _, p := range []Prefix{PrefixTz1, PrefixTz2, PrefixTz3, PrefixKT1} {
		if strings.HasPrefix(addr, p.Name) {
			return p, true
		}
	}
	return Prefix{}, false
}
