package tor

import (
	"encoding/base32"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV3Version is the version byte for v3 onion addresses.
	OnionV3Version = 0x03

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"
)

// onionV3Pattern matches v3 onion addresses (56 base32 characters +
// .onion). Base32 uses lowercase a-z and digits 2-7.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// onionV2Pattern matches the deprecated v2 format (16 base32 characters).
// V2 addresses stopped working in October 2021; we detect them only to
// give a precise error.
var onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)

// checksumPrefix is the prefix used in v3 onion address checksum
// calculation, as specified in the Tor rendezvous specification.
var checksumPrefix = []byte(".onion checksum")

// Onion address validation errors.
var (
	// ErrInvalidOnionAddress is returned when an address is not a valid
	// v3 onion address.
	ErrInvalidOnionAddress = errors.New("invalid onion address")

	// ErrV2AddressDeprecated is returned when a v2 address is provided.
	ErrV2AddressDeprecated = errors.New("v2 onion addresses are deprecated and no longer functional")
)

// IsValidV3Address checks if the given address is a valid v3 onion
// address. It performs both format validation and checksum verification.
//
// Design decision: We perform full checksum validation rather than just
// pattern matching because it catches typos and corrupted addresses, and
// it matches what Tor itself does when connecting.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)

	if !onionV3Pattern.MatchString(address) {
		return false
	}

	onionPart := strings.TrimSuffix(address, OnionSuffix)

	// The Tor spec uses standard base32 encoding (RFC 4648).
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionPart))
	if err != nil {
		return false
	}

	// Decoded data is 32 bytes of ed25519 public key, 2 bytes of checksum
	// and 1 version byte.
	if len(decoded) != 35 {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]

	if version != OnionV3Version {
		return false
	}

	// Checksum = first 2 bytes of SHA3-256(".onion checksum" || pubkey || version)
	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum computes the checksum bytes for a v3 onion address.
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// ValidateTarget checks that a fetch target's host is usable through Tor.
//
// Clearnet hosts are always accepted (Tor exits can reach them). A host
// ending in .onion must be a checksum-valid v3 address; v2 addresses get
// a dedicated error because "invalid address" would mislead users holding
// an address that used to work.
func ValidateTarget(host string) error {
	host = strings.ToLower(strings.TrimSpace(host))

	if !strings.HasSuffix(host, OnionSuffix) {
		return nil
	}

	if onionV2Pattern.MatchString(host) {
		return ErrV2AddressDeprecated
	}

	if !IsValidV3Address(host) {
		return ErrInvalidOnionAddress
	}

	return nil
}
