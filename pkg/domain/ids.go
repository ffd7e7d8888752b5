// Package domain provides type-safe identifiers to prevent mixing up hashes
// and addresses at compile time.
package domain

import (
	"strings"

	dErrors "certledger/pkg/domain-errors"
)

// Distinct digest types. ContentHash and CredentialHash are both SHA-256 hex
// strings but are never interchangeable: the content hash binds only document
// bytes and is the cross-party join key, while the credential hash also binds
// two party identities and is authoritative only as computed by the issuer.
type (
	ContentHash    string
	CredentialHash string
	SubmissionID   string
)

// WalletAddress is an EVM address: 0x prefix plus 40 hex chars.
type WalletAddress string

const (
	hexDigestLen  = 64 // SHA-256 hex
	walletAddrLen = 42 // "0x" + 40 hex chars
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseContentHash(s string) (ContentHash, error) {
	if err := validateHexDigest(s, "content hash"); err != nil {
		return "", err
	}
	return ContentHash(strings.ToLower(s)), nil
}

func ParseCredentialHash(s string) (CredentialHash, error) {
	if err := validateHexDigest(s, "credential hash"); err != nil {
		return "", err
	}
	return CredentialHash(strings.ToLower(s)), nil
}

func ParseSubmissionID(s string) (SubmissionID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "submission ID cannot be empty")
	}
	if len(s) > hexDigestLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid submission ID format")
	}
	for _, r := range s {
		if !isHexRune(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid submission ID format")
		}
	}
	return SubmissionID(strings.ToLower(s)), nil
}

// ParseWalletAddress validates the fixed wallet format: 0x prefix, 42 chars total.
func ParseWalletAddress(s string) (WalletAddress, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address cannot be empty")
	}
	if !strings.HasPrefix(s, "0x") || len(s) != walletAddrLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid wallet address format")
	}
	for _, r := range s[2:] {
		if !isHexRune(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid wallet address format")
		}
	}
	return WalletAddress(strings.ToLower(s)), nil
}

// String methods - for logging and debugging.

func (h ContentHash) String() string    { return string(h) }
func (h CredentialHash) String() string { return string(h) }
func (id SubmissionID) String() string  { return string(id) }
func (a WalletAddress) String() string  { return string(a) }

// IsNil checks - used for service-layer validation.

func (h ContentHash) IsNil() bool    { return h == "" }
func (h CredentialHash) IsNil() bool { return h == "" }
func (id SubmissionID) IsNil() bool  { return id == "" }
func (a WalletAddress) IsNil() bool  { return a == "" }

// validateHexDigest is the shared validation logic for SHA-256 hex digests.
func validateHexDigest(s, label string) error {
	if s == "" {
		return dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if len(s) != hexDigestLen {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	for _, r := range s {
		if !isHexRune(r) {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
		}
	}
	return nil
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
