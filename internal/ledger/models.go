package ledger

import (
	"context"
	"encoding/json"
	"math/big"

	contracts "certledger/contracts/ledger"
	"certledger/pkg/domain"
)

// ChainClient is the low-level chain access the gateway is built on.
// Implementations talk to the chain bridge; tests substitute stubs.
type ChainClient interface {
	// Call performs a read-only contract invocation. The decoded result may be
	// array- or object-shaped depending on the bridge's web3 version, so it is
	// returned raw and normalized by the gateway.
	Call(ctx context.Context, req contracts.CallRequest) (json.RawMessage, error)

	// Send submits a state-changing invocation and blocks until it is mined.
	Send(ctx context.Context, req contracts.SendRequest) (*contracts.Receipt, error)

	// EstimateGas estimates the gas a send would consume.
	EstimateGas(ctx context.Context, req contracts.SendRequest) (uint64, error)

	// GasPrice returns the current gas price in wei.
	GasPrice(ctx context.Context) (*big.Int, error)

	// Balance returns the wallet's balance in wei.
	Balance(ctx context.Context, addr domain.WalletAddress) (*big.Int, error)
}

// VerifyOutcome is the canonical record for a certificate lookup, normalized
// from whichever shape the bridge returned. The ambiguous wire shape never
// leaks past the gateway boundary.
type VerifyOutcome struct {
	IsValid       bool
	IssuedBy      domain.WalletAddress
	IssuedAtEpoch int64
	IsRevoked     bool
}

// NeverIssued reports whether the outcome is the contract's "no such
// certificate" sentinel. This check must precede trusting IsValid: the zero
// address means "never issued", not "issued by nobody".
func (o VerifyOutcome) NeverIssued() bool {
	return o.IssuedBy.IsNil() || o.IssuedBy.String() == contracts.ZeroAddress
}

// StudentRegistration carries the reference data used to auto-register a
// student on-chain during issuance.
type StudentRegistration struct {
	Name   string
	Handle string
	Course string
	Email  string
}

// Config carries the two signer identities and transaction defaults.
// Injected at construction; there is no ambient global chain client.
type Config struct {
	// AdminAddress signs institution verification writes.
	AdminAddress domain.WalletAddress
	// InstituteAddress signs issuance, revocation, and student registration.
	InstituteAddress domain.WalletAddress
	// GasLimit is the per-transaction gas ceiling.
	GasLimit uint64
}

// DefaultGasLimit matches the deployed contracts' worst-case write.
const DefaultGasLimit = 500000
