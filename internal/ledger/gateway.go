// Package ledger is the single choke point for all chain interaction.
//
// Every state-changing call goes through a gas/balance preflight so callers
// never submit a transaction that will predictably fail. No call here retries
// automatically; retry is a caller/operator decision.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"golang.org/x/sync/errgroup"

	contracts "certledger/contracts/ledger"
	"certledger/internal/ledger/tracer"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// Gateway wraps the chain bridge with preflight checks and result
// normalization. Both signer identities arrive via Config at construction.
type Gateway struct {
	client ChainClient
	cfg    Config
	logger *slog.Logger
	tracer tracer.Tracer
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger configures a logger for the gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithTracer configures a tracer for the gateway.
func WithTracer(t tracer.Tracer) Option {
	return func(g *Gateway) {
		g.tracer = t
	}
}

// New creates a ledger gateway over the given chain client.
func New(client ChainClient, cfg Config, opts ...Option) *Gateway {
	if cfg.GasLimit == 0 {
		cfg.GasLimit = DefaultGasLimit
	}
	g := &Gateway{
		client: client,
		cfg:    cfg,
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsInstitutionVerified reports the institution's on-chain verification status.
func (g *Gateway) IsInstitutionVerified(ctx context.Context, addr domain.WalletAddress) (bool, error) {
	raw, err := g.client.Call(ctx, contracts.CallRequest{
		Contract: contracts.ContractVerifiedInstitutions,
		Method:   "checkVerification",
		Args:     []any{addr.String()},
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeContractCall, "institution verification lookup failed")
	}
	return parseBoolResult(raw, "checkVerification")
}

// RegisterInstitution marks the institution verified on-chain, signed by the
// admin identity. Callers skip this when the institution is already verified.
func (g *Gateway) RegisterInstitution(ctx context.Context, addr domain.WalletAddress) (*contracts.Receipt, error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanRegister,
		tracer.String(tracer.AttrContract, contracts.ContractVerifiedInstitutions),
		tracer.String(tracer.AttrMethod, "setVerificationStatus"),
	)
	receipt, err := g.send(ctx, contracts.SendRequest{
		Contract: contracts.ContractVerifiedInstitutions,
		Method:   "setVerificationStatus",
		Args:     []any{addr.String(), true},
		From:     g.cfg.AdminAddress.String(),
	})
	span.End(err)
	return receipt, err
}

// IsStudentRegistered reports the student's on-chain registration status.
func (g *Gateway) IsStudentRegistered(ctx context.Context, addr domain.WalletAddress) (bool, error) {
	raw, err := g.client.Call(ctx, contracts.CallRequest{
		Contract: contracts.ContractStudentRegistry,
		Method:   "isRegistered",
		Args:     []any{addr.String()},
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeContractCall, "student registration lookup failed")
	}
	return parseBoolResult(raw, "isRegistered")
}

// RegisterStudent registers a student on-chain, signed by the institute identity.
func (g *Gateway) RegisterStudent(ctx context.Context, reg StudentRegistration) (*contracts.Receipt, error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanRegister,
		tracer.String(tracer.AttrContract, contracts.ContractStudentRegistry),
		tracer.String(tracer.AttrMethod, "registerStudent"),
	)
	receipt, err := g.send(ctx, contracts.SendRequest{
		Contract: contracts.ContractStudentRegistry,
		Method:   "registerStudent",
		Args:     []any{reg.Name, reg.Handle, reg.Course, reg.Email},
		From:     g.cfg.InstituteAddress.String(),
	})
	span.End(err)
	return receipt, err
}

// IssueCertificate records a credential hash on-chain for the student, signed
// by the institute identity. Preflight runs first; on a funding shortfall the
// transaction is never submitted.
func (g *Gateway) IssueCertificate(ctx context.Context, student domain.WalletAddress, hash domain.CredentialHash) (*contracts.Receipt, error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanIssue,
		tracer.String(tracer.AttrStudentWallet, student.String()),
		tracer.String(tracer.AttrCredentialHash, hash.String()),
	)
	receipt, err := g.send(ctx, contracts.SendRequest{
		Contract: contracts.ContractCertificates,
		Method:   "issueCertificate",
		Args:     []any{student.String(), hash.String()},
		From:     g.cfg.InstituteAddress.String(),
	})
	if err == nil {
		span.SetAttributes(tracer.String(tracer.AttrTxHash, receipt.TxHash))
	}
	span.End(err)
	return receipt, err
}

// RevokeCertificate revokes an issued credential hash on-chain with the same
// preflight discipline as issuance.
func (g *Gateway) RevokeCertificate(ctx context.Context, student domain.WalletAddress, hash domain.CredentialHash) (*contracts.Receipt, error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanRevoke,
		tracer.String(tracer.AttrStudentWallet, student.String()),
		tracer.String(tracer.AttrCredentialHash, hash.String()),
	)
	receipt, err := g.send(ctx, contracts.SendRequest{
		Contract: contracts.ContractCertificates,
		Method:   "revokeCertificate",
		Args:     []any{student.String(), hash.String()},
		From:     g.cfg.InstituteAddress.String(),
	})
	if err == nil {
		span.SetAttributes(tracer.String(tracer.AttrTxHash, receipt.TxHash))
	}
	span.End(err)
	return receipt, err
}

// VerifyCertificate performs the read-only certificate lookup and normalizes
// whichever result shape the bridge produced into one canonical record.
//
// The hash parameter is deliberately untyped: the engine queries with the
// issuer-computed credential hash on the primary path and with a bare content
// hash on the chain-only fallback path; the contract key is opaque here.
func (g *Gateway) VerifyCertificate(ctx context.Context, student domain.WalletAddress, hash string) (*VerifyOutcome, error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrStudentWallet, student.String()),
	)
	raw, err := g.client.Call(ctx, contracts.CallRequest{
		Contract: contracts.ContractCertificates,
		Method:   "verifyCertificate",
		Args:     []any{student.String(), hash},
	})
	if err != nil {
		span.End(err)
		return nil, dErrors.Wrap(err, dErrors.CodeContractCall, "certificate verification call failed")
	}

	outcome, err := normalizeVerifyOutcome(raw)
	span.End(err)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// send runs the preflight then submits the transaction and waits for the
// receipt. A mined-but-reverted transaction surfaces as a contract call error.
func (g *Gateway) send(ctx context.Context, req contracts.SendRequest) (*contracts.Receipt, error) {
	gasPrice, err := g.preflight(ctx, req)
	if err != nil {
		return nil, err
	}

	req.Gas = g.cfg.GasLimit
	req.GasPrice = gasPrice.String()

	receipt, err := g.client.Send(ctx, req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeContractCall,
			fmt.Sprintf("%s.%s transaction failed", req.Contract, req.Method))
	}
	if !receipt.Status {
		return nil, dErrors.New(dErrors.CodeContractCall,
			fmt.Sprintf("%s.%s transaction reverted: %s", req.Contract, req.Method, receipt.TxHash))
	}

	if g.logger != nil {
		g.logger.InfoContext(ctx, "chain transaction mined",
			"contract", req.Contract,
			"method", req.Method,
			"tx_hash", receipt.TxHash,
			"gas_used", receipt.GasUsed,
		)
	}
	return receipt, nil
}

// preflight dispatches the three independent reads concurrently, joins them,
// and fails fast with the shortfall when the signer cannot cover the
// transaction. Returns the observed gas price for the subsequent send.
func (g *Gateway) preflight(ctx context.Context, req contracts.SendRequest) (*big.Int, error) {
	ctx, span := g.tracer.Start(ctx, tracer.SpanPreflight,
		tracer.String(tracer.AttrContract, req.Contract),
		tracer.String(tracer.AttrMethod, req.Method),
	)

	var (
		gasEstimate uint64
		gasPrice    *big.Int
		balance     *big.Int
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		gasEstimate, err = g.client.EstimateGas(egCtx, req)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeContractCall, "gas estimation failed")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		gasPrice, err = g.client.GasPrice(egCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeContractCall, "gas price lookup failed")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		balance, err = g.client.Balance(egCtx, domain.WalletAddress(req.From))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeContractCall, "balance lookup failed")
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		span.End(err)
		return nil, err
	}

	cost := new(big.Int).Mul(new(big.Int).SetUint64(gasEstimate), gasPrice)
	span.SetAttributes(tracer.Int64(tracer.AttrGasEstimate, int64(gasEstimate)))

	if balance.Cmp(cost) < 0 {
		shortfall := new(big.Int).Sub(cost, balance)
		err := dErrors.New(dErrors.CodeInsufficientFunds,
			fmt.Sprintf("signer %s cannot cover %s.%s: need %s wei, have %s wei, short %s wei",
				req.From, req.Contract, req.Method, cost, balance, shortfall))
		if g.logger != nil {
			g.logger.WarnContext(ctx, "preflight rejected transaction",
				"contract", req.Contract,
				"method", req.Method,
				"from", req.From,
				"cost_wei", cost.String(),
				"balance_wei", balance.String(),
				"shortfall_wei", shortfall.String(),
			)
		}
		span.End(err)
		return nil, err
	}

	span.End(nil)
	return gasPrice, nil
}
