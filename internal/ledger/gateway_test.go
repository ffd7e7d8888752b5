package ledger

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	contracts "certledger/contracts/ledger"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// stubChainClient is a test double for ChainClient.
type stubChainClient struct {
	callResult   json.RawMessage
	callErr      error
	sendReceipt  *contracts.Receipt
	sendErr      error
	sendCalls    []contracts.SendRequest
	gasEstimate  uint64
	estimateErr  error
	gasPrice     *big.Int
	gasPriceErr  error
	balance      *big.Int
	balanceErr   error
	balanceCalls []domain.WalletAddress
}

func newStubChainClient() *stubChainClient {
	return &stubChainClient{
		gasEstimate: 100000,
		gasPrice:    big.NewInt(20),
		balance:     big.NewInt(1e9),
		sendReceipt: &contracts.Receipt{TxHash: "0xdeadbeef", Status: true, GasUsed: 90000},
	}
}

func (c *stubChainClient) Call(_ context.Context, _ contracts.CallRequest) (json.RawMessage, error) {
	return c.callResult, c.callErr
}

func (c *stubChainClient) Send(_ context.Context, req contracts.SendRequest) (*contracts.Receipt, error) {
	c.sendCalls = append(c.sendCalls, req)
	return c.sendReceipt, c.sendErr
}

func (c *stubChainClient) EstimateGas(_ context.Context, _ contracts.SendRequest) (uint64, error) {
	return c.gasEstimate, c.estimateErr
}

func (c *stubChainClient) GasPrice(_ context.Context) (*big.Int, error) {
	return c.gasPrice, c.gasPriceErr
}

func (c *stubChainClient) Balance(_ context.Context, addr domain.WalletAddress) (*big.Int, error) {
	c.balanceCalls = append(c.balanceCalls, addr)
	return c.balance, c.balanceErr
}

type GatewaySuite struct {
	suite.Suite

	client  *stubChainClient
	gateway *Gateway
	student domain.WalletAddress
	hash    domain.CredentialHash
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.client = newStubChainClient()
	s.gateway = New(s.client, Config{
		AdminAddress:     "0x1111111111111111111111111111111111111111",
		InstituteAddress: "0x2222222222222222222222222222222222222222",
	})
	s.student = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	s.hash = domain.CredentialHash("9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08")
}

func (s *GatewaySuite) TestIssueCertificate() {
	s.Run("submits with gas limit and observed gas price after preflight", func() {
		receipt, err := s.gateway.IssueCertificate(context.Background(), s.student, s.hash)
		s.Require().NoError(err)
		s.Equal("0xdeadbeef", receipt.TxHash)

		s.Require().Len(s.client.sendCalls, 1)
		sent := s.client.sendCalls[0]
		s.Equal(contracts.ContractCertificates, sent.Contract)
		s.Equal("issueCertificate", sent.Method)
		s.Equal(uint64(DefaultGasLimit), sent.Gas)
		s.Equal("20", sent.GasPrice)
		s.Equal("0x2222222222222222222222222222222222222222", sent.From)
	})

	s.Run("fails fast with insufficient funds before any submission", func() {
		s.client.sendCalls = nil
		s.client.gasEstimate = 100000
		s.client.gasPrice = big.NewInt(1000)
		s.client.balance = big.NewInt(50) // cost 1e8, balance 50

		_, err := s.gateway.IssueCertificate(context.Background(), s.student, s.hash)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
		s.Contains(err.Error(), "short")
		s.Empty(s.client.sendCalls, "no transaction may be submitted on a funding shortfall")

		s.client.gasPrice = big.NewInt(20)
		s.client.balance = big.NewInt(1e9)
	})

	s.Run("preflight checks the sending signer's balance", func() {
		s.client.balanceCalls = nil
		_, err := s.gateway.IssueCertificate(context.Background(), s.student, s.hash)
		s.Require().NoError(err)
		s.Require().Len(s.client.balanceCalls, 1)
		s.Equal(domain.WalletAddress("0x2222222222222222222222222222222222222222"), s.client.balanceCalls[0])
	})

	s.Run("surfaces preflight read failures as contract call errors", func() {
		s.client.sendCalls = nil
		s.client.gasPriceErr = dErrors.New(dErrors.CodeContractCall, "rpc down")
		_, err := s.gateway.IssueCertificate(context.Background(), s.student, s.hash)
		s.True(dErrors.HasCode(err, dErrors.CodeContractCall))
		s.Empty(s.client.sendCalls)
		s.client.gasPriceErr = nil
	})

	s.Run("reverted receipt is a contract call error", func() {
		s.client.sendReceipt = &contracts.Receipt{TxHash: "0xbad", Status: false}
		_, err := s.gateway.IssueCertificate(context.Background(), s.student, s.hash)
		s.True(dErrors.HasCode(err, dErrors.CodeContractCall))
	})
}

func (s *GatewaySuite) TestRevokeCertificate() {
	receipt, err := s.gateway.RevokeCertificate(context.Background(), s.student, s.hash)
	s.Require().NoError(err)
	s.Equal("0xdeadbeef", receipt.TxHash)

	s.Require().Len(s.client.sendCalls, 1)
	s.Equal("revokeCertificate", s.client.sendCalls[0].Method)
}

func (s *GatewaySuite) TestRegistrationLookups() {
	s.Run("parses verified institution flag", func() {
		s.client.callResult = json.RawMessage(`true`)
		ok, err := s.gateway.IsInstitutionVerified(context.Background(), s.student)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("parses stringified booleans from older bridges", func() {
		s.client.callResult = json.RawMessage(`"false"`)
		ok, err := s.gateway.IsStudentRegistered(context.Background(), s.student)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("wraps transport failures", func() {
		s.client.callErr = dErrors.New(dErrors.CodeContractCall, "revert")
		_, err := s.gateway.IsInstitutionVerified(context.Background(), s.student)
		s.True(dErrors.HasCode(err, dErrors.CodeContractCall))
		s.client.callErr = nil
	})
}

func (s *GatewaySuite) TestRegisterInstitution() {
	_, err := s.gateway.RegisterInstitution(context.Background(), s.student)
	s.Require().NoError(err)
	s.Require().Len(s.client.sendCalls, 1)

	sent := s.client.sendCalls[0]
	s.Equal("setVerificationStatus", sent.Method)
	s.Equal("0x1111111111111111111111111111111111111111", sent.From, "institution writes are signed by the admin identity")
}

func (s *GatewaySuite) TestRegisterStudent() {
	_, err := s.gateway.RegisterStudent(context.Background(), StudentRegistration{
		Name: "Ada Lovelace", Handle: "ada", Course: "mathematics", Email: "ada@example.edu",
	})
	s.Require().NoError(err)
	s.Require().Len(s.client.sendCalls, 1)

	sent := s.client.sendCalls[0]
	s.Equal("registerStudent", sent.Method)
	s.Equal("0x2222222222222222222222222222222222222222", sent.From, "student registration is signed by the institute identity")
}

func (s *GatewaySuite) TestVerifyCertificate() {
	s.Run("normalizes positional results", func() {
		s.client.callResult = json.RawMessage(`[true, "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB", 1718000000, false]`)
		out, err := s.gateway.VerifyCertificate(context.Background(), s.student, s.hash.String())
		s.Require().NoError(err)
		s.True(out.IsValid)
		s.False(out.IsRevoked)
		s.Equal(domain.WalletAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), out.IssuedBy)
		s.Equal(int64(1718000000), out.IssuedAtEpoch)
		s.False(out.NeverIssued())
	})

	s.Run("normalizes named-field results", func() {
		s.client.callResult = json.RawMessage(`{"isValid": true, "issuedBy": "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "issuedAt": "1718000000", "isRevoked": true}`)
		out, err := s.gateway.VerifyCertificate(context.Background(), s.student, s.hash.String())
		s.Require().NoError(err)
		s.True(out.IsValid)
		s.True(out.IsRevoked)
		s.Equal(int64(1718000000), out.IssuedAtEpoch)
	})

	s.Run("normalizes index-keyed results", func() {
		s.client.callResult = json.RawMessage(`{"0": false, "1": "` + contracts.ZeroAddress + `", "2": 0, "3": false}`)
		out, err := s.gateway.VerifyCertificate(context.Background(), s.student, s.hash.String())
		s.Require().NoError(err)
		s.False(out.IsValid)
		s.True(out.NeverIssued(), "zero-address sentinel means never issued")
	})

	s.Run("rejects malformed results instead of treating them as invalid", func() {
		s.client.callResult = json.RawMessage(`42`)
		_, err := s.gateway.VerifyCertificate(context.Background(), s.student, s.hash.String())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeContractCall))
	})

	s.Run("rejects truncated positional results", func() {
		s.client.callResult = json.RawMessage(`[true, "0xb"]`)
		_, err := s.gateway.VerifyCertificate(context.Background(), s.student, s.hash.String())
		s.True(dErrors.HasCode(err, dErrors.CodeContractCall))
	})
}
