package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	contracts "certledger/contracts/ledger"
	"certledger/internal/credential/models"
	credstore "certledger/internal/credential/store"
	"certledger/internal/ledger"
	partymodels "certledger/internal/party/models"
	partystore "certledger/internal/party/store"
	"certledger/internal/upload"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/hashing"
)

const (
	studentWallet  = domain.WalletAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	issuerWallet   = domain.WalletAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	verifierWallet = domain.WalletAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

// stubLedger scripts chain behavior per test.
type stubLedger struct {
	institutionVerified bool
	studentRegistered   bool
	verifyOutcome       *ledger.VerifyOutcome
	verifyErr           error
	issueErr            error
	revokeErr           error
	registerInstErr     error
	registerStudentErr  error

	issueCalls    []domain.CredentialHash
	revokeCalls   []domain.CredentialHash
	verifyQueries []string
}

func (l *stubLedger) IsInstitutionVerified(_ context.Context, _ domain.WalletAddress) (bool, error) {
	return l.institutionVerified, nil
}

func (l *stubLedger) RegisterInstitution(_ context.Context, _ domain.WalletAddress) (*contracts.Receipt, error) {
	if l.registerInstErr != nil {
		return nil, l.registerInstErr
	}
	l.institutionVerified = true
	return &contracts.Receipt{TxHash: "0xreg1", Status: true}, nil
}

func (l *stubLedger) IsStudentRegistered(_ context.Context, _ domain.WalletAddress) (bool, error) {
	return l.studentRegistered, nil
}

func (l *stubLedger) RegisterStudent(_ context.Context, _ ledger.StudentRegistration) (*contracts.Receipt, error) {
	if l.registerStudentErr != nil {
		return nil, l.registerStudentErr
	}
	l.studentRegistered = true
	return &contracts.Receipt{TxHash: "0xreg2", Status: true}, nil
}

func (l *stubLedger) IssueCertificate(_ context.Context, _ domain.WalletAddress, hash domain.CredentialHash) (*contracts.Receipt, error) {
	if l.issueErr != nil {
		return nil, l.issueErr
	}
	l.issueCalls = append(l.issueCalls, hash)
	return &contracts.Receipt{TxHash: "0xissue", Status: true}, nil
}

func (l *stubLedger) RevokeCertificate(_ context.Context, _ domain.WalletAddress, hash domain.CredentialHash) (*contracts.Receipt, error) {
	if l.revokeErr != nil {
		return nil, l.revokeErr
	}
	l.revokeCalls = append(l.revokeCalls, hash)
	return &contracts.Receipt{TxHash: "0xrevoke", Status: true}, nil
}

func (l *stubLedger) VerifyCertificate(_ context.Context, _ domain.WalletAddress, hash string) (*ledger.VerifyOutcome, error) {
	l.verifyQueries = append(l.verifyQueries, hash)
	if l.verifyErr != nil {
		return nil, l.verifyErr
	}
	if l.verifyOutcome != nil {
		return l.verifyOutcome, nil
	}
	return &ledger.VerifyOutcome{IssuedBy: domain.WalletAddress(contracts.ZeroAddress)}, nil
}

// failingIssuedStore wraps the in-memory store to make Insert fail.
type failingIssuedStore struct {
	*credstore.InMemoryIssuedStore
	insertErr error
}

func (s *failingIssuedStore) Insert(ctx context.Context, cred *models.IssuedCredential) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.InMemoryIssuedStore.Insert(ctx, cred)
}

type CredentialServiceSuite struct {
	suite.Suite

	chain     *stubLedger
	issued    *failingIssuedStore
	submitted *credstore.InMemorySubmittedStore
	uploader  *upload.InMemoryUploader
	students  *partystore.InMemoryStudentStore
	service   *Service
}

func TestCredentialServiceSuite(t *testing.T) {
	suite.Run(t, new(CredentialServiceSuite))
}

func (s *CredentialServiceSuite) SetupTest() {
	s.chain = &stubLedger{institutionVerified: true, studentRegistered: true}
	s.issued = &failingIssuedStore{InMemoryIssuedStore: credstore.NewInMemoryIssuedStore()}
	s.submitted = credstore.NewInMemorySubmittedStore()
	s.uploader = upload.NewInMemoryUploader()
	s.students = partystore.NewInMemoryStudentStore()
	institutes := partystore.NewInMemoryInstituteStore()

	_ = s.students.Create(context.Background(), &partymodels.Student{
		Code: "S-001", FirstName: "Ada", LastName: "Lovelace",
		Handle: "ada", Email: "ada@example.edu", WalletAddress: studentWallet,
	})
	_ = institutes.Create(context.Background(), &partymodels.Institute{
		Code: "I-001", Name: "Example University", Email: "reg@example.edu", WalletAddress: issuerWallet,
	})

	s.service = New(s.issued, s.submitted, s.chain, s.uploader, s.students, institutes)
}

func issueRequest(doc []byte) models.IssueRequest {
	return models.IssueRequest{
		Name:          "BSc Computer Science",
		Type:          "degree",
		IssuerWallet:  issuerWallet,
		StudentWallet: studentWallet,
		Document:      doc,
		Filename:      "diploma.pdf",
	}
}

func (s *CredentialServiceSuite) issueSample(doc []byte) *models.IssuedCredential {
	cred, err := s.service.Issue(context.Background(), issueRequest(doc))
	s.Require().NoError(err)
	return cred
}

func (s *CredentialServiceSuite) submitSample(doc []byte) *models.SubmittedCredential {
	sub, err := s.service.Submit(context.Background(), models.SubmitRequest{
		StudentWallet:  studentWallet,
		VerifierWallet: verifierWallet,
		Document:       doc,
		Filename:       "diploma.pdf",
		MimeType:       "application/pdf",
	})
	s.Require().NoError(err)
	return sub
}

func (s *CredentialServiceSuite) TestIssue() {
	doc := []byte("transcript bytes")

	s.Run("issues on-chain then mirrors locally", func() {
		cred := s.issueSample(doc)
		s.Equal(models.StatusIssued, cred.Status)
		s.Equal("0xissue", cred.TxHash)
		s.Equal(hashing.ContentHash(doc), cred.ContentHash)

		wantHash, err := hashing.CredentialHash(doc, studentWallet, issuerWallet)
		s.Require().NoError(err)
		s.Equal(wantHash, cred.CredentialHash)
		s.Require().Len(s.chain.issueCalls, 1)
		s.Equal(wantHash, s.chain.issueCalls[0], "the issuer-computed hash goes on-chain")
	})

	s.Run("second issuance of the same hash fails with a duplicate key", func() {
		_, err := s.service.Issue(context.Background(), issueRequest(doc))
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateKey))

		stored, err := s.issued.FindByCredentialHash(context.Background(), s.chain.issueCalls[0])
		s.Require().NoError(err)
		s.Equal(models.StatusIssued, stored.Status, "the first record is unaffected")
	})

	s.Run("auto-registers an unverified issuer before issuing", func() {
		s.SetupTest()
		s.chain.institutionVerified = false
		cred := s.issueSample(doc)
		s.NotNil(cred)
		s.True(s.chain.institutionVerified)
	})

	s.Run("auto-registers an unregistered student before issuing", func() {
		s.SetupTest()
		s.chain.studentRegistered = false
		cred := s.issueSample(doc)
		s.NotNil(cred)
		s.True(s.chain.studentRegistered)
	})

	s.Run("failed issuer auto-registration reports an unverified issuer", func() {
		s.SetupTest()
		s.chain.institutionVerified = false
		s.chain.registerInstErr = dErrors.New(dErrors.CodeContractCall, "admin signer revert")

		_, err := s.service.Issue(context.Background(), issueRequest(doc))
		s.True(dErrors.HasCode(err, dErrors.CodeUnverifiedIssuer),
			"the chain fault must not mask the unverified-issuer outcome")
		s.Empty(s.chain.issueCalls, "an unverified issuer never reaches the credential write")
	})

	s.Run("failed student auto-registration reports an unregistered student", func() {
		s.SetupTest()
		s.chain.studentRegistered = false
		s.chain.registerStudentErr = dErrors.New(dErrors.CodeContractCall, "institute signer revert")

		_, err := s.service.Issue(context.Background(), issueRequest(doc))
		s.True(dErrors.HasCode(err, dErrors.CodeUnregisteredStudent))
		s.Empty(s.chain.issueCalls)
	})

	s.Run("rejects a student with no reference record", func() {
		s.SetupTest()
		req := issueRequest(doc)
		req.StudentWallet = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
		_, err := s.service.Issue(context.Background(), req)
		s.True(dErrors.HasCode(err, dErrors.CodeUnregisteredStudent))
		s.Empty(s.chain.issueCalls, "no chain write for an unknown student")
	})

	s.Run("insufficient funds surfaces before any local write", func() {
		s.SetupTest()
		s.chain.issueErr = dErrors.New(dErrors.CodeInsufficientFunds, "short 100 wei")
		_, err := s.service.Issue(context.Background(), issueRequest(doc))
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

		_, err = s.issued.FindByContentHash(context.Background(), hashing.ContentHash(doc))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("persistence failure after a mined transaction reports divergence", func() {
		s.SetupTest()
		s.issued.insertErr = dErrors.New(dErrors.CodeInternal, "store down")
		_, err := s.service.Issue(context.Background(), issueRequest(doc))
		s.True(dErrors.HasCode(err, dErrors.CodeChainDiverged))
		s.Len(s.chain.issueCalls, 1, "the chain write already happened")
	})

	s.Run("upload failure stops issuance before the chain write", func() {
		s.SetupTest()
		s.uploader.FailWith = dErrors.New(dErrors.CodeUploadFailed, "storage down")
		_, err := s.service.Issue(context.Background(), issueRequest(doc))
		s.True(dErrors.HasCode(err, dErrors.CodeUploadFailed))
		s.Empty(s.chain.issueCalls)
	})
}

func (s *CredentialServiceSuite) TestRevoke() {
	doc := []byte("revocable bytes")
	cred := s.issueSample(doc)

	s.Run("revokes on-chain then locally", func() {
		revoked, err := s.service.Revoke(context.Background(), cred.CredentialHash)
		s.Require().NoError(err)
		s.True(revoked.Revoked())
		s.Len(s.chain.revokeCalls, 1)
	})

	s.Run("revoking again is idempotent with no second chain call", func() {
		revoked, err := s.service.Revoke(context.Background(), cred.CredentialHash)
		s.Require().NoError(err)
		s.True(revoked.Revoked())
		s.Len(s.chain.revokeCalls, 1, "no gas spent twice for one logical revocation")
	})

	s.Run("unknown hash is not found", func() {
		_, err := s.service.Revoke(context.Background(), "9999999999999999999999999999999999999999999999999999999999999999")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("chain failure leaves the record issued", func() {
		s.SetupTest()
		fresh := s.issueSample([]byte("other bytes"))
		s.chain.revokeErr = dErrors.New(dErrors.CodeContractCall, "revert")

		_, err := s.service.Revoke(context.Background(), fresh.CredentialHash)
		s.True(dErrors.HasCode(err, dErrors.CodeContractCall))

		stored, err := s.issued.FindByCredentialHash(context.Background(), fresh.CredentialHash)
		s.Require().NoError(err)
		s.False(stored.Revoked(), "no partial-revoked state")
	})
}

func (s *CredentialServiceSuite) TestVerify() {
	doc := []byte("verified document")

	s.Run("matches by content hash and queries with the issuer's credential hash", func() {
		issued := s.issueSample(doc)
		sub := s.submitSample(doc)

		s.NotEqual(issued.CredentialHash, sub.CredentialHash,
			"issuer- and verifier-computed hashes differ for the same bytes")
		s.Equal(issued.ContentHash, sub.ContentHash)

		s.chain.verifyOutcome = &ledger.VerifyOutcome{
			IsValid: true, IssuedBy: issuerWallet, IssuedAtEpoch: 1718000000,
		}
		s.chain.verifyQueries = nil

		result, err := s.service.Verify(context.Background(), sub.ID)
		s.Require().NoError(err)
		s.Equal(models.SourceLocal, result.Source)
		s.True(result.IsValid)
		s.Equal("Example University", result.IssuerName)
		s.Equal("Ada Lovelace", result.StudentName)
		s.Require().Len(s.chain.verifyQueries, 1)
		s.Equal(issued.CredentialHash.String(), s.chain.verifyQueries[0],
			"the chain is asked about the issuer-computed hash, not the verifier's")
	})

	s.Run("revoked issuance verifies invalid and revoked", func() {
		s.SetupTest()
		s.issueSample(doc)
		sub := s.submitSample(doc)
		s.chain.verifyOutcome = &ledger.VerifyOutcome{
			IsValid: true, IsRevoked: true, IssuedBy: issuerWallet, IssuedAtEpoch: 1718000000,
		}

		result, err := s.service.Verify(context.Background(), sub.ID)
		s.Require().NoError(err)
		s.False(result.IsValid)
		s.True(result.IsRevoked)
	})

	s.Run("zero-address issuer means never issued regardless of isValid", func() {
		s.SetupTest()
		s.issueSample(doc)
		sub := s.submitSample(doc)
		s.chain.verifyOutcome = &ledger.VerifyOutcome{
			IsValid: true, IssuedBy: domain.WalletAddress(contracts.ZeroAddress),
		}

		result, err := s.service.Verify(context.Background(), sub.ID)
		s.Require().NoError(err)
		s.True(result.NotIssued())
		s.False(result.IsValid)
	})

	s.Run("falls back to a chain-only query without a local match", func() {
		s.SetupTest()
		sub := s.submitSample(doc)
		s.chain.verifyOutcome = &ledger.VerifyOutcome{
			IsValid: true, IssuedBy: issuerWallet, IssuedAtEpoch: 1718000000,
		}
		s.chain.verifyQueries = nil

		result, err := s.service.Verify(context.Background(), sub.ID)
		s.Require().NoError(err)
		s.Equal(models.SourceChainOnly, result.Source)
		s.True(result.IsValid)
		s.Require().Len(s.chain.verifyQueries, 1)
		s.Equal(sub.ContentHash.String(), s.chain.verifyQueries[0],
			"only the content hash is available on the fallback path")
	})

	s.Run("no local match and no chain record is a terminal not-issued result", func() {
		s.SetupTest()
		sub := s.submitSample(doc)

		result, err := s.service.Verify(context.Background(), sub.ID)
		s.Require().NoError(err, "not issued is an outcome, not an error")
		s.True(result.NotIssued())
	})

	s.Run("chain faults surface as infrastructure errors, never as invalid", func() {
		s.SetupTest()
		s.issueSample(doc)
		sub := s.submitSample(doc)
		s.chain.verifyErr = dErrors.New(dErrors.CodeContractCall, "rpc down")

		_, err := s.service.Verify(context.Background(), sub.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeContractCall))
	})

	s.Run("unknown submission id is not found", func() {
		_, err := s.service.Verify(context.Background(), "ffffffffffffffffffffffffffffffff")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CredentialServiceSuite) TestVerificationHistory() {
	docA := []byte("doc A")
	docB := []byte("doc B")
	s.issueSample(docA)
	s.submitSample(docA)
	s.submitSample(docB)

	s.chain.verifyOutcome = &ledger.VerifyOutcome{
		IsValid: true, IssuedBy: issuerWallet, IssuedAtEpoch: 1718000000,
	}

	entries, err := s.service.VerificationHistory(context.Background(), verifierWallet)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	for _, entry := range entries {
		s.NotNil(entry.Result)
		s.Empty(entry.Error)
	}
}

func (s *CredentialServiceSuite) TestVerificationHistoryDegradesPerEntry() {
	doc := []byte("doc C")
	s.issueSample(doc)
	s.submitSample(doc)
	s.chain.verifyErr = dErrors.New(dErrors.CodeContractCall, "rpc down")

	entries, err := s.service.VerificationHistory(context.Background(), verifierWallet)
	s.Require().NoError(err, "one broken entry does not fail the history")
	s.Require().Len(entries, 1)
	s.Nil(entries[0].Result)
	s.Equal("could not verify", entries[0].Error)
}

func (s *CredentialServiceSuite) TestSubmit() {
	doc := []byte("submitted bytes")

	sub := s.submitSample(doc)
	s.Equal(hashing.ContentHash(doc), sub.ContentHash)
	s.Equal(int64(len(doc)), sub.FileSize)
	s.NotEmpty(sub.StorageURL)

	time.Sleep(2 * time.Millisecond)
	second := s.submitSample(doc)
	s.NotEqual(sub.ID, second.ID, "opaque ids are timestamp-salted")

	byStudent, err := s.service.StudentSubmissions(context.Background(), studentWallet)
	s.Require().NoError(err)
	s.Len(byStudent, 2)
}
