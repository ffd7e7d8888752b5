package hashing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

type HashingSuite struct {
	suite.Suite

	student domain.WalletAddress
	issuer  domain.WalletAddress
	verifier domain.WalletAddress
}

func TestHashingSuite(t *testing.T) {
	suite.Run(t, new(HashingSuite))
}

func (s *HashingSuite) SetupTest() {
	s.student = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	s.issuer = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	s.verifier = "0xcccccccccccccccccccccccccccccccccccccccc"
}

func (s *HashingSuite) TestContentHash() {
	doc := []byte("bachelor of science, class of 2025")

	s.Run("is deterministic across repeated calls", func() {
		s.Equal(ContentHash(doc), ContentHash(doc))
	})

	s.Run("matches a plain sha256 of the bytes", func() {
		sum := sha256.Sum256(doc)
		s.Equal(hex.EncodeToString(sum[:]), ContentHash(doc).String())
	})

	s.Run("differs for different bytes", func() {
		other := []byte("bachelor of science, class of 2026")
		s.NotEqual(ContentHash(doc), ContentHash(other))
	})

	s.Run("is independent of the uploading party", func() {
		// Content hash takes no identity inputs, so both sides of a
		// submission agree on it by construction.
		s.Equal(ContentHash(doc), ContentHash(append([]byte(nil), doc...)))
	})
}

func (s *HashingSuite) TestContentHashFromReader() {
	doc := []byte("transcript bytes")

	s.Run("agrees with the in-memory digest", func() {
		h, err := ContentHashFromReader(bytes.NewReader(doc))
		s.Require().NoError(err)
		s.Equal(ContentHash(doc), h)
	})

	s.Run("propagates reader failures", func() {
		_, err := ContentHashFromReader(&failingReader{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *HashingSuite) TestCredentialHash() {
	doc := []byte("diploma bytes")

	s.Run("same document, different counterparty, different digest", func() {
		issued, err := CredentialHash(doc, s.student, s.issuer)
		s.Require().NoError(err)
		submitted, err := CredentialHash(doc, s.student, s.verifier)
		s.Require().NoError(err)
		s.NotEqual(issued, submitted)
	})

	s.Run("order of parties matters", func() {
		a, err := CredentialHash(doc, s.student, s.issuer)
		s.Require().NoError(err)
		b, err := CredentialHash(doc, s.issuer, s.student)
		s.Require().NoError(err)
		s.NotEqual(a, b)
	})

	s.Run("deterministic for a fixed triple", func() {
		a, err := CredentialHash(doc, s.student, s.issuer)
		s.Require().NoError(err)
		b, err := CredentialHash(doc, s.student, s.issuer)
		s.Require().NoError(err)
		s.Equal(a, b)
	})

	s.Run("never collides with the content hash for the same bytes", func() {
		bound, err := CredentialHash(doc, s.student, s.issuer)
		s.Require().NoError(err)
		s.NotEqual(ContentHash(doc).String(), bound.String())
	})

	s.Run("rejects empty identities", func() {
		_, err := CredentialHash(doc, "", s.issuer)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = CredentialHash(doc, s.student, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *HashingSuite) TestOpaqueID() {
	s.Run("differs across timestamps for the same seed", func() {
		t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		a := OpaqueID("seed", t0)
		b := OpaqueID("seed", t0.Add(time.Millisecond))
		s.NotEqual(a, b)
	})

	s.Run("is stable for a fixed seed and timestamp", func() {
		t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		s.Equal(OpaqueID("seed", t0), OpaqueID("seed", t0))
	})

	s.Run("parses as a submission ID", func() {
		id := OpaqueID("seed", time.Now())
		_, err := domain.ParseSubmissionID(id.String())
		s.NoError(err)
	})
}

func (s *HashingSuite) TestFingerprint() {
	doc := []byte("x")
	s.Len(Fingerprint(ContentHash(doc)), 12)
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }
