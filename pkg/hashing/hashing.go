// Package hashing derives the two document digests the platform relies on.
//
// The content hash binds file bytes only, so two parties uploading the same
// document through different paths arrive at the same value. The credential
// hash additionally binds a pair of party identities, so the same document
// issued or submitted under different party pairs yields different on-chain
// keys. Keeping the two as distinct types in pkg/domain prevents one being
// stored or matched where the other is required.
package hashing

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// ContentHash returns the SHA-256 hex digest of the document bytes alone.
// Deterministic: the same bytes always produce the same value regardless of
// the uploading party.
func ContentHash(data []byte) domain.ContentHash {
	sum := sha256.Sum256(data)
	return domain.ContentHash(hex.EncodeToString(sum[:]))
}

// ContentHashFromReader streams the document through SHA-256 without buffering
// it in memory. Fails with an internal error if the reader fails mid-stream.
func ContentHashFromReader(r io.Reader) (domain.ContentHash, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read document bytes")
	}
	return domain.ContentHash(hex.EncodeToString(h.Sum(nil))), nil
}

// CredentialHash returns the SHA-256 hex digest over bytes ‖ partyA ‖ partyB.
// Order-sensitive: swapping the parties produces a different digest. partyA is
// the student; partyB is whichever counterparty anchors this copy of the
// document (the issuing institute on the issuance path, the reviewing verifier
// on the submission path).
func CredentialHash(data []byte, partyA, partyB domain.WalletAddress) (domain.CredentialHash, error) {
	if partyA.IsNil() || partyB.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "both party identities are required")
	}
	h := sha256.New()
	h.Write(data)
	h.Write([]byte(partyA))
	h.Write([]byte(partyB))
	return domain.CredentialHash(hex.EncodeToString(h.Sum(nil))), nil
}

// OpaqueID derives a short storage-layer primary key from a seed digest and a
// timestamp. Not security-sensitive; MD5 is retained for compactness and only
// needs practical uniqueness.
func OpaqueID(seed string, ts time.Time) domain.SubmissionID {
	sum := md5.Sum([]byte(seed + strconv.FormatInt(ts.UnixMilli(), 10)))
	return domain.SubmissionID(hex.EncodeToString(sum[:]))
}

// Fingerprint renders a digest prefix for log lines where the full 64-char
// value would drown the message.
func Fingerprint(digest fmt.Stringer) string {
	s := digest.String()
	if len(s) <= 12 {
		return s
	}
	return s[:12]
}
