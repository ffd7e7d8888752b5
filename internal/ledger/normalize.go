package ledger

import (
	"encoding/json"
	"strconv"
	"strings"

	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// normalizeVerifyOutcome converts a verifyCertificate result into the
// canonical VerifyOutcome. Depending on the bridge's web3 version the decoded
// tuple arrives either positionally:
//
//	[true, "0xabc...", 1718000000, false]
//
// or keyed, by name or by index:
//
//	{"isValid": true, "issuedBy": "0xabc...", "issuedAt": 1718000000, "isRevoked": false}
//	{"0": true, "1": "0xabc...", "2": 1718000000, "3": false}
//
// Anything else is a contract call error, never silently treated as invalid.
func normalizeVerifyOutcome(raw json.RawMessage) (*VerifyOutcome, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, dErrors.New(dErrors.CodeContractCall, "empty verifyCertificate result")
	}

	var fields [4]json.RawMessage
	switch trimmed[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil || len(arr) < 4 {
			return nil, dErrors.New(dErrors.CodeContractCall, "malformed positional verifyCertificate result")
		}
		copy(fields[:], arr[:4])
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, dErrors.New(dErrors.CodeContractCall, "malformed keyed verifyCertificate result")
		}
		names := [4][2]string{
			{"0", "isValid"},
			{"1", "issuedBy"},
			{"2", "issuedAt"},
			{"3", "isRevoked"},
		}
		for i, keys := range names {
			v, ok := obj[keys[0]]
			if !ok {
				v, ok = obj[keys[1]]
			}
			if !ok {
				return nil, dErrors.New(dErrors.CodeContractCall,
					"verifyCertificate result missing field "+keys[1])
			}
			fields[i] = v
		}
	default:
		return nil, dErrors.New(dErrors.CodeContractCall, "unexpected verifyCertificate result shape")
	}

	isValid, err := parseJSONBool(fields[0])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeContractCall, "malformed isValid field")
	}
	issuedBy, err := parseJSONAddress(fields[1])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeContractCall, "malformed issuedBy field")
	}
	issuedAt, err := parseJSONEpoch(fields[2])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeContractCall, "malformed issuedAt field")
	}
	isRevoked, err := parseJSONBool(fields[3])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeContractCall, "malformed isRevoked field")
	}

	return &VerifyOutcome{
		IsValid:       isValid,
		IssuedBy:      issuedBy,
		IssuedAtEpoch: issuedAt,
		IsRevoked:     isRevoked,
	}, nil
}

func parseBoolResult(raw json.RawMessage, method string) (bool, error) {
	v, err := parseJSONBool(raw)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeContractCall, "malformed "+method+" result")
	}
	return v, nil
}

func parseJSONBool(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	// Some bridge versions stringify booleans.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(s) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, dErrors.New(dErrors.CodeContractCall, "not a boolean: "+string(raw))
}

func parseJSONAddress(raw json.RawMessage) (domain.WalletAddress, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", dErrors.New(dErrors.CodeContractCall, "not an address: "+string(raw))
	}
	// The zero-address sentinel is a legitimate value here; it is interpreted
	// downstream, not rejected at the boundary.
	return domain.WalletAddress(strings.ToLower(s)), nil
}

// parseJSONEpoch accepts numeric or decimal-string epochs; web3 serializes
// uint256 values as strings above 2^53.
func parseJSONEpoch(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeContractCall, "not an epoch: "+string(raw))
}
