// Package ledger defines the wire contracts shared with the chain bridge service.
package ledger

// ContractVersion identifies the schema for chain bridge payloads shared across services.
const ContractVersion = "v0.1.0"

// Contract names as deployed; the bridge resolves these to addresses and ABIs.
const (
	ContractVerifiedInstitutions = "verifiedInstitutions"
	ContractStudentRegistry      = "studentRegistry"
	ContractCertificates         = "certificates"
)

// ZeroAddress is the sentinel returned by the certificates contract for the
// issuer of a certificate that was never issued.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// CallRequest is a read-only contract invocation.
type CallRequest struct {
	Contract string `json:"contract"`
	Method   string `json:"method"`
	Args     []any  `json:"args"`
}

// SendRequest is a state-changing contract invocation signed by the bridge.
type SendRequest struct {
	Contract string `json:"contract"`
	Method   string `json:"method"`
	Args     []any  `json:"args"`
	From     string `json:"from"`
	Gas      uint64 `json:"gas"`
	GasPrice string `json:"gas_price,omitempty"` // decimal wei
}

// Receipt reports the outcome of a mined transaction.
type Receipt struct {
	TxHash      string `json:"tx_hash"`
	Status      bool   `json:"status"`
	GasUsed     uint64 `json:"gas_used"`
	BlockNumber uint64 `json:"block_number"`
}
