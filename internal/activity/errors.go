package activity

import "errors"

// Classification errors. Both are terminal for the bundle in question.
var (
	// ErrGasRecordNotFound is returned when a bundle has no gas fee record.
	ErrGasRecordNotFound = errors.New("gas record not found")

	// ErrDepositWithdrawalMismatch is returned when deposits cannot be paired
	// with withdrawals.
	ErrDepositWithdrawalMismatch = errors.New("deposit withdrawal mismatch")
)

// Error kinds written to classify error records.
const (
	KindGasRecordNotFound         = "gas_record_not_found"
	KindDepositWithdrawalMismatch = "deposit_withdrawal_mismatch"
	KindOther                     = "other"
)

// ErrorKind maps a classification error to a stable kind string.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrGasRecordNotFound):
		return KindGasRecordNotFound
	case errors.Is(err, ErrDepositWithdrawalMismatch):
		return KindDepositWithdrawalMismatch
	default:
		return KindOther
	}
}
