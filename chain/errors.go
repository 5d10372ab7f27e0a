package chain

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// SubmissionError covers a rejected transaction, a signer failure or an RPC
// fault while building, sending or polling.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ConfirmationTimeoutError means the transaction was sent but not observed
// finalized before the deadline. It may still land.
type ConfirmationTimeoutError struct {
	Op        string
	Signature solana.Signature
	Timeout   time.Duration
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("%s: transaction %s not finalized after %s", e.Op, e.Signature, e.Timeout)
}
