// Package apperrors defines the sentinel errors shared across the swap pipeline.
package apperrors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidRequest is returned when a required request parameter is absent.
	// No upstream call is made in that case.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDeserialize is returned when a signed transaction blob cannot be decoded.
	ErrDeserialize = errors.New("transaction deserialization failed")

	// ErrTransactionFailed is returned when the chain reports the transaction
	// as failed after submission.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrExpired is returned when the transaction's last valid block height
	// passes before confirmation.
	ErrExpired = errors.New("block height exceeded")

	// ErrPrecondition is returned when a swap is attempted without a quote
	// or a connected wallet.
	ErrPrecondition = errors.New("swap preconditions not met")
)

// UpstreamError carries a non-2xx response from the aggregator so the proxy
// layer can pass the status and body through to the caller unchanged.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, string(e.Body))
}
