package clients

import (
	"errors"

	ethereum "github.com/ethereum/go-ethereum"
)

// ErrReceiptNotFound is returned when a transaction has no receipt yet,
// either because it is pending or because it never existed.
var ErrReceiptNotFound = errors.New("transaction receipt not found")

// IsNotFound reports whether err means the receipt does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReceiptNotFound) || errors.Is(err, ethereum.NotFound)
}
