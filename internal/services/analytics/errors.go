package analytics

import (
	"errors"
	"fmt"
)

// OversellError reports a sell transaction whose quantity exceeds the units
// held at the moment it is replayed. The computation is aborted; the
// transaction set must be corrected before analytics can be produced.
type OversellError struct {
	AssetID       string
	TransactionID string
	Quantity      float64
	Held          float64
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("sell exceeds holdings for asset %s: transaction %s sells %.4f with %.4f held",
		e.AssetID, e.TransactionID, e.Quantity, e.Held)
}

// IsOversell reports whether err is (or wraps) an OversellError.
func IsOversell(err error) bool {
	var oe *OversellError
	return errors.As(err, &oe)
}

// ErrEmptyChart is returned when a portfolio has no category with positive
// current value, so there is nothing to render.
var ErrEmptyChart = errors.New("no categories with positive current value to chart")
