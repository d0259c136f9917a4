package cli

import (
	"errors"

	"shiftmap-cli/internal/connector"
)

// isAnchorMiss reports errors that only mean a connector could not be drawn.
func isAnchorMiss(err error) bool {
	var ue connector.UnresolvedAnchorError
	return errors.As(err, &ue)
}
