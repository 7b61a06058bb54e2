package host

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gomol/internal/viewport"
)

// Notice formats an error for display in the host window. Precondition
// failures are user mistakes and read as hints.
func Notice(i int, err error) string {
	if errors.Is(err, viewport.ErrPreconditionNotMet) {
		return fmt.Sprintf("Viewport %d: not now (%v)", i+1, err)
	}
	return fmt.Sprintf("Viewport %d: %v", i+1, err)
}
