package portal

import (
	"fmt"

	"github.com/Veraticus/notecheck/internal/common"
)

// APIError describes a failed portal call.
type APIError struct {
	Op         string
	Messages   APIErrors
	StatusCode int
}

func (e *APIError) Error() string {
	if !e.Messages.Empty() {
		return fmt.Sprintf("%s: %s", e.Op, e.Messages)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// Unwrap lets callers match on common.ErrPortalRejected.
func (e *APIError) Unwrap() error {
	return common.ErrPortalRejected
}
