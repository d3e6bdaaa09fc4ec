package engine

import (
	"context"

	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/model"
)

// Authenticator establishes the portal session for a run.
type Authenticator interface {
	Authenticate(ctx context.Context, creds auth.Credentials, source auth.CodeSource) (model.Session, error)
	Session() (model.Session, error)
}

// RecordFetcher retrieves the document records for a date range.
type RecordFetcher interface {
	Fetch(ctx context.Context, r model.DateRange) ([]model.DocumentRecord, error)
}

// Renderer writes a finished matrix somewhere.
type Renderer interface {
	Render(ctx context.Context, m model.Matrix) error
}

// Progress receives updates while the matrix is being built.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

var (
	_ Authenticator = (*auth.Flow)(nil)
	_ RecordFetcher = (*Fetcher)(nil)
)
