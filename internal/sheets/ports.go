// Package sheets defines the outbound export port; the google
// subpackage holds the Sheets implementation.
package sheets

import (
	"context"

	"github.com/cesaralej/agastar/internal/core"
)

// TransactionAppender writes one transaction to the export destination
// and returns a reference to the written row.
type TransactionAppender interface {
	Append(ctx context.Context, userID string, tx core.Transaction) (rowRef string, err error)
}
