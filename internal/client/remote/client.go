// Package remote is the client side of the sync API: push/pull batches,
// media upload authorization, and account deletion, all bearer-authenticated.
package remote

import (
	"context"
	"io"

	"github.com/daybook-app/daybook/internal/api"
)

// TokenSource supplies the bearer credential for remote calls. It is owned by
// the auth/session layer, which this package treats as an external
// collaborator. An empty token with a nil error means "signed out".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the remote store.
type Client interface {
	// Push uploads full row snapshots of every pending local row in one batch.
	Push(ctx context.Context, req api.PushRequest) (*api.PushResponse, error)

	// Pull fetches all rows changed strictly after lastSyncedAt; nil pulls
	// everything. Rows come back ordered ascending by updated_at.
	Pull(ctx context.Context, lastSyncedAt *string) (*api.PullResponse, error)

	// PresignUpload asks for a one-shot PUT authorization for an entry photo.
	PresignUpload(ctx context.Context, req api.PresignRequest) (*api.PresignResponse, error)

	// UploadFile PUTs the photo bytes directly to a presigned URL.
	UploadFile(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error

	// DeleteImage removes a stored photo by its object key.
	DeleteImage(ctx context.Context, key string) error

	// DeleteAccount removes every remote row and stored photo of the caller.
	// Local cleanup is the repositories' job; the server does not imply it.
	DeleteAccount(ctx context.Context) error
}
