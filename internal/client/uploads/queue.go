// Package uploads finishes the "attach a photo" workflow asynchronously: any
// entry with a staged local photo and no remote URL is uploaded on the next
// drain, surviving restarts and crashes in between.
package uploads

import (
	"context"
	"fmt"
	"os"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/media"
	"github.com/daybook-app/daybook/internal/client/remote"
	"github.com/daybook-app/daybook/internal/client/repositories/entries"
	"github.com/daybook-app/daybook/internal/logging"
)

const photoContentType = "image/jpeg"

// Queue drains pending photo uploads.
type Queue struct {
	entries entries.Repository
	media   *media.Store
	remote  remote.Client
	tokens  remote.TokenSource
	log     logging.Logger
}

func NewQueue(entriesRepo entries.Repository, mediaStore *media.Store, client remote.Client, tokens remote.TokenSource, log logging.Logger) *Queue {
	return &Queue{
		entries: entriesRepo,
		media:   mediaStore,
		remote:  client,
		tokens:  tokens,
		log:     log,
	}
}

// Drain uploads every entry with a staged photo and no remote URL, returning
// how many uploads were confirmed. One entry's failure is logged and does not
// block the rest; the entry stays queued for the next drain. A missing
// credential stops the pass early — nothing can be uploaded without one.
func (q *Queue) Drain(ctx context.Context) (int, error) {
	pending, err := q.entries.PendingUploads(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending uploads: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	q.log.Info(ctx, "draining upload queue", "pending", len(pending))

	uploaded := 0
	for _, entry := range pending {
		token, err := q.tokens.Token(ctx)
		if err != nil {
			return uploaded, fmt.Errorf("failed to obtain credential: %w", err)
		}
		if token == "" {
			q.log.Warn(ctx, "upload drain stopped, signed out")
			return uploaded, nil
		}

		if err := q.uploadOne(ctx, entry.ID, *entry.LocalPhotoURI); err != nil {
			q.log.Warn(ctx, "photo upload failed", "entry", entry.ID, "error", err)
			continue
		}
		uploaded++
	}
	return uploaded, nil
}

func (q *Queue) uploadOne(ctx context.Context, entryID, localURI string) error {
	presign, err := q.remote.PresignUpload(ctx, api.PresignRequest{
		EntryID:       entryID,
		FileExtension: q.media.Ext(),
		ContentType:   photoContentType,
	})
	if err != nil {
		return fmt.Errorf("presign: %w", err)
	}

	f, err := os.Open(localURI)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat staged file: %w", err)
	}

	if err := q.remote.UploadFile(ctx, presign.UploadURL, photoContentType, f, info.Size()); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	if err := q.entries.SetPhotoURL(ctx, entryID, presign.PublicURL); err != nil {
		return fmt.Errorf("record photo url: %w", err)
	}

	if err := q.media.Remove(entryID); err != nil {
		// The upload is durable; a leftover staged file is only wasted space.
		q.log.Warn(ctx, "failed to remove staged photo", "entry", entryID, "error", err)
	}

	q.log.Info(ctx, "photo uploaded", "entry", entryID, "url", presign.PublicURL)
	return nil
}
