package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/server/media"
	"github.com/daybook-app/daybook/internal/timex"
)

// epochISO is the pull floor used when a client has never synced.
const epochISO = "1970-01-01T00:00:00.000Z"

// handleSyncPush applies one batch of client rows. Each row merges under
// last-writer-wins; stale rows are dropped silently, so the reported counts
// are the rows received, not the rows that won.
func (s *Server) handleSyncPush(c echo.Context) error {
	var req api.PushRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
	}

	ctx := c.Request().Context()
	uid := userID(c)

	for _, cat := range req.Categories {
		if err := s.stores.Categories.Upsert(ctx, uid, cat); err != nil {
			s.log.Error(ctx, "push: category upsert failed", "id", cat.ID, "error", err)
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to store categories"})
		}
	}
	for _, e := range req.Entries {
		if err := s.stores.Entries.Upsert(ctx, uid, e); err != nil {
			s.log.Error(ctx, "push: entry upsert failed", "id", e.ID, "error", err)
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to store entries"})
		}
	}
	for _, cfg := range req.Configs {
		if err := s.stores.Configs.Upsert(ctx, uid, cfg); err != nil {
			s.log.Error(ctx, "push: config upsert failed", "key", cfg.Key, "error", err)
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to store configs"})
		}
	}

	return c.JSON(http.StatusOK, api.PushResponse{
		OK: true,
		Pushed: api.PushCounts{
			Categories: len(req.Categories),
			Entries:    len(req.Entries),
			Configs:    len(req.Configs),
		},
	})
}

// handleSyncPull returns every row changed after the client's checkpoint.
// The server clock is read before querying so a write landing mid-pull is
// never skipped by the next checkpoint.
func (s *Server) handleSyncPull(c echo.Context) error {
	var req api.PullRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
	}

	since := epochISO
	if req.LastSyncedAt != nil && *req.LastSyncedAt != "" {
		if _, err := timex.ParseISO(*req.LastSyncedAt); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid lastSyncedAt"})
		}
		since = *req.LastSyncedAt
	}

	ctx := c.Request().Context()
	uid := userID(c)
	serverTime := timex.NowISO()

	categories, err := s.stores.Categories.SelectUpdated(ctx, uid, since)
	if err != nil {
		s.log.Error(ctx, "pull: categories failed", "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load categories"})
	}
	entries, err := s.stores.Entries.SelectUpdated(ctx, uid, since)
	if err != nil {
		s.log.Error(ctx, "pull: entries failed", "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load entries"})
	}
	configs, err := s.stores.Configs.SelectUpdated(ctx, uid, since)
	if err != nil {
		s.log.Error(ctx, "pull: configs failed", "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load configs"})
	}

	return c.JSON(http.StatusOK, api.PullResponse{
		Categories: categories,
		Entries:    entries,
		Configs:    configs,
		ServerTime: serverTime,
	})
}

var allowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// handlePresignUpload authorizes a direct-to-bucket photo upload for one
// entry and tells the client where the photo will be served from.
func (s *Server) handlePresignUpload(c echo.Context) error {
	var req api.PresignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
	}
	if req.EntryID == "" {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "entryId is required"})
	}
	defaultExt, ok := allowedContentTypes[req.ContentType]
	if !ok {
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unsupported content type"})
	}

	ext := strings.TrimPrefix(req.FileExtension, ".")
	if ext == "" {
		ext = defaultExt
	}

	ctx := c.Request().Context()
	key := media.PhotoKey(userID(c), req.EntryID, ext)

	uploadURL, err := s.storage.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		s.log.Error(ctx, "presign failed", "key", key, "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to sign upload"})
	}

	return c.JSON(http.StatusOK, api.PresignResponse{
		UploadURL: uploadURL,
		PublicURL: s.storage.PublicURL(key),
		Key:       key,
	})
}

// handleDeleteImage removes a stored photo. The key embeds the owner's user
// id, so a caller can only delete under their own prefix.
func (s *Server) handleDeleteImage(c echo.Context) error {
	owner := c.Param("userID")
	file := c.Param("file")

	if owner != userID(c) {
		return c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not your image"})
	}

	ctx := c.Request().Context()
	key := "images/" + owner + "/" + file
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Error(ctx, "image delete failed", "key", key, "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete image"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// handleDeleteAccount purges the caller's stored photos and every row they
// own. Photos go first so a mid-way failure leaves rows (and photo keys)
// behind to retry against.
func (s *Server) handleDeleteAccount(c echo.Context) error {
	ctx := c.Request().Context()
	uid := userID(c)

	if err := s.storage.DeletePrefix(ctx, uid); err != nil {
		s.log.Error(ctx, "account delete: media purge failed", "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete stored photos"})
	}

	if err := s.stores.Entries.DeleteAllForUser(ctx, uid); err != nil {
		s.log.Error(ctx, "account delete: entries failed", "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete entries"})
	}
	if err := s.stores.Categories.DeleteAllForUser(ctx, uid); err != nil {
		s.log.Error(ctx, "account delete: categories failed", "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete categories"})
	}
	if err := s.stores.Configs.DeleteAllForUser(ctx, uid); err != nil {
		s.log.Error(ctx, "account delete: configs failed", "error", err)
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete configs"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
