// Package api defines the JSON wire contract spoken between the Daybook
// client and server: full row snapshots for push/pull plus the media upload
// authorization exchange. Both sides marshal these types verbatim, so any
// change here is a protocol change.
package api

// Category is the wire form of a journal category row.
type Category struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Icon      *string `json:"icon"`
	SortOrder int     `json:"sort_order"`
	IsDeleted bool    `json:"is_deleted"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// Entry is the wire form of a day entry row. The device-local staging path
// (local_photo_uri) never crosses the wire.
type Entry struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	CategoryID  string  `json:"category_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	PhotoURL    *string `json:"photo_url"`
	IsDeleted   bool    `json:"is_deleted"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Config is the wire form of a key-value config row.
type Config struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// PushRequest carries every pending local row in one batch.
type PushRequest struct {
	Categories []Category `json:"categories"`
	Entries    []Entry    `json:"entries"`
	Configs    []Config   `json:"configs"`
}

// PushCounts reports how many rows of each collection the server accepted.
type PushCounts struct {
	Categories int `json:"categories"`
	Entries    int `json:"entries"`
	Configs    int `json:"configs"`
}

type PushResponse struct {
	OK     bool       `json:"ok"`
	Pushed PushCounts `json:"pushed"`
}

// PullRequest asks for rows changed strictly after LastSyncedAt.
// A nil checkpoint pulls everything.
type PullRequest struct {
	LastSyncedAt *string `json:"lastSyncedAt"`
}

// PullResponse returns changed rows ordered ascending by updated_at, plus the
// server clock used as the next checkpoint.
type PullResponse struct {
	Categories []Category `json:"categories"`
	Entries    []Entry    `json:"entries"`
	Configs    []Config   `json:"configs"`
	ServerTime string     `json:"serverTime"`
}

// PresignRequest asks for a one-shot upload authorization for an entry photo.
type PresignRequest struct {
	EntryID       string `json:"entryId"`
	FileExtension string `json:"fileExtension"`
	ContentType   string `json:"contentType"`
}

type PresignResponse struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Key       string `json:"key"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
