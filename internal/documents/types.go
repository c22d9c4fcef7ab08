package documents

import "time"

// Document is the durable metadata record for one shared file. The file_id
// is an opaque Telegram handle with no permanence guarantee; the record is
// kept decoupled so it can outlive the blob it points at.
type Document struct {
	ID               string    `json:"id"`
	FileID           string    `json:"file_id"`
	FileUniqueID     string    `json:"file_unique_id,omitempty"`
	FileName         string    `json:"file_name"`
	OriginalFileName string    `json:"original_file_name,omitempty"`
	FileSize         int64     `json:"file_size,omitempty"`
	MimeType         string    `json:"mime_type,omitempty"`
	Description      string    `json:"description,omitempty"`
	School           string    `json:"school,omitempty"`
	Major            string    `json:"major,omitempty"`
	Tags             []string  `json:"tags"`
	UploadedBy       string    `json:"uploaded_by,omitempty"`
	TelegramUserID   int64     `json:"telegram_user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DownloadName returns the name to offer on download: the preserved original
// name when present, else the display name.
func (d Document) DownloadName() string {
	if d.OriginalFileName != "" {
		return d.OriginalFileName
	}
	return d.FileName
}

// CreateInput is the shared insert shape used by both the web upload path and
// the ingestion bot, so records from either origin are indistinguishable.
type CreateInput struct {
	FileID           string
	FileUniqueID     string
	FileName         string
	OriginalFileName string
	FileSize         int64
	MimeType         string
	Description      string
	School           string
	Major            string
	Tags             []string
	UploadedBy       string
	TelegramUserID   int64
}

// ListFilter selects catalog rows. Zero values mean "no constraint".
type ListFilter struct {
	Search string
	School string
	Major  string
	Tags   []string
	Limit  int
	Offset int
}
