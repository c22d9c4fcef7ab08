package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	dbpkg "github.com/unishare/unishare/internal/db"
)

// ErrDocumentNotFound indicates the requested document record does not exist.
var ErrDocumentNotFound = errors.New("document not found")

const documentColumns = `id, file_id, file_unique_id, file_name, original_file_name,
	file_size, mime_type, description, school, major, tags, uploaded_by,
	telegram_user_id, created_at, updated_at`

// Store provides row-level access to the documents table.
type Store struct {
	db     dbpkg.DBTX
	logger *slog.Logger
}

// NewStore creates a document store.
func NewStore(log *slog.Logger, db dbpkg.DBTX) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		db:     db,
		logger: log.With(slog.String("store", "documents")),
	}
}

// Insert writes one document record and returns the stored row.
func (s *Store) Insert(ctx context.Context, input CreateInput) (Document, error) {
	if strings.TrimSpace(input.FileID) == "" {
		return Document{}, fmt.Errorf("file id is required")
	}
	if input.TelegramUserID == 0 {
		return Document{}, fmt.Errorf("telegram user id is required")
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return Document{}, fmt.Errorf("file name is required")
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO documents (
			file_id, file_unique_id, file_name, original_file_name, file_size,
			mime_type, description, school, major, tags, uploaded_by, telegram_user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+documentColumns,
		input.FileID,
		textOrNull(input.FileUniqueID),
		fileName,
		textOrNull(input.OriginalFileName),
		input.FileSize,
		textOrNull(input.MimeType),
		textOrNull(input.Description),
		textOrNull(input.School),
		textOrNull(input.Major),
		tags,
		textOrNull(input.UploadedBy),
		input.TelegramUserID,
	)
	doc, err := scanDocument(row)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// Get returns the document with the given id.
func (s *Store) Get(ctx context.Context, id string) (Document, error) {
	docID, err := dbpkg.ParseUUID(id)
	if err != nil {
		return Document{}, ErrDocumentNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, docID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetByFileID returns the document indexed under the given blob handle.
func (s *Store) GetByFileID(ctx context.Context, fileID string) (Document, error) {
	row := s.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE file_id = $1`, fileID)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, fmt.Errorf("get document by file id: %w", err)
	}
	return doc, nil
}

// List returns catalog rows matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + documentColumns + ` FROM documents`)
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := arg("%" + search + "%")
		conds = append(conds, fmt.Sprintf("(file_name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if school := strings.TrimSpace(filter.School); school != "" {
		conds = append(conds, "school = "+arg(school))
	}
	if major := strings.TrimSpace(filter.Major); major != "" {
		conds = append(conds, "major = "+arg(major))
	}
	if len(filter.Tags) > 0 {
		conds = append(conds, "tags && "+arg(filter.Tags))
	}
	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	query.WriteString(" ORDER BY created_at DESC")
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query.WriteString(" LIMIT " + arg(limit))
	if filter.Offset > 0 {
		query.WriteString(" OFFSET " + arg(filter.Offset))
	}
	rows, err := s.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListByOwner returns the most recent records owned by the given Telegram id.
func (s *Store) ListByOwner(ctx context.Context, telegramUserID int64, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE telegram_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		telegramUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents by owner: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// DeleteOwned deletes a record only when both id and owner match. A zero count
// for a foreign or unknown id is not an error, so existence is never leaked.
func (s *Store) DeleteOwned(ctx context.Context, id string, telegramUserID int64) (int64, error) {
	docID, err := dbpkg.ParseUUID(id)
	if err != nil {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND telegram_user_id = $2`, docID, telegramUserID)
	if err != nil {
		return 0, fmt.Errorf("delete document: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectDocuments(rows pgx.Rows) ([]Document, error) {
	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		id           pgtype.UUID
		fileUniqueID pgtype.Text
		originalName pgtype.Text
		fileSize     pgtype.Int8
		mimeType     pgtype.Text
		description  pgtype.Text
		school       pgtype.Text
		major        pgtype.Text
		uploadedBy   pgtype.Text
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
		doc          Document
	)
	err := row.Scan(
		&id,
		&doc.FileID,
		&fileUniqueID,
		&doc.FileName,
		&originalName,
		&fileSize,
		&mimeType,
		&description,
		&school,
		&major,
		&doc.Tags,
		&uploadedBy,
		&doc.TelegramUserID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.ID = dbpkg.UUIDString(id)
	doc.FileUniqueID = fileUniqueID.String
	doc.OriginalFileName = originalName.String
	doc.FileSize = fileSize.Int64
	doc.MimeType = mimeType.String
	doc.Description = description.String
	doc.School = school.String
	doc.Major = major.String
	doc.UploadedBy = uploadedBy.String
	doc.CreatedAt = createdAt.Time
	doc.UpdatedAt = updatedAt.Time
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	return doc, nil
}

func textOrNull(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	return pgtype.Text{String: s, Valid: s != ""}
}
