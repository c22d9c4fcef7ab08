package documents

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow implements pgx.Row with a custom scan function.
type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// fakeDB implements db.DBTX for unit testing.
type fakeDB struct {
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if d.execFunc != nil {
		return d.execFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (d *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if d.queryRowFunc != nil {
		return d.queryRowFunc(ctx, sql, args...)
	}
	return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

func mustUUID(t *testing.T, s string) pgtype.UUID {
	t.Helper()
	var u pgtype.UUID
	require.NoError(t, u.Scan(s))
	return u
}

// makeDocumentRow creates a fakeRow that populates one documents row via Scan.
func makeDocumentRow(t *testing.T, id, fileID, fileName string, owner int64) *fakeRow {
	t.Helper()
	return &fakeRow{
		scanFunc: func(dest ...any) error {
			require.Len(t, dest, 15)
			*dest[0].(*pgtype.UUID) = mustUUID(t, id)
			*dest[1].(*string) = fileID
			*dest[2].(*pgtype.Text) = pgtype.Text{String: "unique-" + fileID, Valid: true}
			*dest[3].(*string) = fileName
			*dest[4].(*pgtype.Text) = pgtype.Text{}
			*dest[5].(*pgtype.Int8) = pgtype.Int8{Int64: 2 * 1024 * 1024, Valid: true}
			*dest[6].(*pgtype.Text) = pgtype.Text{String: "application/pdf", Valid: true}
			*dest[7].(*pgtype.Text) = pgtype.Text{String: "Bai giang", Valid: true}
			*dest[8].(*pgtype.Text) = pgtype.Text{String: "HCMUS", Valid: true}
			*dest[9].(*pgtype.Text) = pgtype.Text{String: "CNTT", Valid: true}
			*dest[10].(*[]string) = []string{"algo", "midterm"}
			*dest[11].(*pgtype.Text) = pgtype.Text{String: "sinhvien", Valid: true}
			*dest[12].(*int64) = owner
			*dest[13].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Now(), Valid: true}
			*dest[14].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Now(), Valid: true}
			return nil
		},
	}
}

func TestInsertReturnsStoredRow(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	store := NewStore(nil, &fakeDB{
		queryRowFunc: func(_ context.Context, sql string, args ...any) pgx.Row {
			gotSQL = sql
			gotArgs = args
			return makeDocumentRow(t, "0199d2aa-7b1c-7e55-9c04-1f2a3b4c5d6e", "tg-file-1", "notes.pdf", 42)
		},
	})

	doc, err := store.Insert(context.Background(), CreateInput{
		FileID:         "tg-file-1",
		FileName:       "notes.pdf",
		MimeType:       "application/pdf",
		FileSize:       2 * 1024 * 1024,
		School:         "HCMUS",
		Major:          "CNTT",
		Tags:           []string{"algo", "midterm"},
		TelegramUserID: 42,
	})
	require.NoError(t, err)
	assert.Contains(t, gotSQL, "INSERT INTO documents")
	assert.Equal(t, "tg-file-1", gotArgs[0])
	assert.Equal(t, "notes.pdf", doc.FileName)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, []string{"algo", "midterm"}, doc.Tags)
	assert.NotEmpty(t, doc.FileID)
	assert.Equal(t, int64(42), doc.TelegramUserID)
}

func TestInsertValidatesRequiredFields(t *testing.T) {
	store := NewStore(nil, &fakeDB{})

	_, err := store.Insert(context.Background(), CreateInput{FileName: "a.pdf", TelegramUserID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file id")

	_, err = store.Insert(context.Background(), CreateInput{FileID: "f", FileName: "a.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram user id")

	_, err = store.Insert(context.Background(), CreateInput{FileID: "f", TelegramUserID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file name")
}

func TestGetNotFound(t *testing.T) {
	store := NewStore(nil, &fakeDB{})
	_, err := store.Get(context.Background(), "0199d2aa-7b1c-7e55-9c04-1f2a3b4c5d6e")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestGetRejectsMalformedID(t *testing.T) {
	store := NewStore(nil, &fakeDB{
		queryRowFunc: func(context.Context, string, ...any) pgx.Row {
			t.Fatal("query must not run for malformed ids")
			return nil
		},
	})
	_, err := store.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDeleteOwnedScopesByOwner(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	store := NewStore(nil, &fakeDB{
		execFunc: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			gotSQL = sql
			gotArgs = args
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	})

	affected, err := store.DeleteOwned(context.Background(), "0199d2aa-7b1c-7e55-9c04-1f2a3b4c5d6e", 7)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Contains(t, gotSQL, "telegram_user_id = $2")
	require.Len(t, gotArgs, 2)
	assert.Equal(t, int64(7), gotArgs[1])
}

func TestDeleteOwnedMalformedIDAffectsNothing(t *testing.T) {
	store := NewStore(nil, &fakeDB{
		execFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			t.Fatal("exec must not run for malformed ids")
			return pgconn.CommandTag{}, nil
		},
	})
	affected, err := store.DeleteOwned(context.Background(), "123", 7)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestDownloadNamePrefersOriginal(t *testing.T) {
	doc := Document{FileName: "doc_123.bin", OriginalFileName: "notes.pdf"}
	assert.Equal(t, "notes.pdf", doc.DownloadName())

	doc.OriginalFileName = ""
	assert.Equal(t, "doc_123.bin", doc.DownloadName())
}
