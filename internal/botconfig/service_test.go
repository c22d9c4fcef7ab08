package botconfig

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unishare/unishare/internal/config"
)

type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

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

func makeConfigRow(t *testing.T, userID, token string) *fakeRow {
	t.Helper()
	return &fakeRow{
		scanFunc: func(dest ...any) error {
			require.Len(t, dest, 6)
			var u pgtype.UUID
			require.NoError(t, u.Scan("0199d2aa-7b1c-7e55-9c04-1f2a3b4c5d6e"))
			*dest[0].(*pgtype.UUID) = u
			*dest[1].(*string) = userID
			*dest[2].(*string) = token
			*dest[3].(*pgtype.Text) = pgtype.Text{String: "personal_bot", Valid: true}
			*dest[4].(*bool) = true
			*dest[5].(*pgtype.Timestamptz) = pgtype.Timestamptz{Time: time.Now(), Valid: true}
			return nil
		},
	}
}

func systemConfig() config.TelegramConfig {
	return config.TelegramConfig{
		BotToken:    "system-token",
		BotUsername: "unishare_bot",
		ChatID:      "-1001234567890",
		ChatName:    "UniShare Storage",
		ChatType:    "channel",
	}
}

func TestResolveCredentialFallsBackToSystem(t *testing.T) {
	svc := NewService(nil, &fakeDB{}, systemConfig())

	for i := 0; i < 3; i++ {
		cred, err := svc.ResolveCredential(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, KindSystem, cred.Kind)
		assert.Equal(t, "system-token", cred.Token)
		assert.Equal(t, "unishare_bot", cred.Username)
	}
}

func TestResolveCredentialPrefersPersonal(t *testing.T) {
	svc := NewService(nil, &fakeDB{
		queryRowFunc: func(_ context.Context, sql string, args ...any) pgx.Row {
			assert.Contains(t, sql, "use_personal_bot")
			return makeConfigRow(t, "user-1", "personal-token")
		},
	}, systemConfig())

	cred, err := svc.ResolveCredential(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, KindPersonal, cred.Kind)
	assert.Equal(t, "personal-token", cred.Token)
	assert.NotEmpty(t, cred.ConfigID)
}

func TestResolveCredentialNoSystemDefault(t *testing.T) {
	svc := NewService(nil, &fakeDB{}, config.TelegramConfig{})
	_, err := svc.ResolveCredential(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestResolveDestinationFallsBackToSystem(t *testing.T) {
	svc := NewService(nil, &fakeDB{}, systemConfig())

	dest, err := svc.ResolveDestination(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, KindSystem, dest.Kind)
	assert.Equal(t, "-1001234567890", dest.ChatID)
	assert.True(t, dest.IsDefault)
}

func TestResolveDestinationUsesPersonalChannel(t *testing.T) {
	db := &fakeDB{}
	db.queryRowFunc = func(_ context.Context, sql string, args ...any) pgx.Row {
		if strings.Contains(sql, "user_bot_configs") {
			return makeConfigRow(t, "user-1", "personal-token")
		}
		return &fakeRow{scanFunc: func(dest ...any) error {
			require.Len(t, dest, 4)
			*dest[0].(*string) = "-100987"
			*dest[1].(*pgtype.Text) = pgtype.Text{String: "My Storage", Valid: true}
			*dest[2].(*string) = "group"
			*dest[3].(*bool) = true
			return nil
		}}
	}
	svc := NewService(nil, db, systemConfig())

	dest, err := svc.ResolveDestination(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, KindPersonal, dest.Kind)
	assert.Equal(t, "-100987", dest.ChatID)
	assert.Equal(t, "group", dest.ChatType)
}

func TestUpsertUserConfigValidation(t *testing.T) {
	svc := NewService(nil, &fakeDB{}, systemConfig())

	_, err := svc.UpsertUserConfig(context.Background(), UpsertConfigInput{BotToken: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user id")

	_, err = svc.UpsertUserConfig(context.Background(), UpsertConfigInput{UserID: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot token")
}
