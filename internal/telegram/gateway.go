package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/unishare/unishare/internal/botconfig"
	"github.com/unishare/unishare/internal/config"
	"github.com/unishare/unishare/internal/documents"
)

// MaxBlobBytes caps how much the gateway will pull back for previews. The
// Telegram Bot API itself refuses to serve files above 20 MiB, so anything
// larger has to go through the direct download URL anyway.
const MaxBlobBytes int64 = 50 * 1024 * 1024

// botClient is the slice of tgbotapi.BotAPI the gateway uses. Tests
// substitute a fake.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error)
	GetMe() (tgbotapi.User, error)
}

// Resolver supplies the credential and destination for one operation.
type Resolver interface {
	ResolveCredential(ctx context.Context, userID string) (botconfig.Credential, error)
	ResolveDestination(ctx context.Context, userID string) (botconfig.Destination, error)
}

// DocumentInserter persists the metadata record after a successful post.
type DocumentInserter interface {
	Insert(ctx context.Context, input documents.CreateInput) (documents.Document, error)
}

// Gateway performs uploads, downloads, and previews against the Telegram Bot
// API on behalf of the web client, abstracting bot/channel selection and the
// platform's retention limits.
type Gateway struct {
	resolver   Resolver
	store      DocumentInserter
	fileHost   string
	httpClient *http.Client
	logger     *slog.Logger

	connect func(token string) (botClient, error)
}

// NewGateway creates a blob gateway. The file host comes from the injected
// Telegram config so tests can point it at a local server.
func NewGateway(log *slog.Logger, resolver Resolver, store DocumentInserter, cfg config.TelegramConfig) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	fileHost := strings.TrimRight(strings.TrimSpace(cfg.FileHost), "/")
	if fileHost == "" {
		fileHost = config.DefaultFileHost
	}
	return &Gateway{
		resolver:   resolver,
		store:      store,
		fileHost:   fileHost,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     log.With(slog.String("service", "blob_gateway")),
		connect: func(token string) (botClient, error) {
			return tgbotapi.NewBotAPI(token)
		},
	}
}

// UploadMetadata is the optional free-text metadata attached to an upload.
type UploadMetadata struct {
	Description string
	School      string
	Major       string
	Tags        []string
}

// UploadInput describes one web upload.
type UploadInput struct {
	Reader       io.Reader
	FileName     string
	MimeType     string
	Size         int64
	Metadata     UploadMetadata
	UserID       string
	UploaderName string
}

// Upload posts the file to the resolved destination with a metadata caption,
// extracts the returned blob handle, and persists exactly one metadata record.
// On transport or platform failure nothing is inserted; on insert failure the
// remote post is not undone (the orphaned blob is logged and accepted).
func (g *Gateway) Upload(ctx context.Context, input UploadInput) (documents.Document, error) {
	if input.Reader == nil {
		return documents.Document{}, fmt.Errorf("file reader is required")
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return documents.Document{}, fmt.Errorf("file name is required")
	}
	cred, err := g.resolver.ResolveCredential(ctx, input.UserID)
	if err != nil {
		return documents.Document{}, fmt.Errorf("resolve credential: %w", err)
	}
	dest, err := g.resolver.ResolveDestination(ctx, input.UserID)
	if err != nil {
		return documents.Document{}, fmt.Errorf("resolve destination: %w", err)
	}
	bot, err := g.connect(cred.Token)
	if err != nil {
		return documents.Document{}, fmt.Errorf("connect bot: %w", err)
	}

	caption := BuildCaption(input.Metadata.School, input.Metadata.Major, input.Metadata.Description, input.Metadata.Tags)
	doc, err := buildDocumentConfig(dest.ChatID, tgbotapi.FileReader{Name: fileName, Reader: input.Reader})
	if err != nil {
		return documents.Document{}, err
	}
	doc.Caption = caption

	sent, err := bot.Send(doc)
	if err != nil {
		g.logger.Error("send document failed",
			slog.String("chat_id", dest.ChatID),
			slog.String("credential", cred.Kind),
			slog.Any("error", err))
		return documents.Document{}, fmt.Errorf("send document: %w", err)
	}
	descriptor, err := ExtractDescriptor(&sent)
	if err != nil {
		g.logger.Error("upload accepted but unretrievable", slog.String("file_name", fileName))
		return documents.Document{}, err
	}

	storedName := descriptor.FileName
	if storedName == "" {
		storedName = fileName
	}
	mimeType := descriptor.MimeType
	if mimeType == "" {
		mimeType = input.MimeType
	}
	fileSize := descriptor.FileSize
	if fileSize == 0 {
		fileSize = input.Size
	}
	var ownerID int64
	if sent.From != nil {
		ownerID = sent.From.ID
	}

	record, err := g.store.Insert(ctx, documents.CreateInput{
		FileID:           descriptor.FileID,
		FileUniqueID:     descriptor.FileUniqueID,
		FileName:         storedName,
		OriginalFileName: fileName,
		FileSize:         fileSize,
		MimeType:         mimeType,
		Description:      input.Metadata.Description,
		School:           input.Metadata.School,
		Major:            input.Metadata.Major,
		Tags:             input.Metadata.Tags,
		UploadedBy:       input.UploaderName,
		TelegramUserID:   ownerID,
	})
	if err != nil {
		// The blob is already on Telegram; losing the index entry is the
		// accepted failure mode, not a reason to delete the remote post.
		g.logger.Error("metadata insert failed, blob orphaned",
			slog.String("file_id", descriptor.FileID),
			slog.Any("error", err))
		return documents.Document{}, fmt.Errorf("store document: %w", err)
	}
	g.logger.Info("upload stored",
		slog.String("document_id", record.ID),
		slog.String("kind", string(descriptor.Kind)),
		slog.Int64("size", record.FileSize))
	return record, nil
}

// ResolveDownloadURL resolves a blob handle into a transient direct-fetch URL.
// Permanently unresolvable handles map to ErrBlobExpired.
func (g *Gateway) ResolveDownloadURL(ctx context.Context, userID, fileID string) (string, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return "", fmt.Errorf("file id is required")
	}
	cred, err := g.resolver.ResolveCredential(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolve credential: %w", err)
	}
	bot, err := g.connect(cred.Token)
	if err != nil {
		return "", fmt.Errorf("connect bot: %w", err)
	}
	file, err := bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		if isExpiryIndication(err) {
			return "", fmt.Errorf("%w: %s", ErrBlobExpired, fileID)
		}
		return "", fmt.Errorf("get file: %w", err)
	}
	if strings.TrimSpace(file.FilePath) == "" {
		return "", fmt.Errorf("%w: %s", ErrBlobExpired, fileID)
	}
	return fmt.Sprintf("%s/file/bot%s/%s", g.fileHost, cred.Token, file.FilePath), nil
}

// Blob is fetched file content for in-page preview.
type Blob struct {
	Data        []byte
	ContentType string
}

// FetchBlob resolves the handle and pulls the bytes for preview. Whether a
// blob should be previewed at all (type, size ceiling) is the caller's policy.
func (g *Gateway) FetchBlob(ctx context.Context, userID, fileID string) (Blob, error) {
	url, err := g.ResolveDownloadURL(ctx, userID, fileID)
	if err != nil {
		return Blob{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Blob{}, fmt.Errorf("build fetch request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Blob{}, fmt.Errorf("fetch blob: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return Blob{}, fmt.Errorf("%w: %s", ErrBlobExpired, fileID)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Blob{}, fmt.Errorf("fetch blob status: %d", resp.StatusCode)
	}
	data, err := ReadAllWithLimit(resp.Body, MaxBlobBytes)
	if err != nil {
		return Blob{}, err
	}
	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return Blob{Data: data, ContentType: contentType}, nil
}

// BotIdentity is the self-identification returned by a credential check.
type BotIdentity struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
}

// TestCredential validates a bot token against the platform's
// self-identification endpoint. No store interaction.
func (g *Gateway) TestCredential(ctx context.Context, token string) (BotIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return BotIdentity{}, fmt.Errorf("bot token is required")
	}
	bot, err := g.connect(token)
	if err != nil {
		return BotIdentity{}, fmt.Errorf("connect bot: %w", err)
	}
	me, err := bot.GetMe()
	if err != nil {
		return BotIdentity{}, fmt.Errorf("get me: %w", err)
	}
	return BotIdentity{ID: me.ID, Username: me.UserName, FirstName: me.FirstName}, nil
}

// buildDocumentConfig targets either a numeric chat id or an @channel name,
// matching what Telegram accepts for chat_id.
func buildDocumentConfig(target string, file tgbotapi.RequestFileData) (tgbotapi.DocumentConfig, error) {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "@") {
		return tgbotapi.DocumentConfig{
			BaseFile: tgbotapi.BaseFile{
				BaseChat: tgbotapi.BaseChat{ChannelUsername: target},
				File:     file,
			},
		}, nil
	}
	chatID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return tgbotapi.DocumentConfig{}, fmt.Errorf("destination must be @username or chat_id")
	}
	return tgbotapi.NewDocument(chatID, file), nil
}
