package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/unishare/unishare/internal/documents"
	"github.com/unishare/unishare/internal/telegram"
)

const ownFilesLimit = 10

// DocumentStore is the metadata-store surface the ingestion bot needs.
type DocumentStore interface {
	Insert(ctx context.Context, input documents.CreateInput) (documents.Document, error)
	GetByFileID(ctx context.Context, fileID string) (documents.Document, error)
	ListByOwner(ctx context.Context, telegramUserID int64, limit int) ([]documents.Document, error)
	DeleteOwned(ctx context.Context, id string, telegramUserID int64) (int64, error)
}

// URLResolver resolves a blob handle to a transient direct-fetch URL.
type URLResolver interface {
	ResolveDownloadURL(ctx context.Context, userID, fileID string) (string, error)
}

// Sender delivers replies back to the chat the update came from.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot processes inbound Telegram updates: document posts become metadata
// records in the same shape the web gateway writes, and the /get, /myfiles
// and /delete commands are served scoped to the sender's Telegram id.
type Bot struct {
	store  DocumentStore
	urls   URLResolver
	sender Sender
	logger *slog.Logger
}

// NewBot creates the ingestion bot.
func NewBot(log *slog.Logger, store DocumentStore, urls URLResolver, sender Sender) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		store:  store,
		urls:   urls,
		sender: sender,
		logger: log.With(slog.String("service", "ingest_bot")),
	}
}

// HandleUpdate processes one update to completion. All processing errors are
// caught here and turned into replies, so one malformed update can never take
// the listener down; non-document, non-command updates are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while processing update", slog.Any("panic", r))
			if msg != nil {
				b.reply(msg, replyUnexpected)
			}
		}
	}()

	if msg == nil || msg.From == nil {
		return
	}
	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	}
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	doc := msg.Document
	from := msg.From
	parsed := ParseCaption(msg.Caption, doc.FileName)

	mimeType := doc.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	uploadedBy := from.UserName
	if uploadedBy == "" {
		uploadedBy = strings.TrimSpace(from.FirstName + " " + from.LastName)
	}

	record, err := b.store.Insert(ctx, documents.CreateInput{
		FileID:         doc.FileID,
		FileUniqueID:   doc.FileUniqueID,
		FileName:       doc.FileName,
		FileSize:       int64(doc.FileSize),
		MimeType:       mimeType,
		Description:    parsed.Description,
		School:         parsed.School,
		Major:          parsed.Major,
		Tags:           parsed.Tags,
		UploadedBy:     uploadedBy,
		TelegramUserID: from.ID,
	})
	if err != nil {
		b.logger.Error("persist inbound document failed",
			slog.String("file_id", doc.FileID),
			slog.Int64("user_id", from.ID),
			slog.Any("error", err))
		b.reply(msg, replyStoreError)
		return
	}
	b.logger.Info("inbound document stored",
		slog.String("document_id", record.ID),
		slog.Int64("user_id", from.ID))
	b.reply(msg, formatStoredReply(record))
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg, replyWelcome)
	case "help":
		b.reply(msg, replyHelp)
	case "get":
		b.handleGet(ctx, msg)
	case "myfiles":
		b.handleMyFiles(ctx, msg)
	case "delete":
		b.handleDelete(ctx, msg)
	}
}

func (b *Bot) handleGet(ctx context.Context, msg *tgbotapi.Message) {
	fileID := strings.TrimSpace(msg.CommandArguments())
	if fileID == "" {
		b.reply(msg, replyGetUsage)
		return
	}
	url, err := b.urls.ResolveDownloadURL(ctx, "", fileID)
	if err != nil {
		if errors.Is(err, telegram.ErrBlobExpired) {
			b.reply(msg, replyFileGone)
			return
		}
		b.logger.Error("resolve download url failed", slog.String("file_id", fileID), slog.Any("error", err))
		b.reply(msg, replyFileFetchFail)
		return
	}
	// Name the file in the reply when the handle is indexed; unindexed
	// handles still get a bare link.
	var fileName string
	if doc, err := b.store.GetByFileID(ctx, fileID); err == nil {
		fileName = doc.DownloadName()
	}
	b.reply(msg, formatDownloadReply(url, fileName))
}

func (b *Bot) handleMyFiles(ctx context.Context, msg *tgbotapi.Message) {
	docs, err := b.store.ListByOwner(ctx, msg.From.ID, ownFilesLimit)
	if err != nil {
		b.logger.Error("list own files failed", slog.Int64("user_id", msg.From.ID), slog.Any("error", err))
		b.reply(msg, replyQueryError)
		return
	}
	if len(docs) == 0 {
		b.reply(msg, replyNoFiles)
		return
	}
	b.reply(msg, formatFileListReply(docs))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	docID := strings.TrimSpace(msg.CommandArguments())
	if docID == "" {
		b.reply(msg, replyDeleteUsage)
		return
	}
	// Zero rows for a foreign or unknown id still reads as success, so the
	// command never leaks whether someone else's record exists.
	if _, err := b.store.DeleteOwned(ctx, docID, msg.From.ID); err != nil {
		b.logger.Error("delete document failed", slog.String("document_id", docID), slog.Any("error", err))
		b.reply(msg, replyDeleteError)
		return
	}
	b.reply(msg, replyDeleted)
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	if b.sender == nil || msg.Chat == nil {
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.sender.Send(out); err != nil {
		b.logger.Error("send reply failed", slog.Int64("chat_id", msg.Chat.ID), slog.Any("error", err))
	}
}
