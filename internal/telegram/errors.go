package telegram

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	// ErrBlobExpired indicates the platform no longer resolves the blob
	// handle. Permanent; the caller should suggest re-upload, not retry.
	ErrBlobExpired = errors.New("telegram file expired or not found")
	// ErrNoMediaDescriptor indicates the platform accepted the post but
	// returned no recognizable media descriptor, so no retrievable handle
	// exists. Distinct from transport failure.
	ErrNoMediaDescriptor = errors.New("no media descriptor in telegram response")
	// ErrBlobTooLarge indicates the fetched blob exceeds the gateway cap.
	ErrBlobTooLarge = errors.New("telegram file too large")
)

// isExpiryIndication reports whether a Telegram API error signals that a file
// handle is permanently unresolvable, as opposed to a transient failure.
func isExpiryIndication(err error) bool {
	var message string
	var apiErrPtr *tgbotapi.Error
	var apiErr tgbotapi.Error
	switch {
	case errors.As(err, &apiErrPtr):
		message = apiErrPtr.Message
	case errors.As(err, &apiErr):
		message = apiErr.Message
	default:
		return false
	}
	msg := strings.ToLower(message)
	return strings.Contains(msg, "expired") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "invalid file_id") ||
		strings.Contains(msg, "wrong file identifier")
}
