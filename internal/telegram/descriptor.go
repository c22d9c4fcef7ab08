package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MediaKind names the media-descriptor shape Telegram chose for an upload.
type MediaKind string

const (
	MediaDocument  MediaKind = "document"
	MediaVideo     MediaKind = "video"
	MediaPhoto     MediaKind = "photo"
	MediaAudio     MediaKind = "audio"
	MediaAnimation MediaKind = "animation"
	MediaVoice     MediaKind = "voice"
	MediaVideoNote MediaKind = "video_note"
)

// MediaDescriptor is the resolved form of the mutually exclusive media shapes
// a sendDocument response can carry. Telegram infers the media kind from the
// payload, so the response shape is not under our control; it is resolved once
// here instead of probing optional fields at every caller.
type MediaDescriptor struct {
	Kind         MediaKind
	FileID       string
	FileUniqueID string
	FileName     string
	FileSize     int64
	MimeType     string
}

// ExtractDescriptor pulls the media descriptor out of a sent message, trying
// each possible shape in a fixed order; the first non-nil one wins. A message
// with none of them yields ErrNoMediaDescriptor.
func ExtractDescriptor(msg *tgbotapi.Message) (MediaDescriptor, error) {
	if msg == nil {
		return MediaDescriptor{}, ErrNoMediaDescriptor
	}
	switch {
	case msg.Document != nil:
		return MediaDescriptor{
			Kind:         MediaDocument,
			FileID:       msg.Document.FileID,
			FileUniqueID: msg.Document.FileUniqueID,
			FileName:     msg.Document.FileName,
			FileSize:     int64(msg.Document.FileSize),
			MimeType:     msg.Document.MimeType,
		}, nil
	case msg.Video != nil:
		return MediaDescriptor{
			Kind:         MediaVideo,
			FileID:       msg.Video.FileID,
			FileUniqueID: msg.Video.FileUniqueID,
			FileName:     msg.Video.FileName,
			FileSize:     int64(msg.Video.FileSize),
			MimeType:     msg.Video.MimeType,
		}, nil
	case len(msg.Photo) > 0:
		photo := pickLargestPhoto(msg.Photo)
		return MediaDescriptor{
			Kind:         MediaPhoto,
			FileID:       photo.FileID,
			FileUniqueID: photo.FileUniqueID,
			FileSize:     int64(photo.FileSize),
		}, nil
	case msg.Audio != nil:
		return MediaDescriptor{
			Kind:         MediaAudio,
			FileID:       msg.Audio.FileID,
			FileUniqueID: msg.Audio.FileUniqueID,
			FileName:     msg.Audio.FileName,
			FileSize:     int64(msg.Audio.FileSize),
			MimeType:     msg.Audio.MimeType,
		}, nil
	case msg.Animation != nil:
		return MediaDescriptor{
			Kind:         MediaAnimation,
			FileID:       msg.Animation.FileID,
			FileUniqueID: msg.Animation.FileUniqueID,
			FileName:     msg.Animation.FileName,
			FileSize:     int64(msg.Animation.FileSize),
			MimeType:     msg.Animation.MimeType,
		}, nil
	case msg.Voice != nil:
		return MediaDescriptor{
			Kind:         MediaVoice,
			FileID:       msg.Voice.FileID,
			FileUniqueID: msg.Voice.FileUniqueID,
			FileSize:     int64(msg.Voice.FileSize),
			MimeType:     msg.Voice.MimeType,
		}, nil
	case msg.VideoNote != nil:
		return MediaDescriptor{
			Kind:         MediaVideoNote,
			FileID:       msg.VideoNote.FileID,
			FileUniqueID: msg.VideoNote.FileUniqueID,
			FileSize:     int64(msg.VideoNote.FileSize),
		}, nil
	}
	return MediaDescriptor{}, ErrNoMediaDescriptor
}

func pickLargestPhoto(items []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := items[0]
	for _, item := range items[1:] {
		if item.FileSize > best.FileSize {
			best = item
			continue
		}
		if item.Width*item.Height > best.Width*best.Height {
			best = item
		}
	}
	return best
}
