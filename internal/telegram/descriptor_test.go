package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDescriptorDocument(t *testing.T) {
	msg := &tgbotapi.Message{
		Document: &tgbotapi.Document{
			FileID:       "doc-1",
			FileUniqueID: "uniq-1",
			FileName:     "notes.pdf",
			FileSize:     2 * 1024 * 1024,
			MimeType:     "application/pdf",
		},
	}
	desc, err := ExtractDescriptor(msg)
	require.NoError(t, err)
	assert.Equal(t, MediaDocument, desc.Kind)
	assert.Equal(t, "doc-1", desc.FileID)
	assert.Equal(t, "uniq-1", desc.FileUniqueID)
	assert.Equal(t, "notes.pdf", desc.FileName)
	assert.Equal(t, int64(2*1024*1024), desc.FileSize)
	assert.Equal(t, "application/pdf", desc.MimeType)
}

func TestExtractDescriptorFirstShapeWins(t *testing.T) {
	msg := &tgbotapi.Message{
		Document: &tgbotapi.Document{FileID: "doc-1"},
		Video:    &tgbotapi.Video{FileID: "vid-1"},
	}
	desc, err := ExtractDescriptor(msg)
	require.NoError(t, err)
	assert.Equal(t, MediaDocument, desc.Kind)
	assert.Equal(t, "doc-1", desc.FileID)
}

func TestExtractDescriptorPicksLargestPhoto(t *testing.T) {
	msg := &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", FileSize: 100, Width: 90, Height: 90},
			{FileID: "large", FileSize: 9000, Width: 800, Height: 600},
			{FileID: "medium", FileSize: 1000, Width: 320, Height: 240},
		},
	}
	desc, err := ExtractDescriptor(msg)
	require.NoError(t, err)
	assert.Equal(t, MediaPhoto, desc.Kind)
	assert.Equal(t, "large", desc.FileID)
}

func TestExtractDescriptorPerKind(t *testing.T) {
	tests := []struct {
		name string
		msg  *tgbotapi.Message
		kind MediaKind
	}{
		{"video", &tgbotapi.Message{Video: &tgbotapi.Video{FileID: "v"}}, MediaVideo},
		{"audio", &tgbotapi.Message{Audio: &tgbotapi.Audio{FileID: "a"}}, MediaAudio},
		{"animation", &tgbotapi.Message{Animation: &tgbotapi.Animation{FileID: "g"}}, MediaAnimation},
		{"voice", &tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "vo"}}, MediaVoice},
		{"video note", &tgbotapi.Message{VideoNote: &tgbotapi.VideoNote{FileID: "vn"}}, MediaVideoNote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := ExtractDescriptor(tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, desc.Kind)
			assert.NotEmpty(t, desc.FileID)
		})
	}
}

func TestExtractDescriptorMissing(t *testing.T) {
	_, err := ExtractDescriptor(&tgbotapi.Message{Text: "no media here"})
	assert.ErrorIs(t, err, ErrNoMediaDescriptor)

	_, err = ExtractDescriptor(nil)
	assert.ErrorIs(t, err, ErrNoMediaDescriptor)
}
