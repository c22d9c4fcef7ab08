package ingest

import (
	"fmt"
	"strings"

	"github.com/unishare/unishare/internal/documents"
)

// Reply copy is Vietnamese, matching the product's audience.
const (
	replyWelcome = "🎓 Chào mừng đến với UniShare Bot!\n\n" +
		"📚 Gửi tài liệu (PDF, DOCX, PPT, v.v.) để chia sẻ với sinh viên khác\n" +
		"🏫 Sử dụng caption để ghi chú: trường - ngành - mô tả\n\n" +
		"Ví dụ caption: 'HCMUS - CNTT - Bài giảng Thuật toán'\n\n" +
		"Lệnh:\n" +
		"/get <file_id> - Lấy link tải file\n" +
		"/myfiles - Xem file của bạn\n" +
		"/delete <doc_id> - Xóa tài liệu\n" +
		"/help - Hướng dẫn"

	replyHelp = "🤖 UniShare Bot - Hướng dẫn sử dụng:\n\n" +
		"📤 Upload tài liệu:\n" +
		"   Gửi file trực tiếp với caption định dạng:\n" +
		"   'Tên trường - Ngành học - Mô tả'\n\n" +
		"🔍 Các lệnh:\n" +
		"   /start - Bắt đầu\n" +
		"   /get <file_id> - Lấy link tải file\n" +
		"   /myfiles - Xem file của bạn\n" +
		"   /delete <doc_id> - Xóa tài liệu\n" +
		"   /help - Hướng dẫn\n\n" +
		"💡 Truy cập website để tìm kiếm tài liệu!"

	replyGetUsage      = "❌ Sử dụng: /get <file_id>"
	replyDeleteUsage   = "❌ Sử dụng: /delete <doc_id>"
	replyFileGone      = "❌ File không tồn tại hoặc đã hết hạn trên Telegram."
	replyFileFetchFail = "❌ Không thể lấy link tải file, vui lòng thử lại sau."
	replyStoreError    = "❌ Lỗi lưu tài liệu vào database!"
	replyQueryError    = "❌ Lỗi truy vấn database!"
	replyDeleteError   = "❌ Lỗi xóa tài liệu!"
	replyDeleted       = "✅ Tài liệu đã được xóa thành công!"
	replyNoFiles       = "📂 Bạn chưa upload tài liệu nào."
	replyUnexpected    = "❌ Có lỗi xảy ra khi xử lý tài liệu!"
)

func formatStoredReply(doc documents.Document) string {
	school := doc.School
	if school == "" {
		school = "Chưa xác định"
	}
	major := doc.Major
	if major == "" {
		major = "Chưa xác định"
	}
	return fmt.Sprintf(
		"✅ Tài liệu đã được lưu thành công!\n\n"+
			"📁 File: %s\n"+
			"📊 Kích thước: %.2f MB\n"+
			"🏫 Trường: %s\n"+
			"🎓 Ngành: %s\n"+
			"🆔 ID: %s\n\n"+
			"💡 Truy cập website để tìm kiếm và tải tài liệu!",
		doc.FileName,
		float64(doc.FileSize)/1024/1024,
		school,
		major,
		doc.ID,
	)
}

func formatDownloadReply(url, fileName string) string {
	if fileName != "" {
		return fmt.Sprintf("📥 %s\nLink tải: %s", fileName, url)
	}
	return "📥 Link tải: " + url
}

func formatFileListReply(docs []documents.Document) string {
	var sb strings.Builder
	sb.WriteString("📚 Tài liệu của bạn:\n\n")
	for i, doc := range docs {
		school := doc.School
		if school == "" {
			school = "N/A"
		}
		major := doc.Major
		if major == "" {
			major = "N/A"
		}
		shortID := doc.ID
		if len(shortID) > 8 {
			shortID = shortID[:8] + "..."
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, doc.FileName))
		sb.WriteString(fmt.Sprintf("   🏫 %s - 🎓 %s\n", school, major))
		sb.WriteString(fmt.Sprintf("   📅 %s | 🆔 %s\n\n", doc.CreatedAt.Format("02/01/2006"), shortID))
	}
	return strings.TrimRight(sb.String(), "\n")
}
