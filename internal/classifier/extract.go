package classifier

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/email-classifier/internal/domain"
	"github.com/email-classifier/pkg/sanitizer"
	"github.com/gabriel-vasile/mimetype"
)

// allowedTypes maps accepted MIME types and extensions to a file type.
var (
	allowedTypes = map[string]domain.FileType{
		string(domain.FileTypeText): domain.FileTypeText,
		string(domain.FileTypePDF):  domain.FileTypePDF,
	}
	allowedExtensions = map[string]domain.FileType{
		".txt": domain.FileTypeText,
		".pdf": domain.FileTypePDF,
	}
)

// DetectType sniffs the MIME type of file content. It is used when the
// caller did not declare one, e.g. for local files.
func DetectType(data []byte) string {
	return mimetype.Detect(data).String()
}

// NewFile builds a File from raw bytes, sniffing its type when declaredType
// is empty.
func NewFile(name, declaredType string, data []byte) *domain.File {
	if declaredType == "" {
		declaredType = DetectType(data)
	}
	return &domain.File{
		Name:         name,
		DeclaredType: declaredType,
		Size:         int64(len(data)),
		Data:         data,
	}
}

// classifyFileType returns the accepted type of f. The declared type wins
// over the extension; either one being acceptable is enough.
func classifyFileType(f *domain.File) (domain.FileType, bool) {
	if base, _, err := mime.ParseMediaType(f.DeclaredType); err == nil {
		if ft, ok := allowedTypes[strings.ToLower(base)]; ok {
			return ft, true
		}
	}
	ft, ok := allowedExtensions[strings.ToLower(filepath.Ext(f.Name))]
	return ft, ok
}

// fileSize returns the declared size, falling back to the data length.
func fileSize(f *domain.File) int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}

// ValidateFile checks type and size of f. It never reads the content.
func ValidateFile(f *domain.File, maxSize int64) (domain.FileType, error) {
	if f == nil {
		return "", domain.NewValidationError("file", domain.ErrNoFileSelected)
	}

	ft, ok := classifyFileType(f)
	if !ok {
		return "", domain.NewValidationError("file", domain.ErrUnsupportedFileType)
	}

	size := fileSize(f)
	if size > maxSize {
		return "", domain.NewValidationError("file", domain.ErrFileTooLarge)
	}
	if size == 0 {
		return "", domain.NewValidationError("file", domain.ErrEmptyFile)
	}

	return ft, nil
}

// ValidateText checks that text is non-empty and within maxLen characters.
// text is expected to be trimmed already.
func ValidateText(text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewValidationError("text", domain.ErrEmptyContent)
	}
	if sanitizer.Length(text) > maxLen {
		return domain.NewValidationError("text", domain.ErrContentTooLong)
	}
	return nil
}

// decodeText decodes a plain-text file as UTF-8 and normalizes line endings.
func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.NewValidationError("file", domain.ErrInvalidEncoding)
	}
	return sanitizer.Normalize(strings.TrimPrefix(string(data), "\ufeff")), nil
}

// degradedText reads arbitrary bytes as text, dropping invalid sequences
// and control characters other than line breaks and tabs.
func degradedText(data []byte) string {
	valid := strings.ToValidUTF8(string(data), "")
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, valid)
	return sanitizer.Normalize(cleaned)
}
