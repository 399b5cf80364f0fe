package memories

import "strings"

var extToType = map[string]FileType{}

func init() {
	register := func(t FileType, exts ...string) {
		for _, e := range exts {
			extToType[e] = t
		}
	}
	register(FileTypeImage, "jpg", "jpeg", "png", "gif", "bmp", "webp", "heic", "tiff", "svg")
	register(FileTypeVideo, "mp4", "mov", "mkv", "avi", "webm", "m4v", "mpeg", "3gp", "flv")
	register(FileTypeAudio, "mp3", "wav", "aac", "m4a", "ogg", "oga", "flac", "opus", "m4b", "wma", "aiff")
	register(FileTypeDocument, "pdf", "txt", "doc", "docx", "rtf", "ppt", "pptx", "xls", "xlsx", "csv", "odt", "ods")
}

// DetectFileType maps a file extension to its memory category.
//
// The extension is matched case-insensitively, with or without a leading
// dot. Unknown extensions fall back to FileTypeOther.
func DetectFileType(ext string) FileType {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if t, ok := extToType[ext]; ok {
		return t
	}
	return FileTypeOther
}

// CategoryDir returns the storage directory for a file type, e.g. "images"
// for FileTypeImage. Files of unknown type land in "documents" so they stay
// inside one of the pre-created profile namespaces.
func CategoryDir(t FileType) string {
	switch t {
	case FileTypeImage:
		return "images"
	case FileTypeVideo:
		return "videos"
	case FileTypeAudio:
		return "audios"
	default:
		return "documents"
	}
}
