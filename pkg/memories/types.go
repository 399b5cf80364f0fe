// Package memories manages per-profile memory uploads and their metadata.
//
// Every uploaded file gets exactly one metadata document, co-located by a
// shared memory ID: the file lives under profiles/{id}/{category}/ and its
// metadata under profiles/{id}/metadata/{memory_id}.json.
package memories

// FileType is the category of an uploaded memory file.
type FileType string

// Supported file types.
const (
	FileTypeImage    FileType = "image"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeDocument FileType = "document"
	FileTypeOther    FileType = "other"
)

// Record is the metadata describing one uploaded memory.
type Record struct {
	// MemoryID is the unique identifier, "mem_" followed by 8 hex chars.
	MemoryID string `json:"memory_id"`

	// ProfileID is the owning profile.
	ProfileID string `json:"profile_id"`

	// Title is a short label for the memory.
	Title string `json:"title"`

	// Description is free text describing the memory.
	Description string `json:"description"`

	// FileType is the category of the uploaded file.
	FileType FileType `json:"file_type"`

	// FilePath is the blob path of the uploaded file.
	FilePath string `json:"file_path"`

	// UploadDate is the ISO-8601 upload timestamp.
	UploadDate string `json:"upload_date"`

	// Tags are free-form labels attached to the memory.
	Tags []string `json:"tags"`

	// Emotion is the primary emotion associated with the memory.
	Emotion string `json:"emotion"`

	// Collection is a free-text grouping label.
	Collection string `json:"collection"`

	// IsFavorite marks the memory as a favorite.
	IsFavorite bool `json:"is_favorite"`
}

// Summary is the title/description pair fed to the prompt assembler.
type Summary struct {
	Title       string
	Description string
}
