package memories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/evermem/evermem-go/pkg/blobstore"
	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/profile"
)

// Index enumerates and stores per-profile memory metadata.
type Index struct {
	blobs blobstore.Store
}

// NewIndex creates a memory index backed by the given blob store.
func NewIndex(blobs blobstore.Store) *Index {
	return &Index{blobs: blobs}
}

// metadataPrefix returns the blob prefix holding a profile's metadata docs.
func metadataPrefix(profileID string) string {
	return profile.Root(profileID) + "metadata/"
}

// newMemoryID generates a fresh memory identifier: "mem_" + 8 hex chars.
func newMemoryID() string {
	return "mem_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// List returns every memory record stored for a profile.
//
// Malformed metadata documents are skipped with a warning rather than
// failing the whole listing; a single corrupt upload must not hide the
// rest of the collection.
func (i *Index) List(ctx context.Context, profileID string) ([]*Record, error) {
	paths, err := i.blobs.List(ctx, metadataPrefix(profileID))
	if err != nil {
		return nil, core.NewCompanionError("ListMemories", err)
	}

	var records []*Record
	for _, path := range paths {
		if !strings.HasSuffix(path, ".json") {
			continue
		}
		data, err := i.blobs.Get(ctx, path)
		if err != nil {
			log.WithField("path", path).Warnf("skipping unreadable memory metadata: %v", err)
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			log.WithField("path", path).Warnf("skipping malformed memory metadata: %v", err)
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}

// Upload stores a memory file and its metadata document.
//
// The file type is detected from the filename extension and decides the
// category directory. Exactly one metadata document is written per file,
// sharing the generated memory ID.
//
// Parameters:
//   - ctx: Context for cancellation
//   - profileID: Owning profile
//   - filename: Original filename, used for extension detection
//   - content: File bytes
//   - rec: Caller-supplied metadata (title, description, tags, emotion,
//     collection, favorite flag); identity and file fields are overwritten
//
// Returns the stored record, or an error if validation or storage fails.
func (i *Index) Upload(ctx context.Context, profileID, filename string, content []byte, rec Record) (*Record, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return nil, core.NewCompanionError("UploadMemory", fmt.Errorf("%w: title is required", core.ErrInvalidInput))
	}

	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = filename[idx+1:]
	}
	fileType := DetectFileType(ext)

	rec.MemoryID = newMemoryID()
	rec.ProfileID = profileID
	rec.FileType = fileType
	rec.UploadDate = time.Now().UTC().Format(time.RFC3339)
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	fileName := rec.MemoryID
	if ext != "" {
		fileName += "." + strings.ToLower(ext)
	}
	rec.FilePath = profile.Root(profileID) + CategoryDir(fileType) + "/" + fileName

	if err := i.blobs.Put(ctx, rec.FilePath, content); err != nil {
		return nil, core.NewCompanionError("UploadMemory", err)
	}

	doc, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, core.NewCompanionError("UploadMemory", err)
	}
	if err := i.blobs.Put(ctx, metadataPrefix(profileID)+rec.MemoryID+".json", doc); err != nil {
		return nil, core.NewCompanionError("UploadMemory", err)
	}

	log.WithFields(log.Fields{"profile_id": profileID, "memory_id": rec.MemoryID}).Info("memory uploaded")
	return &rec, nil
}

// Summaries returns title/description pairs for a profile's memories,
// sorted by upload date descending so the most recent memory comes first.
func (i *Index) Summaries(ctx context.Context, profileID string) ([]Summary, error) {
	records, err := i.List(ctx, profileID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].UploadDate > records[b].UploadDate
	})

	summaries := make([]Summary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, Summary{Title: rec.Title, Description: rec.Description})
	}
	return summaries, nil
}

// LatestSummary returns a one-line summary of the most recent memory,
// or "No past memories found." when the profile has none.
func (i *Index) LatestSummary(ctx context.Context, profileID string) (string, error) {
	summaries, err := i.Summaries(ctx, profileID)
	if err != nil {
		return "", err
	}
	if len(summaries) == 0 {
		return "No past memories found.", nil
	}
	return summaries[0].Title + ": " + summaries[0].Description, nil
}
