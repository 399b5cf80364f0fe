// Package profile manages persona profiles and per-profile user facts.
//
// A profile is the persona the companion speaks as (name, relation,
// personality, style), persisted as profiles/{id}/profile.json in the blob
// store. User facts are durable key-value data about the real end user,
// persisted alongside as user_facts.json.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/evermem/evermem-go/pkg/blobstore"
	"github.com/evermem/evermem-go/pkg/core"
)

// Profile describes a persona the companion replies as.
type Profile struct {
	// ID is the storage identity, derived from name and relation.
	ID string `json:"id"`

	// Name is the persona's name.
	Name string `json:"name"`

	// Relation is the persona's relation to the user (e.g. "Mother").
	Relation string `json:"relation"`

	// Personality is free text describing how the persona behaves.
	Personality string `json:"personality,omitempty"`

	// Style is free text describing how the persona speaks.
	Style string `json:"style,omitempty"`

	// SignaturePhrases lists expressions the persona habitually uses.
	SignaturePhrases string `json:"signature_phrases,omitempty"`

	// Birthday is the persona's birthday, free text.
	Birthday string `json:"birthday,omitempty"`

	// Favorites is free text describing the persona's favorite things.
	Favorites string `json:"favorites,omitempty"`

	// Opinions is free text describing opinions the persona holds.
	Opinions string `json:"opinions,omitempty"`
}

// categories are the sub-namespaces pre-created for every new profile.
var categories = []string{"images", "videos", "audios", "documents", "metadata"}

// DeriveID derives the storage identity for a name/relation pair.
//
// The ID is "<name>_<relation>" lowercased with spaces replaced by
// underscores, so ("Asha", "Mother") becomes "asha_mother". Derivation is
// deterministic: the same inputs always map to the same ID.
func DeriveID(name, relation string) string {
	id := strings.ToLower(strings.TrimSpace(name)) + "_" + strings.ToLower(strings.TrimSpace(relation))
	return strings.ReplaceAll(id, " ", "_")
}

// Root returns the blob path prefix owning every object of a profile.
func Root(profileID string) string {
	return "profiles/" + profileID + "/"
}

// DocPath returns the blob path of the profile document.
func DocPath(profileID string) string {
	return Root(profileID) + "profile.json"
}

// FactsPath returns the blob path of the user-facts document.
func FactsPath(profileID string) string {
	return Root(profileID) + "user_facts.json"
}

// Store provides CRUD over profiles and user facts.
//
// The blob store is the sole source of truth: every operation re-reads
// current storage state rather than caching across requests.
type Store struct {
	blobs blobstore.Store
}

// NewStore creates a profile store backed by the given blob store.
func NewStore(blobs blobstore.Store) *Store {
	return &Store{blobs: blobs}
}

// Create creates a new profile.
//
// The profile ID is derived from name and relation. Creation pre-creates
// empty .init markers for each media category and writes profile.json.
// Creating an ID that already exists is rejected with core.ErrProfileExists
// and does not alter the stored document.
//
// Parameters:
//   - ctx: Context for cancellation
//   - p: Profile to create; ID is overwritten with the derived value
//
// Returns the created profile, or an error if validation or storage fails.
func (s *Store) Create(ctx context.Context, p Profile) (*Profile, error) {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Relation) == "" {
		return nil, core.NewCompanionError("CreateProfile", fmt.Errorf("%w: name and relation are required", core.ErrInvalidInput))
	}

	p.ID = DeriveID(p.Name, p.Relation)
	p.Name = strings.TrimSpace(p.Name)
	p.Relation = strings.TrimSpace(p.Relation)

	exists, err := s.blobs.Exists(ctx, DocPath(p.ID))
	if err != nil {
		return nil, core.NewCompanionError("CreateProfile", err)
	}
	if exists {
		return nil, core.NewCompanionError("CreateProfile", core.ErrProfileExists)
	}

	// Pre-create category namespaces with empty marker blobs.
	for _, category := range categories {
		if err := s.blobs.Put(ctx, Root(p.ID)+category+"/.init", []byte{}); err != nil {
			return nil, core.NewCompanionError("CreateProfile", err)
		}
	}

	doc, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, core.NewCompanionError("CreateProfile", err)
	}
	if err := s.blobs.Put(ctx, DocPath(p.ID), doc); err != nil {
		return nil, core.NewCompanionError("CreateProfile", err)
	}

	log.WithField("profile_id", p.ID).Info("profile created")
	return &p, nil
}

// Get loads a profile document.
//
// Returns core.ErrProfileNotFound when the profile does not exist and
// core.ErrCorruptDocument when the stored document cannot be decoded;
// fabricating persona data silently would be worse than failing.
func (s *Store) Get(ctx context.Context, profileID string) (*Profile, error) {
	data, err := s.blobs.Get(ctx, DocPath(profileID))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, core.NewCompanionError("GetProfile", core.ErrProfileNotFound)
	}
	if err != nil {
		return nil, core.NewCompanionError("GetProfile", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, core.NewCompanionError("GetProfile", fmt.Errorf("%w: %s", core.ErrCorruptDocument, DocPath(profileID)))
	}
	if p.ID == "" {
		p.ID = profileID
	}
	return &p, nil
}

// Exists reports whether a profile document exists.
func (s *Store) Exists(ctx context.Context, profileID string) (bool, error) {
	return s.blobs.Exists(ctx, DocPath(profileID))
}

// List returns every stored profile.
//
// Malformed profile documents are skipped with a warning so one corrupt
// entry cannot hide the rest of the listing.
func (s *Store) List(ctx context.Context) ([]*Profile, error) {
	paths, err := s.blobs.List(ctx, "profiles/")
	if err != nil {
		return nil, core.NewCompanionError("ListProfiles", err)
	}

	var profiles []*Profile
	for _, path := range paths {
		parts := strings.Split(path, "/")
		if len(parts) != 3 || parts[2] != "profile.json" {
			continue
		}
		p, err := s.Get(ctx, parts[1])
		if err != nil {
			log.WithField("path", path).Warnf("skipping unreadable profile: %v", err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Delete removes a profile and all of its data: memories, metadata,
// conversations, facts and the profile document itself.
//
// Returns core.ErrProfileNotFound when the profile does not exist.
func (s *Store) Delete(ctx context.Context, profileID string) error {
	exists, err := s.Exists(ctx, profileID)
	if err != nil {
		return core.NewCompanionError("DeleteProfile", err)
	}
	if !exists {
		return core.NewCompanionError("DeleteProfile", core.ErrProfileNotFound)
	}

	if err := s.blobs.DeleteAll(ctx, Root(profileID)); err != nil {
		return core.NewCompanionError("DeleteProfile", err)
	}

	log.WithField("profile_id", profileID).Info("profile deleted")
	return nil
}
