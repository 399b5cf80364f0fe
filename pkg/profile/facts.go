package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/evermem/evermem-go/pkg/blobstore"
	"github.com/evermem/evermem-go/pkg/core"
)

// Facts loads the user facts stored for a profile.
//
// An absent document is the empty state and returns an empty map. A document
// that cannot be decoded returns core.ErrCorruptDocument: facts feed the
// prompt directly and must not be silently fabricated.
func (s *Store) Facts(ctx context.Context, profileID string) (map[string]string, error) {
	data, err := s.blobs.Get(ctx, FactsPath(profileID))
	if errors.Is(err, blobstore.ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, core.NewCompanionError("GetUserFacts", err)
	}

	facts := map[string]string{}
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, core.NewCompanionError("GetUserFacts", fmt.Errorf("%w: %s", core.ErrCorruptDocument, FactsPath(profileID)))
	}
	return facts, nil
}

// SaveFact upserts one user fact for a profile, last write wins per key.
//
// The facts document is created on first write. The full document is read,
// mutated and written back; concurrent writers to the same profile race
// with last-writer-wins semantics, same as the conversation log.
func (s *Store) SaveFact(ctx context.Context, profileID, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return core.NewCompanionError("SaveUserFact", fmt.Errorf("%w: fact key is required", core.ErrInvalidInput))
	}

	facts, err := s.Facts(ctx, profileID)
	if err != nil {
		return err
	}
	facts[key] = value

	doc, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return core.NewCompanionError("SaveUserFact", err)
	}
	if err := s.blobs.Put(ctx, FactsPath(profileID), doc); err != nil {
		return core.NewCompanionError("SaveUserFact", err)
	}
	return nil
}
