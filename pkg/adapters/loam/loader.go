// Package loam serves machine definitions stored as documents in a Loam
// repository (markdown frontmatter, JSON or YAML files).
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/turingviz/internal/dto"
	"github.com/aretw0/turingviz/pkg/domain"
)

// Loader adapts a Loam typed repository to ports.MachineLoader.
type Loader struct {
	Repo *loam.TypedRepository[dto.MachineMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[dto.MachineMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict repository at dir and wraps it.
func Open(dir string) (*Loader, error) {
	repo, err := loam.Init(dir, loam.WithStrict(true), loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open loam repository %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[dto.MachineMetadata](repo)), nil
}

// Get implements ports.MachineLoader.
// The document body, when present, becomes the description.
func (l *Loader) Get(ctx context.Context, id string) (domain.Definition, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("%w: loam get failed for %s: %w", domain.ErrMachineNotFound, id, err)
	}

	def := doc.Data.ToDefinition()
	rawID := def.ID
	if rawID == "" {
		rawID = doc.ID
	}
	def.ID = trimExtension(rawID)

	if body := strings.TrimSpace(doc.Content); body != "" && def.Description == "" {
		def.Description = body
	}
	return def, nil
}

// List implements ports.MachineLoader.
// IDs are normalized (extensions stripped); two documents resolving to the
// same ID are reported as a collision.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}

	ids := make([]string, 0, len(docs))
	seen := make(map[string]string)
	for _, doc := range docs {
		id := doc.Data.ID
		if id == "" {
			id = doc.ID
		}
		id = trimExtension(id)

		// doc.ID is the path relative to the repository root
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Save writes def as a document. The description becomes the document body.
func (l *Loader) Save(ctx context.Context, def domain.Definition) error {
	meta := dto.FromDefinition(def)
	body := meta.Description
	meta.Description = ""

	err := l.Repo.Save(ctx, &loam.DocumentModel[dto.MachineMetadata]{
		ID:      def.ID,
		Content: body,
		Data:    meta,
	})
	if err != nil {
		return fmt.Errorf("failed to save machine %s: %w", def.ID, err)
	}
	return nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
