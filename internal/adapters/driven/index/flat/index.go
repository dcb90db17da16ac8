// Package flat provides an exact nearest-neighbour vector index: unit
// vectors in parallel slices, scanned in full per query. Exact search
// stays fast well past the corpus sizes a single division produces, and
// needs no native dependencies.
package flat

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File format constants.
const (
	fileMagic   = "DFVI"
	fileVersion = 1
)

// DefaultFilename is the index file name inside the data directory.
const DefaultFilename = "vectors.bin"

// Config holds configuration for the flat index.
type Config struct {
	// Path is the index file location (required).
	Path string

	// Dimensions is the vector size; every Add must match (required).
	Dimensions int

	// Chunks hydrates chunk payloads on Load. May be nil for a purely
	// in-memory index.
	Chunks driven.ChunkStore
}

// Index is a flat cosine index guarded by a RWMutex: searches share a
// read lock, writes are exclusive.
type Index struct {
	mu         sync.RWMutex
	path       string
	dimensions int
	store      driven.ChunkStore

	ids     []string
	vectors [][]float32
	chunks  map[string]domain.Chunk
	dirty   bool
}

// NewIndex creates a flat index. Call Load to restore persisted state.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("flat: index path is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("flat: dimensions must be positive")
	}
	return &Index{
		path:       cfg.Path,
		dimensions: cfg.Dimensions,
		store:      cfg.Chunks,
		chunks:     make(map[string]domain.Chunk),
	}, nil
}

// Add inserts a vector and its chunk payload. Re-adding a chunk id
// replaces the previous vector.
func (x *Index) Add(_ context.Context, chunk domain.Chunk, embedding []float32) error {
	if len(embedding) != x.dimensions {
		return fmt.Errorf("%w: got %d, index expects %d",
			domain.ErrDimensionMismatch, len(embedding), x.dimensions)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.chunks[chunk.ID]; exists {
		for i, id := range x.ids {
			if id == chunk.ID {
				x.vectors[i] = embedding
				break
			}
		}
	} else {
		x.ids = append(x.ids, chunk.ID)
		x.vectors = append(x.vectors, embedding)
	}
	x.chunks[chunk.ID] = chunk
	x.dirty = true
	return nil
}

// Search returns the k nearest chunks by descending cosine similarity.
// No threshold is applied; filtering is the caller's responsibility.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: got %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), x.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(x.ids))
	for i, id := range x.ids {
		hits = append(hits, driven.VectorHit{
			Chunk:      x.chunks[id],
			Similarity: dot(query, x.vectors[i]),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteDocument removes every chunk belonging to the document and
// returns the number removed.
func (x *Index) DeleteDocument(_ context.Context, documentID string) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	var (
		keptIDs     []string
		keptVectors [][]float32
		removed     int
	)
	for i, id := range x.ids {
		if x.chunks[id].DocumentID == documentID {
			delete(x.chunks, id)
			removed++
			continue
		}
		keptIDs = append(keptIDs, id)
		keptVectors = append(keptVectors, x.vectors[i])
	}
	if removed > 0 {
		x.ids = keptIDs
		x.vectors = keptVectors
		x.dirty = true
	}
	return removed, nil
}

// Stats reports corpus totals.
func (x *Index) Stats(_ context.Context) (domain.IndexStats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	docs := make(map[string]struct{})
	for _, chunk := range x.chunks {
		docs[chunk.DocumentID] = struct{}{}
	}
	return domain.IndexStats{
		Chunks:     len(x.ids),
		Documents:  len(docs),
		Dimensions: x.dimensions,
	}, nil
}

// Save persists vectors to the index file. Chunk payloads live in the
// chunk store, so only ids and vectors go to disk.
func (x *Index) Save() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(x.path), 0o700); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	tmp := x.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}

	if err := x.write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp, x.path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}

	x.dirty = false
	logger.Debug("Index saved: %d vectors to %s", len(x.ids), x.path)
	return nil
}

func (x *Index) write(w io.Writer) error {
	if _, err := w.Write([]byte(fileMagic)); err != nil {
		return err
	}
	header := []any{
		uint16(fileVersion),
		uint32(x.dimensions),
		uint32(len(x.ids)),
	}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	for i, id := range x.ids {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(id))); err != nil {
			return err
		}
		if _, err := w.Write([]byte(id)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, x.vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

// Load restores vectors from the index file and hydrates chunk payloads
// from the chunk store. A missing file starts an empty index; an
// unreadable or garbled file is domain.ErrIndexCorrupt.
func (x *Index) Load(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := os.Open(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	ids, vectors, err := x.read(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrIndexCorrupt, x.path, err)
	}

	chunks := make(map[string]domain.Chunk, len(ids))
	if x.store != nil {
		for _, id := range ids {
			chunk, err := x.store.GetChunk(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					logger.Warn("Index: chunk %s has no stored payload", id)
					chunks[id] = domain.Chunk{ID: id}
					continue
				}
				return fmt.Errorf("hydrate chunk %s: %w", id, err)
			}
			chunks[id] = *chunk
		}
	} else {
		for _, id := range ids {
			chunks[id] = domain.Chunk{ID: id}
		}
	}

	x.ids = ids
	x.vectors = vectors
	x.chunks = chunks
	x.dirty = false
	logger.Debug("Index loaded: %d vectors from %s", len(ids), x.path)
	return nil
}

func (x *Index) read(r io.Reader) ([]string, [][]float32, error) {
	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != fileMagic {
		return nil, nil, fmt.Errorf("bad magic %q", magic)
	}

	var (
		version uint16
		dims    uint32
		count   uint32
	)
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("read version: %w", err)
	}
	if version != fileVersion {
		return nil, nil, fmt.Errorf("unsupported version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, nil, fmt.Errorf("read dimensions: %w", err)
	}
	if int(dims) != x.dimensions {
		return nil, nil, fmt.Errorf("file dimension %d, index expects %d", dims, x.dimensions)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, nil, fmt.Errorf("read count: %w", err)
	}

	ids := make([]string, 0, count)
	vectors := make([][]float32, 0, count)
	for i := uint32(0); i < count; i++ {
		var idLen uint16
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return nil, nil, fmt.Errorf("read id length: %w", err)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return nil, nil, fmt.Errorf("read id: %w", err)
		}
		vec := make([]float32, dims)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, nil, fmt.Errorf("read vector: %w", err)
		}
		ids = append(ids, string(idBytes))
		vectors = append(vectors, vec)
	}
	return ids, vectors, nil
}

// Close persists pending changes.
func (x *Index) Close() error {
	return x.Save()
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
