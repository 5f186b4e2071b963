package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Dimension is the fixed embedding dimensionality this proxy's
// semantic tier is built around.
const Dimension = 384

// collectionName is the single Qdrant collection backing the semantic
// tier, shared across every namespace this proxy ever serves.
const collectionName = "llm_cache"

// VectorStore is the semantic-match tier: nearest-neighbour lookup over
// a fixed-dimension embedding space under cosine distance. The handle
// wraps a pooled gRPC connection and is safe to share across many
// concurrent request tasks.
type VectorStore struct {
	client *qdrant.Client
}

// NewVectorStore connects to Qdrant at host:port (gRPC) and
// idempotently creates the llm_cache collection with dimension 384
// under cosine distance. A "collection already exists" response is
// not an error — construction must succeed on every run after the
// first, not just the first.
func NewVectorStore(ctx context.Context, host string, port int, apiKey string) (*VectorStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("vector store connect: %w", err)
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     Dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil && !isAlreadyExists(err) {
		return nil, fmt.Errorf("vector store create collection: %w", err)
	}

	return &VectorStore{client: client}, nil
}

// Upsert stores a new point keyed by an arbitrary unique identifier,
// with fingerprint and the serialized response blob as payload.
// Duplicate fingerprints are allowed — nearest-neighbour search
// dominates, not identity, so de-duplication is not required.
func (s *VectorStore) Upsert(ctx context.Context, fingerprint string, embedding []float32, responseBlob []byte) error {
	if len(embedding) != Dimension {
		return fmt.Errorf("vector store upsert: embedding has %d components, want %d", len(embedding), Dimension)
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(uuid.NewString()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"fingerprint": fingerprint,
			"response":    string(responseBlob),
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("vector store upsert: %w", err)
	}
	return nil
}

// Search returns the response blob of the single nearest point to
// embedding if its cosine similarity score is at or above threshold.
// A score below threshold, or an empty collection, is reported as
// ErrNotFound — not an error.
func (s *VectorStore) Search(ctx context.Context, embedding []float32, threshold float32) ([]byte, error) {
	if len(embedding) != Dimension {
		return nil, fmt.Errorf("vector store search: embedding has %d components, want %d", len(embedding), Dimension)
	}

	limit := uint64(1)
	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(embedding...),
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: &threshold,
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("vector store search: %w", err)
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}

	payload := result[0].GetPayload()
	respVal, ok := payload["response"]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(respVal.GetStringValue()), nil
}

// HealthCheck reports whether the collection can currently be queried.
func (s *VectorStore) HealthCheck(ctx context.Context) bool {
	_, err := s.client.GetCollectionInfo(ctx, collectionName)
	return err == nil
}

// Close releases the underlying gRPC connection. Call once at shutdown.
func (s *VectorStore) Close() error {
	return s.client.Close()
}

func isAlreadyExists(err error) bool {
	// The Qdrant gRPC API reports a pre-existing collection as an
	// AlreadyExists status; the client surfaces it as a plain error,
	// so fall back to a substring match rather than a gRPC status
	// type assertion that would couple this package to grpc/codes.
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "AlreadyExists")
}
