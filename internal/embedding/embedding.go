// Package embedding provides a pluggable interface for text embedding providers.
package embedding

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// Embedder generates embedding vectors from text.
type Embedder interface {
	Embed(text string) (Vector, error)
	Dims() int
}

// Cosine computes cosine similarity between two vectors.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// --- Local Provider ---

// Local is a deterministic hash-based embedder. Vectors are L2-normalized
// but carry no semantic meaning — it exists so the retrieval pipeline works
// offline and in tests without an embedding service.
type Local struct {
	dims int
}

// NewLocal creates a local embedder. Defaults to 128 dimensions.
func NewLocal(dims int) *Local {
	if dims <= 0 {
		dims = 128
	}
	return &Local{dims: dims}
}

func (l *Local) Embed(text string) (Vector, error) {
	// Chain SHA-256 blocks until we have dims uint32 words.
	need := l.dims * 4
	buf := make([]byte, 0, need+sha256.Size)
	block := sha256.Sum256([]byte(text))
	for len(buf) < need {
		buf = append(buf, block[:]...)
		block = sha256.Sum256(block[:])
	}

	vec := make(Vector, l.dims)
	var norm float64
	for i := 0; i < l.dims; i++ {
		v := float32(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
		vec[i] = v
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec, nil
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func (l *Local) Dims() int { return l.dims }

// --- Ollama Provider ---

// Ollama uses a local Ollama instance for embeddings.
type Ollama struct {
	baseURL string
	model   string
	dims    int
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllama creates an embedder using Ollama's API. An empty baseURL
// falls back to OLLAMA_HOST, then localhost.
// Default model: nomic-embed-text (768 dims), all-minilm (384 dims).
func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	dims := 768 // default for nomic-embed-text
	if model == "all-minilm" {
		dims = 384
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		dims:    dims,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *Ollama) Embed(text string) (Vector, error) {
	body, _ := json.Marshal(ollamaRequest{Model: e.model, Prompt: text})
	req, err := http.NewRequest("POST", e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(b))
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Embedding, nil
}

func (e *Ollama) Dims() int { return e.dims }
