// Package embedding turns frame and section text into the f32 vectors
// internal/vec indexes. An Embedder is a thin client over one provider
// (a local ollama server or the OpenAI API); the capsule never embeds
// anything itself, it only ever calls an Embedder with a batch of
// document text and stores what comes back.
package embedding

// Embedder produces vector embeddings from text. Implementations must
// return one vector per input string, in the same order, all of the
// same dimension reported by Dims.
type Embedder interface {
	Embed(texts []string) ([][]float32, error)
	Dims() int
	Name() string // cache/segment key, e.g. "openai-3small-512"
}
