package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- OpenAI adapter (mock) ---

func TestOpenAIEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("openai: want POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("openai: want Bearer test-key, got %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("openai: want application/json, got %s", got)
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("openai: decode request: %v", err)
		}
		if req.Model != openAIModel {
			t.Errorf("openai: want model %s, got %s", openAIModel, req.Model)
		}
		if req.Dimensions != openAIDims {
			t.Errorf("openai: want dims %d, got %d", openAIDims, req.Dimensions)
		}
		if len(req.Input) != 2 {
			t.Errorf("openai: want 2 inputs, got %d", len(req.Input))
		}

		// Return out of order to test index sorting
		resp := openAIResponse{
			Data: []openAIEmbedding{
				{Index: 1, Embedding: make([]float32, openAIDims)},
				{Index: 0, Embedding: make([]float32, openAIDims)},
			},
		}
		resp.Data[0].Embedding[0] = 0.2 // index 1
		resp.Data[1].Embedding[0] = 0.1 // index 0
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	o := NewOpenAI("test-key")
	o.client = srv.Client()
	// Override endpoint by replacing the client transport
	o.client.Transport = rewriteTransport{base: srv.Client().Transport, url: srv.URL}

	vecs, err := o.Embed([]string{"hello", "world"})
	if err != nil {
		t.Fatalf("openai embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("openai: want 2 vecs, got %d", len(vecs))
	}
	// After sorting by index: vecs[0] should have 0.1, vecs[1] should have 0.2
	if vecs[0][0] != 0.1 {
		t.Errorf("openai: vecs[0][0] want 0.1, got %f", vecs[0][0])
	}
	if vecs[1][0] != 0.2 {
		t.Errorf("openai: vecs[1][0] want 0.2, got %f", vecs[1][0])
	}
}

func TestOpenAIEmbedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	o := NewOpenAI("test-key")
	o.client = srv.Client()
	o.client.Transport = rewriteTransport{base: srv.Client().Transport, url: srv.URL}

	_, err := o.Embed([]string{"hello"})
	if err == nil {
		t.Fatal("openai: expected error on 429")
	}
}

// --- Ollama adapter (mock) ---

func TestOllamaEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("ollama: want POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/embed" {
			t.Errorf("ollama: want /api/embed, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("ollama: decode request: %v", err)
		}
		if req.Model != ollamaDefaultModel {
			t.Errorf("ollama: want model %s, got %s", ollamaDefaultModel, req.Model)
		}
		if len(req.Input) != 1 {
			t.Errorf("ollama: want 1 input, got %d", len(req.Input))
		}

		// Return 768-dim vector to test truncation
		vec := make([]float32, 768)
		vec[0] = 0.5
		vec[511] = 0.9
		vec[512] = 0.99 // should be truncated
		resp := ollamaResponse{Embeddings: [][]float32{vec}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	o := NewOllama("", srv.URL)
	vecs, err := o.Embed([]string{"hello"})
	if err != nil {
		t.Fatalf("ollama embed: %v", err)
	}
	if len(vecs) != 1 {
		t.Fatalf("ollama: want 1 vec, got %d", len(vecs))
	}
	if len(vecs[0]) != ollamaDims {
		t.Fatalf("ollama: want %d dims, got %d", ollamaDims, len(vecs[0]))
	}
	if vecs[0][0] != 0.5 {
		t.Errorf("ollama: vecs[0][0] want 0.5, got %f", vecs[0][0])
	}
	if vecs[0][511] != 0.9 {
		t.Errorf("ollama: vecs[0][511] want 0.9, got %f", vecs[0][511])
	}
}

func TestOllamaEmbedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`model not found`))
	}))
	defer srv.Close()

	o := NewOllama("bad-model", srv.URL)
	_, err := o.Embed([]string{"hello"})
	if err == nil {
		t.Fatal("ollama: expected error on 500")
	}
}

// --- NewFromProvider ---

func TestNewFromProviderOpenAIRequiresKey(t *testing.T) {
	if _, err := NewFromProvider("openai", "", "", ""); err == nil {
		t.Fatal("openai provider without a key: expected error")
	}
}

func TestNewFromProviderOpenAIWithKey(t *testing.T) {
	emb, err := NewFromProvider("openai", "", "", "test-key")
	if err != nil {
		t.Fatalf("openai provider with key: %v", err)
	}
	if emb.Name() != "openai-3small-512" {
		t.Fatalf("openai provider: want openai-3small-512, got %s", emb.Name())
	}
}

func TestNewFromProviderUnknown(t *testing.T) {
	if _, err := NewFromProvider("carrier-pigeon", "", "", ""); err == nil {
		t.Fatal("unknown provider: expected error")
	}
}

// --- helpers ---

// rewriteTransport rewrites all requests to the test server URL.
type rewriteTransport struct {
	base http.RoundTripper
	url  string
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.url[len("http://"):]
	if t.base == nil {
		return http.DefaultTransport.RoundTrip(req)
	}
	return t.base.RoundTrip(req)
}
