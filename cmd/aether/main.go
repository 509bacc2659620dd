// Command aether is a thin smoke-test harness over the capsule core:
// it wires vault, lex, vec, query, retrieval, feedback, and mcp
// together the way an agent loop above the core would, but carries
// none of that loop's engineering weight itself.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aethervault/aether-core/internal/config"
	"github.com/aethervault/aether-core/internal/embedding"
	"github.com/aethervault/aether-core/internal/feedback"
	"github.com/aethervault/aether-core/internal/lex"
	"github.com/aethervault/aether-core/internal/logger"
	"github.com/aethervault/aether-core/internal/mcp"
	"github.com/aethervault/aether-core/internal/query"
	"github.com/aethervault/aether-core/internal/retrieval"
	"github.com/aethervault/aether-core/internal/search"
	"github.com/aethervault/aether-core/internal/vault"
	"github.com/aethervault/aether-core/internal/vec"
)

func main() {
	logCfg := config.Load()
	if err := logger.Init(logCfg.LogLevel, logCfg.LogFormat, logCfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "aether: logger init: %v\n", err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:   "aether",
		Short: "Capsule retrieval smoke-test harness",
	}
	root.AddCommand(putCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(feedbackCmd())
	root.AddCommand(mcpToolsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func putCmd() *cobra.Command {
	var uri, title, track, kind string
	var dedup, compress bool

	cmd := &cobra.Command{
		Use:   "put <capsule> <file>",
		Short: "Append a document frame to a capsule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			capsulePath, filePath := args[0], args[1]
			cfg := config.Load()

			content, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read %s: %w", filePath, err)
			}

			v, err := vault.Open(capsulePath, vault.Options{
				Writable: true,
				HardCap:  cfg.VaultHardCapBytes,
				Logger:   slog.Default(),
			})
			if err != nil {
				return err
			}
			defer v.Close()

			id, err := v.Put(content, vault.PutOptions{
				URI:      uri,
				Title:    title,
				Track:    track,
				Kind:     kind,
				Role:     vault.RoleDocument,
				Dedup:    dedup,
				Compress: compress,
			})
			if err != nil {
				return err
			}
			if err := v.Commit(nil); err != nil {
				return err
			}
			fmt.Printf("frame %d committed (%s)\n", id, uri)
			return nil
		},
	}
	cmd.Flags().StringVar(&uri, "uri", "", "logical URI, e.g. aether://docs/readme")
	cmd.Flags().StringVar(&title, "title", "", "frame title")
	cmd.Flags().StringVar(&track, "track", "", "frame track")
	cmd.Flags().StringVar(&kind, "kind", "", "frame kind")
	cmd.Flags().BoolVar(&dedup, "dedup", true, "skip the append if an identical active frame exists")
	cmd.Flags().BoolVar(&compress, "compress", false, "store the payload zstd-compressed")
	cmd.MarkFlagRequired("uri")
	return cmd
}

func queryCmd() *cobra.Command {
	var collection string
	var limit int
	var noExpand, noVector bool
	var embedProvider, embedModel, embedBaseURL string
	var feedbackWeight float64
	var feedbackDB string

	cmd := &cobra.Command{
		Use:   "query <capsule> <query text...>",
		Short: "Run the retrieval pipeline against a capsule",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			capsulePath := args[0]
			rawQuery := joinArgs(args[1:])
			cfg := config.Load()

			if embedProvider == "" {
				embedProvider = cfg.EmbeddingProvider
			}
			if embedModel == "" {
				embedModel = cfg.EmbeddingModel
			}
			if embedBaseURL == "" {
				embedBaseURL = cfg.EmbeddingBaseURL
			}

			v, err := vault.Open(capsulePath, vault.Options{Writable: false})
			if err != nil {
				return err
			}
			defer v.Close()

			docs, records := buildLexCorpus(v)
			lexIndex := lex.NewIndex(docs)
			prober := lexProber{index: lexIndex}

			// An embedder is needed either to build the local vector
			// lane or to query an external vector service with the raw
			// query text; build it once and share it between both.
			var embedder embedding.Embedder
			if !noVector || cfg.ExternalVectorConfigured() {
				embedder, err = embedding.NewFromProvider(embedProvider, embedModel, embedBaseURL, cfg.OpenAIAPIKey)
				if err != nil {
					return fmt.Errorf("build embedder: %w", err)
				}
			}

			var vecIndex vec.Index
			var vecEmbedder retrieval.Embedder
			if embedder != nil {
				vecEmbedder = func(ctx context.Context, text string) ([]float32, error) {
					vs, err := embedder.Embed([]string{text})
					if err != nil {
						return nil, err
					}
					if len(vs) != 1 {
						return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vs))
					}
					return vs[0], nil
				}
			}
			if !noVector && embedder != nil {
				vecIndex, err = buildVecLane(docs, embedder)
				if err != nil {
					return fmt.Errorf("build vector lane: %w", err)
				}
			}

			frameLookup := func(frameID uint64) (uri, title, snippet string, ok bool) {
				f, err := v.FrameByID(frameID)
				if err != nil {
					return "", "", "", false
				}
				return f.URI, f.Title, "", true
			}

			var externalVec retrieval.ExternalVectorLane
			if cfg.ExternalVectorConfigured() {
				host, port, err := parseQdrantURL(cfg.QdrantURL)
				if err != nil {
					return fmt.Errorf("parse qdrant url: %w", err)
				}
				lane, err := retrieval.NewQdrantLane(host, port, cfg.QdrantCollection, vecEmbedder, frameLookup)
				if err != nil {
					return fmt.Errorf("build qdrant lane: %w", err)
				}
				if lane != nil {
					externalVec = lane
				}
			}

			plan, planWarnings, err := query.Build(query.BuildOptions{
				RawQuery:         rawQuery,
				CLICollection:    collection,
				DisableExpansion: noExpand,
				DisableVector:    noVector,
				HasLocalVecIndex: vecIndex != nil,
				Prober:           prober,
			})
			if err != nil {
				return err
			}

			opts := retrieval.Options{
				Plan:        plan,
				Limit:       limit,
				Records:     records,
				LexIndex:    lexIndex,
				VecIndex:    vecIndex,
				Embedder:    vecEmbedder,
				ExternalVec: externalVec,
				FrameLookup: frameLookup,
				RerankMode:  retrieval.RerankNone,
			}

			if feedbackWeight > 0 {
				if feedbackDB == "" {
					feedbackDB = capsulePath + ".feedback.db"
				}
				fs, err := feedback.Open(feedbackDB)
				if err != nil {
					return fmt.Errorf("open feedback store: %w", err)
				}
				defer fs.Close()
				scores, err := fs.LoadAll()
				if err != nil {
					return fmt.Errorf("load feedback: %w", err)
				}
				opts.FeedbackWeight = feedbackWeight
				opts.FeedbackLookup = func(uri string) (float64, bool) {
					s, ok := scores[uri]
					return s, ok
				}
			}

			resp, err := retrieval.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Printf("plan: cleaned=%q scope=%q skipped_expansion=%v lex=%v vec=%v\n",
				plan.CleanedQuery, plan.Scope, plan.SkippedExpansion, plan.LexQueries, plan.VecQueries)
			for _, w := range append(planWarnings, resp.Warnings...) {
				fmt.Printf("warning: %s\n", w)
			}
			for _, c := range resp.Results {
				fmt.Printf("%d. %s  (score=%.4f)  %s\n", c.FinalRank, c.URI, c.FinalScore, c.Snippet)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "restrict to a collection, e.g. docs")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results")
	cmd.Flags().BoolVar(&noExpand, "no-expand", false, "disable query expansion")
	cmd.Flags().BoolVar(&noVector, "no-vector", true, "disable the local vector lane (set false to embed the corpus on the fly)")
	cmd.Flags().StringVar(&embedProvider, "embed-provider", "", "embedder provider: auto, ollama, or openai (default: EMBEDDING_PROVIDER, else auto)")
	cmd.Flags().StringVar(&embedModel, "embed-model", "", "embedder model override")
	cmd.Flags().StringVar(&embedBaseURL, "embed-base-url", "", "embedder base URL override (ollama)")
	cmd.Flags().Float64Var(&feedbackWeight, "feedback-weight", 0, "blend in feedback scores with this weight")
	cmd.Flags().StringVar(&feedbackDB, "feedback-db", "", "feedback store path (default: <capsule>.feedback.db)")
	return cmd
}

func feedbackCmd() *cobra.Command {
	var session, note string

	cmd := &cobra.Command{
		Use:   "feedback <capsule> <uri> <score>",
		Short: "Record a signed feedback event against a URI",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			capsulePath, uri, scoreStr := args[0], args[1], args[2]
			var score float64
			if _, err := fmt.Sscanf(scoreStr, "%g", &score); err != nil {
				return fmt.Errorf("parse score %q: %w", scoreStr, err)
			}
			if session == "" {
				session = uuid.NewString()
			}

			fs, err := feedback.Open(capsulePath + ".feedback.db")
			if err != nil {
				return err
			}
			defer fs.Close()

			return fs.Append(feedback.Event{
				URI:       uri,
				Score:     score,
				Note:      note,
				Session:   session,
				Timestamp: time.Now(),
			})
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session identifier")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	return cmd
}

func mcpToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-tools <servers.yaml>",
		Short: "Spawn every configured MCP sidecar and list discovered tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			servers, err := mcp.LoadServers(args[0])
			if err != nil {
				return err
			}

			reg := mcp.NewRegistry(slog.Default())
			defer reg.Shutdown()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			for _, s := range servers {
				if err := reg.Spawn(ctx, s); err != nil {
					fmt.Printf("spawn %s: %v\n", s.Name, err)
				}
			}
			for _, t := range reg.Tools() {
				fmt.Println(t)
			}
			return nil
		},
	}
}

// lexProber adapts the lexical index to query.Prober for the strong-
// signal probe: top_k=2, 80-char snippets.
type lexProber struct {
	index *lex.Index
}

func (p lexProber) Probe(q, scope string, temporal query.TemporalFilter) ([]query.ProbeScore, error) {
	hits := p.index.Search(q, 2, 80)
	out := make([]query.ProbeScore, 0, len(hits))
	for _, h := range hits {
		out = append(out, query.ProbeScore{Score: float64(h.Score)})
	}
	return out, nil
}

// buildLexCorpus reads every active document/chunk frame from v and
// builds the in-memory lexical index corpus plus the field-filter
// record set the query planner's probe and the lex lane both need.
// Rebuilding from ActiveFrames on every call keeps the index trivially
// consistent with the capsule; a long-lived process would instead
// extend it incrementally from committed segments.
func buildLexCorpus(v *vault.Vault) ([]lex.Document, []search.Record) {
	frames := v.ActiveFrames()
	docs := make([]lex.Document, 0, len(frames))
	records := make([]search.Record, 0, len(frames))

	for _, f := range frames {
		if f.Role != vault.RoleDocument && f.Role != vault.RoleDocumentChunk {
			continue
		}
		text, err := v.FrameText(f.ID)
		if err != nil || text == "" {
			continue
		}
		tags := extractTags(f.Extra)
		doc := lex.BuildDocument(f.ID, f.URI, f.Title, text, tags)
		docs = append(docs, doc)
		records = append(records, search.Record{
			FrameID:      f.ID,
			URI:          f.URI,
			Track:        f.Track,
			Timestamp:    f.Timestamp,
			Tags:         tags,
			Labels:       extractLabels(f.Extra),
			ContentLower: doc.ContentLower,
		})
	}
	return docs, records
}

// buildVecLane embeds every document in docs with embedder and
// assembles a local vec.Index over the result, so `query
// --no-vector=false` exercises the same local vector lane a
// long-lived agent process would keep warm across queries.
func buildVecLane(docs []lex.Document, embedder embedding.Embedder) (vec.Index, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := embedder.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	entries := make([]vec.Entry, len(docs))
	for i, d := range docs {
		entries[i] = vec.Entry{FrameID: d.FrameID, Vector: vectors[i]}
	}
	return vec.Build(embedder.Dims(), entries, vec.BuildOptions{Compression: vec.CompressionAuto}), nil
}

// parseQdrantURL splits a QDRANT_URL value (e.g. "localhost:6334" or
// "http://localhost:6334") into the host/port pair the qdrant client
// dials, defaulting to qdrant's standard gRPC port.
func parseQdrantURL(raw string) (string, int, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "http://"), "https://")
	host, portStr, err := net.SplitHostPort(trimmed)
	if err != nil {
		return trimmed, 6334, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid qdrant port %q: %w", portStr, err)
	}
	return host, port, nil
}

func extractTags(extra map[string]string) []string {
	return extractIndexed(extra, "tag.")
}

func extractLabels(extra map[string]string) []string {
	return extractIndexed(extra, "label.")
}

func extractIndexed(extra map[string]string, prefix string) []string {
	var out []string
	for i := 0; ; i++ {
		v, ok := extra[fmt.Sprintf("%s%d", prefix, i)]
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
