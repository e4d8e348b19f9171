// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingest"
	"github.com/poiesic/recall/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "Local semantic retrieval over your documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index a directory tree",
				ArgsUsage: "<path>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					dbFlag(),
					embeddingHostFlag(),
					embeddingModelFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent indexing workers (0 = automatic)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					embeddingHostFlag(),
					embeddingModelFlag(),
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode (semantic, keyword, hybrid, rerank)",
						Value: "hybrid",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Restrict results to one language tag",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Restrict results to one content type (text, code, markdown, documentation, config)",
					},
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a document from the index",
				ArgsUsage: "<document-id>",
				Action:    removeCommand,
				Flags:     []cli.Flag{dbFlag()},
			},
			{
				Name:   "stats",
				Usage:  "Show index statistics",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to the index directory",
		Required: true,
	}
}

func embeddingHostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-host",
		Usage: "OpenAI-compatible embedding service host URL (omit for the offline model)",
	}
}

func embeddingModelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-model",
		Usage: "Embedding model name (requires --embedding-host)",
	}
}

// openIndex opens the index named by --db, remote embeddings when
// --embedding-host is given.
func openIndex(c *cli.Context) (*recall.Index, error) {
	var opts []recall.IndexOption
	if host := c.String("embedding-host"); host != "" {
		config := ai.NewConfig(
			ai.WithHost(host),
			ai.WithModel(c.String("embedding-model")),
		)
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid embedding configuration: %w", err)
		}
		opts = append(opts, recall.WithRemoteEmbedding(config))
	}
	return recall.Open(c.String("db"), opts...)
}

func indexCommand(c *cli.Context) error {
	root := c.Args().First()
	if root == "" {
		return fmt.Errorf("a path to index is required")
	}

	ix, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	var pipelineOpts []ingest.Option
	if workers := c.Int("workers"); workers > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithPoolSize(workers))
	}

	result, err := ix.IndexDirectory(context.Background(), root, pipelineOpts...)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("indexed %d documents (%d failed, %d skipped)\n",
		result.Indexed, result.Failed, result.Skipped)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	ix, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	filter, err := buildFilter(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	topK := c.Int("top")

	var results []core.RetrievalResult
	switch mode := c.String("mode"); mode {
	case "semantic":
		results, err = ix.Retrieve(ctx, query, topK, filter)
	case "keyword":
		results, err = ix.Engine().KeywordSearch(ctx, query, topK)
	case "hybrid":
		results, err = ix.HybridSearch(ctx, query, topK, filter)
	case "rerank":
		results, err = ix.RetrieveWithReranking(ctx, query, topK, filter)
	default:
		return fmt.Errorf("invalid mode %q: must be one of semantic, keyword, hybrid, rerank", mode)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, result := range results {
		source := result.Metadata.Source
		if source == "" {
			source = "(unknown source)"
		}
		fmt.Printf("%2d. [%.4f] %s\n", i+1, result.Score, source)
		fmt.Printf("    %s\n", excerpt(result.Content, 160))
	}
	return nil
}

func removeCommand(c *cli.Context) error {
	documentID := c.Args().First()
	if documentID == "" {
		return fmt.Errorf("a document id is required")
	}

	ix, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	if err := ix.RemoveDocument(context.Background(), documentID); err != nil {
		return fmt.Errorf("removal failed: %w", err)
	}
	fmt.Printf("removed %s\n", documentID)
	return nil
}

func statsCommand(c *cli.Context) error {
	ix, err := openIndex(c)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer ix.Close()

	stats, err := ix.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("documents: %d\n", stats.DocumentCount)
	fmt.Printf("chunks:    %d\n", stats.ChunkCount)
	fmt.Printf("size:      %d bytes\n", stats.IndexSize)
	return nil
}

func buildFilter(c *cli.Context) (*storage.SearchFilter, error) {
	filter := &storage.SearchFilter{
		Language: c.String("language"),
	}
	if name := c.String("type"); name != "" {
		ct, err := core.ParseContentType(name)
		if err != nil {
			return nil, fmt.Errorf("invalid content type %q", name)
		}
		filter.ContentType = ct
	}
	if filter.Language == "" && filter.ContentType == 0 {
		return nil, nil
	}
	return filter, nil
}

// excerpt returns the first line of text, truncated to max runes.
func excerpt(text string, max int) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return text
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
