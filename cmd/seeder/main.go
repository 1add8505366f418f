// Seeder writes a small demo corpus to disk: a documents.json batch for
// `retrieval ingest --source` and a briefings.json set for `retrieval
// serve --briefings`.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tessera-insights/retrieval/core"
)

var documents = []core.SourceDocument{
	{
		URL:   "https://example.org/articles/sovereign-cloud",
		Title: "The Slow March Toward Sovereign Cloud",
		Date:  "2026-05-12",
		Content: strings.Repeat(
			"European institutions keep signing cloud contracts that their own "+
				"regulators question. The gap between procurement practice and "+
				"stated sovereignty goals has not narrowed this year. Each audit "+
				"cycle surfaces the same dependency on a handful of hyperscalers. ", 8),
	},
	{
		URL:   "https://example.org/articles/open-source-funding",
		Title: "Who Pays for the Plumbing",
		Date:  "2026-06-03",
		Content: strings.Repeat(
			"Critical open source libraries are maintained by a few unpaid "+
				"volunteers while the companies depending on them report record "+
				"margins. Funding experiments multiply, but none has yet matched "+
				"the scale of the dependency they are meant to secure. ", 8),
	},
	{
		URL:   "https://example.org/articles/edge-inference",
		Title: "Inference Moves to the Edge",
		Date:  "2026-07-21",
		Content: strings.Repeat(
			"Smaller embedding models now run comfortably on commodity hardware. "+
				"Teams that once routed every request through a hosted API are "+
				"moving latency-sensitive paths onto machines they control. ", 8),
	},
}

var briefingSet = []core.Briefing{
	{
		ID:      "br-2026-031",
		Title:   "Cloud Act Fallout for EU Tenants",
		Summary: "What the latest extraterritoriality rulings mean for European cloud customers.",
		Date:    "2026-06-28",
		URL:     "https://example.org/briefings/cloud-act-fallout",
		Topics:  []string{"Digital Sovereignty", "Cloud", "Regulation"},
	},
	{
		ID:      "br-2026-032",
		Title:   "Maintainer Burnout Index, H1",
		Summary: "Half-year snapshot of maintainer turnover in widely-used libraries.",
		Date:    "2026-07-05",
		URL:     "https://example.org/briefings/maintainer-burnout-h1",
		Topics:  []string{"Open Source", "Economics"},
	},
	{
		ID:      "br-2026-033",
		Title:   "On-Prem Embedding Benchmarks",
		Summary: "Throughput and recall figures for self-hosted embedding models.",
		Date:    "2026-07-19",
		URL:     "https://example.org/briefings/on-prem-embeddings",
		Topics:  []string{"Infrastructure", "Machine Learning"},
	},
}

func main() {
	outDir := flag.String("out", "./seed", "directory for the generated corpus files")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		slog.Error("creating output directory", "err", err)
		os.Exit(1)
	}

	if err := writeJSON(filepath.Join(*outDir, "documents.json"), documents); err != nil {
		slog.Error("writing documents", "err", err)
		os.Exit(1)
	}
	if err := writeJSON(filepath.Join(*outDir, "briefings.json"), briefingSet); err != nil {
		slog.Error("writing briefings", "err", err)
		os.Exit(1)
	}

	slog.Info("seed corpus written",
		"dir", *outDir, "documents", len(documents), "briefings", len(briefingSet))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
