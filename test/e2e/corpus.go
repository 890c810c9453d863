// Package e2e provides end-to-end tests over a generated corpus and multiple queries.
package e2e

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/vecindex/internal/models"
)

// Entry is one corpus document before it becomes input JSON.
type Entry struct {
	Key    string
	Header string
	Text   string
}

// QueryTestCase defines a query and the headers of which at least one must be returned.
type QueryTestCase struct {
	Query           string
	ExpectedHeaders []string
	Description     string
}

// Corpus holds documents and query test cases for E2E tests.
type Corpus struct {
	Entries      []Entry
	TestCases    []QueryTestCase
	TotalDocs    int
	TotalQueries int
}

var topics = []struct {
	header string
	phrase string
	text   string
}{
	{"Goroutines", "goroutines channels", "Goroutines are cheap threads. Goroutines channels and select build pipelines."},
	{"Sourdough", "sourdough starter", "Bread rises slowly. A sourdough starter needs flour and water every day."},
	{"Kubernetes", "kubernetes pods", "Clusters schedule work. Kubernetes pods wrap one or more containers."},
	{"Postgres", "postgres vacuum", "Databases reclaim space. Postgres vacuum removes dead tuples."},
	{"Espresso", "espresso crema", "Coffee under pressure. Espresso crema forms from emulsified oils."},
	{"Raft", "raft leader election", "Consensus keeps replicas agreeing. Raft leader election uses randomized timeouts."},
	{"Bonsai", "bonsai pruning", "Small trees need care. Bonsai pruning shapes branches over years."},
	{"TLS", "tls handshake certificates", "Encrypted transport. The tls handshake certificates prove identity."},
	{"Marathon", "marathon training", "Long runs build endurance. Marathon training peaks three weeks before race day."},
	{"Kafka", "kafka partitions", "Logs as streams. Kafka partitions spread topics across brokers."},
	{"Watercolor", "watercolor pigments", "Painting with water. Watercolor pigments bloom on wet paper."},
	{"Bloom Filter", "bloom filter", "Probabilistic sets. A bloom filter allows false positives but never false negatives."},
	{"Beekeeping", "beekeeping hives", "Bees make honey. Beekeeping hives need inspection in spring."},
	{"Redis", "redis eviction", "In-memory data. Redis eviction drops keys when memory is full."},
	{"Chess Openings", "chess openings", "The first moves matter. Chess openings like the gambit trade material for tempo."},
	{"Fermentation", "kimchi fermentation", "Lactic acid bacteria preserve food. Kimchi fermentation takes days in the cold."},
	{"gRPC", "grpc protobuf", "Remote calls over HTTP/2. gRPC protobuf messages are compact."},
	{"Astronomy", "telescope reveals", "Looking up at night. A telescope reveals a nebula as faint glowing gas."},
	{"Terraform", "terraform state", "Infrastructure as code. Terraform state maps resources to real objects."},
	{"Knitting", "purl stitch", "Yarn and needles. Knitting alternates the knit and purl stitch."},
	{"Prometheus", "prometheus scrape", "Metrics over time. Prometheus scrape jobs pull from exporters."},
	{"Volcanoes", "volcano erupts", "Geology in action. A volcano erupts when magma reaches the surface."},
	{"Sorting", "quicksort picks a pivot", "Ordering elements. Quicksort picks a pivot and partitions around it."},
	{"Sailing", "sailing upwind", "Wind power on water. Sailing upwind means you tack and trim the jib."},
	{"OAuth", "oauth refresh tokens", "Delegated access. OAuth refresh tokens renew expired access tokens."},
	{"Pottery", "pottery fired in a kiln", "Clay becomes ceramic. Pottery fired in a kiln sets the glaze."},
	{"Git", "git rebase", "Version control. Git rebase replays commits onto a new base."},
	{"Orchids", "orchid repotting", "Tropical flowers. Orchid repotting uses bark instead of soil."},
	{"Websockets", "websocket frames", "Bidirectional browser connections. Websocket frames carry text or binary data."},
	{"Cheese", "cheddar aging", "Milk becomes cheese. Cheddar aging sharpens the flavour over months."},
}

// BuildCorpus returns n documents and one query per distinct topic among them. Topics repeat
// with numbered headers when n exceeds the topic list.
func BuildCorpus(n int) *Corpus {
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		t := topics[i%len(topics)]
		header := t.header
		if i >= len(topics) {
			header = fmt.Sprintf("%s (%d)", t.header, i+1)
		}
		entries = append(entries, Entry{
			Key:    fmt.Sprintf("e2e-doc-%03d", i+1),
			Header: header,
			Text:   t.text,
		})
	}

	var cases []QueryTestCase
	for i := 0; i < n && i < len(topics); i++ {
		t := topics[i]
		var expected []string
		for _, e := range entries {
			if containsPhrase(e, t.phrase) {
				expected = append(expected, e.Header)
			}
		}
		cases = append(cases, QueryTestCase{
			Query:           t.phrase,
			ExpectedHeaders: expected,
			Description:     fmt.Sprintf("query %q returns %s", t.phrase, t.header),
		})
	}
	return &Corpus{
		Entries:      entries,
		TestCases:    cases,
		TotalDocs:    len(entries),
		TotalQueries: len(cases),
	}
}

func containsPhrase(e Entry, phrase string) bool {
	return strings.Contains(strings.ToLower(e.Text), strings.ToLower(phrase))
}

// RawDocuments converts the corpus to input documents with header, text_block and key fields.
func (c *Corpus) RawDocuments() []models.RawDocument {
	out := make([]models.RawDocument, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = models.RawDocument{
			"key":        e.Key,
			"header":     e.Header,
			"text_block": e.Text,
		}
	}
	return out
}

// WriteJSON writes the corpus as an input JSON array to path.
func (c *Corpus) WriteJSON(path string) error {
	data, err := json.MarshalIndent(c.RawDocuments(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
