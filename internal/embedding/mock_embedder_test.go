package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/hyperjump/vecindex/internal/vector"
)

func TestMockEmbedder_deterministicUnitVectors(t *testing.T) {
	e := NewMockEmbedder(32)
	ctx := context.Background()
	a, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "the quick brown fox")
	if len(a) != 32 {
		t.Fatalf("len = %d, want 32", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text should embed identically")
		}
	}
	if n := vector.L2Norm(a); math.Abs(n-1) > 1e-6 {
		t.Errorf("norm = %v, want 1", n)
	}
}

func TestMockEmbedder_sharedWordsScoreHigher(t *testing.T) {
	e := NewMockEmbedder(256)
	ctx := context.Background()
	vecs, err := e.EmbedBatch(ctx, []string{"vector search engine", "search engine for vectors", "banana bread recipe"})
	if err != nil {
		t.Fatal(err)
	}
	related := vector.CosineSimilarity(vecs[0], vecs[1])
	unrelated := vector.CosineSimilarity(vecs[0], vecs[2])
	if related <= unrelated {
		t.Errorf("related = %v, unrelated = %v", related, unrelated)
	}
}

func TestMockEmbedder_emptyTextIsZero(t *testing.T) {
	v, err := NewMockEmbedder(8).Embed(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if vector.L2Norm(v) != 0 {
		t.Errorf("expected zero vector, got %v", v)
	}
}

func TestMockEmbedder_canceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMockEmbedder(8).EmbedBatch(ctx, []string{"a"}); err == nil {
		t.Error("expected context error")
	}
}
