package indexer

import (
	"errors"
	"testing"

	"github.com/hyperjump/vecindex/internal/models"
)

func TestSelectTextSource(t *testing.T) {
	tests := []struct {
		name  string
		first models.RawDocument
		want  TextSource
	}{
		{"text present", models.RawDocument{"text_block": "hi"}, SingleField("text_block")},
		{"text empty", models.RawDocument{"text_block": "", "text_blocks": []any{"a"}}, JoinedFragments("text_blocks")},
		{"fragments only", models.RawDocument{"text_blocks": []any{"a"}}, JoinedFragments("text_blocks")},
		{"neither", models.RawDocument{"header": "h"}, JoinedFragments("text_blocks")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectTextSource(tt.first, "text_block", "text_blocks"); got != tt.want {
				t.Errorf("SelectTextSource = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextSource_Extract(t *testing.T) {
	tests := []struct {
		name    string
		source  TextSource
		doc     models.RawDocument
		want    string
		wantErr bool
	}{
		{"single", SingleField("text_block"), models.RawDocument{"text_block": "hello"}, "hello", false},
		{"single missing", SingleField("text_block"), models.RawDocument{"header": "h"}, "", true},
		{"single not string", SingleField("text_block"), models.RawDocument{"text_block": []any{"a"}}, "", true},
		{"joined", JoinedFragments("text_blocks"), models.RawDocument{"text_blocks": []any{"a", "b c", "d"}}, "a b c d", false},
		{"joined missing", JoinedFragments("text_blocks"), models.RawDocument{}, "", false},
		{"joined empty", JoinedFragments("text_blocks"), models.RawDocument{"text_blocks": []any{}}, "", false},
		{"joined non-string element", JoinedFragments("text_blocks"), models.RawDocument{"text_blocks": []any{"a", 1}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.source.Extract(tt.doc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextSource_Extract_missingIsErrMissingText(t *testing.T) {
	_, err := SingleField("body").Extract(models.RawDocument{})
	if !errors.Is(err, ErrMissingText) {
		t.Errorf("err = %v, want ErrMissingText", err)
	}
}
