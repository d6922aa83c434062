package nuclia

import (
	"testing"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
)

func TestAskAccumulatorAssemblesAnswer(t *testing.T) {
	acc := newAskAccumulator()

	lines := []string{
		`{"item":{"type":"answer","text":"The market "}}`,
		`{"item":{"type":"answer","text":"is trending up."}}`,
		`{"item":{"type":"retrieval","results":{"resources":{"r1":{"title":"Q3 Report"}}}}}`,
	}
	for _, line := range lines {
		if err := acc.HandleLine([]byte(line)); err != nil {
			t.Fatalf("HandleLine(%s): %v", line, err)
		}
	}

	got := acc.Result()
	if got.Answer != "The market is trending up." {
		t.Errorf("unexpected answer: %q", got.Answer)
	}

	want := []entity.Source{{Title: "Q3 Report", ID: "r1"}}
	if diff := cmp.Diff(want, got.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestAskAccumulatorDeduplicatesSources(t *testing.T) {
	acc := newAskAccumulator()

	lines := []string{
		`{"item":{"type":"retrieval","results":{"resources":{"r1":{"title":"Q3 Report"}}}}}`,
		`{"item":{"type":"retrieval","results":{"resources":{"r1":{"title":"Q3 Report"}}}}}`,
	}
	for _, line := range lines {
		if err := acc.HandleLine([]byte(line)); err != nil {
			t.Fatalf("HandleLine: %v", err)
		}
	}

	if len(acc.Result().Sources) != 1 {
		t.Errorf("expected 1 source after dedup, got %d", len(acc.Result().Sources))
	}
}

func TestAskAccumulatorSkipsMalformedLines(t *testing.T) {
	acc := newAskAccumulator()

	lines := []string{
		`{"item":{"type":"answer","text":"partial"}}`,
		`not json at all`,
		`{"item":{"type":"unknown_type","text":"ignored"}}`,
		`{"item":{"type":"retrieval"}}`,
	}
	for _, line := range lines {
		if err := acc.HandleLine([]byte(line)); err != nil {
			t.Fatalf("malformed line should be skipped, got error: %v", err)
		}
	}

	got := acc.Result()
	if got.Answer != "partial" {
		t.Errorf("unexpected answer: %q", got.Answer)
	}
	if len(got.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(got.Sources))
	}
}

func TestAskAccumulatorTrimsAnswer(t *testing.T) {
	acc := newAskAccumulator()

	if err := acc.HandleLine([]byte(`{"item":{"type":"answer","text":"  spaced  "}}`)); err != nil {
		t.Fatalf("HandleLine: %v", err)
	}

	if got := acc.Result().Answer; got != "spaced" {
		t.Errorf("expected trimmed answer, got %q", got)
	}
}
