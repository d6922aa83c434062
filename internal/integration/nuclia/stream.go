package nuclia

import (
	"encoding/json"
	"strings"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

const (
	streamItemAnswer    = "answer"
	streamItemRetrieval = "retrieval"
)

// askAccumulator assembles the NDJSON ask stream: answer fragments are
// concatenated in arrival order, retrieval items contribute sources.
// Malformed lines are skipped, matching the tolerant behavior expected of
// the vendor stream.
type askAccumulator struct {
	answer  strings.Builder
	sources []entity.Source
	seen    map[string]bool
}

func newAskAccumulator() *askAccumulator {
	return &askAccumulator{
		seen: make(map[string]bool),
	}
}

func (a *askAccumulator) HandleLine(line []byte) error {
	var item entity.AskStreamLine
	if err := json.Unmarshal(line, &item); err != nil {
		return nil
	}

	switch item.Item.Type {
	case streamItemAnswer:
		a.answer.WriteString(item.Item.Text)
	case streamItemRetrieval:
		if item.Item.Results == nil {
			return nil
		}
		for resourceID, resource := range item.Item.Results.Resources {
			if a.seen[resourceID] {
				continue
			}
			a.seen[resourceID] = true
			a.sources = append(a.sources, entity.Source{
				Title: resource.Title,
				ID:    resourceID,
			})
		}
	}

	return nil
}

func (a *askAccumulator) Result() *entity.AskResult {
	return &entity.AskResult{
		Answer:  strings.TrimSpace(a.answer.String()),
		Sources: a.sources,
	}
}
