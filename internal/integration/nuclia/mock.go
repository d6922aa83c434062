package nuclia

import (
	"context"
	"fmt"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector serves static demo data when no vendor credentials are
// configured or mocks are explicitly enabled.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Search(ctx context.Context, kbID, query string) (*entity.SearchResponse, error) {
	ctxzap.Info(ctx, "[MOCK] searching knowledge box",
		zap.String("kb_id", kbID),
		zap.String("query", query),
	)

	return &entity.SearchResponse{
		Total: 3,
		Resources: map[string]entity.SearchResource{
			"mock-res-001": {
				Title: "Q3 Market Analysis Report",
				Paragraphs: map[string]entity.SearchParagraph{
					"p0": {Text: fmt.Sprintf("Analysis shows positive trends in %s across major indices.", query)},
				},
			},
			"mock-res-002": {
				Title: "SEC Compliance Update 2024",
				Paragraphs: map[string]entity.SearchParagraph{
					"p0": {Text: "Updated risk disclosure requirements apply to all registered investment advisors."},
				},
			},
			"mock-res-003": {
				Title: "WSJ.com - Federal Reserve Signals Rate Path",
				Paragraphs: map[string]entity.SearchParagraph{
					"p0": {Text: "Policymakers indicated a cautious approach to further rate adjustments."},
				},
			},
		},
	}, nil
}

func (m *MockConnector) Ask(ctx context.Context, kbID, query string) (*entity.AskResult, error) {
	ctxzap.Info(ctx, "[MOCK] asking knowledge box",
		zap.String("kb_id", kbID),
		zap.String("query", query),
	)

	return &entity.AskResult{
		Answer: fmt.Sprintf("Mock response from %s: Analysis shows positive trends in %s", kbID, query),
		Sources: []entity.Source{
			{Title: fmt.Sprintf("Document from %s", kbID), ID: fmt.Sprintf("mock_%s_001", kbID)},
		},
	}, nil
}

func (m *MockConnector) UploadResource(ctx context.Context, kbID, filename string, content []byte) error {
	ctxzap.Info(ctx, "[MOCK] uploading resource",
		zap.String("kb_id", kbID),
		zap.String("filename", filename),
		zap.Int("size_bytes", len(content)),
	)
	return nil
}
