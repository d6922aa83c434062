package nuclia

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/datavault-fs/knowledge-backend/internal/config"
	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/datavault-fs/knowledge-backend/internal/integration/common"
	pkghttp "github.com/datavault-fs/knowledge-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	defaultMinScore  = 0.7
	defaultPageSize  = 10
	defaultMaxTokens = 500
)

var (
	searchFeatures = []string{"keyword", "semantic", "relations"}
	askFeatures    = []string{"semantic", "keyword"}
)

type Connector struct {
	config    config.NucliaConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.NucliaConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.BaseURL(), cfg.AuthHeader, cfg.APIKey, cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Search runs a keyword+semantic search on a single knowledge box.
// POST /kb/{kb_id}/search
func (c *Connector) Search(ctx context.Context, kbID, query string) (*entity.SearchResponse, error) {
	endpoint := fmt.Sprintf("/kb/%s/search", kbID)

	req := &entity.SearchRequest{
		Query:    query,
		Features: searchFeatures,
		MinScore: defaultMinScore,
		PageSize: defaultPageSize,
	}

	ctxzap.Debug(ctx, "searching knowledge box", zap.String("kb_id", kbID))

	resp, err := retry.DoWithData(func() (*entity.SearchResponse, error) {
		var resp entity.SearchResponse
		if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}, c.retryOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("search knowledge box: %w", err)
	}

	ctxzap.Debug(ctx, "search completed",
		zap.Int("total", resp.Total),
		zap.Int("resource_count", len(resp.Resources)),
	)

	return resp, nil
}

// Ask runs a generative query on a single knowledge box and assembles the
// NDJSON answer stream into a single result.
// POST /kb/{kb_id}/ask
func (c *Connector) Ask(ctx context.Context, kbID, query string) (*entity.AskResult, error) {
	endpoint := fmt.Sprintf("/kb/%s/ask", kbID)

	req := &entity.AskRequest{
		Query:     query,
		Features:  askFeatures,
		MaxTokens: defaultMaxTokens,
	}

	ctxzap.Debug(ctx, "asking knowledge box", zap.String("kb_id", kbID))

	result, err := retry.DoWithData(func() (*entity.AskResult, error) {
		acc := newAskAccumulator()
		if err := c.connector.DoStreamRequest(ctx, http.MethodPost, endpoint, req, acc.HandleLine); err != nil {
			return nil, err
		}
		return acc.Result(), nil
	}, c.retryOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("ask knowledge box: %w", err)
	}

	ctxzap.Debug(ctx, "ask completed",
		zap.Int("answer_length", len(result.Answer)),
		zap.Int("source_count", len(result.Sources)),
	)

	return result, nil
}

// UploadResource uploads a document into a knowledge box for indexing.
// POST /kb/{kb_id}/upload with multipart/form-data
func (c *Connector) UploadResource(ctx context.Context, kbID, filename string, content []byte) error {
	endpoint := fmt.Sprintf("/kb/%s/upload", kbID)

	ctxzap.Info(ctx, "uploading resource to knowledge box",
		zap.String("kb_id", kbID),
		zap.String("filename", filename),
		zap.Int("size_bytes", len(content)),
	)

	prepareBody := func(writer *multipart.Writer) error {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(content); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}
		return nil
	}

	err := retry.Do(func() error {
		return c.connector.DoMultipartRequest(ctx, http.MethodPost, endpoint, prepareBody, nil)
	}, c.retryOptions(ctx)...)
	if err != nil {
		ctxzap.Error(ctx, "failed to upload resource", zap.Error(err))
		return fmt.Errorf("upload resource: %w", err)
	}

	ctxzap.Info(ctx, "resource uploaded successfully")
	return nil
}

// retryOptions builds per-call retry options. Client errors other than 429
// are not retried.
func (c *Connector) retryOptions(ctx context.Context) []retry.Option {
	opts := c.config.Retry.ToRetryOptions()
	opts = append(opts,
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var httpErr *pkghttp.HTTPError
			if errors.As(err, &httpErr) {
				return httpErr.StatusCode >= 500 || httpErr.StatusCode == http.StatusTooManyRequests
			}
			return true
		}),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "retrying vendor request",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	return opts
}
