package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mapdata-service/internal/config"
	"github.com/mapdata-service/internal/domain/repository"
	apperrors "github.com/mapdata-service/internal/pkg/errors"
)

// maxErrorBody - сколько байт тела ошибки попадает в лог
const maxErrorBody = 512

type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewSourceClient создает клиент, загружающий файлы карт по HTTP(S) или с диска.
// Относительные пути разрешаются относительно BaseURL, если он задан.
func NewSourceClient(cfg *config.SourceConfig, logger *zap.Logger) repository.SourceRepository {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

func (c *client) Fetch(ctx context.Context, location string, progress repository.ByteProgressFunc) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperrors.ErrSourceNotFound.WithMessage("Data source location is empty")
	}

	resolved := c.resolve(location)
	if u, err := url.Parse(resolved); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return c.fetchHTTP(ctx, resolved, progress)
	}
	return c.fetchFile(ctx, strings.TrimPrefix(resolved, "file://"), progress)
}

func (c *client) resolve(location string) string {
	if strings.Contains(location, "://") || filepath.IsAbs(location) || c.baseURL == "" {
		return location
	}
	return c.baseURL + "/" + strings.TrimLeft(location, "/")
}

func (c *client) fetchHTTP(ctx context.Context, target string, progress repository.ByteProgressFunc) ([]byte, error) {
	c.logger.Debug("Fetching source", zap.String("url", target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Failed to execute request", zap.String("url", target), zap.Error(err))
		return nil, unavailable(target, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, notFound(target)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Source returned error",
			zap.String("url", target),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, unavailable(target, fmt.Sprintf("status %d", resp.StatusCode))
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	data, err := readAll(resp.Body, total, progress)
	if err != nil {
		return nil, unavailable(target, err.Error())
	}

	c.logger.Debug("Source fetched",
		zap.String("url", target),
		zap.Int("bytes", len(data)))
	return data, nil
}

func (c *client) fetchFile(ctx context.Context, path string, progress repository.ByteProgressFunc) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(path)
		}
		return nil, unavailable(path, err.Error())
	}
	defer f.Close()

	var total int64
	if info, err := f.Stat(); err == nil {
		total = info.Size()
	}

	data, err := readAll(f, total, progress)
	if err != nil {
		return nil, unavailable(path, err.Error())
	}
	return data, nil
}

// readAll читает r целиком, сообщая прогресс после каждого блока
func readAll(r io.Reader, total int64, progress repository.ByteProgressFunc) ([]byte, error) {
	if progress == nil {
		return io.ReadAll(r)
	}

	buf := make([]byte, 0, max(total, 512))
	chunk := make([]byte, 32*1024)
	var read int64
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			read += int64(n)
			progress(read, total)
		}
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func notFound(location string) error {
	return apperrors.ErrSourceNotFound.WithDetails(map[string]interface{}{
		"location": location,
	})
}

func unavailable(location, reason string) error {
	return apperrors.ErrSourceUnavailable.WithDetails(map[string]interface{}{
		"location": location,
		"reason":   reason,
	})
}
