package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mapdata-service/internal/config"
	httpDelivery "github.com/mapdata-service/internal/delivery/http"
	"github.com/mapdata-service/internal/delivery/http/handler"
	"github.com/mapdata-service/internal/domain/repository"
	"github.com/mapdata-service/internal/executor"
	apperrors "github.com/mapdata-service/internal/pkg/errors"
	"github.com/mapdata-service/internal/repository/memory"
	"github.com/mapdata-service/internal/usecase"
)

// staticSource отдаёт файлы из памяти
type staticSource map[string]string

func (s staticSource) Fetch(_ context.Context, location string, progress repository.ByteProgressFunc) ([]byte, error) {
	body, ok := s[location]
	if !ok {
		return nil, apperrors.ErrSourceNotFound.WithDetails(map[string]interface{}{"location": location})
	}
	if progress != nil {
		progress(int64(len(body)), int64(len(body)))
	}
	return []byte(body), nil
}

var testSource = staticSource{
	"world/items.json":      `{"data":[{"id":1,"category_id":"10","title":"Box","latitude":1,"longitude":2,"regionId":5},{"id":2,"category_id":"10","title":"Anchor","latitude":3,"longitude":4,"regionId":6},{"id":3,"category_id":"20","title":"Lamp","latitude":0,"longitude":0}]}`,
	"world/regions.json":    `{"data":[{"id":5,"title":"North","coordinates":[]},{"id":6,"title":"South","coordinates":[]}]}`,
	"world/translation.csv": "Type,Category,Key,Korean,Description,Region,Image,Video,CustomPosition\nOverride,10,1,박스,,,,,\n",
	"broken/items.json":     `{"items":[]}`,
	"broken/regions.json":   `{"data":[]}`,
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T, checks map[string]handler.HealthCheck) *httpDelivery.Server {
	t.Helper()

	logger := zap.NewNop()
	maps := []config.MapConfig{
		{Key: "world", Name: "World", ItemsURL: "world/items.json", RegionsURL: "world/regions.json", TranslationURL: "world/translation.csv", DefaultCategory: "10"},
		{Key: "broken", Name: "Broken", ItemsURL: "broken/items.json", RegionsURL: "broken/regions.json"},
	}

	mapDataUC := usecase.NewMapDataUseCase(maps, testSource, nil, executor.NewInlineExecutor(), time.Minute, logger)
	session := usecase.NewSession(mapDataUC, logger)
	filterUC := usecase.NewFilterStateUseCase(memory.NewStateRepository(), logger)

	return httpDelivery.NewServer(
		&config.Config{Maps: maps},
		logger,
		handler.NewHealthHandler(mapDataUC, checks, logger),
		handler.NewMapHandler(mapDataUC, session, logger),
		handler.NewFilterHandler(mapDataUC, filterUC, logger),
	)
}

func do(t *testing.T, s *httpDelivery.Server, method, path, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, map[string]handler.HealthCheck{
		"store": func(context.Context) error { return nil },
	})

	status, env := do(t, s, "GET", "/api/v1/health", "")
	require.Equal(t, 200, status)

	var health struct {
		Status   string            `json:"status"`
		Executor string            `json:"executor"`
		Checks   map[string]string `json:"checks"`
	}
	decode(t, env, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "inline", health.Executor)
	assert.Equal(t, "ok", health.Checks["store"])
}

func TestHealth_Degraded(t *testing.T) {
	s := newTestServer(t, map[string]handler.HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	status, env := do(t, s, "GET", "/api/v1/health", "")
	assert.Equal(t, 503, status)
	assert.Contains(t, string(env.Data), "degraded")
}

func TestMaps(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("list", func(t *testing.T) {
		status, env := do(t, s, "GET", "/api/v1/maps", "")
		require.Equal(t, 200, status)
		assert.EqualValues(t, 2, env.Meta["total"])
		assert.NotContains(t, string(env.Data), "items.json", "source locations are not exposed")
	})

	t.Run("map data", func(t *testing.T) {
		status, env := do(t, s, "GET", "/api/v1/maps/world", "")
		require.Equal(t, 200, status)
		assert.Equal(t, "world", env.Meta["map_key"])
		assert.Equal(t, "inline", env.Meta["mode"])

		var data struct {
			Items []struct {
				ID           string `json:"id"`
				Name         string `json:"name"`
				IsTranslated bool   `json:"isTranslated"`
			} `json:"items"`
			UniqueRegions []string `json:"unique_regions"`
		}
		decode(t, env, &data)
		require.Len(t, data.Items, 3)
		assert.Equal(t, "박스", data.Items[0].Name)
		assert.True(t, data.Items[0].IsTranslated)
		assert.Equal(t, []string{"North", "South", "unknown"}, data.UniqueRegions)
	})

	t.Run("category items are sorted by name", func(t *testing.T) {
		status, env := do(t, s, "GET", "/api/v1/maps/world/categories/10/items", "")
		require.Equal(t, 200, status)

		var data struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		}
		decode(t, env, &data)
		require.Len(t, data.Items, 2)
		assert.Equal(t, "Anchor", data.Items[0].Name)
		assert.Equal(t, "박스", data.Items[1].Name)
	})

	t.Run("unknown category", func(t *testing.T) {
		status, env := do(t, s, "GET", "/api/v1/maps/world/categories/99/items", "")
		assert.Equal(t, 404, status)
		assert.Equal(t, "CATEGORY_NOT_FOUND", env.Error.Code)
	})

	t.Run("unknown map", func(t *testing.T) {
		status, env := do(t, s, "GET", "/api/v1/maps/moon", "")
		assert.Equal(t, 404, status)
		assert.Equal(t, "MAP_NOT_FOUND", env.Error.Code)
	})

	t.Run("invalid map key", func(t *testing.T) {
		status, env := do(t, s, "GET", "/api/v1/maps/bad.key", "")
		assert.Equal(t, 400, status)
		assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	})

	t.Run("structural error names the dataset", func(t *testing.T) {
		status, env := do(t, s, "GET", "/api/v1/maps/broken", "")
		assert.Equal(t, 422, status)
		assert.Equal(t, "INVALID_PAYLOAD", env.Error.Code)
		assert.Equal(t, "items", env.Error.Details["dataset"])
	})

	t.Run("invalidate without cache", func(t *testing.T) {
		status, _ := do(t, s, "DELETE", "/api/v1/maps/world/cache", "")
		assert.Equal(t, 204, status)
	})

	t.Run("unknown route", func(t *testing.T) {
		status, env := do(t, s, "GET", "/api/v1/nope", "")
		assert.Equal(t, 404, status)
		assert.Equal(t, "ROUTE_NOT_FOUND", env.Error.Code)
	})
}

func TestSession(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, "GET", "/api/v1/session/current", "")
	assert.Equal(t, 404, status)
	assert.Equal(t, "NO_MAP_SELECTED", env.Error.Code)

	status, env = do(t, s, "POST", "/api/v1/maps/world/select", "")
	require.Equal(t, 200, status)
	var selected struct {
		MapKey string `json:"map_key"`
		Items  int    `json:"items"`
	}
	decode(t, env, &selected)
	assert.Equal(t, "world", selected.MapKey)
	assert.Equal(t, 3, selected.Items)

	status, _ = do(t, s, "POST", "/api/v1/maps/broken/select", "")
	assert.Equal(t, 422, status)

	status, env = do(t, s, "GET", "/api/v1/session/current", "")
	require.Equal(t, 200, status)
	var current struct {
		MapKey string `json:"map_key"`
		Loaded bool   `json:"loaded"`
		Error  string `json:"error"`
	}
	decode(t, env, &current)
	assert.Equal(t, "world", current.MapKey, "failed selection keeps the previous map")
	assert.True(t, current.Loaded)
	assert.NotEmpty(t, current.Error)
}

func TestFilters(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := do(t, s, "GET", "/api/v1/maps/world/filters", "")
	require.Equal(t, 200, status)
	var state struct {
		ActiveCategories []string `json:"active_categories"`
		ActiveRegions    []string `json:"active_regions"`
		Favorites        []string `json:"favorites"`
	}
	decode(t, env, &state)
	assert.Equal(t, []string{"10"}, state.ActiveCategories)
	assert.Equal(t, []string{"North", "South", "unknown"}, state.ActiveRegions)
	assert.Empty(t, state.Favorites)

	var list struct {
		Values []string `json:"values"`
	}

	status, env = do(t, s, "PUT", "/api/v1/maps/world/filters/categories", `{"categories":["10","20"]}`)
	require.Equal(t, 200, status)
	decode(t, env, &list)
	assert.Equal(t, []string{"10", "20"}, list.Values)

	status, env = do(t, s, "POST", "/api/v1/maps/world/filters/categories/toggle", `{"category":"10"}`)
	require.Equal(t, 200, status)
	decode(t, env, &list)
	assert.Equal(t, []string{"20"}, list.Values)

	status, env = do(t, s, "PUT", "/api/v1/maps/world/filters/regions", `{"regions":["North"]}`)
	require.Equal(t, 200, status)
	decode(t, env, &list)
	assert.Equal(t, []string{"North"}, list.Values)

	status, env = do(t, s, "POST", "/api/v1/maps/world/filters/regions/toggle", `{"region":"South"}`)
	require.Equal(t, 200, status)
	decode(t, env, &list)
	assert.Equal(t, []string{"North", "South"}, list.Values)

	status, env = do(t, s, "PUT", "/api/v1/maps/world/filters/categories", `{}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	status, env = do(t, s, "PUT", "/api/v1/maps/world/filters/regions", `not json`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	status, _ = do(t, s, "PUT", "/api/v1/maps/moon/filters/regions", `{"regions":["North"]}`)
	assert.Equal(t, 404, status)
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t, nil)
	var list struct {
		Values []string `json:"values"`
	}

	status, env := do(t, s, "POST", "/api/v1/maps/world/favorites/10_1", "")
	require.Equal(t, 200, status)
	decode(t, env, &list)
	assert.Equal(t, []string{"10_1"}, list.Values)

	status, env = do(t, s, "GET", "/api/v1/maps/world/favorites", "")
	require.Equal(t, 200, status)
	decode(t, env, &list)
	assert.Equal(t, []string{"10_1"}, list.Values)

	status, env = do(t, s, "POST", "/api/v1/maps/world/favorites/10_1", "")
	require.Equal(t, 200, status)
	decode(t, env, &list)
	assert.Empty(t, list.Values)
}

func TestPathParamsOutliveRequest(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := do(t, s, "POST", "/api/v1/maps/world/select", "")
	require.Equal(t, 200, status)
	status, _ = do(t, s, "POST", "/api/v1/maps/world/favorites/10_1", "")
	require.Equal(t, 200, status)

	// последующие запросы переиспользуют буферы fasthttp
	for i := 0; i < 40; i++ {
		do(t, s, "GET", "/api/v1/maps/broken/filters", "")
		do(t, s, "POST", "/api/v1/maps/world/filters/regions/toggle", `{"region":"xxxxxxxxxxxxxxxx"}`)
	}

	status, env := do(t, s, "GET", "/api/v1/session/current", "")
	require.Equal(t, 200, status)
	var current struct {
		MapKey string `json:"map_key"`
	}
	decode(t, env, &current)
	assert.Equal(t, "world", current.MapKey)

	var list struct {
		Values []string `json:"values"`
	}
	status, env = do(t, s, "GET", "/api/v1/maps/world/favorites", "")
	require.Equal(t, 200, status)
	decode(t, env, &list)
	assert.Equal(t, []string{"10_1"}, list.Values)
}
