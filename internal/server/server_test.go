package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/limaJavier/timetabling/internal/config"
	"github.com/limaJavier/timetabling/internal/logger"
	"github.com/limaJavier/timetabling/internal/metrics"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *Error          `json:"error"`
	Meta  map[string]any  `json:"meta"`
}

type report struct {
	Strategy string         `json:"strategy"`
	Coloring map[string]int `json:"coloring"`
	Colors   int            `json:"colors"`
	Graph    struct {
		Vertices int `json:"vertices"`
		Edges    int `json:"edges"`
	} `json:"graph"`
	Timetable *struct {
		K            int     `json:"k"`
		Weeks        int     `json:"weeks"`
		Satisfied    int     `json:"satisfied"`
		Total        int     `json:"total"`
		Satisfaction float64 `json:"satisfaction"`
		CourseToSlot map[string]struct {
			Week int    `json:"week"`
			Day  string `json:"day"`
			Half string `json:"half"`
		} `json:"course_to_slot"`
	} `json:"timetable"`
}

func testConfig() *config.Config {
	return &config.Config{
		Env:        config.EnvDevelopment,
		Strategy:   "dsatur",
		Matcher:    "augmenting",
		ExactLimit: 30,
		Input: config.InputConfig{
			NodeColumn:       "course_id",
			PreferenceColumn: "preferred_time",
			Constraints:      []string{"room", "lecturer"},
		},
		Server: config.ServerConfig{Port: 3001, MaxBodyBytes: 1 << 20},
	}
}

func newTestRouter(t *testing.T, options ...func(*config.Config)) (*gin.Engine, *metrics.Recorder, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	for _, option := range options {
		option(cfg)
	}
	core, logs := observer.New(zap.InfoLevel)
	recorder := metrics.New()
	return NewRouter(cfg, zap.New(core), recorder), recorder, logs
}

// pathGraph is a request body for the path v0 - v1 - ... - v(n-1).
func pathGraph(n int) map[string]any {
	order := make([]string, n)
	adjacency := make(map[string][]string, n)
	for i := range order {
		order[i] = fmt.Sprintf("v%d", i)
		if i > 0 {
			adjacency[order[i]] = []string{order[i-1]}
		}
	}
	return map[string]any{"order": order, "adjacency": adjacency}
}

func post(t *testing.T, router http.Handler, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	var decoded envelope
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &decoded))
	return response, decoded
}

var courseRows = []map[string]any{
	{"course_id": "K1", "room": "R1", "lecturer": "L1", "preferred_time": "Morning"},
	{"course_id": "K2", "room": "R1", "lecturer": "L2", "preferred_time": "Afternoon"},
	{"course_id": "K3", "room": "R2", "lecturer": "L1", "preferred_time": "afternoon"},
	{"course_id": "K4", "room": "R3", "lecturer": "L3", "preferred_time": ""},
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t)

	response := httptest.NewRecorder()
	router.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"status":"ok"}`, response.Body.String())
}

func TestStrategies(t *testing.T) {
	router, _, _ := newTestRouter(t)

	response := httptest.NewRecorder()
	router.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/strategies", nil))

	require.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), `"strategies":["backtracking","dsatur","greedy","rlf"]`)
	assert.Contains(t, response.Body.String(), `"matchers":["augmenting","hopcroft-karp"]`)
}

func TestColorings(t *testing.T) {
	t.Run("Adjacency", func(t *testing.T) {
		//** Arrange
		router, _, logs := newTestRouter(t)
		body := map[string]any{
			"order":     []string{"a", "b", "c", "d"},
			"adjacency": map[string][]string{"a": {"b"}, "b": {"a", "c"}, "c": {"b", "d"}, "d": {"c"}},
		}

		//** Act
		response, decoded := post(t, router, "/colorings", body)

		//** Assert
		require.Equal(t, http.StatusOK, response.Code)
		var got report
		require.NoError(t, json.Unmarshal(decoded.Data, &got))
		assert.Equal(t, "dsatur", got.Strategy)
		assert.Equal(t, map[string]int{"a": 1, "b": 0, "c": 1, "d": 0}, got.Coloring)
		assert.Equal(t, 2, got.Colors)
		assert.Equal(t, 3, got.Graph.Edges)
		assert.Nil(t, got.Timetable)

		runID := response.Header().Get(RunIDHeader)
		assert.NotEmpty(t, runID)
		assert.Equal(t, runID, decoded.Meta[logger.RunIDKey])
		assert.Equal(t, 1, logs.FilterMessage("graph colored").FilterField(zap.String(logger.RunIDKey, runID)).Len())
	})

	t.Run("Rows", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		response, decoded := post(t, router, "/colorings", map[string]any{"rows": courseRows, "strategy": "backtracking"})

		require.Equal(t, http.StatusOK, response.Code)
		var got report
		require.NoError(t, json.Unmarshal(decoded.Data, &got))
		assert.Equal(t, 4, got.Graph.Vertices)
		assert.Equal(t, 2, got.Graph.Edges)
		assert.Equal(t, 2, got.Colors)
	})

	t.Run("Client run id is kept", func(t *testing.T) {
		router, _, _ := newTestRouter(t)
		request := httptest.NewRequest(http.MethodPost, "/colorings", bytes.NewReader([]byte(`{"order":["x"]}`)))
		request.Header.Set("Content-Type", "application/json")
		request.Header.Set(RunIDHeader, "run-42")

		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "run-42", response.Header().Get(RunIDHeader))
	})

	t.Run("Rejected requests", func(t *testing.T) {
		for name, body := range map[string]any{
			"Unknown strategy": map[string]any{"order": []string{"a"}, "strategy": "welsh-powell"},
			"No graph":         map[string]any{"strategy": "rlf"},
			"Missing column":   map[string]any{"rows": courseRows, "constraints": []string{"cohort"}},
		} {
			t.Run(name, func(t *testing.T) {
				router, _, _ := newTestRouter(t)

				response, decoded := post(t, router, "/colorings", body)

				assert.Equal(t, http.StatusBadRequest, response.Code)
				require.NotNil(t, decoded.Error)
				assert.Equal(t, CodeValidation, decoded.Error.Code)
			})
		}
	})
}

func TestTimetables(t *testing.T) {
	t.Run("Rows", func(t *testing.T) {
		//** Arrange
		router, recorder, _ := newTestRouter(t)

		//** Act
		response, decoded := post(t, router, "/timetables", map[string]any{"rows": courseRows, "matcher": "hopcroft-karp"})

		//** Assert
		require.Equal(t, http.StatusOK, response.Code)
		var got report
		require.NoError(t, json.Unmarshal(decoded.Data, &got))
		require.NotNil(t, got.Timetable)
		assert.Equal(t, 1, got.Timetable.Weeks)
		assert.Equal(t, 4, got.Timetable.Total)
		assert.Equal(t, 3, got.Timetable.Satisfied)
		assert.Equal(t, "Morning", got.Timetable.CourseToSlot["K1"].Half)
		assert.Equal(t, "Afternoon", got.Timetable.CourseToSlot["K2"].Half)
		assert.Equal(t, "Afternoon", got.Timetable.CourseToSlot["K3"].Half)

		metricsResponse := httptest.NewRecorder()
		recorder.Handler().ServeHTTP(metricsResponse, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Contains(t, metricsResponse.Body.String(), `timetable_builds_total{outcome="ok"} 1`)
		assert.Contains(t, metricsResponse.Body.String(), `http_request_duration_seconds_count{method="POST",path="/timetables",status="200"} 1`)
	})

	t.Run("Explicit coloring and preferences", func(t *testing.T) {
		router, _, _ := newTestRouter(t)
		body := map[string]any{
			"order":       []string{"a", "b"},
			"adjacency":   map[string][]string{"a": {"b"}},
			"coloring":    map[string]int{"a": 4, "b": 9},
			"preferences": map[string]string{"a": "Afternoon", "b": "Afternoon"},
		}

		response, decoded := post(t, router, "/timetables", body)

		require.Equal(t, http.StatusOK, response.Code)
		var got report
		require.NoError(t, json.Unmarshal(decoded.Data, &got))
		require.NotNil(t, got.Timetable)
		assert.Equal(t, 2, got.Timetable.K)
		assert.Equal(t, 2, got.Timetable.Satisfied)
		assert.Equal(t, 1.0, got.Timetable.Satisfaction)
	})

	t.Run("Improper coloring", func(t *testing.T) {
		router, _, _ := newTestRouter(t)
		body := map[string]any{
			"order":     []string{"a", "b"},
			"adjacency": map[string][]string{"a": {"b"}},
			"coloring":  map[string]int{"a": 0, "b": 0},
		}

		response, decoded := post(t, router, "/timetables", body)

		assert.Equal(t, http.StatusUnprocessableEntity, response.Code)
		require.NotNil(t, decoded.Error)
		assert.Equal(t, CodeInvalidRun, decoded.Error.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		router, _, _ := newTestRouter(t)
		request := httptest.NewRequest(http.MethodPost, "/timetables", bytes.NewReader([]byte(`{"rows":`)))
		request.Header.Set("Content-Type", "application/json")

		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Unknown matcher", func(t *testing.T) {
		router, _, _ := newTestRouter(t)

		response, _ := post(t, router, "/timetables", map[string]any{"order": []string{"a"}, "matcher": "auction"})

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})
}

func TestLimits(t *testing.T) {
	t.Run("Backtracking above the exact limit", func(t *testing.T) {
		for _, path := range []string{"/colorings", "/timetables"} {
			t.Run(path, func(t *testing.T) {
				//** Arrange
				router, _, logs := newTestRouter(t)
				body := pathGraph(31)
				body["strategy"] = "backtracking"

				//** Act
				response, decoded := post(t, router, path, body)

				//** Assert
				assert.Equal(t, http.StatusBadRequest, response.Code)
				require.NotNil(t, decoded.Error)
				assert.Equal(t, CodeValidation, decoded.Error.Code)
				assert.Contains(t, decoded.Error.Message, "at most 30 vertices, got 31")
				assert.Zero(t, logs.FilterMessage("graph colored").Len())
			})
		}
	})

	t.Run("Backtracking at the exact limit", func(t *testing.T) {
		router, _, _ := newTestRouter(t, func(cfg *config.Config) { cfg.ExactLimit = 6 })
		body := pathGraph(6)
		body["strategy"] = "backtracking"

		response, decoded := post(t, router, "/colorings", body)

		require.Equal(t, http.StatusOK, response.Code)
		var got report
		require.NoError(t, json.Unmarshal(decoded.Data, &got))
		assert.Equal(t, 2, got.Colors)
	})

	t.Run("Configured backtracking default is limited too", func(t *testing.T) {
		router, _, _ := newTestRouter(t, func(cfg *config.Config) {
			cfg.Strategy = "backtracking"
			cfg.ExactLimit = 3
		})

		response, _ := post(t, router, "/colorings", pathGraph(4))

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Heuristics ignore the exact limit", func(t *testing.T) {
		router, _, _ := newTestRouter(t)
		body := pathGraph(31)
		body["strategy"] = "dsatur"

		response, decoded := post(t, router, "/colorings", body)

		require.Equal(t, http.StatusOK, response.Code)
		var got report
		require.NoError(t, json.Unmarshal(decoded.Data, &got))
		assert.Equal(t, 31, got.Graph.Vertices)
		assert.Equal(t, 2, got.Colors)
	})

	t.Run("Body above the size limit", func(t *testing.T) {
		//** Arrange
		router, _, _ := newTestRouter(t, func(cfg *config.Config) { cfg.Server.MaxBodyBytes = 256 })
		body := pathGraph(40)
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		require.Greater(t, len(payload), 256)

		//** Act
		response, decoded := post(t, router, "/colorings", body)

		//** Assert
		assert.Equal(t, http.StatusBadRequest, response.Code)
		require.NotNil(t, decoded.Error)
		assert.Equal(t, CodeValidation, decoded.Error.Code)
		assert.Contains(t, decoded.Error.Message, "request body too large")
	})
}

func TestClassify(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, classify(assert.AnError).Status)
	assert.Equal(t, CodeInternal, classify(assert.AnError).Code)
}
