package api_test

import (
	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository/memory"
	"alcyxob/workout-tracker/internal/seed"
	"alcyxob/workout-tracker/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type testServer struct {
	router   *gin.Engine
	repo     *memory.WorkoutRepository
	storage  *fakeStorage
	metrics  *metrics.Manager
	registry *prometheus.Registry
}

type serverOption func(*api.RouterDeps)

func withoutExports() serverOption {
	return func(d *api.RouterDeps) { d.ExportService = nil }
}

func withCORSOrigins(origins ...string) serverOption {
	return func(d *api.RouterDeps) { d.CORSOrigins = origins }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	repo := memory.NewWorkoutRepository()
	_, err := seed.Seed(context.Background(), repo)
	require.NoError(t, err)

	m, reg := metrics.NewTestManagerAndRegistry()
	store := newFakeStorage()
	deps := api.RouterDeps{
		WorkoutService:  service.NewWorkoutService(repo, m),
		ExportService:   service.NewExportService(repo, memory.NewExportRepository(), store, 0, m),
		Health:          repo,
		Metrics:         m,
		MetricsGatherer: reg,
		CORSOrigins:     []string{"*"},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router := gin.New()
	api.SetupRoutes(router, deps)
	return &testServer{router: router, repo: repo, storage: store, metrics: m, registry: reg}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func randomSplitRequests(n int) []api.SplitRequest {
	splits := make([]api.SplitRequest, n)
	for i := range splits {
		splits[i] = api.SplitRequest{
			Day: gofakeit.WeekDay(),
			Exercises: []api.ExerciseRequest{
				{Name: gofakeit.Word(), Sets: gofakeit.Number(1, 5), Reps: "8-12", Weight: "30kg"},
				{Name: gofakeit.Word(), Sets: gofakeit.Number(1, 5), Reps: "15", Notes: gofakeit.Sentence(3)},
			},
		}
	}
	return splits
}

func splitsFromRequests(in []api.SplitRequest) []api.SplitResponse {
	out := make([]api.SplitResponse, len(in))
	for i, s := range in {
		exercises := make([]api.ExerciseResponse, len(s.Exercises))
		for j, e := range s.Exercises {
			exercises[j] = api.ExerciseResponse{Name: e.Name, Sets: e.Sets, Reps: e.Reps, Weight: e.Weight, Notes: e.Notes}
		}
		out[i] = api.SplitResponse{Day: s.Day, Exercises: exercises}
	}
	return out
}

func (s *testServer) createWorkout(t *testing.T, name string, splits []api.SplitRequest) api.WorkoutResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/workouts", api.CreateWorkoutRequest{Name: name, Splits: splits})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[api.WorkoutResponse](t, w)
}

func (s *testServer) predefined(t *testing.T) []api.WorkoutResponse {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/workouts/predefined", nil)
	require.Equal(t, http.StatusOK, w.Code)
	return decode[[]api.WorkoutResponse](t, w)
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s.repo.SetPingError(errors.New("server selection timeout"))
	w = s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "database unavailable", errorMessage(t, w))
}

func TestCreateThenGet(t *testing.T) {
	s := newTestServer(t)
	splits := randomSplitRequests(3)

	created := s.createWorkout(t, "Full Body", splits)
	assert.Equal(t, "Full Body", created.Name)
	assert.Equal(t, domain.WorkoutTypeCustom, created.Type)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, primitive.IsValidObjectID(created.ID))

	w := s.do(t, http.MethodGet, "/api/workouts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[api.WorkoutResponse](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Type, got.Type)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, splitsFromRequests(splits), got.Splits)
}

func TestCreateWorkout_IgnoresClientType(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/workouts", api.CreateWorkoutRequest{Name: "Sneaky", Type: "predefined"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, domain.WorkoutTypeCustom, decode[api.WorkoutResponse](t, w).Type)
}

func TestCreateWorkout_EmptySplitsEncodeAsArray(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/workouts", `{"name":"Rest week"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"splits":[]`)
}

func TestCreateWorkout_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"splits":[]}`},
		{"empty name", `{"name":""}`},
		{"blank name", `{"name":"   "}`},
		{"blank exercise name", `{"name":"A","splits":[{"day":"A","exercises":[{"name":" ","sets":3,"reps":"10"}]}]}`},
		{"zero sets", `{"name":"A","splits":[{"day":"A","exercises":[{"name":"Squat","sets":0,"reps":"10"}]}]}`},
		{"malformed json", `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			w := s.do(t, http.MethodPost, "/api/workouts", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotEmpty(t, errorMessage(t, w))
		})
	}
}

func TestListWorkouts(t *testing.T) {
	s := newTestServer(t)
	first := s.createWorkout(t, "First", nil)
	second := s.createWorkout(t, "Second", nil)

	w := s.do(t, http.MethodGet, "/api/workouts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]api.WorkoutResponse](t, w)
	assert.Len(t, all, 6)
	// Newest first
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	w = s.do(t, http.MethodGet, "/api/workouts/custom", nil)
	require.Equal(t, http.StatusOK, w.Code)
	custom := decode[[]api.WorkoutResponse](t, w)
	require.Len(t, custom, 2)
	for _, c := range custom {
		assert.Equal(t, domain.WorkoutTypeCustom, c.Type)
	}
	assert.Equal(t, second.ID, custom[0].ID)
}

func TestListCustom_EmptyIsArray(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/workouts/custom", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListPredefined_SeededOnce(t *testing.T) {
	s := newTestServer(t)
	require.Len(t, s.predefined(t), 4)

	// A second startup against the same store must not duplicate the templates
	_, err := seed.Seed(context.Background(), s.repo)
	require.NoError(t, err)
	predefined := s.predefined(t)
	require.Len(t, predefined, 4)

	names := make([]string, len(predefined))
	for i, p := range predefined {
		names[i] = p.Name
		assert.Equal(t, domain.WorkoutTypePredefined, p.Type)
		assert.NotEmpty(t, p.Splits)
	}
	assert.Equal(t, []string{"ABC - Clássico", "ABCDE - Avançado", "Push/Pull/Legs", "Upper/Lower"}, names)
}

func TestUpdateWorkout(t *testing.T) {
	s := newTestServer(t)
	created := s.createWorkout(t, "Before", randomSplitRequests(2))

	w := s.do(t, http.MethodPut, "/api/workouts/"+created.ID, api.UpdateWorkoutRequest{Name: "Y", Splits: []api.SplitRequest{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/workouts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[api.WorkoutResponse](t, w)
	assert.Equal(t, "Y", got.Name)
	assert.Empty(t, got.Splits)
	assert.Contains(t, w.Body.String(), `"splits":[]`)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.WorkoutTypeCustom, got.Type)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateWorkout_BlankName(t *testing.T) {
	s := newTestServer(t)
	created := s.createWorkout(t, "Keep me", nil)
	w := s.do(t, http.MethodPut, "/api/workouts/"+created.ID, `{"name":" "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteWorkout(t *testing.T) {
	s := newTestServer(t)
	created := s.createWorkout(t, "Temporary", nil)

	w := s.do(t, http.MethodDelete, "/api/workouts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"workout deleted"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/workouts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/workouts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPredefinedIsReadOnly(t *testing.T) {
	s := newTestServer(t)
	template := s.predefined(t)[0]

	w := s.do(t, http.MethodPut, "/api/workouts/"+template.ID, api.UpdateWorkoutRequest{Name: "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/api/workouts/"+template.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, service.ErrPredefinedReadOnly.Error(), errorMessage(t, w))

	assert.Len(t, s.predefined(t), 4)
}

func TestCopyWorkout(t *testing.T) {
	s := newTestServer(t)
	template := s.predefined(t)[3]
	require.Len(t, template.Splits, 2)

	w := s.do(t, http.MethodPost, "/api/workouts/"+template.ID+"/copy?new_name=X", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	copied := decode[api.WorkoutResponse](t, w)
	assert.NotEqual(t, template.ID, copied.ID)
	assert.Equal(t, "X", copied.Name)
	assert.Equal(t, domain.WorkoutTypeCustom, copied.Type)
	assert.Equal(t, template.Splits, copied.Splits)

	// Mutating the copy leaves the template untouched
	w = s.do(t, http.MethodPut, "/api/workouts/"+copied.ID, api.UpdateWorkoutRequest{Name: "X", Splits: randomSplitRequests(1)})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/workouts/"+template.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, template.Splits, decode[api.WorkoutResponse](t, w).Splits)
}

func TestCopyWorkout_NameFromBody(t *testing.T) {
	s := newTestServer(t)
	template := s.predefined(t)[0]

	w := s.do(t, http.MethodPost, "/api/workouts/"+template.ID+"/copy", api.CopyWorkoutRequest{NewName: "From body"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "From body", decode[api.WorkoutResponse](t, w).Name)

	// Query parameter wins over the body
	w = s.do(t, http.MethodPost, "/api/workouts/"+template.ID+"/copy?new_name=Query", api.CopyWorkoutRequest{NewName: "Body"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Query", decode[api.WorkoutResponse](t, w).Name)
}

func TestCopyWorkout_BlankName(t *testing.T) {
	s := newTestServer(t)
	template := s.predefined(t)[0]

	for _, target := range []string{
		"/api/workouts/" + template.ID + "/copy",
		"/api/workouts/" + template.ID + "/copy?new_name=",
		"/api/workouts/" + template.ID + "/copy?new_name=" + url.QueryEscape("   "),
	} {
		w := s.do(t, http.MethodPost, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}

	w := s.do(t, http.MethodGet, "/api/workouts/custom", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUnknownIDIsNotFound(t *testing.T) {
	s := newTestServer(t)
	ids := []string{primitive.NewObjectID().Hex(), "not-an-object-id", "123"}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			requests := []struct {
				method string
				target string
				body   any
			}{
				{http.MethodGet, "/api/workouts/" + id, nil},
				{http.MethodPut, "/api/workouts/" + id, api.UpdateWorkoutRequest{Name: "Y"}},
				{http.MethodDelete, "/api/workouts/" + id, nil},
				{http.MethodPost, "/api/workouts/" + id + "/copy?new_name=X", nil},
			}
			for _, r := range requests {
				w := s.do(t, r.method, r.target, r.body)
				assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", r.method, r.target)
				assert.Equal(t, service.ErrWorkoutNotFound.Error(), errorMessage(t, w))
			}
		})
	}
}

// Seed, list templates, personalize the ABC template, then find it among custom workouts.
func TestCopyTemplateScenario(t *testing.T) {
	s := newTestServer(t)

	var abc api.WorkoutResponse
	for _, p := range s.predefined(t) {
		if strings.HasPrefix(p.Name, "ABC -") {
			abc = p
		}
	}
	require.NotEmpty(t, abc.ID)

	w := s.do(t, http.MethodPost, "/api/workouts/"+abc.ID+"/copy?new_name="+url.QueryEscape("Meu ABC"), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/workouts/custom", nil)
	require.Equal(t, http.StatusOK, w.Code)
	custom := decode[[]api.WorkoutResponse](t, w)

	var matches []api.WorkoutResponse
	for _, c := range custom {
		if c.Name == "Meu ABC" {
			matches = append(matches, c)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, abc.Splits, matches[0].Splits)
}
