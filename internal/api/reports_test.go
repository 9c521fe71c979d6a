package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

const validReport = `{
	"message": "Water over the sidewalk",
	"latitude": -23.5505,
	"longitude": -46.6333,
	"neighborhood": "Centro",
	"address": "Rua Direita, 100",
	"water_level": "30cm",
	"user_id": "user-9"
}`

type createResponse struct {
	Message string             `json:"message"`
	Data    models.FloodReport `json:"data"`
}

func TestCreateReport(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/flood-reports", validReport)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[createResponse](t, w)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, int64(1), resp.Data.ID)
	assert.Equal(t, models.ReportStatusPending, resp.Data.Status)
	assert.Equal(t, "moderate", resp.Data.Severity)
	assert.Equal(t, "30cm", resp.Data.WaterLevel)
	assert.True(t, resp.Data.ReportedAt.Equal(testNow))
	assert.Nil(t, resp.Data.ApprovedAt)

	assert.Equal(t, []models.ReportEventType{models.ReportCreated}, env.events.types())
}

func TestCreateReport_BadRequest(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"message":`},
		{"missing message", `{"latitude":1,"longitude":1}`},
		{"missing coordinates", `{"message":"x"}`},
		{"latitude out of range", `{"message":"x","latitude":91,"longitude":0}`},
		{"negative affected", `{"message":"x","latitude":0,"longitude":0,"affected_people":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/flood-reports", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, env.events.types())
}

func TestCreateReport_DatabaseError(t *testing.T) {
	env := setupTestEnv(t)
	env.repo.err = errDB

	w := env.do(http.MethodPost, "/flood-reports", validReport)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[map[string]string](t, w)
	assert.NotEmpty(t, resp["error"])
	assert.NotContains(t, resp["error"], "locked")
}

func TestReportLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/flood-reports", validReport)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[createResponse](t, w).Data.ID

	pending := decode[[]models.FloodReport](t, env.do(http.MethodGet, "/flood-reports?approved=0", ""))
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Empty(t, decode[[]models.FloodReport](t, env.do(http.MethodGet, "/flood-reports?approved=1", "")))

	env.clock.Advance(time.Hour)
	w = env.do(http.MethodPut, fmt.Sprintf("/flood-reports/approve/%d", id), "")
	require.Equal(t, http.StatusOK, w.Code)

	approved := decode[[]models.FloodReport](t, env.do(http.MethodGet, "/flood-reports?approved=1", ""))
	require.Len(t, approved, 1)
	require.NotNil(t, approved[0].ApprovedAt)
	assert.True(t, approved[0].ApprovedAt.Equal(testNow.Add(time.Hour)))

	w = env.do(http.MethodDelete, fmt.Sprintf("/flood-reports/%d", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.FloodReport](t, env.do(http.MethodGet, "/flood-reports", "")))

	assert.Equal(t, []models.ReportEventType{
		models.ReportCreated,
		models.ReportApproved,
		models.ReportDeleted,
	}, env.events.types())
}

func TestListReports_NewestFirstAndUnfiltered(t *testing.T) {
	env := setupTestEnv(t)

	env.do(http.MethodPost, "/flood-reports", validReport)
	env.clock.Advance(time.Minute)
	env.do(http.MethodPost, "/flood-reports", validReport)
	env.do(http.MethodPut, "/flood-reports/approve/1", "")

	all := decode[[]models.FloodReport](t, env.do(http.MethodGet, "/flood-reports", ""))
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].ID)

	// unknown filter values list everything
	all = decode[[]models.FloodReport](t, env.do(http.MethodGet, "/flood-reports?approved=maybe", ""))
	assert.Len(t, all, 2)
}

func TestListReports_DatabaseError(t *testing.T) {
	env := setupTestEnv(t)
	env.repo.err = errDB

	w := env.do(http.MethodGet, "/flood-reports", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListReportsGeoJSON(t *testing.T) {
	env := setupTestEnv(t)
	env.do(http.MethodPost, "/flood-reports", validReport)

	w := env.do(http.MethodGet, "/flood-reports.geojson", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	fc := decode[FeatureCollection](t, w)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, []float64{-46.6333, -23.5505}, fc.Features[0].Geometry.Coordinates)
	assert.Equal(t, "pending", fc.Features[0].Properties["status"])
}

func TestApproveDelete_Errors(t *testing.T) {
	env := setupTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, "/flood-reports/approve/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, "/flood-reports/approve/42", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodDelete, "/flood-reports/0", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/flood-reports/42", "").Code)

	env.repo.err = errDB
	assert.Equal(t, http.StatusInternalServerError, env.do(http.MethodPut, "/flood-reports/approve/1", "").Code)
	assert.Equal(t, http.StatusInternalServerError, env.do(http.MethodDelete, "/flood-reports/1", "").Code)

	assert.Empty(t, env.events.types())
}

func TestModeration_RequiresToken(t *testing.T) {
	env := setupTestEnv(t, withRequireAdmin())
	env.do(http.MethodPost, "/flood-reports", validReport)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPut, "/flood-reports/approve/1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodDelete, "/flood-reports/1", "").Code)

	w := env.do(http.MethodPut, "/flood-reports/approve/1", "", "Authorization", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodDelete, "/flood-reports/1", "", "Authorization", "Bearer admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
}
