package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"acsim/internal/breaker"
	"acsim/internal/export"
	"acsim/internal/models"
	"acsim/internal/narrative"
	"acsim/internal/service"
	"acsim/internal/thermal"
	"acsim/internal/weather"
)

const (
	formBaseline  = "baseline"
	formOptimized = "optimized"
	formWeather   = "weather"
)

// compareRequest is the JSON body of POST /api/v1/simulations. Weather may
// be omitted when the server has a default series.
type compareRequest struct {
	Baseline  models.Scenario        `json:"baseline"`
	Optimized models.Scenario        `json:"optimized"`
	Weather   []models.WeatherSample `json:"weather,omitempty"`
}

// seriesPoint is one chart sample.
type seriesPoint struct {
	Time               time.Time `json:"time"`
	OutdoorTempC       float64   `json:"outdoor_temp_c"`
	BaselineSetpointC  float64   `json:"baseline_setpoint_c"`
	OptimizedSetpointC float64   `json:"optimized_setpoint_c"`
	BaselineKW         float64   `json:"baseline_kw"`
	OptimizedKW        float64   `json:"optimized_kw"`
	BaselineKWh        float64   `json:"baseline_kwh"`
	OptimizedKWh       float64   `json:"optimized_kwh"`
}

// @Summary      Run a comparison
// @Description  Simulates a baseline and an optimized scenario on the same hourly weather. Send JSON, or a multipart form with "baseline" and "optimized" JSON fields and an EPW file in "weather".
// @Tags         simulations
// @Accept       json,mpfd
// @Produce      json
// @Param        input  body      compareRequest  true  "scenarios and optional weather"
// @Success      201    {object}  models.Run
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/simulations [post]
// @Security     BearerAuth
func (h *Handler) createSimulation(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)

	params, err := h.compareParams(c)
	if err != nil {
		h.log.Infow("simulation_bad_request", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(params.Weather) == 0 {
		params.Weather = h.cfg.DefaultWeather
		params.Source = h.cfg.DefaultWeatherSource
	}
	params.UserID = currentUserID(c)

	run, err := h.services.Compare(c.Request.Context(), params)
	if err != nil {
		h.writeError(c, "simulation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

func (h *Handler) compareParams(c *gin.Context) (service.CompareParams, error) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		return h.compareParamsFromForm(c)
	}
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return service.CompareParams{}, err
	}
	p := service.CompareParams{Baseline: req.Baseline, Optimized: req.Optimized, Weather: req.Weather}
	if len(req.Weather) > 0 {
		p.Source = "request"
	}
	return p, nil
}

func (h *Handler) compareParamsFromForm(c *gin.Context) (service.CompareParams, error) {
	var p service.CompareParams
	if err := unmarshalFormField(c, formBaseline, &p.Baseline); err != nil {
		return p, err
	}
	if err := unmarshalFormField(c, formOptimized, &p.Optimized); err != nil {
		return p, err
	}

	fh, err := c.FormFile(formWeather)
	if errors.Is(err, http.ErrMissingFile) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read %s file: %w", formWeather, err)
	}
	samples, err := readEPWUpload(fh)
	if err != nil {
		return p, err
	}
	p.Weather = samples
	p.Source = fh.Filename
	return p, nil
}

func unmarshalFormField(c *gin.Context, field string, dst *models.Scenario) error {
	raw := c.PostForm(field)
	if raw == "" {
		return fmt.Errorf("missing form field %q", field)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("form field %q: %w", field, err)
	}
	return nil
}

func readEPWUpload(fh *multipart.FileHeader) ([]models.WeatherSample, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()
	return weather.ReadEPW(f)
}

// @Summary  List comparisons of the current user
// @Tags     simulations
// @Produce  json
// @Param    limit  query     int  false  "maximum number of runs"  example(20)
// @Success  200    {object}  map[string]interface{}  "count, runs"
// @Failure  400    {object}  map[string]string
// @Failure  401    {object}  map[string]string
// @Router   /api/v1/simulations [get]
// @Security BearerAuth
func (h *Handler) listSimulations(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit'; use a non-negative integer"})
			return
		}
		limit = v
	}

	runs, err := h.services.Runs.List(c.Request.Context(), service.RunFilter{
		UserID: currentUserID(c),
		Limit:  limit,
	})
	if err != nil {
		h.writeError(c, "runs_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(runs),
		"runs":  runs,
	})
}

// @Summary  Get one comparison
// @Tags     simulations
// @Produce  json
// @Param    id   path      string  true  "run id"
// @Success  200  {object}  models.Run
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/simulations/{id} [get]
// @Security BearerAuth
func (h *Handler) getSimulation(c *gin.Context) {
	run, ok := h.ownedRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

// @Summary  Hourly rows of one comparison
// @Tags     simulations
// @Produce  json
// @Param    id   path      string  true  "run id"
// @Success  200  {object}  map[string]interface{}  "count, hours"
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/simulations/{id}/hours [get]
// @Security BearerAuth
func (h *Handler) getSimulationHours(c *gin.Context) {
	run, ok := h.ownedRun(c)
	if !ok {
		return
	}
	hours, err := h.services.Runs.Hours(c.Request.Context(), run.ID)
	if err != nil {
		h.writeError(c, "run_hours_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(hours),
		"hours": hours,
	})
}

// @Summary  Chart series of one comparison
// @Tags     simulations
// @Produce  json
// @Param    id   path      string  true  "run id"
// @Success  200  {array}   seriesPoint
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/simulations/{id}/series [get]
// @Security BearerAuth
func (h *Handler) getSimulationSeries(c *gin.Context) {
	run, ok := h.ownedRun(c)
	if !ok {
		return
	}
	hours, err := h.services.Runs.Hours(c.Request.Context(), run.ID)
	if err != nil {
		h.writeError(c, "run_series_failed", err)
		return
	}
	c.JSON(http.StatusOK, toSeries(run, hours))
}

func toSeries(run models.Run, hours []models.RunHour) []seriesPoint {
	points := make([]seriesPoint, len(hours))
	for i, hr := range hours {
		points[i] = seriesPoint{
			Time:               hr.Time,
			OutdoorTempC:       hr.OutdoorTempC,
			BaselineSetpointC:  run.Baseline.SetpointC,
			OptimizedSetpointC: run.Optimized.SetpointC,
			BaselineKW:         hr.BaselineKW,
			OptimizedKW:        hr.OptimizedKW,
			BaselineKWh:        hr.BaselineKWh,
			OptimizedKWh:       hr.OptimizedKWh,
		}
	}
	return points
}

// @Summary  Download hourly rows as CSV
// @Tags     simulations
// @Produce  text/csv
// @Param    id   path      string  true  "run id"
// @Success  200  {string}  string
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/simulations/{id}/export.csv [get]
// @Security BearerAuth
func (h *Handler) exportSimulation(c *gin.Context) {
	run, ok := h.ownedRun(c)
	if !ok {
		return
	}
	hours, err := h.services.Runs.Hours(c.Request.Context(), run.ID)
	if err != nil {
		h.writeError(c, "run_export_failed", err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s.csv"`, run.ID))
	c.Status(http.StatusOK)
	if err := export.WriteRunHours(c.Writer, hours); err != nil {
		// headers are already sent
		h.log.Errorw("run_export_write_failed", "run_id", run.ID, "err", err)
	}
}

// @Summary      Generate a narrative
// @Description  Asks the language model for a commentary on the comparison and stores it on the run.
// @Tags         simulations
// @Produce      json
// @Param        id   path      string  true  "run id"
// @Success      200  {object}  models.Run
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/simulations/{id}/narrative [post]
// @Security     BearerAuth
func (h *Handler) generateNarrative(c *gin.Context) {
	run, ok := h.ownedRun(c)
	if !ok {
		return
	}
	updated, err := h.services.Narrative.Generate(c.Request.Context(), run.ID)
	if err != nil {
		h.writeError(c, "narrative_failed", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ownedRun loads :id and hides runs of other users behind a 404.
func (h *Handler) ownedRun(c *gin.Context) (models.Run, bool) {
	run, err := h.services.Runs.Get(c.Request.Context(), c.Param("id"))
	if err == nil && run.UserID != currentUserID(c) {
		err = service.ErrRunNotFound
	}
	if err != nil {
		h.writeError(c, "run_get_failed", err)
		return models.Run{}, false
	}
	return run, true
}

// writeError maps service errors to HTTP statuses.
func (h *Handler) writeError(c *gin.Context, event string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw(event, "path", c.FullPath(), "err", err)
	} else {
		h.log.Infow(event, "path", c.FullPath(), "err", err)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func errorStatus(err error) int {
	var (
		fieldErr    *models.FieldError
		lookupErr   *thermal.LookupError
		scenarioErr *service.ScenarioError
		parseErr    *weather.ParseError
	)
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, narrative.ErrDisabled), errors.Is(err, breaker.ErrOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrNarrativeFailed):
		return http.StatusBadGateway
	case errors.As(err, &scenarioErr), errors.As(err, &fieldErr), errors.As(err, &lookupErr),
		errors.As(err, &parseErr),
		errors.Is(err, service.ErrNoWeather), errors.Is(err, weather.ErrNoData),
		errors.Is(err, service.ErrInvalidTimeRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
