package api

import (
	"errors"
	"math"
	"net/http"
	"time"

	models "OilPulse/internal/domain/models"
	"OilPulse/internal/services/analytics"
	"OilPulse/internal/usecase"
	xhttp "OilPulse/pkg/http"
	xlogger "OilPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

const legacyDateLayout = "2006-01-02"

// AnalysisEchoHandler serves the read-only analysis API. The three
// legacy endpoints return bare JSON arrays with the original field
// names; /api/analysis returns the full enveloped report.
type AnalysisEchoHandler struct {
	logger *xlogger.Logger
	an     *usecase.Analyzer
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, an *usecase.Analyzer) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{logger: logger, an: an}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/historical_prices", h.HistoricalPrices)
	g.GET("/events", h.Events)
	g.GET("/change_points", h.ChangePoints)
	g.GET("/analysis", h.Analysis)
}

// legacy wire shapes

type pricePointDTO struct {
	Date  string  `json:"Date"`
	Price float64 `json:"Price"`
}

type eventDTO struct {
	StartDate string `json:"Start_Date"`
	EventName string `json:"Event_Name"`
	Category  string `json:"Category"`
}

type changePointDTO struct {
	Index      int     `json:"ChangePoint_Index"`
	Date       string  `json:"Date"`
	MeanBefore float64 `json:"Mean_Before"`
	MeanAfter  float64 `json:"Mean_After"`
	Difference float64 `json:"Difference"`
	Confidence float64 `json:"Confidence"`
}

type eventImpactDTO struct {
	Event            eventDTO        `json:"event"`
	NearestChange    *changePointDTO `json:"nearest_change_point"`
	LagDays          int             `json:"lag_days"`
	PriceDeltaWindow *float64        `json:"price_delta_window"`
}

type analysisReportDTO struct {
	ChangePoints []changePointDTO `json:"change_points"`
	Impacts      []eventImpactDTO `json:"impacts"`
	Warnings     []string         `json:"warnings"`
	ComputedAt   time.Time        `json:"computed_at"`
}

func (h *AnalysisEchoHandler) HistoricalPrices(c echo.Context) error {
	series := h.an.Series()
	out := make([]pricePointDTO, len(series.Points))
	for i, p := range series.Points {
		out[i] = pricePointDTO{Date: p.Date.Format(legacyDateLayout), Price: p.Price}
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.RawResponse(c, out)
}

func (h *AnalysisEchoHandler) Events(c echo.Context) error {
	events := h.an.Events()
	out := make([]eventDTO, len(events))
	for i, ev := range events {
		out[i] = toEventDTO(ev)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.RawResponse(c, out)
}

func (h *AnalysisEchoHandler) ChangePoints(c echo.Context) error {
	req := &models.ChangePointsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.an.ChangePoints(c.Request().Context(), *req)
	if err != nil {
		return h.analysisError(c, err)
	}
	out := make([]changePointDTO, len(res.ChangePoints))
	for i, cp := range res.ChangePoints {
		out[i] = toChangePointDTO(cp)
	}
	return xhttp.RawResponse(c, out)
}

func (h *AnalysisEchoHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.an.Analyze(c.Request().Context(), *req)
	if err != nil {
		return h.analysisError(c, err)
	}
	return xhttp.SuccessResponse(c, toReportDTO(report))
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AnalysisEchoHandler) analysisError(c echo.Context, err error) error {
	var insuff *analytics.InsufficientDataError
	if errors.As(err, &insuff) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(insuff.Error()).WithError(err))
	}
	if h.logger != nil {
		h.logger.Error("analysis usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, xhttp.InternalError("analysis failed").WithError(err))
}

func toEventDTO(ev models.Event) eventDTO {
	return eventDTO{
		StartDate: ev.StartDate.Format(legacyDateLayout),
		EventName: ev.Name,
		Category:  string(ev.Category),
	}
}

func toChangePointDTO(cp models.ChangePointEstimate) changePointDTO {
	return changePointDTO{
		Index:      cp.Index,
		Date:       cp.Date.Format(legacyDateLayout),
		MeanBefore: cp.MeanBefore,
		MeanAfter:  cp.MeanAfter,
		Difference: cp.Delta,
		Confidence: cp.Confidence,
	}
}

func toReportDTO(r *models.AnalysisReport) analysisReportDTO {
	dto := analysisReportDTO{
		ChangePoints: make([]changePointDTO, len(r.ChangePoints)),
		Impacts:      make([]eventImpactDTO, len(r.Impacts)),
		Warnings:     r.Warnings,
		ComputedAt:   r.ComputedAt,
	}
	if dto.Warnings == nil {
		dto.Warnings = []string{}
	}
	for i, cp := range r.ChangePoints {
		dto.ChangePoints[i] = toChangePointDTO(cp)
	}
	for i, imp := range r.Impacts {
		out := eventImpactDTO{
			Event:   toEventDTO(imp.Event),
			LagDays: imp.LagDays,
		}
		if imp.NearestChangePoint != nil {
			cp := toChangePointDTO(*imp.NearestChangePoint)
			out.NearestChange = &cp
		}
		// NaN has no JSON encoding; out-of-range events serialize as null.
		if !math.IsNaN(imp.PriceDeltaWindow) {
			v := imp.PriceDeltaWindow
			out.PriceDeltaWindow = &v
		}
		dto.Impacts[i] = out
	}
	return dto
}
