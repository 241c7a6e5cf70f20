package api

import (
	"github.com/labstack/echo/v4"

	"StockCast/internal/domain/models"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
)

// ForecastHandler exposes the prediction pipeline over HTTP.
type ForecastHandler struct {
	logger     *xlogger.Logger
	forecaster *usecase.Forecaster
	validator  *usecase.Validator
}

func NewForecastHandler(logger *xlogger.Logger, forecaster *usecase.Forecaster, validator *usecase.Validator) *ForecastHandler {
	return &ForecastHandler{logger: logger, forecaster: forecaster, validator: validator}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/forecast", h.Forecast)
	g.POST("/validate", h.Validate)
	g.GET("/predictions/:ticker", h.Predictions)
	g.GET("/accuracy", h.Accuracy)
}

func (h *ForecastHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.forecaster.Forecast(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("forecast usecase error",
			xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Validate(c echo.Context) error {
	report, err := h.validator.Run(c.Request().Context())
	if err != nil {
		h.logger.Error("validation run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ForecastHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	recs, err := h.forecaster.Predictions(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		h.logger.Error("predictions query error",
			xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, toPredictionViews(recs))
}

func (h *ForecastHandler) Accuracy(c echo.Context) error {
	ticker := c.QueryParam("ticker")

	stats, err := h.forecaster.Accuracy(c.Request().Context(), ticker)
	if err != nil {
		h.logger.Error("accuracy query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, stats)
}

// toAppError maps pipeline error kinds to transport errors.
func toAppError(err error) error {
	switch models.KindOf(err) {
	case models.KindInvalidRequest:
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case models.KindInsufficientData:
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	case models.KindUpstreamFetch:
		return xhttp.BadGatewayError(err.Error()).WithError(err)
	case models.KindTraining, models.KindPersistence:
		return xhttp.InternalError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
