package handler

import (
	"fmt"
	"net/http"

	"github.com/haatos/casetrack/internal/service"
	"github.com/haatos/casetrack/internal/store"
	"github.com/labstack/echo/v4"
)

type RegressionHandler struct {
	regressionService service.RegressionServicer
	excelService      service.ExcelServicer
}

func NewRegressionHandler(
	regressionService service.RegressionServicer,
	excelService service.ExcelServicer,
) *RegressionHandler {
	return &RegressionHandler{
		regressionService: regressionService,
		excelService:      excelService,
	}
}

func (h *RegressionHandler) PostStart(c echo.Context) error {
	p := new(StartRegressionParams)
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid regression data").WithInternal(err)
	}

	r, err := h.regressionService.Start(c.Request().Context(), p.ReleaseName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, withoutPayload(r))
}

func (h *RegressionHandler) PostStop(c echo.Context) error {
	p := new(StopRegressionParams)
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid regression results").WithInternal(err)
	}

	r, err := h.regressionService.Stop(c.Request().Context(), p.Results)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, withoutPayload(r))
}

func (h *RegressionHandler) PostCancel(c echo.Context) error {
	state, err := h.regressionService.Cancel(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

func (h *RegressionHandler) GetState(c echo.Context) error {
	state, err := h.regressionService.GetState(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

func (h *RegressionHandler) GetRegressions(c echo.Context) error {
	regressions, err := h.regressionService.ListRegressions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, regressions)
}

func (h *RegressionHandler) GetRegression(c echo.Context) error {
	p := new(RegressionParams)
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid regression ID").WithInternal(err)
	}

	r, err := h.regressionService.GetRegression(c.Request().Context(), p.RegressionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, withoutPayload(r))
}

func (h *RegressionHandler) GetSnapshot(c echo.Context) error {
	p := new(RegressionParams)
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid regression ID").WithInternal(err)
	}

	snapshot, err := h.regressionService.GetSnapshot(c.Request().Context(), p.RegressionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *RegressionHandler) GetExportExcel(c echo.Context) error {
	p := new(RegressionParams)
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid regression ID").WithInternal(err)
	}

	snapshot, err := h.regressionService.GetSnapshot(c.Request().Context(), p.RegressionID)
	if err != nil {
		return err
	}
	data, err := h.excelService.RenderSnapshot(snapshot)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("regression-%s.xlsx", snapshot.RegressionDate)
	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename),
	)
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// withoutPayload strips the raw snapshot blob from API responses. Clients read
// snapshots through the dedicated endpoints instead.
func withoutPayload(r *store.Regression) *store.Regression {
	if r == nil || r.Payload == nil {
		return r
	}
	out := *r
	out.Payload = nil
	return &out
}
