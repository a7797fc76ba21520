package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haatos/casetrack/internal/service"
	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TestCaseHandler struct {
	testCaseService service.TestCaseServicer
	ingestService   service.IngestServicer
	excelService    service.ExcelServicer
}

func NewTestCaseHandler(
	testCaseService service.TestCaseServicer,
	ingestService service.IngestServicer,
	excelService service.ExcelServicer,
) *TestCaseHandler {
	return &TestCaseHandler{
		testCaseService: testCaseService,
		ingestService:   ingestService,
		excelService:    excelService,
	}
}

func (h *TestCaseHandler) GetReport(c echo.Context) error {
	report, err := h.testCaseService.GetReport(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (h *TestCaseHandler) PostTestCase(c echo.Context) error {
	p := new(SingleUpsertParams)
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid test case data").WithInternal(err)
	}

	err := h.testCaseService.UpsertBatch(
		c.Request().Context(), p.RunDate, []service.UpsertParams{p.UpsertParams})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TestCaseHandler) PostTestCaseBatch(c echo.Context) error {
	p := new(BatchParams)
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid batch data").WithInternal(err)
	}

	if err := h.testCaseService.UpsertBatch(
		c.Request().Context(), p.RunDate, p.Items,
	); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TestCaseHandler) DeleteTestCase(c echo.Context) error {
	p := new(TestCaseParams)
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid test case ID").WithInternal(err)
	}

	if err := h.testCaseService.DeleteTestCase(c.Request().Context(), p.TestID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TestCaseHandler) PostResetRuns(c echo.Context) error {
	if err := h.testCaseService.ResetRuns(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TestCaseHandler) GetExportExcel(c echo.Context) error {
	report, err := h.testCaseService.GetReport(c.Request().Context())
	if err != nil {
		return err
	}
	data, err := h.excelService.RenderReport(report)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("test-cases-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename),
	)
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// PostImport accepts a multipart upload of result documents, parses them into
// a batch and applies it like any other upsert.
func (h *TestCaseHandler) PostImport(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(
			http.StatusBadRequest, "invalid multipart form").WithInternal(err)
	}
	files := form.File["files"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no result files provided")
	}

	blobs := make([]service.ResultBlob, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return err
		}
		blobs = append(blobs, service.ResultBlob{Name: fh.Filename, Data: data})
	}

	items, err := h.ingestService.ParseResultBundle(blobs)
	if err != nil {
		return err
	}
	runDate := c.FormValue("run_date")
	if err := h.testCaseService.ImportBatch(
		c.Request().Context(), runDate, items,
	); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"imported": len(items)})
}
