package main

import (
	"github.com/haatos/casetrack/internal"
	"github.com/haatos/casetrack/internal/handler"
	"github.com/haatos/casetrack/internal/service"
	"github.com/haatos/casetrack/internal/settings"
	"github.com/haatos/casetrack/internal/store"
	"github.com/haatos/casetrack/internal/util"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "modernc.org/sqlite"
)

func main() {
	if exists, _ := util.PathExists(internal.DotEnvPath); exists {
		settings.ReadDotenv(internal.DotEnvPath)
	}
	settings.Settings = settings.NewSettings()
	internal.InitializeColumnConfig()

	rdb := store.InitDatabase(true)
	defer rdb.Close()
	rwdb := store.InitDatabase(false)
	defer rwdb.Close()
	store.RunMigrations(rwdb, internal.MigrationsDir)

	scheduler := service.NewScheduler()
	defer scheduler.Shutdown()

	slotStore := store.NewRunSlotSQLiteStore(rdb, rwdb)
	testCaseStore := store.NewTestCaseSQLiteStore(rdb, rwdb, slotStore)
	regressionStore := store.NewRegressionSQLiteStore(rdb, rwdb)

	testCaseSvc := service.NewTestCaseService(testCaseStore, slotStore)
	regressionSvc := service.NewRegressionService(regressionStore, testCaseStore)
	ingestSvc := service.NewIngestService()
	excelSvc := service.NewExcelService()

	regressionSvc.ScheduleStaleSweep(scheduler)
	scheduler.Start()

	testCaseH := handler.NewTestCaseHandler(testCaseSvc, ingestSvc, excelSvc)
	regressionH := handler.NewRegressionHandler(regressionSvc, excelSvc)

	e := setupEcho()
	api := e.Group("/api")

	api.GET("/tests", testCaseH.GetReport)
	api.POST("/tests", testCaseH.PostTestCase)
	api.POST("/tests/batch", testCaseH.PostTestCaseBatch)
	api.DELETE("/tests/:test_id", testCaseH.DeleteTestCase)
	api.POST("/tests/runs/reset", testCaseH.PostResetRuns)
	api.GET("/tests/export/excel", testCaseH.GetExportExcel)
	api.POST("/tests/import", testCaseH.PostImport)

	api.POST("/regressions/start", regressionH.PostStart)
	api.POST("/regressions/stop", regressionH.PostStop)
	api.POST("/regressions/cancel", regressionH.PostCancel)
	api.GET("/regressions/state", regressionH.GetState)
	api.GET("/regressions", regressionH.GetRegressions)
	api.GET("/regressions/:regression_id", regressionH.GetRegression)
	api.GET("/regressions/:regression_id/snapshot", regressionH.GetSnapshot)
	api.GET("/regressions/:regression_id/export/excel", regressionH.GetExportExcel)

	internal.GracefulShutdown(e, settings.Settings.Port)
}

func setupEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(
		middleware.CORSWithConfig(internal.GetCORSConfig()),
		middleware.RateLimiterWithConfig(internal.GetRateLimiterConfig()),
	)
	return e
}
