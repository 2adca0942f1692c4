package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tempora-hr/attendance-backend-go/internal/config"
	"github.com/tempora-hr/attendance-backend-go/internal/domain/attendance"
	appHTTP "github.com/tempora-hr/attendance-backend-go/internal/handler/http"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/cron"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/database"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/jwt"
	"github.com/tempora-hr/attendance-backend-go/internal/pkg/sse"
	"github.com/tempora-hr/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/tempora-hr/attendance-backend-go/internal/service/attendance"
	notificationService "github.com/tempora-hr/attendance-backend-go/internal/service/notification"
	reportService "github.com/tempora-hr/attendance-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	location, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		fmt.Println("Error loading organization timezone:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	overrideRepo := postgresql.NewOverrideRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()
	systemClock := clock.System()

	policy := attendance.Policy{
		Location:              location,
		ScheduledStart:        cfg.Attendance.ScheduledStart,
		LateThresholdMinutes:  cfg.Attendance.LateThresholdMinutes,
		HalfDayThresholdHours: cfg.Attendance.HalfDayThresholdHours,
		AbsenceCutoff:         cfg.Attendance.AbsenceCutoff,
	}

	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub, systemClock)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		overrideRepo,
		employeeRepo,
		notificationSvc,
		policy,
		systemClock,
	)
	reportSvc := reportService.NewReportService(attendanceRepo, employeeRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc, jwtService)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(
		jwtService,
		attendanceHandler,
		notificationHandler,
		reportHandler,
	)

	scheduler := cron.NewScheduler()
	jobs := cron.NewAttendanceJobs(attendanceSvc, location, systemClock)
	jobs.RegisterJobs(scheduler, cfg.Attendance.SweepInterval)
	scheduler.Start()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	scheduler.Stop()
	notificationSvc.Stop()
	slog.Info("Shutdown complete")
}
