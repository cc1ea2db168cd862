package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/nagnet2050/quick-sale-hr/internal/config"
	appHTTP "github.com/nagnet2050/quick-sale-hr/internal/handler/http"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/cron"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/database"
	"github.com/nagnet2050/quick-sale-hr/internal/pkg/jwt"
	"github.com/nagnet2050/quick-sale-hr/internal/repository/postgresql"
	attendanceService "github.com/nagnet2050/quick-sale-hr/internal/service/attendance"
	employeeService "github.com/nagnet2050/quick-sale-hr/internal/service/employee"
	leaveService "github.com/nagnet2050/quick-sale-hr/internal/service/leave"
	loanService "github.com/nagnet2050/quick-sale-hr/internal/service/loan"
	payrollService "github.com/nagnet2050/quick-sale-hr/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "quick-sale-hr"),
	)

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	aggregator := attendanceService.NewAggregator(attendanceRepo, cfg.Payroll.Calendar())
	partitioner := leaveService.NewPartitioner(leaveRepo)
	amortizer := loanService.NewAmortizer(loanRepo, cfg.Payroll.AutoLoanDeduction)
	taxCalc := payrollService.NewTaxCalculator(cfg.Payroll)
	composer := payrollService.NewComposer(employeeRepo, aggregator, partitioner, amortizer, taxCalc, cfg.Payroll)

	payrollSvc := payrollService.NewPayrollService(db, payrollRepo, employeeRepo, composer, amortizer, logger)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	loanSvc := loanService.NewLoanService(loanRepo, employeeRepo, amortizer)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	loanHandler := appHTTP.NewLoanHandler(loanSvc)

	if cfg.AutoGenerate {
		scheduler := cron.NewScheduler()
		cron.NewPayrollJobs(payrollSvc).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(JWTService, payrollHandler, employeeHandler, loanHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
