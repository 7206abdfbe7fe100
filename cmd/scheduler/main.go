package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/furkanbegen/credit-module/internal/config"
	"github.com/furkanbegen/credit-module/internal/repository"
)

func main() {
	log.Println("Starting credit-module scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Schedule tasks
	setupCronJobs(c, cfg, loanRepo)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loanRepo repository.LoanRepository) {
	// Daily reminder job for overdue installments
	_, err := c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		log.Println("Running overdue installment reminder job...")
		reportOverdueInstallments(loanRepo)
	})
	if err != nil {
		log.Fatalf("Error scheduling overdue installment reminder job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

// reportOverdueInstallments logs every unpaid installment past its due date,
// grouped per loan. Notification delivery is out of scope; operations follow
// these logs.
func reportOverdueInstallments(loanRepo repository.LoanRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	overdue, err := loanRepo.ListOverdueInstallments(ctx, now)
	if err != nil {
		log.Printf("Error listing overdue installments: %v", err)
		return
	}

	if len(overdue) == 0 {
		log.Println("No overdue installments")
		return
	}

	byLoan := make(map[string]int)
	for _, installment := range overdue {
		byLoan[installment.LoanID.String()]++
		daysLate := int(now.Sub(installment.DueDate).Hours() / 24)
		log.Printf("Overdue installment %s on loan %s: amount=%s due=%s (%d days late)",
			installment.ID, installment.LoanID, installment.Amount, installment.DueDate.Format("2006-01-02"), daysLate)
	}

	log.Printf("Overdue installment report: %d installments across %d loans", len(overdue), len(byLoan))
}
