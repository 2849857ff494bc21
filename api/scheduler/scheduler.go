// Package scheduler runs the periodic pharmacy maintenance jobs: the nightly
// stock cache reconciliation and the daily expiry and low-stock alert email.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/character8/medicx-clinic-central-main/databases"
	"github.com/character8/medicx-clinic-central-main/ledger"
	"github.com/character8/medicx-clinic-central-main/models"
	"github.com/character8/medicx-clinic-central-main/reports"
	templates "github.com/character8/medicx-clinic-central-main/templates/html"
)

// LowStockThreshold is the derived quantity below which a medicine lands in
// the daily alert email.
const LowStockThreshold = 10

// ExpiryWindow is how far ahead the expiry scan looks.
const ExpiryWindow = 30 * 24 * time.Hour

// Scheduler handles the periodic background jobs
type Scheduler struct {
	cron       *cron.Cron
	Service    *reports.Service
	MDB        databases.MedicineDatabase
	SDB        databases.StockEventDatabase
	AlertEmail string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(service *reports.Service, mDB databases.MedicineDatabase, sDB databases.StockEventDatabase, alertEmail string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Service:    service,
		MDB:        mDB,
		SDB:        sDB,
		AlertEmail: alertEmail,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Reconcile cached stock quantities nightly at 1 AM UTC
	_, err := s.cron.AddFunc("0 1 * * *", s.reconcileStockCaches)
	if err != nil {
		zap.S().Errorw("failed to register reconciliation job", "error", err)
	}

	// Scan for expiring and low-stock medicines daily at 7 AM UTC
	_, err = s.cron.AddFunc("0 7 * * *", s.sendStockAlerts)
	if err != nil {
		zap.S().Errorw("failed to register stock alert job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("pharmacy scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("pharmacy scheduler stopped")
}

// reconcileStockCaches recomputes every medicine's cached quantity from its
// ledger and logs any negative derivations.
func (s *Scheduler) reconcileStockCaches() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	zap.S().Info("running stock cache reconciliation job")

	violations, err := s.Service.ReconcileStockCaches(ctx)
	if err != nil {
		zap.S().Errorw("stock cache reconciliation failed", "error", err)
		return
	}
	for _, v := range violations {
		zap.S().Errorw("stock ledger derives negative",
			"medicineID", v.MedicineID,
			"derived", v.Derived,
		)
	}
	if len(violations) > 0 && s.AlertEmail != "" {
		var b strings.Builder
		b.WriteString("The nightly reconciliation found stock ledgers deriving below zero:\n\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "medicine %s derives to %d\n", v.MedicineID, v.Derived)
		}
		subject := "Stock Ledger Integrity Alert"
		htmlContent := templates.RenderGenericEmail(subject, b.String())
		if err := s.sendEmail(s.AlertEmail, subject, htmlContent, b.String()); err != nil {
			zap.S().Errorw("failed to send integrity alert email", "error", err)
		}
	}
	zap.S().Infow("stock cache reconciliation finished", "violations", len(violations))
}

// sendStockAlerts emails the pharmacy address with medicines expiring within
// the window or with derived stock below the threshold.
func (s *Scheduler) sendStockAlerts() {
	if s.AlertEmail == "" {
		zap.S().Debug("no alert email configured, skipping stock alert job")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	medicines, err := s.MDB.Find(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to fetch medicines for alert job", "error", err)
		return
	}

	cutoff := time.Now().UTC().Add(ExpiryWindow)
	var expiring, lowStock []models.Medicine
	for _, m := range medicines {
		if m.ExpiryDate != "" {
			if expiry, err := time.Parse("2006-01-02", m.ExpiryDate); err == nil && expiry.Before(cutoff) {
				expiring = append(expiring, m)
			}
		}

		events, err := s.SDB.Find(ctx, bson.M{"medicine_id": m.ID})
		if err != nil {
			zap.S().Errorw("skipping medicine during alert scan", "medicineID", m.ID, "error", err)
			continue
		}
		derived := ledger.DeriveQuantity(events)
		if derived < LowStockThreshold {
			m.TotalQuantity = derived
			lowStock = append(lowStock, m)
		}
	}

	if len(expiring) == 0 && len(lowStock) == 0 {
		zap.S().Debug("no expiring or low-stock medicines, skipping alert email")
		return
	}

	subject := "Daily Pharmacy Stock Alert"
	htmlContent := templates.RenderStockAlertEmail(subject, expiring, lowStock, LowStockThreshold)
	plainText := "Some medicines are expiring soon or running low on stock."

	if err := s.sendEmail(s.AlertEmail, subject, htmlContent, plainText); err != nil {
		zap.S().Errorw("failed to send stock alert email", "error", err)
		return
	}
	zap.S().Infow("sent stock alert email", "expiring", len(expiring), "lowStock", len(lowStock))
}

func (s *Scheduler) sendEmail(toEmail, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("MedicX Clinic", "no-reply@medicx-clinic.example")
	to := mail.NewEmail("Pharmacy", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))

	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}
