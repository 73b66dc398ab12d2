// internal/services/admin_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/beatstore/backend/internal/models"
)

type AdminService struct {
	db *gorm.DB
}

// AnalyticsReport aggregates the last 30 days of platform activity.
type AnalyticsReport struct {
	RegistrationsByDay map[string]int64 `json:"registrations_by_day"`
	PurchasesByDay     map[string]int64 `json:"purchases_by_day"`
	TotalUsers         int64            `json:"total_users"`
	TotalBeats         int64            `json:"total_beats"`
	TotalPurchases     int64            `json:"total_purchases"`
	PaidPurchases      int64            `json:"paid_purchases"`
	FreePurchases      int64            `json:"free_purchases"`
	TotalRevenue       float64          `json:"total_revenue"`
}

// PurchaseRecord is the admin view of a purchase joined with its buyer
// and beat.
type PurchaseRecord struct {
	ID           string    `json:"id"`
	UserEmail    string    `json:"user_email"`
	UserUsername string    `json:"user_username"`
	BeatTitle    string    `json:"beat_title"`
	BeatPrice    float64   `json:"beat_price"`
	PricePaid    float64   `json:"price_paid"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) Analytics() (*AnalyticsReport, error) {
	report := &AnalyticsReport{
		RegistrationsByDay: make(map[string]int64),
		PurchasesByDay:     make(map[string]int64),
	}

	windowStart := time.Now().UTC().AddDate(0, 0, -30)

	var users []models.User
	if err := s.db.Where("created_at >= ?", windowStart).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	for _, user := range users {
		day := user.CreatedAt.UTC().Format("2006-01-02")
		report.RegistrationsByDay[day]++
	}

	var purchases []models.Purchase
	if err := s.db.Where("purchase_date >= ?", windowStart).Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	for _, purchase := range purchases {
		day := purchase.PurchaseDate.UTC().Format("2006-01-02")
		report.PurchasesByDay[day]++
		report.TotalRevenue += purchase.PricePaid
	}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&report.TotalUsers, s.db.Model(&models.User{})},
		{&report.TotalBeats, s.db.Model(&models.Beat{})},
		{&report.TotalPurchases, s.db.Model(&models.Purchase{})},
		{&report.PaidPurchases, s.db.Model(&models.Purchase{}).Where("price_paid > 0")},
		{&report.FreePurchases, s.db.Model(&models.Purchase{}).Where("price_paid = 0")},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	return report, nil
}

func (s *AdminService) ListPurchases() ([]PurchaseRecord, error) {
	var purchases []models.Purchase
	err := s.db.Preload("User").Preload("Beat").
		Order("purchase_date DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	records := make([]PurchaseRecord, 0, len(purchases))
	for _, p := range purchases {
		records = append(records, PurchaseRecord{
			ID:           p.ID.String(),
			UserEmail:    p.User.Email,
			UserUsername: p.User.Username,
			BeatTitle:    p.Beat.Title,
			BeatPrice:    p.Beat.Price,
			PricePaid:    p.PricePaid,
			CreatedAt:    p.PurchaseDate,
		})
	}
	return records, nil
}
