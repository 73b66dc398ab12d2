// internal/services/entitlement_service.go
package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatstore/backend/internal/models"
)

// EntitlementService decides what a caller may see or download for a
// given beat, and owns the purchase flow plus the favorite/cart join
// tables.
type EntitlementService struct {
	db      *gorm.DB
	storage *StorageService
}

// DownloadFile is the resolved target of an authorized download.
type DownloadFile struct {
	Path     string
	Filename string
}

func NewEntitlementService(db *gorm.DB, storage *StorageService) *EntitlementService {
	return &EntitlementService{
		db:      db,
		storage: storage,
	}
}

// HasPurchase reports whether the user owns a purchase record for the
// beat. A nil user ID means an anonymous caller.
func (s *EntitlementService) HasPurchase(userID *uuid.UUID, beatID uuid.UUID) (bool, error) {
	if userID == nil {
		return false, nil
	}

	var count int64
	err := s.db.Model(&models.Purchase{}).
		Where("user_id = ? AND beat_id = ?", *userID, beatID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

// VisibleDetail shapes a beat for the caller. Unentitled callers get the
// base fields plus demo and cover only; the full-audio and project-file
// keys are absent from the payload entirely.
func (s *EntitlementService) VisibleDetail(beat *models.Beat, userID *uuid.UUID) (*models.BeatDetail, error) {
	entitled, err := s.HasPurchase(userID, beat.ID)
	if err != nil {
		return nil, err
	}
	return beat.Detail(entitled), nil
}

// AuthorizeDownload checks entitlement and resolves the concrete file to
// stream. The full audio asset wins; without one the conventional project
// archive is the fallback.
func (s *EntitlementService) AuthorizeDownload(beat *models.Beat, userID uuid.UUID) (*DownloadFile, error) {
	entitled, err := s.HasPurchase(&userID, beat.ID)
	if err != nil {
		return nil, err
	}
	if !entitled {
		return nil, fmt.Errorf("%w: beat not purchased", ErrForbidden)
	}

	if beat.FullAudioURL != "" && s.storage.IsLocal(beat.FullAudioURL) {
		path, err := s.storage.ResolvePath(beat.FullAudioURL)
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return &DownloadFile{
					Path:     path,
					Filename: safeDownloadName(beat.Title) + "_full.mp3",
				}, nil
			}
		}
	}

	archive := s.storage.ProjectArchivePath(beat.ID)
	if _, err := os.Stat(archive); err == nil {
		return &DownloadFile{
			Path:     archive,
			Filename: safeDownloadName(beat.Title) + "_project.zip",
		}, nil
	}

	return nil, fmt.Errorf("%w: no downloadable file for beat", ErrNotFound)
}

// PurchaseBeat creates a zero-price purchase and clears any cart entry for
// the pair in one transaction. Paid beats are rejected outright; there is
// no payment system to bypass.
func (s *EntitlementService) PurchaseBeat(userID, beatID uuid.UUID) (*models.Purchase, error) {
	var beat models.Beat
	if err := s.db.First(&beat, "id = ?", beatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	exists, err := s.HasPurchase(&userID, beatID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: beat already purchased", ErrConflict)
	}

	if beat.Price > 0 {
		return nil, ErrPaymentNotSupported
	}

	purchase := &models.Purchase{
		UserID:    userID,
		BeatID:    beatID,
		PricePaid: 0,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(purchase).Error; err != nil {
			// A concurrent purchase of the same pair loses the race at
			// the store's uniqueness constraint.
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: beat already purchased", ErrConflict)
			}
			return fmt.Errorf("failed to create purchase: %w", err)
		}
		if err := tx.Where("user_id = ? AND beat_id = ?", userID, beatID).
			Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return purchase, nil
}

// ListPurchases returns the beats the user has bought.
func (s *EntitlementService) ListPurchases(userID uuid.UUID) ([]models.Beat, error) {
	var beats []models.Beat
	err := s.db.
		Joins("JOIN purchases ON purchases.beat_id = beats.id").
		Where("purchases.user_id = ?", userID).
		Order("purchases.purchase_date DESC").
		Find(&beats).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return beats, nil
}

// Favorites

func (s *EntitlementService) AddFavorite(userID, beatID uuid.UUID) error {
	if err := s.requireBeat(beatID); err != nil {
		return err
	}
	// Idempotent: adding an existing favorite is a no-op.
	err := s.db.Where(models.Favorite{UserID: userID, BeatID: beatID}).
		FirstOrCreate(&models.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

func (s *EntitlementService) RemoveFavorite(userID, beatID uuid.UUID) error {
	if err := s.requireBeat(beatID); err != nil {
		return err
	}
	// Tolerant: removing an absent favorite is a no-op.
	err := s.db.Where("user_id = ? AND beat_id = ?", userID, beatID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

func (s *EntitlementService) ListFavorites(userID uuid.UUID) ([]models.Beat, error) {
	return s.listJoined(userID, "favorites")
}

// Cart

func (s *EntitlementService) AddToCart(userID, beatID uuid.UUID) error {
	if err := s.requireBeat(beatID); err != nil {
		return err
	}
	err := s.db.Where(models.CartItem{UserID: userID, BeatID: beatID}).
		FirstOrCreate(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

func (s *EntitlementService) RemoveFromCart(userID, beatID uuid.UUID) error {
	if err := s.requireBeat(beatID); err != nil {
		return err
	}
	err := s.db.Where("user_id = ? AND beat_id = ?", userID, beatID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

func (s *EntitlementService) ListCart(userID uuid.UUID) ([]models.Beat, error) {
	return s.listJoined(userID, "cart")
}

func (s *EntitlementService) listJoined(userID uuid.UUID, table string) ([]models.Beat, error) {
	var beats []models.Beat
	err := s.db.
		Joins(fmt.Sprintf("JOIN %s ON %s.beat_id = beats.id", table, table)).
		Where(fmt.Sprintf("%s.user_id = ?", table), userID).
		Order("beats.created_at DESC").
		Find(&beats).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return beats, nil
}

func (s *EntitlementService) requireBeat(beatID uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.Beat{}).Where("id = ?", beatID).Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func safeDownloadName(title string) string {
	title = strings.ReplaceAll(title, "/", "_")
	title = strings.ReplaceAll(title, "\\", "_")
	return strings.TrimSpace(title)
}
