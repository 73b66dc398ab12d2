// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/beatstore/backend/internal/models"
	"github.com/beatstore/backend/internal/utils"
)

type CatalogService struct {
	db      *gorm.DB
	storage *StorageService
}

// BeatFilter holds the optional catalog filters. All filters compose with
// logical AND.
type BeatFilter struct {
	Genre    string
	Key      string
	MinBPM   *int
	MaxBPM   *int
	MinPrice *float64
	MaxPrice *float64
}

type CreateBeatRequest struct {
	Title       string  `json:"title" form:"title" validate:"required,max=255"`
	Artist      string  `json:"artist" form:"artist" validate:"required,max=255"`
	Genre       string  `json:"genre" form:"genre" validate:"required,max=100"`
	Key         string  `json:"key" form:"key" validate:"musical_key"`
	BPM         int     `json:"bpm" form:"bpm" validate:"required,min=1,max=999"`
	Price       float64 `json:"price" form:"price" validate:"min=0"`
	Description string  `json:"description" form:"description"`
}

// BeatAssets carries the multipart file parts of a create-with-assets
// request. Demo is required there; the rest are optional.
type BeatAssets struct {
	Demo  *multipart.FileHeader
	Full  *multipart.FileHeader
	Cover *multipart.FileHeader
}

func NewCatalogService(db *gorm.DB, storage *StorageService) *CatalogService {
	return &CatalogService{
		db:      db,
		storage: storage,
	}
}

// ListBeats returns available beats matching the filter.
func (s *CatalogService) ListBeats(filter BeatFilter) ([]models.Beat, error) {
	query := s.db.Model(&models.Beat{}).Where("is_available = ?", true)

	if filter.Genre != "" {
		query = query.Where("LOWER(genre) LIKE ?", "%"+strings.ToLower(filter.Genre)+"%")
	}
	if filter.Key != "" {
		query = query.Where("key = ?", filter.Key)
	}
	if filter.MinBPM != nil {
		query = query.Where("bpm >= ?", *filter.MinBPM)
	}
	if filter.MaxBPM != nil {
		query = query.Where("bpm <= ?", *filter.MaxBPM)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	var beats []models.Beat
	if err := query.Order("created_at DESC").Find(&beats).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return beats, nil
}

func (s *CatalogService) GetBeat(beatID uuid.UUID) (*models.Beat, error) {
	var beat models.Beat
	if err := s.db.First(&beat, "id = ?", beatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &beat, nil
}

// ListAllBeats returns every beat regardless of availability, for the
// admin catalog view.
func (s *CatalogService) ListAllBeats(params utils.PaginationParams) ([]models.Beat, int64, error) {
	var total int64
	if err := s.db.Model(&models.Beat{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	query := utils.ApplySort(s.db.Model(&models.Beat{}), params, []string{"created_at", "title", "price", "bpm"})
	query = utils.ApplyPagination(query, params)

	var beats []models.Beat
	if err := query.Find(&beats).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}
	return beats, total, nil
}

func (s *CatalogService) DistinctGenres() ([]string, error) {
	var genres []string
	err := s.db.Model(&models.Beat{}).
		Where("genre <> ''").
		Distinct("genre").
		Order("genre").
		Pluck("genre", &genres).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return genres, nil
}

func (s *CatalogService) CreateBeat(req *CreateBeatRequest) (*models.Beat, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	beat := &models.Beat{
		Title:       req.Title,
		Artist:      req.Artist,
		Genre:       req.Genre,
		Key:         req.Key,
		BPM:         req.BPM,
		Price:       req.Price,
		Description: req.Description,
		IsAvailable: true,
	}

	if err := s.db.Create(beat).Error; err != nil {
		return nil, fmt.Errorf("failed to create beat: %w", err)
	}
	return beat, nil
}

// CreateBeatWithAssets creates the catalog row and persists the uploaded
// files. If any file fails to persist, the just-created row is removed so
// no metadata exists without backing assets.
func (s *CatalogService) CreateBeatWithAssets(req *CreateBeatRequest, assets BeatAssets) (*models.Beat, error) {
	if assets.Demo == nil {
		return nil, fmt.Errorf("%w: demo_file is required", ErrValidation)
	}

	beat, err := s.CreateBeat(req)
	if err != nil {
		return nil, err
	}

	if err := s.attachAssets(beat, assets); err != nil {
		// Compensating rollback: the store cannot span the filesystem
		// write in its transaction.
		s.removeAssetFiles(beat)
		if delErr := s.db.Delete(&models.Beat{}, "id = ?", beat.ID).Error; delErr != nil {
			logrus.WithError(delErr).WithField("beat_id", beat.ID).Error("Failed to roll back beat row")
		}
		return nil, err
	}

	if err := s.db.Save(beat).Error; err != nil {
		s.removeAssetFiles(beat)
		s.db.Delete(&models.Beat{}, "id = ?", beat.ID)
		return nil, fmt.Errorf("failed to save beat: %w", err)
	}

	return beat, nil
}

// AttachUploads stores the provided file parts for an existing beat and
// updates its URL fields. Missing parts are skipped.
func (s *CatalogService) AttachUploads(beatID uuid.UUID, assets BeatAssets) (*models.Beat, error) {
	beat, err := s.GetBeat(beatID)
	if err != nil {
		return nil, err
	}

	if err := s.attachAssets(beat, assets); err != nil {
		return nil, err
	}

	if err := s.db.Save(beat).Error; err != nil {
		return nil, fmt.Errorf("failed to save beat: %w", err)
	}
	return beat, nil
}

func (s *CatalogService) attachAssets(beat *models.Beat, assets BeatAssets) error {
	if assets.Demo != nil {
		url, err := s.storage.SaveUpload(assets.Demo, AssetDemo, beat.ID)
		if err != nil {
			return fmt.Errorf("failed to store demo file: %w", err)
		}
		beat.DemoURL = url
	}
	if assets.Full != nil {
		url, err := s.storage.SaveUpload(assets.Full, AssetFull, beat.ID)
		if err != nil {
			return fmt.Errorf("failed to store full audio file: %w", err)
		}
		beat.FullAudioURL = url
	}
	if assets.Cover != nil {
		url, err := s.storage.SaveUpload(assets.Cover, AssetCover, beat.ID)
		if err != nil {
			return fmt.Errorf("failed to store cover file: %w", err)
		}
		beat.CoverURL = url
	}
	return nil
}

// updatableBeatFields is the explicit allow-list for admin edits. Unknown
// keys are rejected rather than silently dropped.
var updatableBeatFields = map[string]bool{
	"title":        true,
	"artist":       true,
	"genre":        true,
	"key":          true,
	"bpm":          true,
	"price":        true,
	"description":  true,
	"is_available": true,
}

func (s *CatalogService) UpdateBeat(beatID uuid.UUID, fields map[string]interface{}) (*models.Beat, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	for key := range fields {
		if !updatableBeatFields[key] {
			return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, key)
		}
	}

	beat, err := s.GetBeat(beatID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(beat).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("failed to update beat: %w", err)
	}

	return s.GetBeat(beatID)
}

// DeleteBeat removes the catalog row. Asset files are deleted on a
// best-effort basis first; a failed file delete is logged and never blocks
// the row deletion.
func (s *CatalogService) DeleteBeat(beatID uuid.UUID) error {
	beat, err := s.GetBeat(beatID)
	if err != nil {
		return err
	}

	s.removeAssetFiles(beat)

	if err := s.db.Delete(&models.Beat{}, "id = ?", beatID).Error; err != nil {
		return fmt.Errorf("failed to delete beat: %w", err)
	}
	return nil
}

func (s *CatalogService) removeAssetFiles(beat *models.Beat) {
	for _, url := range []string{beat.DemoURL, beat.FullAudioURL, beat.CoverURL} {
		if url == "" {
			continue
		}
		s.storage.LogDeleteFailure(url, s.storage.DeleteAsset(url))
	}
}
