// internal/services/service_test.go
package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beatstore/backend/internal/config"
	"github.com/beatstore/backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Beat{},
		&models.Purchase{},
		&models.Favorite{},
		&models.CartItem{},
	))
	return db
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey: "test-secret",
			AccessTTL: 30,
			AdminTTL:  480,
		},
		Storage: config.StorageConfig{Root: t.TempDir()},
	}
}

func newTestStorage(t *testing.T, cfg *config.Config) *StorageService {
	t.Helper()
	storage, err := NewStorageService(cfg)
	require.NoError(t, err)
	return storage
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestBeat(t *testing.T, db *gorm.DB, title string, price float64) *models.Beat {
	t.Helper()
	beat := &models.Beat{
		Title:       title,
		Artist:      "Producer",
		Genre:       "Trap",
		Key:         "Am",
		BPM:         140,
		Price:       price,
		IsAvailable: true,
	}
	require.NoError(t, db.Create(beat).Error)
	return beat
}

// makeFileHeader builds a real multipart.FileHeader by round-tripping a
// form through the multipart reader, the same way gin receives uploads.
func makeFileHeader(t *testing.T, field, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	headers := req.MultipartForm.File[field]
	require.Len(t, headers, 1)
	return headers[0]
}

func demoFileName(beat *models.Beat, filename string) string {
	return fmt.Sprintf("demo_%s_%s", beat.ID, filename)
}
