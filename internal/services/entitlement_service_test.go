// internal/services/entitlement_service_test.go
package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/beatstore/backend/internal/config"
	"github.com/beatstore/backend/internal/models"
)

type EntitlementServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	cfg     *config.Config
	storage *StorageService
	service *EntitlementService
	user    *models.User
}

func (suite *EntitlementServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.cfg = newTestConfig(suite.T())
	suite.storage = newTestStorage(suite.T(), suite.cfg)
	suite.service = NewEntitlementService(suite.db, suite.storage)
	suite.user = createTestUser(suite.T(), suite.db, "buyer")
}

func (suite *EntitlementServiceTestSuite) purchaseCount(beatID uuid.UUID) int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.Purchase{}).
		Where("user_id = ? AND beat_id = ?", suite.user.ID, beatID).
		Count(&count).Error)
	return count
}

func (suite *EntitlementServiceTestSuite) TestPurchaseFreeBeat() {
	beat := createTestBeat(suite.T(), suite.db, "Free Beat", 0)

	purchase, err := suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.Require().NoError(err)
	suite.Equal(float64(0), purchase.PricePaid)
	suite.Equal(int64(1), suite.purchaseCount(beat.ID))
}

func (suite *EntitlementServiceTestSuite) TestPurchaseTwiceConflicts() {
	beat := createTestBeat(suite.T(), suite.db, "Free Beat", 0)

	_, err := suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.Require().NoError(err)

	_, err = suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.ErrorIs(err, ErrConflict)
	suite.Equal(int64(1), suite.purchaseCount(beat.ID))
}

func (suite *EntitlementServiceTestSuite) TestPurchasePaidBeatRejected() {
	beat := createTestBeat(suite.T(), suite.db, "Paid Beat", 29.99)

	_, err := suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.ErrorIs(err, ErrPaymentNotSupported)
	suite.Equal(int64(0), suite.purchaseCount(beat.ID))
}

func (suite *EntitlementServiceTestSuite) TestPurchaseUnknownBeat() {
	_, err := suite.service.PurchaseBeat(suite.user.ID, uuid.New())
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *EntitlementServiceTestSuite) TestPurchaseClearsCartEntry() {
	beat := createTestBeat(suite.T(), suite.db, "Carted", 0)
	suite.Require().NoError(suite.service.AddToCart(suite.user.ID, beat.ID))

	_, err := suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.Require().NoError(err)

	cart, err := suite.service.ListCart(suite.user.ID)
	suite.Require().NoError(err)
	suite.Empty(cart)
}

func (suite *EntitlementServiceTestSuite) TestListPurchases() {
	first := createTestBeat(suite.T(), suite.db, "First", 0)
	second := createTestBeat(suite.T(), suite.db, "Second", 0)

	_, err := suite.service.PurchaseBeat(suite.user.ID, first.ID)
	suite.Require().NoError(err)
	_, err = suite.service.PurchaseBeat(suite.user.ID, second.ID)
	suite.Require().NoError(err)

	beats, err := suite.service.ListPurchases(suite.user.ID)
	suite.Require().NoError(err)
	suite.Len(beats, 2)
}

func (suite *EntitlementServiceTestSuite) TestVisibleDetailHidesGatedURLs() {
	beat := createTestBeat(suite.T(), suite.db, "Gated", 0)
	suite.Require().NoError(suite.db.Model(beat).Updates(map[string]interface{}{
		"demo_url":       "/static/demos/demo.mp3",
		"full_audio_url": "/static/audio/full.mp3",
	}).Error)
	suite.Require().NoError(suite.db.First(beat, "id = ?", beat.ID).Error)

	detail, err := suite.service.VisibleDetail(beat, nil)
	suite.Require().NoError(err)

	payload, err := json.Marshal(detail)
	suite.Require().NoError(err)
	suite.Contains(string(payload), "demo_url")
	suite.NotContains(string(payload), "full_audio_url")
	suite.NotContains(string(payload), "project_files_url")
}

func (suite *EntitlementServiceTestSuite) TestVisibleDetailRevealsAfterPurchase() {
	beat := createTestBeat(suite.T(), suite.db, "Gated", 0)
	suite.Require().NoError(suite.db.Model(beat).Update("full_audio_url", "/static/audio/full.mp3").Error)
	suite.Require().NoError(suite.db.First(beat, "id = ?", beat.ID).Error)

	_, err := suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.Require().NoError(err)

	detail, err := suite.service.VisibleDetail(beat, &suite.user.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(detail.FullAudioURL)
	suite.Equal("/static/audio/full.mp3", *detail.FullAudioURL)
}

func (suite *EntitlementServiceTestSuite) TestAuthorizeDownloadRequiresPurchase() {
	beat := createTestBeat(suite.T(), suite.db, "Locked", 0)

	_, err := suite.service.AuthorizeDownload(beat, suite.user.ID)
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *EntitlementServiceTestSuite) TestAuthorizeDownloadFullAudio() {
	beat := createTestBeat(suite.T(), suite.db, "Owned", 0)

	path := filepath.Join(suite.cfg.Storage.Root, "audio", "full.mp3")
	suite.Require().NoError(os.MkdirAll(filepath.Dir(path), 0o755))
	suite.Require().NoError(os.WriteFile(path, []byte("audio"), 0o644))
	suite.Require().NoError(suite.db.Model(beat).Update("full_audio_url", "/static/audio/full.mp3").Error)
	suite.Require().NoError(suite.db.First(beat, "id = ?", beat.ID).Error)

	_, err := suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.Require().NoError(err)

	download, err := suite.service.AuthorizeDownload(beat, suite.user.ID)
	suite.Require().NoError(err)
	suite.Equal(path, download.Path)
	suite.Equal("Owned_full.mp3", download.Filename)
}

func (suite *EntitlementServiceTestSuite) TestAuthorizeDownloadFallsBackToProjectArchive() {
	beat := createTestBeat(suite.T(), suite.db, "Archive Only", 0)

	archive := filepath.Join(suite.cfg.Storage.Root, "projects", fmt.Sprintf("%s_project.zip", beat.ID))
	suite.Require().NoError(os.MkdirAll(filepath.Dir(archive), 0o755))
	suite.Require().NoError(os.WriteFile(archive, []byte("zip"), 0o644))

	_, err := suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.Require().NoError(err)

	download, err := suite.service.AuthorizeDownload(beat, suite.user.ID)
	suite.Require().NoError(err)
	suite.Equal(archive, download.Path)
	suite.Equal("Archive Only_project.zip", download.Filename)
}

func (suite *EntitlementServiceTestSuite) TestAuthorizeDownloadNothingToServe() {
	beat := createTestBeat(suite.T(), suite.db, "Empty", 0)

	_, err := suite.service.PurchaseBeat(suite.user.ID, beat.ID)
	suite.Require().NoError(err)

	_, err = suite.service.AuthorizeDownload(beat, suite.user.ID)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *EntitlementServiceTestSuite) TestFavoritesLifecycle() {
	beat := createTestBeat(suite.T(), suite.db, "Fav", 0)

	suite.Require().NoError(suite.service.AddFavorite(suite.user.ID, beat.ID))
	// Idempotent re-add.
	suite.Require().NoError(suite.service.AddFavorite(suite.user.ID, beat.ID))

	favorites, err := suite.service.ListFavorites(suite.user.ID)
	suite.Require().NoError(err)
	suite.Len(favorites, 1)

	suite.Require().NoError(suite.service.RemoveFavorite(suite.user.ID, beat.ID))
	// Tolerant re-remove.
	suite.Require().NoError(suite.service.RemoveFavorite(suite.user.ID, beat.ID))

	favorites, err = suite.service.ListFavorites(suite.user.ID)
	suite.Require().NoError(err)
	suite.Empty(favorites)
}

func (suite *EntitlementServiceTestSuite) TestFavoriteUnknownBeat() {
	suite.ErrorIs(suite.service.AddFavorite(suite.user.ID, uuid.New()), ErrNotFound)
	suite.ErrorIs(suite.service.RemoveFavorite(suite.user.ID, uuid.New()), ErrNotFound)
}

func (suite *EntitlementServiceTestSuite) TestCartLifecycle() {
	beat := createTestBeat(suite.T(), suite.db, "In Cart", 0)

	suite.Require().NoError(suite.service.AddToCart(suite.user.ID, beat.ID))
	suite.Require().NoError(suite.service.AddToCart(suite.user.ID, beat.ID))

	cart, err := suite.service.ListCart(suite.user.ID)
	suite.Require().NoError(err)
	suite.Len(cart, 1)

	suite.Require().NoError(suite.service.RemoveFromCart(suite.user.ID, beat.ID))
	cart, err = suite.service.ListCart(suite.user.ID)
	suite.Require().NoError(err)
	suite.Empty(cart)
}

func (suite *EntitlementServiceTestSuite) TestHasPurchaseAnonymous() {
	beat := createTestBeat(suite.T(), suite.db, "Any", 0)

	entitled, err := suite.service.HasPurchase(nil, beat.ID)
	suite.Require().NoError(err)
	suite.False(entitled)
}

func TestEntitlementServiceSuite(t *testing.T) {
	suite.Run(t, new(EntitlementServiceTestSuite))
}
