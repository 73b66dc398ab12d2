// internal/services/admin_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/beatstore/backend/internal/models"
)

type AdminServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AdminService
}

func (suite *AdminServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewAdminService(suite.db)
}

func (suite *AdminServiceTestSuite) TestAnalyticsEmptyStore() {
	report, err := suite.service.Analytics()
	suite.Require().NoError(err)

	suite.Zero(report.TotalUsers)
	suite.Zero(report.TotalBeats)
	suite.Zero(report.TotalPurchases)
	suite.Zero(report.TotalRevenue)
	suite.Empty(report.RegistrationsByDay)
	suite.Empty(report.PurchasesByDay)
}

func (suite *AdminServiceTestSuite) TestAnalytics() {
	alice := createTestUser(suite.T(), suite.db, "alice")
	bob := createTestUser(suite.T(), suite.db, "bob")
	free := createTestBeat(suite.T(), suite.db, "Free", 0)
	paid := createTestBeat(suite.T(), suite.db, "Paid", 25)

	purchases := []models.Purchase{
		{UserID: alice.ID, BeatID: free.ID, PricePaid: 0},
		{UserID: bob.ID, BeatID: free.ID, PricePaid: 0},
		{UserID: alice.ID, BeatID: paid.ID, PricePaid: 25},
	}
	for i := range purchases {
		suite.Require().NoError(suite.db.Create(&purchases[i]).Error)
	}

	report, err := suite.service.Analytics()
	suite.Require().NoError(err)

	suite.Equal(int64(2), report.TotalUsers)
	suite.Equal(int64(2), report.TotalBeats)
	suite.Equal(int64(3), report.TotalPurchases)
	suite.Equal(int64(1), report.PaidPurchases)
	suite.Equal(int64(2), report.FreePurchases)
	suite.Equal(25.0, report.TotalRevenue)

	today := time.Now().UTC().Format("2006-01-02")
	suite.Equal(int64(2), report.RegistrationsByDay[today])
	suite.Equal(int64(3), report.PurchasesByDay[today])
}

func (suite *AdminServiceTestSuite) TestAnalyticsWindowExcludesOldActivity() {
	alice := createTestUser(suite.T(), suite.db, "alice")
	beat := createTestBeat(suite.T(), suite.db, "Old", 0)

	old := time.Now().UTC().AddDate(0, 0, -60)
	purchase := models.Purchase{UserID: alice.ID, BeatID: beat.ID, PricePaid: 5}
	suite.Require().NoError(suite.db.Create(&purchase).Error)
	suite.Require().NoError(suite.db.Model(&purchase).Update("purchase_date", old).Error)

	report, err := suite.service.Analytics()
	suite.Require().NoError(err)

	// The old purchase still counts in the totals but not in the window.
	suite.Equal(int64(1), report.TotalPurchases)
	suite.Empty(report.PurchasesByDay)
	suite.Zero(report.TotalRevenue)
}

func (suite *AdminServiceTestSuite) TestListPurchases() {
	alice := createTestUser(suite.T(), suite.db, "alice")
	beat := createTestBeat(suite.T(), suite.db, "Sold", 0)

	purchase := models.Purchase{UserID: alice.ID, BeatID: beat.ID, PricePaid: 0}
	suite.Require().NoError(suite.db.Create(&purchase).Error)

	records, err := suite.service.ListPurchases()
	suite.Require().NoError(err)
	suite.Require().Len(records, 1)

	suite.Equal(purchase.ID.String(), records[0].ID)
	suite.Equal("alice@example.com", records[0].UserEmail)
	suite.Equal("alice", records[0].UserUsername)
	suite.Equal("Sold", records[0].BeatTitle)
	suite.Equal(float64(0), records[0].PricePaid)
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
