// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/beatstore/backend/internal/models"
	"github.com/beatstore/backend/internal/services"
	"github.com/beatstore/backend/internal/utils"
)

type AdminHandler struct {
	catalogService *services.CatalogService
	adminService   *services.AdminService
}

func NewAdminHandler(catalogService *services.CatalogService, adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		adminService:   adminService,
	}
}

// GET /api/admin/beats
// Admin listing includes unavailable beats and the gated asset URLs.
func (h *AdminHandler) ListBeats(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	beats, total, err := h.catalogService.ListAllBeats(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	details := make([]*models.BeatDetail, 0, len(beats))
	for i := range beats {
		details = append(details, beats[i].Detail(true))
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(details, total, params))
}

// GET /api/admin/genres
func (h *AdminHandler) Genres(c *gin.Context) {
	genres, err := h.catalogService.DistinctGenres()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"genres": genres})
}

// POST /api/admin/beats
func (h *AdminHandler) CreateBeat(c *gin.Context) {
	var req services.CreateBeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	beat, err := h.catalogService.CreateBeat(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, beat.Detail(true))
}

// POST /api/admin/upload-beat
// Multipart create: form fields plus demo_file (required), full_file and
// cover_file (optional).
func (h *AdminHandler) UploadBeat(c *gin.Context) {
	var req services.CreateBeatRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	assets := services.BeatAssets{}
	if header, err := c.FormFile("demo_file"); err == nil {
		assets.Demo = header
	}
	if header, err := c.FormFile("full_file"); err == nil {
		assets.Full = header
	}
	if header, err := c.FormFile("cover_file"); err == nil {
		assets.Cover = header
	}

	beat, err := h.catalogService.CreateBeatWithAssets(&req, assets)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, beat.Detail(true))
}

// PUT /api/admin/beats/:id
// Partial update: only the keys present in the body are touched.
func (h *AdminHandler) UpdateBeat(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	beat, err := h.catalogService.UpdateBeat(beatID, fields)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, beat.Detail(true))
}

// DELETE /api/admin/beats/:id
func (h *AdminHandler) DeleteBeat(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteBeat(beatID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Beat deleted successfully"})
}

// GET /api/admin/purchases
func (h *AdminHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.adminService.ListPurchases()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, purchases)
}

// GET /api/admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	report, err := h.adminService.Analytics()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, report)
}
