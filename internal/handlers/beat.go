// internal/handlers/beat.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beatstore/backend/internal/services"
	"github.com/beatstore/backend/internal/utils"
)

type BeatHandler struct {
	catalogService     *services.CatalogService
	entitlementService *services.EntitlementService
}

func NewBeatHandler(catalogService *services.CatalogService, entitlementService *services.EntitlementService) *BeatHandler {
	return &BeatHandler{
		catalogService:     catalogService,
		entitlementService: entitlementService,
	}
}

func parseBeatID(c *gin.Context) (uuid.UUID, bool) {
	beatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid beat ID", nil)
		return uuid.Nil, false
	}
	return beatID, true
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return userID, true
}

// optionalCallerID never fails; it returns nil for anonymous callers.
func optionalCallerID(c *gin.Context) *uuid.UUID {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return nil
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil
	}
	return &userID
}

// GET /beats
func (h *BeatHandler) ListBeats(c *gin.Context) {
	filter := services.BeatFilter{
		Genre: c.Query("genre"),
		Key:   c.Query("key"),
	}

	if v := c.Query("min_bpm"); v != "" {
		if bpm, err := strconv.Atoi(v); err == nil {
			filter.MinBPM = &bpm
		}
	}
	if v := c.Query("max_bpm"); v != "" {
		if bpm, err := strconv.Atoi(v); err == nil {
			filter.MaxBPM = &bpm
		}
	}
	if v := c.Query("min_price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &price
		}
	}
	if v := c.Query("max_price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &price
		}
	}

	beats, err := h.catalogService.ListBeats(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, beats)
}

// GET /beats/:id
func (h *BeatHandler) GetBeat(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}

	beat, err := h.catalogService.GetBeat(beatID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	detail, err := h.entitlementService.VisibleDetail(beat, optionalCallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, detail)
}

// POST /beats/:id/favorite
func (h *BeatHandler) AddFavorite(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.entitlementService.AddFavorite(userID, beatID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Added to favorites"})
}

// DELETE /beats/:id/favorite
func (h *BeatHandler) RemoveFavorite(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.entitlementService.RemoveFavorite(userID, beatID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Removed from favorites"})
}

// GET /favorites
func (h *BeatHandler) ListFavorites(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	beats, err := h.entitlementService.ListFavorites(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, beats)
}

// POST /beats/:id/cart
func (h *BeatHandler) AddToCart(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.entitlementService.AddToCart(userID, beatID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Added to cart"})
}

// DELETE /beats/:id/cart
func (h *BeatHandler) RemoveFromCart(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.entitlementService.RemoveFromCart(userID, beatID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Removed from cart"})
}

// GET /cart
func (h *BeatHandler) ListCart(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	beats, err := h.entitlementService.ListCart(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, beats)
}

// GET /purchases
func (h *BeatHandler) ListPurchases(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	beats, err := h.entitlementService.ListPurchases(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, beats)
}

// POST /beats/:id/purchase
func (h *BeatHandler) Purchase(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	purchase, err := h.entitlementService.PurchaseBeat(userID, beatID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     "Beat acquired successfully",
		"purchase_id": purchase.ID,
	})
}

// GET /beats/:id/download
func (h *BeatHandler) Download(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	beat, err := h.catalogService.GetBeat(beatID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	download, err := h.entitlementService.AuthorizeDownload(beat, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.FileAttachment(download.Path, download.Filename)
}

// POST /upload-audio/:id
func (h *BeatHandler) UploadAudio(c *gin.Context) {
	beatID, ok := parseBeatID(c)
	if !ok {
		return
	}
	if _, ok := callerID(c); !ok {
		return
	}

	assets := services.BeatAssets{}
	if header, err := c.FormFile("demo_file"); err == nil {
		assets.Demo = header
	}
	if header, err := c.FormFile("full_file"); err == nil {
		assets.Full = header
	}

	if assets.Demo == nil && assets.Full == nil {
		utils.BadRequestResponse(c, "No files uploaded", nil)
		return
	}

	beat, err := h.catalogService.AttachUploads(beatID, assets)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Files uploaded successfully",
		"beat_id": beat.ID,
	})
}

// POST /create-beat-with-audio
func (h *BeatHandler) CreateBeatWithAudio(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

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

	utils.CreatedResponse(c, gin.H{
		"message":  "Beat created successfully",
		"beat_id":  beat.ID,
		"demo_url": beat.DemoURL,
		"full_url": beat.FullAudioURL,
	})
}
