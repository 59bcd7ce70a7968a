package handler

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"meds_buddy/internal/middleware"
	"meds_buddy/internal/model"
	"meds_buddy/internal/service"

	"github.com/gin-gonic/gin"
)

// MedicationHandler handles medication related requests
type MedicationHandler struct {
	service service.MedicationService
}

// NewMedicationHandler creates a new MedicationHandler
func NewMedicationHandler(s service.MedicationService) *MedicationHandler {
	return &MedicationHandler{service: s}
}

// Helper to get authenticated user ID from context
func getAuthUserID(c *gin.Context) (int, error) {
	userIDVal, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		return 0, errors.New("user ID not found in context")
	}
	userID, ok := userIDVal.(int)
	if !ok {
		return 0, errors.New("invalid user ID type in context")
	}
	return userID, nil
}

func (h *MedicationHandler) CreateMedication(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req model.CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	medication, err := h.service.CreateMedication(c.Request.Context(), userID, req)
	if err != nil {
		log.Printf("Error creating medication: %v", err) // Log detailed error
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create medication"})
		return
	}
	c.JSON(http.StatusCreated, medication)
}

func (h *MedicationHandler) GetMyMedications(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	medications, err := h.service.GetUserMedications(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error getting user medications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve medications"})
		return
	}
	if medications == nil {
		medications = []model.Medication{}
	}
	c.JSON(http.StatusOK, medications)
}

func (h *MedicationHandler) UpdateMedication(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	medicationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medication ID"})
		return
	}

	var req model.UpdateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	medication, err := h.service.UpdateMedication(c.Request.Context(), medicationID, userID, req)
	if err != nil {
		if errors.Is(err, service.ErrMedicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			log.Printf("Error updating medication: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update medication"})
		}
		return
	}
	c.JSON(http.StatusOK, medication)
}

// DeleteMedication removes a medication. Deleting an unknown or foreign id
// still answers success: the end state (no such record for this user) is the
// same either way.
func (h *MedicationHandler) DeleteMedication(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	medicationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medication ID"})
		return
	}

	if _, err := h.service.DeleteMedication(c.Request.Context(), medicationID, userID); err != nil {
		log.Printf("Error deleting medication: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete medication"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *MedicationHandler) MarkTaken(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	medicationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medication ID"})
		return
	}

	// Body is optional; when absent the current day is recorded. A chunked
	// request reports ContentLength -1 and still carries a body.
	var req model.MarkTakenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	medication, err := h.service.MarkTaken(c.Request.Context(), medicationID, userID, req.Date)
	if err != nil {
		if errors.Is(err, service.ErrMedicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, service.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			log.Printf("Error marking medication taken: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark medication as taken"})
		}
		return
	}
	c.JSON(http.StatusOK, medication)
}

func (h *MedicationHandler) GetAdherence(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	adherence, err := h.service.GetAdherence(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error computing adherence: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute adherence"})
		return
	}
	c.JSON(http.StatusOK, model.AdherenceReport{Adherence: adherence})
}

// --- Proof Photo Handling ---

func (h *MedicationHandler) UploadProof(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required: " + err.Error()})
		return
	}

	medicationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medication ID"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required: " + err.Error()})
		return
	}

	updatedMedication, err := h.service.UploadProof(c.Request.Context(), medicationID, userID, file)
	if err != nil {
		if errors.Is(err, service.ErrMedicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, service.ErrInvalidFileFormat) || errors.Is(err, service.ErrFileSizeExceeded) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			log.Printf("Error uploading proof photo: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload proof photo"})
		}
		return
	}
	c.JSON(http.StatusOK, updatedMedication)
}

func (h *MedicationHandler) GetProof(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required: " + err.Error()})
		return
	}

	medicationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid medication ID"})
		return
	}

	filePath, fileName, err := h.service.GetProofPath(c.Request.Context(), medicationID, userID)
	if err != nil {
		if errors.Is(err, service.ErrMedicationNotFound) || errors.Is(err, service.ErrProofNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			log.Printf("Error getting proof photo path: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get proof photo"})
		}
		return
	}

	// Check if file exists before attempting to serve
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proof photo file not found on server"})
		return
	}

	c.FileAttachment(filePath, fileName)
}

// RegisterMedicationRoutes registers medication routes
func (h *MedicationHandler) RegisterMedicationRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, roleMW gin.HandlerFunc) {
	medRoutes := rg.Group("/medications")
	medRoutes.Use(authMW) // All routes in this group require authentication
	medRoutes.Use(roleMW) // ...and a recognized account role
	{
		medRoutes.POST("", h.CreateMedication)
		medRoutes.GET("", h.GetMyMedications)
		medRoutes.GET("/adherence", h.GetAdherence)
		medRoutes.PUT("/:id", h.UpdateMedication)
		medRoutes.DELETE("/:id", h.DeleteMedication)
		medRoutes.POST("/:id/take", h.MarkTaken)
		medRoutes.POST("/:id/proof", h.UploadProof)
		medRoutes.GET("/:id/proof", h.GetProof)
	}
}
