package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"sce-storefront/internal/models"
	"sce-storefront/internal/store"
)

// DonationOptionHandler manages the quick-pick donation amounts.
type DonationOptionHandler struct {
	Options store.DonationOptionStore
}

func NewDonationOptionHandler(options store.DonationOptionStore) *DonationOptionHandler {
	return &DonationOptionHandler{Options: options}
}

func (h *DonationOptionHandler) List(c *gin.Context) {
	options, err := h.Options.List()
	if err != nil {
		log.Println("Failed to list donation options:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch donation options"})
		return
	}
	c.JSON(http.StatusOK, options)
}

type donationOptionInput struct {
	Name   string  `json:"name" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Order  *int    `json:"order"`
}

// Replace is destructive: the submitted list becomes the entire set.
// Callers must always send the complete desired configuration.
func (h *DonationOptionHandler) Replace(c *gin.Context) {
	var inputs []donationOptionInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	options := make([]models.DonationOption, 0, len(inputs))
	for i, input := range inputs {
		order := i
		if input.Order != nil {
			order = *input.Order
		}
		options = append(options, models.DonationOption{
			Name:   input.Name,
			Amount: input.Amount,
			Order:  order,
		})
	}

	created, err := h.Options.ReplaceAll(options)
	if err != nil {
		log.Println("Failed to update donation options:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update donation options"})
		return
	}

	c.JSON(http.StatusCreated, created)
}
