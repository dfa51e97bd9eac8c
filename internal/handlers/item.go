package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sce-storefront/internal/models"
	"sce-storefront/internal/store"
)

// ItemHandler owns the catalog CRUD endpoints used by the storefront and
// the admin dashboard.
type ItemHandler struct {
	Items store.ItemStore
}

func NewItemHandler(items store.ItemStore) *ItemHandler {
	return &ItemHandler{Items: items}
}

// List returns the catalog newest first. ?active=true narrows to items the
// storefront should show.
func (h *ItemHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	items, err := h.Items.List(activeOnly)
	if err != nil {
		log.Println("Failed to list items:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type CreateItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=workshop event merchandise"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Available   int     `json:"available" binding:"gte=0"`
	Status      string  `json:"status" binding:"omitempty,oneof=Active Inactive"`
	Image       string  `json:"image"`
}

func (h *ItemHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.ItemStatusActive
	}

	item := models.Item{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Price:       req.Price,
		Available:   req.Available,
		Status:      status,
		Image:       req.Image,
	}
	if err := h.Items.Create(&item); err != nil {
		log.Println("Failed to create item:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var update store.ItemUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	item, err := h.Items.Update(id, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		log.Println("Failed to update item:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	if err := h.Items.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		log.Println("Failed to delete item:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Decrement knocks one unit off an item's availability. It shares the
// store's atomic conditional update with reconciliation, so it can never
// push the count negative; a call against a sold-out item reports success
// with a warning, matching the reconciliation path's tolerance.
func (h *ItemHandler) Decrement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item ID required"})
		return
	}

	item, err := h.Items.GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		log.Println("Failed to look up item:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decrement item availability"})
		return
	}

	if item.Available <= 0 {
		log.Printf("Item %d already at 0 availability, skipping decrement", id)
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"itemId":       id,
			"newAvailable": 0,
			"warning":      "Item already at 0 availability",
		})
		return
	}

	updated, err := h.Items.DecrementAvailable(id)
	if err != nil {
		log.Println("Failed to decrement item availability:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decrement item availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"itemId":       updated.ID,
		"newAvailable": updated.Available,
	})
}
