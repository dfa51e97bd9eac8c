package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"sce-storefront/internal/store"
)

// PurchaseHandler is the read-only query surface for the admin dashboard.
// Purchases are created by reconciliation only; nothing here mutates them.
type PurchaseHandler struct {
	Purchases store.PurchaseStore
}

func NewPurchaseHandler(purchases store.PurchaseStore) *PurchaseHandler {
	return &PurchaseHandler{Purchases: purchases}
}

// List returns all purchases newest first, each with its address joined.
func (h *PurchaseHandler) List(c *gin.Context) {
	purchases, err := h.Purchases.List()
	if err != nil {
		log.Println("Failed to list purchases:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch purchases"})
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// Export streams the purchase list as a CSV download.
func (h *PurchaseHandler) Export(c *gin.Context) {
	purchases, err := h.Purchases.List()
	if err != nil {
		log.Println("Failed to list purchases for export:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch purchases"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="purchases.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"id", "date", "item", "type", "amount", "status",
		"first_name", "last_name", "email",
		"street", "city", "state", "zip_code", "country",
	})

	for _, p := range purchases {
		row := []string{
			fmt.Sprintf("%d", p.ID),
			p.Date.Format("2006-01-02 15:04:05"),
			p.ItemName,
			p.Type,
			fmt.Sprintf("%.2f", p.Amount),
			p.Status,
			p.FirstName,
			p.LastName,
			p.Email,
			"", "", "", "", "",
		}
		if p.Address != nil {
			row[9] = p.Address.Street
			row[10] = p.Address.City
			row[11] = p.Address.State
			row[12] = p.Address.ZipCode
			row[13] = p.Address.Country
		}
		if err := w.Write(row); err != nil {
			log.Println("Failed to write CSV row:", err)
			return
		}
	}
	w.Flush()
}
