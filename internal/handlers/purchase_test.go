package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sce-storefront/internal/models"
)

func newPurchaseRouter(h *PurchaseHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/purchases", h.List)
	r.GET("/api/purchases/export", h.Export)
	return r
}

func seedPurchases(t *testing.T, purchases *memPurchaseStore) {
	t.Helper()
	older := &models.Purchase{
		ItemName:        "Gala Ticket",
		Amount:          100,
		Type:            models.PurchaseTypeEvent,
		StripeSessionID: "cs_old",
		Date:            time.Now().Add(-time.Hour),
		Status:          models.PurchaseStatusCompleted,
		Email:           "jo@example.com",
		FirstName:       "Jo",
		LastName:        "Smith",
	}
	address := &models.Address{Street: "1 Main St", City: "Columbia", State: "SC", ZipCode: "29201", Country: "US"}
	if err := purchases.Create(older, address); err != nil {
		t.Fatal(err)
	}

	newer := &models.Purchase{
		ItemName:        "General Donation",
		Amount:          25,
		Type:            models.PurchaseTypeDonation,
		StripeSessionID: "cs_new",
		Date:            time.Now(),
		Status:          models.PurchaseStatusCompleted,
		FirstName:       "ANONYMOUS",
	}
	if err := purchases.Create(newer, nil); err != nil {
		t.Fatal(err)
	}
}

func TestPurchaseListNewestFirstWithAddress(t *testing.T) {
	purchases := newMemPurchaseStore()
	seedPurchases(t, purchases)

	r := newPurchaseRouter(NewPurchaseHandler(purchases))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/purchases", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var listed []models.Purchase
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 {
		t.Fatalf("purchases = %d, want 2", len(listed))
	}
	if listed[0].StripeSessionID != "cs_new" {
		t.Errorf("first purchase = %q, want the newest", listed[0].StripeSessionID)
	}
	if listed[1].Address == nil || listed[1].Address.City != "Columbia" {
		t.Errorf("address not joined: %+v", listed[1].Address)
	}
}

func TestPurchaseExportCSV(t *testing.T) {
	purchases := newMemPurchaseStore()
	seedPurchases(t, purchases)

	r := newPurchaseRouter(NewPurchaseHandler(purchases))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/purchases/export", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header plus 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,date,item") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "Columbia") {
		t.Errorf("address columns missing from %q", lines[2])
	}
}
