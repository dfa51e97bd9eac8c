package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"sce-storefront/internal/models"
)

func newItemRouter(h *ItemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/items", h.List)
	r.POST("/api/items", h.Create)
	r.PUT("/api/items/:id", h.Update)
	r.DELETE("/api/items/:id", h.Delete)
	r.POST("/api/items/:id/decrement", h.Decrement)
	return r
}

func TestItemCreateAndList(t *testing.T) {
	items := newMemItemStore()
	r := newItemRouter(NewItemHandler(items))

	w := httptest.NewRecorder()
	body := `{"name":"Pottery Workshop","type":"workshop","price":25,"available":8}`
	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%s)", w.Code, w.Body.String())
	}

	var created models.Item
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Status != models.ItemStatusActive {
		t.Errorf("default Status = %q, want Active", created.Status)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items", nil))
	var listed []models.Item
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].Name != "Pottery Workshop" {
		t.Errorf("listed = %+v, want the created item", listed)
	}
}

func TestItemListActiveFilter(t *testing.T) {
	items := newMemItemStore()
	active := models.Item{Name: "A", Type: models.ItemTypeEvent, Available: 1, Status: models.ItemStatusActive}
	inactive := models.Item{Name: "B", Type: models.ItemTypeEvent, Available: 0, Status: models.ItemStatusInactive}
	items.Create(&active)
	items.Create(&inactive)

	r := newItemRouter(NewItemHandler(items))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items?active=true", nil))

	var listed []models.Item
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].Name != "A" {
		t.Errorf("active filter returned %+v, want only A", listed)
	}
}

func TestItemPartialUpdate(t *testing.T) {
	items := newMemItemStore()
	item := models.Item{Name: "Mug", Type: models.ItemTypeMerchandise, Price: 12, Available: 4, Status: models.ItemStatusActive}
	items.Create(&item)

	r := newItemRouter(NewItemHandler(items))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/items/1", strings.NewReader(`{"price": 15}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	got, _ := items.GetByID(item.ID)
	if got.Price != 15 {
		t.Errorf("Price = %v, want 15", got.Price)
	}
	if got.Name != "Mug" || got.Available != 4 {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestItemDecrementNeverBelowZero(t *testing.T) {
	items := newMemItemStore()
	item := models.Item{Name: "Seat", Type: models.ItemTypeEvent, Available: 1, Status: models.ItemStatusActive}
	items.Create(&item)

	r := newItemRouter(NewItemHandler(items))

	decrement := func() map[string]interface{} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/items/1/decrement", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("decrement status = %d, want 200 (%s)", w.Code, w.Body.String())
		}
		var resp map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		return resp
	}

	first := decrement()
	if first["newAvailable"].(float64) != 0 {
		t.Errorf("newAvailable = %v, want 0", first["newAvailable"])
	}

	second := decrement()
	if second["newAvailable"].(float64) != 0 {
		t.Errorf("sold-out decrement changed availability: %v", second["newAvailable"])
	}
	if second["warning"] == nil {
		t.Errorf("sold-out decrement should warn, got %+v", second)
	}

	got, _ := items.GetByID(item.ID)
	if got.Available != 0 {
		t.Errorf("Available = %d, want 0", got.Available)
	}
}

func TestItemDecrementUnknownItem(t *testing.T) {
	r := newItemRouter(NewItemHandler(newMemItemStore()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/items/99/decrement", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestItemDelete(t *testing.T) {
	items := newMemItemStore()
	item := models.Item{Name: "Old", Type: models.ItemTypeEvent}
	items.Create(&item)

	r := newItemRouter(NewItemHandler(items))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/items/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", w.Code)
	}

	if _, err := items.GetByID(item.ID); err == nil {
		t.Error("item still present after delete")
	}
}
