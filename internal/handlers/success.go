package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"

	"sce-storefront/internal/models"
	"sce-storefront/internal/payments"
	"sce-storefront/internal/store"
	ws "sce-storefront/internal/websocket"
)

// SuccessHandler reconciles a completed hosted checkout into a local
// purchase record. It is the landing page for the provider's success
// redirect, so it must tolerate refreshes, duplicate tabs, and partial
// provider data without ever recording the same session twice.
type SuccessHandler struct {
	Purchases store.PurchaseStore
	Items     store.ItemStore
	Gateway   payments.Gateway
	Hub       *ws.Hub
}

func NewSuccessHandler(purchases store.PurchaseStore, items store.ItemStore, gateway payments.Gateway, hub *ws.Hub) *SuccessHandler {
	return &SuccessHandler{Purchases: purchases, Items: items, Gateway: gateway, Hub: hub}
}

func (h *SuccessHandler) Show(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.renderError(c, http.StatusBadRequest, "No session ID provided")
		return
	}

	// Pure read against the provider. Failing here writes nothing, so the
	// page is always safe to reload.
	session, err := h.Gateway.RetrieveSession(sessionID)
	if err != nil {
		log.Println("Failed to retrieve checkout session:", err)
		h.renderError(c, http.StatusInternalServerError, "Could not retrieve session")
		return
	}

	anonymous := metadataFlag(session.Metadata, "anonymous")
	itemName, itemDescription := sessionItemDetails(session)

	// Idempotency check: a row keyed on this session id means a previous
	// load already recorded the purchase. Render it, write nothing.
	existing, err := h.Purchases.GetBySessionID(session.ID)
	if err == nil {
		h.renderSuccess(c, session, existing, true)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Println("Failed to look up purchase:", err)
		h.renderError(c, http.StatusInternalServerError, "Could not record purchase")
		return
	}

	purchase, address := buildPurchase(session, itemName, itemDescription, anonymous)

	if err := h.Purchases.Create(purchase, address); err != nil {
		if errors.Is(err, store.ErrDuplicateSession) {
			// A concurrent load of this page won the insert. That request
			// owns the inventory decrement too; just render its row.
			existing, err := h.Purchases.GetBySessionID(session.ID)
			if err != nil {
				log.Println("Failed to re-read purchase after duplicate insert:", err)
				h.renderError(c, http.StatusInternalServerError, "Could not record purchase")
				return
			}
			h.renderSuccess(c, session, existing, true)
			return
		}
		log.Println("Failed to create purchase:", err)
		h.renderError(c, http.StatusInternalServerError, "Could not record purchase")
		return
	}

	// Bookkeeping only from here on. The payment is confirmed and the
	// purchase is recorded, so inventory or notification failures are
	// logged and swallowed.
	h.updateInventory(session, itemName)

	if h.Hub != nil {
		h.Hub.Notify(ws.PurchaseAlert{
			ItemName:    purchase.ItemName,
			AmountCents: session.AmountTotal,
			Type:        purchase.Type,
			Anonymous:   anonymous,
		})
	}

	h.renderSuccess(c, session, purchase, false)
}

// updateInventory decrements the matching catalog item. The item_id
// metadata threaded through checkout is authoritative; the display-name
// match remains as a fallback for sessions opened without one.
func (h *SuccessHandler) updateInventory(session *stripe.CheckoutSession, itemName string) {
	var item *models.Item
	var err error

	if idStr, ok := session.Metadata["item_id"]; ok && idStr != "" {
		id, convErr := strconv.Atoi(idStr)
		if convErr != nil {
			log.Println("Bad item_id metadata:", idStr)
			return
		}
		item, err = h.Items.GetByID(id)
	} else {
		item, err = h.Items.FindByName(itemName)
	}

	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Println("Inventory lookup failed:", err)
		}
		return
	}

	if item.Available <= 0 {
		return
	}

	if _, err := h.Items.DecrementAvailable(item.ID); err != nil {
		log.Println("Inventory decrement failed for item", item.ID, ":", err)
	}
}

// metadataFlag reads a boolean out of session metadata. The provider
// stores metadata as strings, and different client versions have written
// different truthy spellings.
func metadataFlag(metadata map[string]string, key string) bool {
	switch metadata[key] {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// sessionItemDetails derives the purchased item's display name and
// description. The product sub-object on a line item is only a full record
// when the retrieve expanded it, so the chain falls back through the line
// item's own description, then session metadata, then a literal Unknown.
func sessionItemDetails(session *stripe.CheckoutSession) (name, description string) {
	if session.LineItems != nil && len(session.LineItems.Data) > 0 {
		li := session.LineItems.Data[0]
		if li.Price != nil && li.Price.Product != nil && li.Price.Product.Name != "" {
			return li.Price.Product.Name, li.Price.Product.Description
		}
		if li.Description != "" {
			return li.Description, ""
		}
	}
	if session.Metadata["name"] != "" {
		return session.Metadata["name"], session.Metadata["description"]
	}
	return "Unknown", ""
}

// splitFullName splits at the first whitespace boundary: first token is the
// first name, the remainder is the last name.
func splitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// purchaseTypeFromSource maps checkout metadata to the purchase type enum.
func purchaseTypeFromSource(source string) string {
	switch source {
	case models.PurchaseTypeDonation, models.PurchaseTypeEvent, models.PurchaseTypeMerchandise, models.PurchaseTypeWorkshop:
		return source
	default:
		return models.PurchaseTypeWorkshop
	}
}

// buildPurchase assembles the rows to persist. Anonymity is an at-rest
// guarantee: when the flag is set no PII field may reach the database, not
// merely the page.
func buildPurchase(session *stripe.CheckoutSession, itemName, itemDescription string, anonymous bool) (*models.Purchase, *models.Address) {
	purchase := &models.Purchase{
		ItemName:        itemName,
		Amount:          float64(session.AmountTotal) / 100,
		Type:            purchaseTypeFromSource(session.Metadata["source"]),
		Reason:          itemDescription,
		StripeSessionID: session.ID,
		Date:            time.Now(),
		Status:          purchaseStatus(session),
	}

	if anonymous {
		purchase.FirstName = "ANONYMOUS"
		purchase.LastName = ""
		purchase.Email = ""
		return purchase, nil
	}

	var address *models.Address
	if session.CustomerDetails != nil {
		purchase.Email = session.CustomerDetails.Email
		purchase.FirstName, purchase.LastName = splitFullName(session.CustomerDetails.Name)

		if a := session.CustomerDetails.Address; a != nil {
			street := a.Line1
			if a.Line2 != "" {
				street += ", " + a.Line2
			}
			address = &models.Address{
				Street:  street,
				City:    a.City,
				State:   a.State,
				ZipCode: a.PostalCode,
				Country: a.Country,
			}
		}
	}

	return purchase, address
}

func purchaseStatus(session *stripe.CheckoutSession) string {
	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return models.PurchaseStatusCompleted
	}
	return models.PurchaseStatusPending
}

type successView struct {
	Amount          string
	ItemName        string
	Description     string
	Anonymous       bool
	CoveredFees     bool
	CustomerName    string
	CustomerEmail   string
	AddressLine     string
	PaymentStatus   string
	AlreadyRecorded bool
}

func (h *SuccessHandler) renderSuccess(c *gin.Context, session *stripe.CheckoutSession, purchase *models.Purchase, alreadyRecorded bool) {
	view := successView{
		Amount:          fmt.Sprintf("%.2f", float64(session.AmountTotal)/100),
		ItemName:        purchase.ItemName,
		Description:     purchase.Reason,
		Anonymous:       purchase.FirstName == "ANONYMOUS",
		CoveredFees:     metadataFlag(session.Metadata, "cover_fees"),
		PaymentStatus:   string(session.PaymentStatus),
		AlreadyRecorded: alreadyRecorded,
	}

	if !view.Anonymous {
		view.CustomerName = strings.TrimSpace(purchase.FirstName + " " + purchase.LastName)
		view.CustomerEmail = purchase.Email
		if purchase.Address != nil {
			view.AddressLine = formatAddress(purchase.Address)
		}
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := successTemplate.Execute(c.Writer, view); err != nil {
		log.Println("Failed to render success page:", err)
	}
}

func (h *SuccessHandler) renderError(c *gin.Context, status int, message string) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := errorTemplate.Execute(c.Writer, message); err != nil {
		log.Println("Failed to render error page:", err)
	}
}

func formatAddress(a *models.Address) string {
	parts := []string{}
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

var successTemplate = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head><title>Payment Successful</title></head>
<body>
  <h1>Payment Successful!</h1>
  {{if .AlreadyRecorded}}<p>This payment was already recorded.</p>{{end}}
  <p>Amount: ${{.Amount}}</p>
  {{if .CoveredFees}}<p>Thank you for covering the processing fees.</p>{{end}}
  <p>Item: {{.ItemName}}</p>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  {{if .Anonymous}}
  <p>Customer: Anonymous</p>
  {{else}}
  <p>Customer Name: {{.CustomerName}}</p>
  <p>Customer Email: {{.CustomerEmail}}</p>
  {{if .AddressLine}}<p>Address: {{.AddressLine}}</p>{{end}}
  {{end}}
  <p>Status: {{.PaymentStatus}}</p>
  <p>You will be redirected shortly.</p>
  <script>setTimeout(function () { window.location.href = '/'; }, 5000);</script>
</body>
</html>
`))

var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Error</title></head>
<body>
  <h1>Error</h1>
  <p>{{.}}</p>
</body>
</html>
`))
