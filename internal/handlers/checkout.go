package handlers

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"

	"sce-storefront/internal/payments"
)

// Amount bounds in minor units: $1.00 to $10,000.00.
const (
	minAmountCents = 100
	maxAmountCents = 1_000_000
)

// Recurring interval values accepted from the donation form.
const (
	IntervalOneTime   = "one-time"
	IntervalMonthly   = "monthly"
	IntervalQuarterly = "quarterly"
	IntervalYearly    = "yearly"
)

// CheckoutHandler opens hosted checkout sessions. Nothing is persisted
// locally here: until the donor returns from the hosted page, all state
// lives with the payment provider.
type CheckoutHandler struct {
	Gateway payments.Gateway
	BaseURL string
}

func NewCheckoutHandler(gateway payments.Gateway, baseURL string) *CheckoutHandler {
	return &CheckoutHandler{Gateway: gateway, BaseURL: baseURL}
}

type CreateCheckoutRequest struct {
	Amount      *float64 `json:"amount"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Name        string   `json:"name"`
	Interval    string   `json:"interval"`
	Anonymous   bool     `json:"anonymous"`
	CoverFees   bool     `json:"coverFees"`
	ItemID      *int     `json:"itemId"`
	Source      string   `json:"source"`
}

// normalizeInterval maps unknown interval strings to monthly. The one-time
// empty default is kept as one-time.
func normalizeInterval(interval string) string {
	switch interval {
	case "", IntervalOneTime:
		return IntervalOneTime
	case IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return interval
	default:
		return IntervalMonthly
	}
}

// amountToCents converts a dollar amount to integer minor units, rejecting
// anything that is not a positive finite number.
func amountToCents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("Invalid amount")
	}
	cents := int64(math.Round(amount * 100))
	if cents <= 0 {
		return 0, fmt.Errorf("Invalid amount")
	}
	return cents, nil
}

func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing amount"})
		return
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}

	cents, err := amountToCents(*req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cents < minAmountCents || cents > maxAmountCents {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Amount must be between %d and %d %s",
				minAmountCents/100, maxAmountCents/100, currency),
		})
		return
	}

	interval := normalizeInterval(req.Interval)
	recurring := interval != IntervalOneTime

	// The crypto payment method cannot back a subscription, so recurring
	// intervals drop it from the allowed set.
	methods := []string{"card", "cashapp", "crypto", "link"}
	if recurring {
		methods = []string{"card", "cashapp", "link"}
	}

	name := req.Name
	if name == "" {
		name = "Donation"
	}
	description := req.Description
	if description == "" {
		description = "Thanks for supporting us"
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = h.BaseURL
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(name),
			Description: stripe.String(description),
		},
		UnitAmount: stripe.Int64(cents),
	}

	mode := stripe.CheckoutSessionModePayment
	if recurring {
		mode = stripe.CheckoutSessionModeSubscription
		priceData.Recurring = recurringParams(interval)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(mode)),
		PaymentMethodTypes: stripe.StringSlice(methods),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
		// Collect billing address and phone number from the donor
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		SuccessURL: stripe.String(origin + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(origin + "/?canceled=true"),
	}

	source := req.Source
	if source == "" {
		source = "donation-form"
	}
	params.AddMetadata("source", source)
	params.AddMetadata("interval", interval)
	params.AddMetadata("anonymous", strconv.FormatBool(req.Anonymous))
	params.AddMetadata("cover_fees", strconv.FormatBool(req.CoverFees))
	params.AddMetadata("name", name)
	params.AddMetadata("description", description)
	if req.ItemID != nil {
		params.AddMetadata("item_id", strconv.Itoa(*req.ItemID))
	}

	session, err := h.Gateway.CreateSession(params)
	if err != nil {
		log.Println("Failed to create checkout session:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": session.URL})
}

func recurringParams(interval string) *stripe.CheckoutSessionLineItemPriceDataRecurringParams {
	switch interval {
	case IntervalQuarterly:
		return &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval:      stripe.String("month"),
			IntervalCount: stripe.Int64(3),
		}
	case IntervalYearly:
		return &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("year"),
		}
	default:
		return &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	}
}
