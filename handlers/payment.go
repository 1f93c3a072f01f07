package handlers

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"shopora/database"
	"shopora/metrics"
	"shopora/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"
)

// createPaymentIntent asks Stripe for a payment intent and returns its
// client secret. Without a configured key (local dev, tests) it returns a
// locally generated stub so checkout still works end to end.
func createPaymentIntent(total decimal.Decimal) (string, error) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		id := strings.ReplaceAll(uuid.New().String(), "-", "")
		return fmt.Sprintf("pi_%s_secret_%s", id[:16], id[16:]), nil
	}

	stripe.Key = key
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(total.Mul(decimal.NewFromInt(100)).IntPart()),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

// StripeWebhook reconciles payment state from signed provider events.
// Stock is NOT touched here: it already moved when the order was placed,
// and a webhook can be delivered more than once.
func StripeWebhook(c *fiber.Ctx) error {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Webhook secret is not configured"})
	}

	// Accounts pin their own API version; only the signature decides
	// whether an event is trusted
	event, err := webhook.ConstructEventWithOptions(c.Body(), c.Get("Stripe-Signature"), secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return c.Status(400).SendString("Webhook Error: " + err.Error())
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return c.Status(400).SendString("Webhook Error: bad event payload")
		}
		if err := markPaymentPaid(intent.ClientSecret); err != nil {
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update payment"})
		}

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return c.Status(400).SendString("Webhook Error: bad event payload")
		}
		if err := markPaymentFailed(intent.ClientSecret); err != nil {
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update payment"})
		}
	}

	return c.JSON(fiber.Map{"received": true})
}

func markPaymentPaid(clientSecret string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("payment_intent_id = ?", clientSecret).First(&payment).Error; err != nil {
			return err
		}
		if payment.Status == models.PaymentStatusPaid {
			// Replayed delivery, nothing to do
			return nil
		}

		payment.Status = models.PaymentStatusPaid
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Order{}).
			Where("id = ?", payment.OrderID).
			Update("paid_at", &now).Error; err != nil {
			return err
		}

		metrics.PaymentsSucceeded.Inc()
		models.LogSuccess(tx, fmt.Sprintf("Payment confirmed for order #%d", payment.OrderID))
		return nil
	})
}

func markPaymentFailed(clientSecret string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("payment_intent_id = ?", clientSecret).First(&payment).Error; err != nil {
			return err
		}
		if payment.Status != models.PaymentStatusPending {
			return nil
		}

		payment.Status = models.PaymentStatusFailed
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		metrics.PaymentsFailed.Inc()
		models.LogError(tx, fmt.Sprintf("Payment failed for order #%d", payment.OrderID))
		return nil
	})
}
