package orders

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// PaymentQR renders UPI payment QR codes for placed orders.
type PaymentQR struct {
	VPA       string
	PayeeName string
}

// URI builds the upi://pay deep link any UPI app can open.
func (g PaymentQR) URI(orderID int64, amount float64) string {
	q := url.Values{}
	q.Set("pa", g.VPA)
	q.Set("pn", g.PayeeName)
	q.Set("am", decimal.NewFromFloat(amount).StringFixed(2))
	q.Set("cu", "INR")
	q.Set("tn", fmt.Sprintf("Order %d", orderID))
	return "upi://pay?" + q.Encode()
}

// Generate returns a PNG of the payment URI.
func (g PaymentQR) Generate(orderID int64, amount float64) ([]byte, error) {
	return qrcode.Encode(g.URI(orderID, amount), qrcode.Medium, qrSize)
}
