// Package payment renders the static payment QR shown on the cart page. No
// payment is verified and no order is created.
package payment

import (
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// QR is a pre-rendered payment code.
type QR struct {
	Payee   string
	Name    string
	Payload string
	DataURI string
}

// UPIPayload builds a upi://pay link without an amount, so one code serves every cart.
func UPIPayload(payee, name string) string {
	q := url.Values{}
	q.Set("pa", payee)
	q.Set("pn", name)
	q.Set("cu", "INR")
	return "upi://pay?" + q.Encode()
}

// NewUPI encodes the payee as a PNG data URI ready for <img src="...">.
func NewUPI(payee, name string) (*QR, error) {
	if payee == "" {
		return nil, fmt.Errorf("payment: payee address is empty")
	}
	payload := UPIPayload(payee, name)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	return &QR{
		Payee:   payee,
		Name:    name,
		Payload: payload,
		DataURI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}
