package links_test

import (
	"testing"

	"microstore/internal/links"

	"github.com/stretchr/testify/assert"
)

func TestTel(t *testing.T) {
	assert.Equal(t, "tel:9876543210", links.Tel("9876543210"))
}

func TestWhatsAppOrder(t *testing.T) {
	assert.Equal(t,
		"https://wa.me/9876543210?text=Hi!%20I'd%20like%20to%20place%20an%20order%20from%20Fresh%20Bakes",
		links.WhatsAppOrder("9876543210", "Fresh Bakes"))
}

func TestWhatsAppShare(t *testing.T) {
	assert.Equal(t,
		"https://wa.me/?text=Check%20out%20my%20online%20store%3A%20https%3A%2F%2Fshop.example%2Fstore%2Ffresh-bakes-1234",
		links.WhatsAppShare("https://shop.example/store/fresh-bakes-1234"))
}

func TestUPIPay(t *testing.T) {
	assert.Equal(t, "upi://pay?pa=fresh@upi&pn=Fresh%20Bakes%20%26%20Co&cu=INR", links.UPIPay("fresh@upi", "Fresh Bakes & Co"))
}

func TestShare(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/store/fresh-bakes-1234", links.Share("http://localhost:8080", "fresh-bakes-1234"))
	assert.Equal(t, "https://shop.example/store/x-1000", links.Share("https://shop.example/", "x-1000"))
}

func TestEncodeURIComponent(t *testing.T) {
	tests := map[string]string{
		"a b":     "a%20b",
		"!'()*":   "!'()*",
		"-_.~":    "-_.~",
		"a+b=c&d": "a%2Bb%3Dc%26d",
		"₹50":     "%E2%82%B950",
		"x/y?z#":  "x%2Fy%3Fz%23",
		"":        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, links.EncodeURIComponent(in), "input %q", in)
	}
}
