// Package links builds the deep links shown on store pages.
package links

import (
	"net/url"
	"strings"
)

// Tel returns a telephone link for phone.
func Tel(phone string) string {
	return "tel:" + phone
}

// WhatsAppOrder opens a chat with the shop pre-filled with an order greeting.
func WhatsAppOrder(phone, shopName string) string {
	return "https://wa.me/" + phone + "?text=" + EncodeURIComponent("Hi! I'd like to place an order from "+shopName)
}

// WhatsAppShare opens the WhatsApp share sheet with a message carrying shareURL.
func WhatsAppShare(shareURL string) string {
	return "https://wa.me/?text=" + EncodeURIComponent("Check out my online store: "+shareURL)
}

// UPIPay returns a UPI payment intent addressed to upi. The UPI id is passed
// through unescaped; validation restricts it to [\w.-@].
func UPIPay(upi, shopName string) string {
	return "upi://pay?pa=" + upi + "&pn=" + EncodeURIComponent(shopName) + "&cu=INR"
}

// Share returns the public address of the store with the given slug.
func Share(origin, slug string) string {
	return strings.TrimRight(origin, "/") + "/store/" + slug
}

// EncodeURIComponent escapes s the way JavaScript's encodeURIComponent does:
// only A-Z a-z 0-9 and - _ . ! ~ * ' ( ) are left as is.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return unescaper.Replace(escaped)
}

var unescaper = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
