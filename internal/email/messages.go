package email

import (
	"fmt"
	"strings"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
)

func OtpMessage(to, code string) Message {
	return Message{
		To:      to,
		Subject: "Your verification code",
		Body:    fmt.Sprintf("Your verification code is %s.", code),
	}
}

func OrderConfirmation(event domain.OrderPlacedEvent) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n", event.OrderID)
	for _, item := range event.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s\n", item.ProductID, item.Quantity, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s", event.TotalAmount.StringFixed(2))

	return Message{
		To:      event.Email,
		Subject: "Order Confirmation: " + event.OrderID,
		Body:    b.String(),
	}
}
