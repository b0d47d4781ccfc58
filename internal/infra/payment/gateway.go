package payment

import (
	"context"
	"strconv"
	"strings"
	"time"

	"flynext/internal/pkg/clock"
	"flynext/internal/usecase/commands"

	"github.com/google/uuid"
)

// Gateway validates card details and records the capture. There is no real
// processor behind it; a card that passes validation is captured, one that
// fails is declined with a reason. Declines are verdicts, not errors.
type Gateway struct {
	clock clock.Clock
}

func NewGateway(clock clock.Clock) commands.PaymentGateway {
	return &Gateway{clock: clock}
}

func (g *Gateway) Charge(ctx context.Context, card commands.PaymentCard, amountCents int64, currency string) (*commands.PaymentRecord, error) {
	if reason := g.validate(card); reason != "" {
		return &commands.PaymentRecord{Captured: false, DeclineReason: reason}, nil
	}
	if amountCents <= 0 {
		return &commands.PaymentRecord{Captured: false, DeclineReason: "nothing to charge"}, nil
	}

	return &commands.PaymentRecord{
		Captured:  true,
		Reference: "ch_" + uuid.NewString(),
	}, nil
}

func (g *Gateway) validate(card commands.PaymentCard) string {
	number := strings.ReplaceAll(card.Number, " ", "")
	if !luhnValid(number) {
		return "invalid card number"
	}
	if len(card.CVV) < 3 || len(card.CVV) > 4 || !digitsOnly(card.CVV) {
		return "invalid cvv"
	}
	if expired(card.ExpiryMonth, card.ExpiryYear, g.clock.Now()) {
		return "card expired"
	}
	if strings.TrimSpace(card.PassportNumber) == "" {
		return "passport number required"
	}
	return ""
}

func luhnValid(number string) bool {
	if len(number) < 12 || len(number) > 19 || !digitsOnly(number) {
		return false
	}

	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func expired(monthStr, yearStr string, now time.Time) bool {
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return true
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return true
	}
	if year < 100 {
		year += 2000
	}

	// valid through the last moment of the expiry month
	endOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return !now.Before(endOfMonth)
}
