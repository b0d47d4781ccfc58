package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"flynext/internal/domain/invoice"
	"flynext/internal/usecase/queries"
)

// TextRenderer produces a printable plain-text invoice. It is the default
// render collaborator; swapping in a PDF renderer only means implementing
// queries.Renderer against the same Document.
type TextRenderer struct {
	appName string
}

func NewTextRenderer() queries.Renderer {
	return &TextRenderer{appName: "FlyNext"}
}

func (r *TextRenderer) Render(_ context.Context, doc invoice.Document) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s Invoice\n", r.appName)
	fmt.Fprintf(&buf, "%s\n\n", strings.Repeat("=", len(r.appName)+8))
	fmt.Fprintf(&buf, "Booking:   %s\n", doc.BookingID)
	fmt.Fprintf(&buf, "Status:    %s / %s\n", doc.BookingStatus, doc.InvoiceStatus)
	fmt.Fprintf(&buf, "Issued at: %s\n\n", doc.IssuedAt.Format("2006-01-02 15:04 MST"))

	for _, line := range doc.Lines {
		fmt.Fprintf(&buf, "  %-10s %12s %s\n", line.Component, formatCents(line.AmountCents), line.Currency)
	}
	fmt.Fprintf(&buf, "  %-10s %12s %s\n", "total", formatCents(doc.TotalCents), doc.TotalCurrency)

	if doc.RefundCents != nil {
		fmt.Fprintf(&buf, "\n  refunded   %12s %s\n", formatCents(*doc.RefundCents), doc.TotalCurrency)
	}

	return buf.Bytes(), nil
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
