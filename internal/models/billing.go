package models

import "math"

// Billing summarises what has been collected against a booking.
type Billing struct {
	BookingID     int64     `json:"booking_id"`
	Amount        float64   `json:"amount"`
	TotalPaid     float64   `json:"total_paid"`
	Balance       float64   `json:"balance"`
	PaymentStatus string    `json:"payment_status"`
	Payments      []Payment `json:"payments"`
}

// Summarize totals captured payments for b. Only payments belonging to the
// booking are counted.
func Summarize(b *Booking, payments []Payment) Billing {
	var paid float64
	own := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.BookingID != b.ID {
			continue
		}
		own = append(own, p)
		if p.Status == TxnCaptured {
			paid += p.Amount
		}
	}
	paid = round2(paid)

	balance := round2(b.Amount - paid)
	if balance < 0 {
		balance = 0
	}

	status := PaymentUnpaid
	switch {
	case b.Amount > 0 && paid >= b.Amount:
		status = PaymentPaid
	case paid > 0:
		status = PaymentPartial
	}

	return Billing{
		BookingID:     b.ID,
		Amount:        b.Amount,
		TotalPaid:     paid,
		Balance:       balance,
		PaymentStatus: status,
		Payments:      own,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
