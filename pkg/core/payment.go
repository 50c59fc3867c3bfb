package core

import (
	"context"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with thousands separators, dropping the
// decimals of whole values: 1500 -> "1,500", 12.5 -> "12.50". Amounts that
// round to zero cents keep their significant digits: 0.004 -> "0.004".
func FormatAmount(v float64) string {
	switch {
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return amountPrinter.Sprintf("%d", int64(v))
	case math.Round(v*100) == 0:
		// Differences of totals carry float noise; 8 places is below any currency unit.
		if r := math.Round(v*1e8) / 1e8; r != 0 {
			return strconv.FormatFloat(r, 'f', -1, 64)
		}
		return strconv.FormatFloat(v, 'g', 3, 64)
	default:
		return amountPrinter.Sprintf("%.2f", v)
	}
}

// RecordPayment adds amount to the amount paid, re-derives the payment status
// and stamps the payment date. Overpayment is accepted. The new total is
// computed inside the store transaction, and the update rules emit the
// "Payment Received" notification.
func (s *Service) RecordPayment(ctx context.Context, clientID string, amount float64) (Result, error) {
	if !finite(amount) {
		s.metrics.OperationFailed("record_payment", "invalid_amount")
		return Result{}, &InvalidAmountError{Amount: amount, Reason: "amount is not a number"}
	}
	if amount <= 0 {
		s.metrics.OperationFailed("record_payment", "invalid_amount")
		return Result{}, &InvalidAmountError{Amount: amount, Reason: "amount must be positive"}
	}

	res, err := s.apply(ctx, "record_payment", AdminSession(), clientID, func(current ClientEngagement) (ClientUpdate, error) {
		newPaid := current.AmountPaid + amount
		status := PaymentPending
		switch {
		case newPaid >= current.ContractValue:
			status = PaymentPaid
		case newPaid > 0:
			status = PaymentPartial
		}
		return ClientUpdate{
			AmountPaid:      Some(newPaid),
			PaymentStatus:   Some(status),
			LastPaymentDate: Some(s.now()),
		}, nil
	})
	if err != nil {
		return Result{}, err
	}

	s.metrics.PaymentRecorded(res.Record.Currency, amount)
	s.logger.Info("payment recorded",
		"client", clientID,
		"amount", amount,
		"amount_paid", res.Record.AmountPaid,
		"status", res.Record.PaymentStatus,
	)
	return res, nil
}
