package core

import (
	"context"
	"fmt"
	"math"
	"time"
)

// ClientUpdate is a sparse change to a client record. Only fields with Set
// are applied; when decoded from JSON a field is set whenever its key is
// present with a non-null value, and unknown keys are ignored.
type ClientUpdate struct {
	Name            Optional[string]           `json:"name" yaml:"name,omitempty"`
	CompanyName     Optional[string]           `json:"companyName" yaml:"companyName,omitempty"`
	CompanyCategory Optional[string]           `json:"companyCategory" yaml:"companyCategory,omitempty"`
	ServiceType     Optional[string]           `json:"serviceType" yaml:"serviceType,omitempty"`
	Avatar          Optional[string]           `json:"avatar" yaml:"avatar,omitempty"`
	Progress        Optional[int]              `json:"progress" yaml:"progress,omitempty"`
	StatusMessage   Optional[string]           `json:"statusMessage" yaml:"statusMessage,omitempty"`
	Timeline        Optional[[]TimelineStep]   `json:"timeline" yaml:"timeline,omitempty"`
	Documents       Optional[[]ClientDocument] `json:"documents" yaml:"documents,omitempty"`
	ContractValue   Optional[float64]          `json:"contractValue" yaml:"contractValue,omitempty"`
	AmountPaid      Optional[float64]          `json:"amountPaid" yaml:"amountPaid,omitempty"`
	Currency        Optional[string]           `json:"currency" yaml:"currency,omitempty"`
	PaymentStatus   Optional[PaymentStatus]    `json:"paymentStatus" yaml:"paymentStatus,omitempty"`
	LastPaymentDate Optional[time.Time]        `json:"lastPaymentDate" yaml:"lastPaymentDate,omitempty"`
}

// Result is the outcome of a mutating operation on one record.
type Result struct {
	Record ClientEngagement
	// Notifications created by this call, newest first.
	Notifications []Notification
	// Identity is set when a client edited its own name or avatar; the caller
	// decides whether to apply it to the session.
	Identity *IdentityPatch
}

// ApplyUpdate merges u into the record identified by clientID and appends the
// notifications implied by the change.
//
// Notification rules are evaluated against the stored record, in order:
// status message change, otherwise progress change; document approvals and
// rejections; payment received. A timeline change recomputes progress and,
// unless an admin supplied one, the status message before the rules run.
func (s *Service) ApplyUpdate(ctx context.Context, actor Session, clientID string, u ClientUpdate) (Result, error) {
	return s.apply(ctx, "apply_update", actor, clientID, func(ClientEngagement) (ClientUpdate, error) {
		return u, nil
	})
}

// apply runs one read-modify-write of a record inside a store transaction.
// build derives the update from the current record, so concurrent callers
// never compute from a stale copy.
func (s *Service) apply(ctx context.Context, op string, actor Session, clientID string, build func(old ClientEngagement) (ClientUpdate, error)) (Result, error) {
	var res Result
	err := s.store.WithTransaction(ctx, func(tx *Tx) error {
		old, ok := tx.Client(clientID)
		if !ok {
			return &NotFoundError{ID: clientID}
		}

		u, err := build(old)
		if err != nil {
			return err
		}
		eff, err := resolveUpdate(actor, old, u)
		if err != nil {
			return err
		}

		next := mergeUpdate(old, eff)
		batch := s.diff(old, next, eff)
		next.Notifications.prepend(batch...)
		tx.Put(next)

		res = Result{Record: next.Clone(), Notifications: batch}
		if actor.Owns(old) && (eff.Name.Set || eff.Avatar.Set) {
			res.Identity = &IdentityPatch{Name: next.Name, Avatar: next.Avatar}
		}
		return nil
	})
	if err != nil {
		s.metrics.OperationFailed(op, errorReason(err))
		s.logger.Debug("update rejected", "op", op, "client", clientID, "error", err)
		return Result{}, err
	}

	s.metrics.UpdateApplied()
	for _, n := range res.Notifications {
		s.metrics.NotificationEmitted(n.Title, n.Type)
	}
	s.logger.Debug("update applied", "op", op, "client", clientID, "notifications", len(res.Notifications))
	return res, nil
}

// resolveUpdate validates u and fills in the fields derived from it.
func resolveUpdate(actor Session, old ClientEngagement, u ClientUpdate) (ClientUpdate, error) {
	eff := u

	if v, ok := eff.ContractValue.Get(); ok && (v < 0 || !finite(v)) {
		return eff, &InvalidAmountError{Amount: v, Reason: "contract value must be a non-negative number"}
	}
	if v, ok := eff.AmountPaid.Get(); ok {
		if !finite(v) || v < 0 {
			return eff, &InvalidAmountError{Amount: v, Reason: "amount paid must be a non-negative number"}
		}
		if v < old.AmountPaid {
			return eff, &InvalidAmountError{Amount: v, Reason: fmt.Sprintf("amount paid cannot decrease below %v", old.AmountPaid)}
		}
	}

	timeline := eff.Timeline.Or(old.Timeline)
	p, driven := ComputeProgress(timeline)
	if eff.Timeline.Set || eff.Progress.Set {
		if driven {
			eff.Progress = Some(p.Percent)
		} else if v, ok := eff.Progress.Get(); ok {
			eff.Progress = Some(clampPercent(v))
		}
	}
	// Only an admin may override the message a timeline implies.
	adminMessage := eff.StatusMessage.Set && actor.IsAdmin()
	if driven && (eff.Timeline.Set || eff.StatusMessage.Set) && !adminMessage {
		eff.StatusMessage = Some(p.StatusMessage)
	}

	if docs, ok := eff.Documents.Get(); ok {
		eff.Documents = Some(normalizeDocuments(docs))
	}

	if eff.AmountPaid.Set || eff.ContractValue.Set || eff.PaymentStatus.Set {
		requested := eff.PaymentStatus.Or(old.PaymentStatus)
		eff.PaymentStatus = Some(derivePaymentStatus(
			eff.AmountPaid.Or(old.AmountPaid),
			eff.ContractValue.Or(old.ContractValue),
			requested,
		))
	}
	return eff, nil
}

func mergeUpdate(old ClientEngagement, u ClientUpdate) ClientEngagement {
	next := old.Clone()
	if v, ok := u.Name.Get(); ok {
		next.Name = v
	}
	if v, ok := u.CompanyName.Get(); ok {
		next.CompanyName = v
	}
	if v, ok := u.CompanyCategory.Get(); ok {
		next.CompanyCategory = v
	}
	if v, ok := u.ServiceType.Get(); ok {
		next.ServiceType = v
	}
	if v, ok := u.Avatar.Get(); ok {
		next.Avatar = v
	}
	if v, ok := u.Progress.Get(); ok {
		next.Progress = v
	}
	if v, ok := u.StatusMessage.Get(); ok {
		next.StatusMessage = v
	}
	if v, ok := u.Timeline.Get(); ok {
		next.Timeline = append([]TimelineStep(nil), v...)
	}
	if v, ok := u.Documents.Get(); ok {
		next.Documents = append([]ClientDocument(nil), v...)
	}
	if v, ok := u.ContractValue.Get(); ok {
		next.ContractValue = v
	}
	if v, ok := u.AmountPaid.Get(); ok {
		next.AmountPaid = v
	}
	if v, ok := u.Currency.Get(); ok {
		next.Currency = v
	}
	if v, ok := u.PaymentStatus.Get(); ok {
		next.PaymentStatus = v
	}
	if v, ok := u.LastPaymentDate.Get(); ok {
		t := v
		next.LastPaymentDate = &t
	}
	return next
}

// diff synthesizes the notifications for the transition old -> next, newest first.
// All of them share one timestamp.
func (s *Service) diff(old, next ClientEngagement, u ClientUpdate) []Notification {
	at := s.now()
	var batch []Notification
	add := func(typ NotificationType, title, msg string) {
		batch = append(batch, Notification{
			ID:      s.newID(),
			Title:   title,
			Message: msg,
			Date:    at,
			Type:    typ,
		})
	}

	// Status and progress notices are mutually exclusive; the status message wins.
	if v, ok := u.StatusMessage.Get(); ok && v != old.StatusMessage {
		add(NotificationInfo, "Status Update", "New status: "+v)
	} else if v, ok := u.Progress.Get(); ok && v != old.Progress {
		add(NotificationInfo, "Progress Update", fmt.Sprintf("Your service progress is now at %d%%.", v))
	}

	if docs, ok := u.Documents.Get(); ok {
		prev := make(map[string]ClientDocument, len(old.Documents))
		for _, d := range old.Documents {
			prev[d.ID] = d
		}
		for _, d := range docs {
			before, known := prev[d.ID]
			if !known {
				continue
			}
			switch {
			case d.Status == DocumentApproved && before.Status != DocumentApproved:
				add(NotificationSuccess, "Document Approved",
					fmt.Sprintf("Your document \"%s\" has been reviewed and approved.", d.Name))
			case d.Status == DocumentRejected && before.Status != DocumentRejected:
				add(NotificationAlert, "Document Rejected",
					fmt.Sprintf("Issue with \"%s\". %s Please check and re-upload.", d.Name, d.RejectionReason))
			}
		}
	}

	if v, ok := u.AmountPaid.Get(); ok && v > old.AmountPaid {
		add(NotificationSuccess, "Payment Received",
			fmt.Sprintf("A payment of %s %s has been recorded.", FormatAmount(v-old.AmountPaid), next.Currency))
	}

	return batch
}

func normalizeDocuments(docs []ClientDocument) []ClientDocument {
	if docs == nil {
		return nil
	}
	out := make([]ClientDocument, len(docs))
	for i, d := range docs {
		if d.Status != DocumentRejected {
			d.RejectionReason = ""
		} else if d.RejectionReason == "" {
			d.RejectionReason = DefaultRejectionReason
		}
		out[i] = d
	}
	return out
}

// derivePaymentStatus keeps paymentStatus consistent with the amounts.
// An overdue mark survives until the contract is paid in full.
func derivePaymentStatus(paid, contract float64, current PaymentStatus) PaymentStatus {
	switch {
	case paid >= contract:
		return PaymentPaid
	case current == PaymentOverdue:
		return PaymentOverdue
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}

func clampPercent(v int) int {
	return min(max(v, 0), 100)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
