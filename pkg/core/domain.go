// Package core holds the client engagement domain: records, notifications,
// the storage port and the Service that keeps derived fields consistent.
package core

import (
	"strings"
	"time"
)

// StepStatus is the state of a single timeline milestone.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
)

// TimelineStep is one milestone of a service engagement.
// Order inside a timeline is significant: the first pending step is "next up".
type TimelineStep struct {
	ID     string     `json:"id" yaml:"id"`
	Label  string     `json:"label" yaml:"label"`
	Status StepStatus `json:"status" yaml:"status"`
	Date   string     `json:"date,omitempty" yaml:"date,omitempty"`
}

// DocumentStatus is the review state of a client document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentUploaded DocumentStatus = "uploaded"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// DefaultRejectionReason is stored when a document is rejected without a reason.
const DefaultRejectionReason = "No reason provided."

// ClientDocument is a file requested from or supplied by the client.
// RejectionReason is only meaningful while Status is DocumentRejected.
type ClientDocument struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	Type            string         `json:"type" yaml:"type"`
	Status          DocumentStatus `json:"status" yaml:"status"`
	UploadDate      string         `json:"uploadDate,omitempty" yaml:"uploadDate,omitempty"`
	RejectionReason string         `json:"rejectionReason,omitempty" yaml:"rejectionReason,omitempty"`
}

// PaymentStatus summarises amountPaid against contractValue.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
)

// ClientEngagement is the mutable record of one client and its engagement.
type ClientEngagement struct {
	ID               string           `json:"id" yaml:"id"`
	Email            string           `json:"email" yaml:"email"`
	Name             string           `json:"name" yaml:"name"`
	CompanyName      string           `json:"companyName" yaml:"companyName"`
	CompanyCategory  string           `json:"companyCategory,omitempty" yaml:"companyCategory,omitempty"`
	ServiceType      string           `json:"serviceType,omitempty" yaml:"serviceType,omitempty"`
	Avatar           string           `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Progress         int              `json:"progress" yaml:"progress"`
	StatusMessage    string           `json:"statusMessage" yaml:"statusMessage"`
	Timeline         []TimelineStep   `json:"timeline" yaml:"timeline"`
	Documents        []ClientDocument `json:"documents" yaml:"documents"`
	Notifications    Inbox            `json:"notifications" yaml:"notifications"`
	ContractValue    float64          `json:"contractValue" yaml:"contractValue"`
	AmountPaid       float64          `json:"amountPaid" yaml:"amountPaid"`
	Currency         string           `json:"currency" yaml:"currency"`
	PaymentStatus    PaymentStatus    `json:"paymentStatus" yaml:"paymentStatus"`
	LastPaymentDate  *time.Time       `json:"lastPaymentDate,omitempty" yaml:"lastPaymentDate,omitempty"`
	MissionStartDate string           `json:"missionStartDate,omitempty" yaml:"missionStartDate,omitempty"`
	PasswordHash     string           `json:"passwordHash,omitempty" yaml:"passwordHash,omitempty"`
}

// Clone returns a deep copy that shares no slices with c.
func (c ClientEngagement) Clone() ClientEngagement {
	out := c
	if c.Timeline != nil {
		out.Timeline = append([]TimelineStep(nil), c.Timeline...)
	}
	if c.Documents != nil {
		out.Documents = append([]ClientDocument(nil), c.Documents...)
	}
	out.Notifications = c.Notifications.Clone()
	if c.LastPaymentDate != nil {
		t := *c.LastPaymentDate
		out.LastPaymentDate = &t
	}
	return out
}

// Balance is the outstanding amount; negative when overpaid.
func (c ClientEngagement) Balance() float64 {
	return c.ContractValue - c.AmountPaid
}

// RenewalDate is the annual renewal anchored on MissionStartDate.
// ok is false when the start date is missing or malformed.
func (c ClientEngagement) RenewalDate() (time.Time, bool) {
	if c.MissionStartDate == "" {
		return time.Time{}, false
	}
	start, err := time.Parse(time.DateOnly, c.MissionStartDate)
	if err != nil {
		start, err = time.Parse(time.RFC3339, c.MissionStartDate)
		if err != nil {
			return time.Time{}, false
		}
	}
	return start.AddDate(1, 0, 0), true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Snapshot is the full record set exchanged with a Repository.
type Snapshot struct {
	Clients   []ClientEngagement `json:"clients" yaml:"clients"`
	AdminFeed Inbox              `json:"adminNotifications" yaml:"adminNotifications"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{AdminFeed: s.AdminFeed.Clone()}
	if s.Clients != nil {
		out.Clients = make([]ClientEngagement, len(s.Clients))
		for i, c := range s.Clients {
			out.Clients[i] = c.Clone()
		}
	}
	return out
}

// EventType represents the kind of change observed in the backing store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents an external change of the persisted record set.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
