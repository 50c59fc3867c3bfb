package core

import (
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// NotificationType drives how a notification is presented.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationAlert   NotificationType = "alert"
)

// Valid reports whether t is one of the known presentation types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationAlert:
		return true
	}
	return false
}

// Notification is a system-generated message addressed to a client or to the admin.
// Only Read ever changes after creation.
type Notification struct {
	ID      string           `json:"id" yaml:"id"`
	Title   string           `json:"title" yaml:"title"`
	Message string           `json:"message" yaml:"message"`
	Date    time.Time        `json:"date" yaml:"date"`
	Read    bool             `json:"read" yaml:"read"`
	Type    NotificationType `json:"type" yaml:"type"`
}

// Inbox is an ordered notification stream observed newest first.
//
// Entries are kept oldest first internally so that adding a notification
// at the head is an append. Serialized forms are newest first.
type Inbox struct {
	items []Notification
}

// NewInbox builds an inbox from a newest-first list.
func NewInbox(newestFirst ...Notification) Inbox {
	items := make([]Notification, len(newestFirst))
	for i, n := range newestFirst {
		items[len(newestFirst)-1-i] = n
	}
	return Inbox{items: items}
}

// Len returns the number of notifications.
func (in Inbox) Len() int { return len(in.items) }

// All returns the notifications newest first.
func (in Inbox) All() []Notification {
	out := make([]Notification, len(in.items))
	for i, n := range in.items {
		out[len(in.items)-1-i] = n
	}
	return out
}

// At returns the i-th newest notification.
func (in Inbox) At(i int) Notification {
	return in.items[len(in.items)-1-i]
}

// Unread counts unread notifications. It is computed on every call.
func (in Inbox) Unread() int {
	n := 0
	for _, item := range in.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// Clone returns a copy that shares no backing array with in.
func (in Inbox) Clone() Inbox {
	if in.items == nil {
		return Inbox{}
	}
	return Inbox{items: append([]Notification(nil), in.items...)}
}

// prepend places batch at the head. batch is given newest first.
func (in *Inbox) prepend(batch ...Notification) {
	for i := len(batch) - 1; i >= 0; i-- {
		in.items = append(in.items, batch[i])
	}
}

func (in *Inbox) markRead(id string) bool {
	for i := range in.items {
		if in.items[i].ID == id {
			if in.items[i].Read {
				return false
			}
			in.items[i].Read = true
			return true
		}
	}
	return false
}

func (in *Inbox) markAllRead() int {
	n := 0
	for i := range in.items {
		if !in.items[i].Read {
			in.items[i].Read = true
			n++
		}
	}
	return n
}

func (in Inbox) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.All())
}

func (in *Inbox) UnmarshalJSON(data []byte) error {
	var list []Notification
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*in = NewInbox(list...)
	return nil
}

func (in Inbox) MarshalYAML() (interface{}, error) {
	return in.All(), nil
}

func (in *Inbox) UnmarshalYAML(value *yaml.Node) error {
	var list []Notification
	if err := value.Decode(&list); err != nil {
		return err
	}
	*in = NewInbox(list...)
	return nil
}
