package core

import "context"

// DefaultMessageTitle is used when an admin sends a message without a title.
const DefaultMessageTitle = "New Message"

// unknownSender names a client that cannot be resolved.
const unknownSender = "A client"

// Message is a free-form notice sent between the admin and a client.
type Message struct {
	Title string
	Text  string
	Type  NotificationType
}

// InboxRef addresses either the admin feed or one client's notifications.
type InboxRef struct {
	ClientID string
}

// AdminInbox addresses the admin-wide feed.
func AdminInbox() InboxRef { return InboxRef{} }

// ClientInbox addresses the notifications of one client.
func ClientInbox(id string) InboxRef { return InboxRef{ClientID: id} }

// IsAdmin reports whether the ref addresses the admin feed.
func (r InboxRef) IsAdmin() bool { return r.ClientID == "" }

func (r InboxRef) String() string {
	if r.IsAdmin() {
		return "admin"
	}
	return "client:" + r.ClientID
}

// Notify delivers msg across the admin/client boundary.
//
// From the admin, the notification lands in the client's own list with the
// caller's title. From a client, it lands in the admin feed titled
// "Message from {companyName}". Text is stored as given. An empty or unknown
// type is stored as info.
func (s *Service) Notify(ctx context.Context, actor Session, clientID string, msg Message) (Notification, error) {
	n := Notification{
		ID:      s.newID(),
		Title:   msg.Title,
		Message: msg.Text,
		Date:    s.now(),
		Type:    msg.Type,
	}
	if !n.Type.Valid() {
		n.Type = NotificationInfo
	}

	err := s.store.WithTransaction(ctx, func(tx *Tx) error {
		if actor.IsAdmin() {
			c, ok := tx.Client(clientID)
			if !ok {
				return &NotFoundError{ID: clientID}
			}
			if n.Title == "" {
				n.Title = DefaultMessageTitle
			}
			c.Notifications.prepend(n)
			tx.Put(c)
			return nil
		}

		sender := unknownSender
		if c, ok := tx.Client(clientID); ok && c.CompanyName != "" {
			sender = c.CompanyName
		}
		n.Title = "Message from " + sender
		feed := tx.AdminFeed()
		feed.prepend(n)
		tx.PutAdminFeed(feed)
		return nil
	})
	if err != nil {
		s.metrics.OperationFailed("notify", errorReason(err))
		return Notification{}, err
	}

	s.metrics.NotificationEmitted("message", n.Type)
	s.logger.Debug("message delivered", "from", actor.Role, "client", clientID, "notification", n.ID)
	return n, nil
}

// MarkRead flags one notification as read. Unknown or already read ids are a no-op.
func (s *Service) MarkRead(ctx context.Context, ref InboxRef, notificationID string) error {
	err := s.store.WithTransaction(ctx, func(tx *Tx) error {
		if ref.IsAdmin() {
			feed := tx.AdminFeed()
			if feed.markRead(notificationID) {
				tx.PutAdminFeed(feed)
			}
			return nil
		}
		c, ok := tx.Client(ref.ClientID)
		if !ok {
			return &NotFoundError{ID: ref.ClientID}
		}
		if c.Notifications.markRead(notificationID) {
			tx.Put(c)
		}
		return nil
	})
	if err != nil {
		s.metrics.OperationFailed("mark_read", errorReason(err))
	}
	return err
}

// MarkAllRead flags every unread notification of the inbox as read in one step
// and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, ref InboxRef) (int, error) {
	var changed int
	err := s.store.WithTransaction(ctx, func(tx *Tx) error {
		if ref.IsAdmin() {
			feed := tx.AdminFeed()
			if changed = feed.markAllRead(); changed > 0 {
				tx.PutAdminFeed(feed)
			}
			return nil
		}
		c, ok := tx.Client(ref.ClientID)
		if !ok {
			return &NotFoundError{ID: ref.ClientID}
		}
		if changed = c.Notifications.markAllRead(); changed > 0 {
			tx.Put(c)
		}
		return nil
	})
	if err != nil {
		s.metrics.OperationFailed("mark_all_read", errorReason(err))
		return 0, err
	}
	return changed, nil
}

// Inbox returns a copy of the addressed notifications.
func (s *Service) Inbox(ref InboxRef) (Inbox, error) {
	if ref.IsAdmin() {
		return s.store.AdminFeed(), nil
	}
	c, ok := s.store.Get(ref.ClientID)
	if !ok {
		return Inbox{}, &NotFoundError{ID: ref.ClientID}
	}
	return c.Notifications, nil
}

// UnreadCount counts the unread notifications of the inbox.
func (s *Service) UnreadCount(ref InboxRef) (int, error) {
	in, err := s.Inbox(ref)
	if err != nil {
		return 0, err
	}
	return in.Unread(), nil
}
