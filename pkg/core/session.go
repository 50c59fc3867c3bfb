package core

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role identifies which side of the portal a session acts for.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// Session is the identity a caller acts under.
type Session struct {
	Role     Role
	ClientID string
	Email    string
	Name     string
	Avatar   string
}

// AdminSession is the identity of the practice owner.
func AdminSession() Session {
	return Session{Role: RoleAdmin}
}

// ClientSession binds a session to a client record.
func ClientSession(c ClientEngagement) Session {
	return Session{
		Role:     RoleClient,
		ClientID: c.ID,
		Email:    c.Email,
		Name:     c.Name,
		Avatar:   c.Avatar,
	}
}

// IsAdmin reports whether the session acts as the admin.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// Owns reports whether this is the client session of record c.
func (s Session) Owns(c ClientEngagement) bool {
	if s.Role != RoleClient {
		return false
	}
	if s.ClientID != "" {
		return s.ClientID == c.ID
	}
	return s.Email != "" && normalizeEmail(s.Email) == normalizeEmail(c.Email)
}

// IdentityPatch mirrors a client's own profile edit onto its session.
type IdentityPatch struct {
	Name   string
	Avatar string
}

// Apply returns the session with the patch applied.
func (s Session) Apply(p IdentityPatch) Session {
	s.Name = p.Name
	s.Avatar = p.Avatar
	return s
}

// AdminCredentials is the admin login. PasswordHash is a bcrypt hash.
type AdminCredentials struct {
	Email        string
	Name         string
	PasswordHash string
}

// HashPassword returns the bcrypt hash stored in AdminCredentials and client records.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate looks the credentials up among the admin login and the client
// records. It waits for the configured login delay first and reports false on
// unknown credentials or when ctx ends during the wait.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, bool) {
	if s.loginDelay > 0 {
		t := time.NewTimer(s.loginDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Session{}, false
		case <-t.C:
		}
	}

	if s.admin.PasswordHash != "" && normalizeEmail(email) == normalizeEmail(s.admin.Email) {
		if bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)) != nil {
			s.logger.Debug("admin login refused")
			return Session{}, false
		}
		return Session{Role: RoleAdmin, Email: s.admin.Email, Name: s.admin.Name}, true
	}

	c, ok := s.store.FindByEmail(email)
	if !ok || c.PasswordHash == "" {
		s.logger.Debug("login refused", "reason", "unknown email")
		return Session{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		s.logger.Debug("login refused", "client", c.ID)
		return Session{}, false
	}
	return ClientSession(c), true
}
