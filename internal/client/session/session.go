// FILE: internal/client/session/session.go
package session

import (
	"time"

	"eco/internal/client/api"
)

// Session holds client state shared across commands
type Session struct {
	APIBaseURL  string
	AuthToken   string
	AdminID     string
	AdminName   string
	TokenExpiry time.Time
	LastRunID   string
	Verbose     bool
	Client      *api.Client
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(url string) { s.APIBaseURL = url }

func (s *Session) GetAdminID() string { return s.AdminID }

func (s *Session) SetAdminID(id string) { s.AdminID = id }

func (s *Session) GetAdminName() string { return s.AdminName }

func (s *Session) SetAdminName(name string) { s.AdminName = name }

func (s *Session) GetAuthToken() string { return s.AuthToken }

func (s *Session) SetAuthToken(token string) { s.AuthToken = token }

func (s *Session) GetTokenExpiry() time.Time { return s.TokenExpiry }

func (s *Session) SetTokenExpiry(t time.Time) { s.TokenExpiry = t }

func (s *Session) GetLastRunID() string { return s.LastRunID }

func (s *Session) SetLastRunID(id string) { s.LastRunID = id }

func (s *Session) GetClient() interface{} { return s.Client }

func (s *Session) IsVerbose() bool { return s.Verbose }
