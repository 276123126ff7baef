// FILE: internal/client/api/types.go
package api

import "time"

// Wire types mirrored from the server API

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
	Catalog int    `json:"catalog"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	AdminID   string    `json:"adminId"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LoginRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type ClassifyRequest struct {
	Moves string `json:"moves"`
}

type ClassifyResponse struct {
	ECO           string   `json:"eco"`
	Name          string   `json:"name"`
	MatchedTokens int      `json:"matchedTokens"`
	Tokens        []string `json:"tokens"`
}

type OpeningResponse struct {
	ECO   string   `json:"eco"`
	Name  string   `json:"name"`
	Moves []string `json:"moves"`
}

type OpeningListResponse struct {
	Count    int               `json:"count"`
	Openings []OpeningResponse `json:"openings"`
}

type CatalogResponse struct {
	Entries     int          `json:"entries"`
	Codes       int          `json:"codes"`
	Source      string       `json:"source"`
	LastRefresh *RunResponse `json:"lastRefresh,omitempty"`
}

type RunResponse struct {
	RunID        string     `json:"runId"`
	State        string     `json:"state"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	PagesFetched int        `json:"pagesFetched"`
	PagesFailed  int        `json:"pagesFailed"`
	EntryCount   int        `json:"entryCount"`
	Error        string     `json:"error,omitempty"`
}

type FetchLogEntry struct {
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	Entries   int       `json:"entries"`
	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

type FetchLogResponse struct {
	RunID string          `json:"runId"`
	Count int             `json:"count"`
	Pages []FetchLogEntry `json:"pages"`
}
