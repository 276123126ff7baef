package core

import "time"

// Request types

type ClassifyRequest struct {
	Moves string `json:"moves" validate:"required,min=1,max=4000"` // raw move text, annotations and HTML entities allowed
}

// Response types

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
	State        string     `json:"state"` // "running", "completed", "failed"
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
	Status    string    `json:"status"` // "ok" or "failed"
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

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
