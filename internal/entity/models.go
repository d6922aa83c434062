package entity

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleExecutive     Role = "executive"
	RoleAnalyst       Role = "analyst"
	RoleComplianceUS  Role = "compliance_us"
	RoleComplianceEU  Role = "compliance_eu"
	RoleClientManager Role = "client_manager"
	RoleEmployee      Role = "employee"
)

func (r Role) Validate() error {
	switch r {
	case RoleExecutive, RoleAnalyst, RoleComplianceUS, RoleComplianceEU, RoleClientManager, RoleEmployee:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRole, r)
	}
}

type Region string

const (
	RegionUS Region = "US"
	RegionEU Region = "EU"
)

// Action is an operation a principal may perform on a knowledge box.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionAdmin  Action = "admin"
)

func (a Action) Validate() error {
	switch a {
	case ActionRead, ActionWrite, ActionDelete, ActionExport, ActionAdmin:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
}

// Principal identifies the user on whose behalf a request runs.
type Principal struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Role   Role   `json:"role"`
	Region Region `json:"region,omitempty"`
}

// KnowledgeBox maps a logical knowledge box name to its vendor identifier.
type KnowledgeBox struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// AccessDecision is the outcome of a permission check, including the
// human-readable reason that goes to the audit trail.
type AccessDecision struct {
	Allowed   bool      `json:"allowed"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Action    Action    `json:"action"`
	Resource  string    `json:"resource"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type AuditEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	UserRole  Role      `json:"user_role"`
	Action    Action    `json:"action"`
	Resource  string    `json:"resource"`
	Allowed   bool      `json:"allowed"`
	Details   string    `json:"details,omitempty"`
}

// AccessSession is an authenticated session with a fixed lifetime.
type AccessSession struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	UserRole  Role      `json:"user_role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	Active    bool      `json:"is_active"`
}

// Source is a document reference returned alongside a generated answer.
type Source struct {
	Title string `json:"title"`
	ID    string `json:"id,omitempty"`
}

// KnowledgeBoxAnswer is the answer one knowledge box produced for a query.
type KnowledgeBoxAnswer struct {
	KnowledgeBox string   `json:"kb"`
	Answer       string   `json:"answer"`
	Sources      []Source `json:"sources"`
	FromCache    bool     `json:"from_cache,omitempty"`
}

// FederatedResult aggregates answers from every knowledge box the principal
// was allowed to query.
type FederatedResult struct {
	Query        string               `json:"query"`
	UserID       string               `json:"user_id"`
	Role         Role                 `json:"role"`
	Timestamp    time.Time            `json:"timestamp"`
	Results      []KnowledgeBoxAnswer `json:"results"`
	Summary      string               `json:"summary"`
	TotalSources int                  `json:"total_sources"`
}

// SearchHit is a single document match with a short snippet.
type SearchHit struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// CategorizedResults groups search hits by document origin.
type CategorizedResults struct {
	Documents  []SearchHit `json:"documents"`
	News       []SearchHit `json:"news"`
	Compliance []SearchHit `json:"compliance"`
	Total      int         `json:"total"`
}

type ReportFormat string

const (
	FormatMarkdown ReportFormat = "markdown"
	FormatPDF      ReportFormat = "pdf"
	FormatDOCX     ReportFormat = "docx"
)

func (f ReportFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

type ReportSection struct {
	Name        string   `json:"name"`
	Query       string   `json:"query"`
	Content     string   `json:"content"`
	Sources     []string `json:"sources,omitempty"`
	SourceCount int      `json:"source_count"`
}

type ReportMetrics struct {
	SectionsGenerated int `json:"sections_generated"`
	TotalSources      int `json:"total_sources"`
}

type Report struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	Sections    []ReportSection `json:"sections"`
	Metrics     ReportMetrics   `json:"metrics"`
}
