package entity

import "time"

// API request/response shapes.

type FederatedSearchRequest struct {
	Query     string    `json:"query"`
	Principal Principal `json:"principal"`
}

type CategorizedSearchRequest struct {
	Query        string `json:"query"`
	KnowledgeBox string `json:"knowledge_box,omitempty"`
}

type CreateSessionRequest struct {
	UserID    string `json:"user_id"`
	Role      Role   `json:"role"`
	IPAddress string `json:"ip_address,omitempty"`
}

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AccessCheckRequest struct {
	UserID   string `json:"user_id"`
	Role     Role   `json:"role,omitempty"`
	Action   Action `json:"action"`
	Resource string `json:"resource"`
}

type AuditLogFilter struct {
	UserID    string     `json:"user_id,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type AuditLogResponse struct {
	Entries []AuditEntry `json:"entries"`
}

type GenerateReportRequest struct {
	Topic      string `json:"topic"`
	ReportType string `json:"report_type,omitempty"`
}

type DedupRequest struct {
	Documents []DocumentMeta `json:"documents"`
}

type ROIRequest struct {
	Baseline ROISnapshot `json:"baseline"`
	Current  ROISnapshot `json:"current"`
}

type ListBoxesResponse struct {
	Accessible []string `json:"accessible_kbs"`
	Role       Role     `json:"role"`
	Region     Region   `json:"region,omitempty"`
}
