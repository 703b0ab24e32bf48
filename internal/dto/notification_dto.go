package dto

type NotificationResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	TargetID  *string `json:"target_id"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// AnalyzerRunResponse reports what a manual analyzer run did.
type AnalyzerRunResponse struct {
	Outcome        string `json:"outcome"`
	CannotMake     int    `json:"cannot_make"`
	LowStock       int    `json:"low_stock"`
	Expiring       int    `json:"expiring"`
	Surplus        int    `json:"surplus"`
	NotificationID string `json:"notification_id,omitempty"`
}
