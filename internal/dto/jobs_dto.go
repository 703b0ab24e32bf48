package dto

type DeadLetterFilter struct {
	Limit int `form:"limit,default=20" validate:"min=1,max=500"`
}

type DeadLetterResponse struct {
	JobType  string `json:"job_type"`
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
	FailedAt string `json:"failed_at"`
}

type DeadLetterListResponse struct {
	Queue string               `json:"queue"`
	Total int64                `json:"total"`
	Data  []DeadLetterResponse `json:"data"`
}

type RequeueResponse struct {
	Queue string `json:"queue"`
	Moved int    `json:"moved"`
}
