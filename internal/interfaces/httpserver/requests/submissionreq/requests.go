package submissionreq

// SubmitRequest represents a respondent's submission payload. Data is keyed
// by field public ID; attachment values may arrive inline as data URIs.
type SubmitRequest struct {
	Data           map[string]any `json:"data" binding:"required"`
	TimeToComplete *int           `json:"timeToComplete,omitempty" binding:"omitempty,gte=0"`
}
