package models

type HFInferenceRequest struct {
	Inputs string `json:"inputs"`
}

type HFErrorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}
