package models

// AnalysisResult is the engine's evaluation of a résumé against a job description.
type AnalysisResult struct {
	MatchScore float64  `json:"matchScore"`
	Skills     []string `json:"skills"`
	Feedback   string   `json:"feedback"`
}

type InterviewResult struct {
	Questions string `json:"questions"`
}

type ChatResult struct {
	Reply string `json:"reply"`
}

// Upload is an uploaded document held in memory for the duration of a request.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

type AnalyzeResponse struct {
	ID             string   `json:"id"`
	OwnerID        string   `json:"ownerId"`
	JobDescription string   `json:"jobDescription"`
	MatchScore     float64  `json:"matchScore"`
	Skills         []string `json:"skills"`
	Feedback       string   `json:"feedback"`
	ResumeText     string   `json:"resumeText"`
}

type InterviewQuestionsRequest struct {
	Resume string `json:"resume"`
	Job    string `json:"job"`
}

type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
