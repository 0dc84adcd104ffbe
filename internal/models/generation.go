package models

import "strings"

// GenerationRequest is the form submitted by the client. GeneratedEmail is
// echoed back by some clients and is ignored.
type GenerationRequest struct {
	TeacherName    string `json:"teacherName"`
	Course         string `json:"course"`
	GradeLevel     string `json:"gradeLevel"`
	Content        string `json:"content"`
	GeneratedEmail string `json:"generatedEmail,omitempty"`
}

// Complete reports whether every required field has non-blank content.
func (r *GenerationRequest) Complete() bool {
	for _, field := range []string{r.TeacherName, r.Course, r.GradeLevel, r.Content} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

type GenerationResponse struct {
	GeneratedEmail  string `json:"generatedEmail"`
	RemainingTokens int    `json:"remainingTokens"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
