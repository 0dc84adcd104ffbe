package services

import (
	"fmt"

	"github.com/blagoySimandov/teachermail/internal/models"
)

type IEmailPromptBuilder interface {
	Build(req models.GenerationRequest) string
}

type EmailPromptBuilder struct{}

func NewEmailPromptBuilder() *EmailPromptBuilder {
	return &EmailPromptBuilder{}
}

// Build embeds the submitted fields as given; only the surrounding wording is fixed.
func (e *EmailPromptBuilder) Build(req models.GenerationRequest) string {
	return fmt.Sprintf(`Write an email to %s, who teaches grade %s %s.

Format it nicely and keep it very concise. Leave out anything that does not serve the message.
Do not use emojis or slang. The tone should be neither too formal nor casual: write it the way a
grade %s student would, stay neutral, and sound somewhat appreciative at the end.
Do NOT answer the question in the email if there is one. Your only task is to relay the student's
question or topic to the teacher. Do not sound desperate, but make it a really good email.

Include the following content:

%s
`, req.TeacherName, req.GradeLevel, req.Course, req.GradeLevel, req.Content)
}
