package services

import (
	"fmt"
	"strings"
)

const atsSystemPrompt = `You are an expert Applicant Tracking System (ATS) and Technical Recruiter.
Your task is to evaluate resumes against job descriptions with high precision.
Return ONLY a valid JSON object with the following structure:
{
  "matchScore": <integer between 0-100>,
  "skills": [<list of strings, extracting only relevant technical and soft skills present in the resume that match the job>],
  "feedback": "<detailed feedback string explaining the score, missing skills, and suggestions for improvement>"
}
Exclude any other text or markdown formatting.`

const careerAssistantPrompt = `You are a helpful career assistant having a conversation about the user's resume. Use the provided context (resume/job) to answer questions.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// EvaluationSystemPrompt instructs the model to score a résumé as JSON.
func (pb *PromptBuilder) EvaluationSystemPrompt() string {
	return atsSystemPrompt
}

// BuildEvaluationPrompt pairs the job description with the résumé text.
func (pb *PromptBuilder) BuildEvaluationPrompt(resumeText, jobText string) string {
	return fmt.Sprintf(`Job Description:
%s

Resume Content:
%s`, strings.TrimSpace(jobText), strings.TrimSpace(resumeText))
}

// BuildInterviewQuestionsPrompt asks for technical and behavioral questions.
func (pb *PromptBuilder) BuildInterviewQuestionsPrompt(resumeText, jobText string) string {
	return fmt.Sprintf(`Based on the resume content and job description below, generate 5 technical interview questions and 5 behavioral interview questions.
Resume: %s
Job: %s`, strings.TrimSpace(resumeText), strings.TrimSpace(jobText))
}

func (pb *PromptBuilder) ChatSystemPrompt() string {
	return careerAssistantPrompt
}

func (pb *PromptBuilder) BuildChatPrompt(message, chatContext string) string {
	return fmt.Sprintf("Context:\n%s\n\nUser Question: %s", chatContext, message)
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}
