package ai

import (
	"fmt"
	"strings"
)

const analyzePromptTemplate = `Act as an expert HR technical recruiter. Analyze the following resume against the provided job description.
Your response must be a single, valid JSON object and nothing else. Do not wrap it in markdown.

The JSON object must contain exactly these keys:
- "match_score": a number from 0 to 100 describing how well the resume matches the job description.
- "score_details": an object with the numeric keys "skills_match", "experience_match" and "education_match", each from 0 to 100.
- "resume_summary": a 3-4 sentence professional summary of the candidate.
- "technical_skills_summary": a short paragraph summarizing the candidate's technical skills.
- "extracted_email": the candidate's email address, or "" if not found.
- "extracted_name": the candidate's full name, or "" if not found.
- "extracted_skills": an array of the individual technical skills found in the resume.

--- JOB DESCRIPTION ---
%s

--- RESUME TEXT ---
%s

--- JSON OUTPUT ---
`

const jobDescriptionPromptTemplate = `Act as a senior hiring manager for a top tech company. Write a compelling and professional job description for the role below.
Your response must be a single, valid JSON object with exactly one key, "job_description", whose value is the full job description formatted in Markdown.
The job description must contain these sections: Introduction, Key Responsibilities, Required Skills and Qualifications, Preferred Qualifications.

--- JOB DETAILS ---
Title: %s
Required Skills: %s
Years of Experience: %s

--- JSON OUTPUT ---
`

const insightsPromptTemplate = `Act as a senior technical recruiter providing a hiring manager with a quick screening report for a candidate.
Based on the job description and the candidate's skills summary below, respond with a single, valid JSON object and nothing else.

The JSON object must contain exactly these keys:
- "summary": a 2-3 sentence overview of the candidate's fit for the role.
- "strengths": an array of 3-4 short strings describing the candidate's strengths for this role.
- "weaknesses": an array of 1-2 short strings describing gaps or risks.
- "interview_questions": an array of 3 targeted interview questions.

--- JOB DESCRIPTION ---
%s

--- CANDIDATE'S SKILLS SUMMARY ---
%s

--- JSON OUTPUT ---
`

const scoreSummaryPromptTemplate = `#-- Role: Expert System --#
You are a highly precise data extraction system. Your only function is to compare two pieces of text and return a structured JSON object. You must adhere to the output format exactly.

#-- Task --#
Analyze the "Candidate Summary" and determine how well it matches the "Job Description".
Provide a numerical score and a brief justification.

#-- Input Data --#
Job Description: "%s"
Candidate Summary: "%s"

#-- STRICT OUTPUT FORMAT --#
Your response MUST be a single, valid JSON object and nothing else.
Do not include markdown, comments, or any text outside of the JSON structure.
The JSON object MUST contain ONLY these two keys: "match_score" and "match_summary".

{
  "match_score": <A number from 0 to 100>,
  "match_summary": "<A one-sentence justification for the score>"
}
`

func buildAnalyzePrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(analyzePromptTemplate, jobDescription, resumeText)
}

func buildJobDescriptionPrompt(title string, skills []string, experience string) string {
	return fmt.Sprintf(jobDescriptionPromptTemplate, title, strings.Join(skills, ", "), experience)
}

func buildInsightsPrompt(skillsSummary, jobDescription string) string {
	return fmt.Sprintf(insightsPromptTemplate, jobDescription, skillsSummary)
}

func buildScoreSummaryPrompt(candidateSummary, jobDescription string) string {
	return fmt.Sprintf(scoreSummaryPromptTemplate, jobDescription, candidateSummary)
}
