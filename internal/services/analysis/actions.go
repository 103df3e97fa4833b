// Package analysis runs the resume analysis pipeline:
// extract text → ask the model → render the answer as a PDF report.
//
// Go Pattern: The three analyses only differ by their fixed instruction,
// headings and filename, so they're rows in a lookup table keyed by an
// Action rather than three copies of the same code path.
package analysis

import (
	"fmt"
	"strings"
)

// Action identifies one of the canned analyses.
type Action string

const (
	ActionReview     Action = "review"      // general HR review
	ActionSkillGap   Action = "skill_gap"   // skills to learn or improve
	ActionMatchScore Action = "match_score" // ATS match percentage scan
)

// Spec is everything fixed about an action.
type Spec struct {
	Action         Action `json:"action"`
	Label          string `json:"label"`           // Button text
	Heading        string `json:"heading"`         // On-screen section heading
	ReportTitle    string `json:"report_title"`    // First line of the PDF report
	ReportFilename string `json:"report_filename"` // Download filename
	BusyMessage    string `json:"busy_message"`    // Shown while the model is working
	Instruction    string `json:"-"`               // Fixed prompt sent to the model
}

const reviewInstruction = `
You are an experienced Technical Human Resource Manager. Review the provided resume against the job description.
Share a professional evaluation on whether the candidate's profile aligns with the role.
Highlight the strengths and weaknesses of the applicant in relation to the specified job requirements.
`

const skillGapInstruction = `
You are a career coach with expertise in ATS and resume optimization.
Based on the resume and job description, suggest specific skills,
certifications, or tools the candidate should learn or improve
to increase their chances of getting shortlisted.
Provide practical, actionable advice in bullet points.
`

const matchScoreInstruction = `
You are a skilled ATS (Applicant Tracking System) scanner with a deep understanding of ATS functionality.
Evaluate the resume against the provided job description.
First, give the **percentage match**, then list **missing keywords**, and finally provide **final thoughts**.
`

// specs is ordered the way the buttons appear on the page.
var specs = []Spec{
	{
		Action:         ActionReview,
		Label:          "📄 Resume Review",
		Heading:        "📄 HR Review",
		ReportTitle:    "Resume Review Report",
		ReportFilename: "resume_review.pdf",
		BusyMessage:    "🔍 Analyzing resume... Please wait ⏳",
		Instruction:    reviewInstruction,
	},
	{
		Action:         ActionSkillGap,
		Label:          "🎯 Skill Improvement",
		Heading:        "🎯 Skill Improvement Suggestions",
		ReportTitle:    "Skill Improvement Report",
		ReportFilename: "skill_improvement.pdf",
		BusyMessage:    "🎯 Finding skill gaps... Please wait ⏳",
		Instruction:    skillGapInstruction,
	},
	{
		Action:         ActionMatchScore,
		Label:          "📊 Match Percentage",
		Heading:        "📊 Match Percentage & Analysis",
		ReportTitle:    "ATS Match Report",
		ReportFilename: "ats_match.pdf",
		BusyMessage:    "📊 Calculating ATS Match... Please wait ⏳",
		Instruction:    matchScoreInstruction,
	},
}

// aliases lets the page's numbered buttons and a few spellings map to actions.
var aliases = map[string]Action{
	"1":             ActionReview,
	"2":             ActionSkillGap,
	"3":             ActionMatchScore,
	"resume_review": ActionReview,
	"skill-gap":     ActionSkillGap,
	"skillgap":      ActionSkillGap,
	"match-score":   ActionMatchScore,
	"matchscore":    ActionMatchScore,
	"match":         ActionMatchScore,
}

// Specs returns the action table in display order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Lookup returns the spec for an action.
func Lookup(a Action) (Spec, bool) {
	for _, s := range specs {
		if s.Action == a {
			return s, true
		}
	}
	return Spec{}, false
}

// ParseAction resolves a user-supplied action name.
func ParseAction(s string) (Action, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := Lookup(Action(key)); ok {
		return Action(key), nil
	}
	if a, ok := aliases[key]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w %q; expected review, skill_gap or match_score", ErrUnknownAction, s)
}
