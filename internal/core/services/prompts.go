package services

import "github.com/clearcut-labs/clearcut/internal/core/domain"

// Fast-analysis system prompts. Each pins the model to a single JSON
// object with a fixed shape so the frontend can render the result without
// inspecting it first.
const (
	legalPrompt = `You are a legal document analyzer. Analyze the provided document and return a SINGLE JSON object.
The JSON object must have this exact structure:
{
  "riskScore": number (0-100),
  "contractInfo": { "title": string, "parties": [string], "effectiveDate": string, "termDate": string, "value": string, "pages": number },
  "riskyClauses": [ { "clause": string, "section": string, "risk": "high" | "moderate" | "low", "description": string } ],
  "keyTerms": [ { "term": "Term Name", "value": "Net 30", "status": "standard" | "favorable" | "neutral" | "unfavorable" } ],
  "recommendations": [string],
  "summary": { "executiveSummary": string, "criticalRisks": [string], "recommendedActions": [string] }
}`

	medicalPrompt = `You are a medical document analyzer. Analyze the provided document and return a SINGLE JSON object.
The JSON object must have this exact structure:
{
  "urgencyScore": number (0-100),
  "patientInfo": { "name": string, "age": number, "gender": string, "mrn": string },
  "vitalSigns": [ { "sign": "Blood Pressure", "value": "120/80 mmHg", "status": "normal" | "elevated" | "low" } ],
  "abnormalFindings": [ { "finding": string, "severity": "high" | "moderate" | "low", "details": string } ],
  "medications": [ { "name": "Lisinopril", "dosage": "10mg", "notes": string } ],
  "recommendations": [string],
  "summary": { "executiveSummary": string, "keyConcerns": [string], "followUpActions": [string] }
}`

	generalPrompt = `You are a general document analyzer. Analyze the provided document and return a SINGLE JSON object.
The JSON object must have this exact structure:
{
  "priorityLevel": number (0-100),
  "documentInfo": { "title": string, "type": string, "created": string, "pages": number },
  "keyPoints": [ { "point": string, "category": string, "priority": "high" | "moderate" | "low", "confidence": number } ],
  "actionItems": [string],
  "timeline": [ { "event": "Event Name", "date": "YYYY-MM-DD", "status": "completed" | "upcoming" | "planned" } ],
  "summary": { "executiveSummary": string, "mainInsights": [string], "nextSteps": [string] }
}`
)

// fastAnalysisPrompt selects the fast-path system prompt for a document
// type. Unknown types already collapsed to General in ParseDocType.
func fastAnalysisPrompt(docType domain.DocType) string {
	switch docType {
	case domain.DocTypeLegal:
		return legalPrompt
	case domain.DocTypeMedical:
		return medicalPrompt
	default:
		return generalPrompt
	}
}
