package usecase

import "strings"

// BuildIdentificationPrompt renders the instruction sent alongside the image.
// The text is deterministic for a given jurisdiction hint: no timestamps, no
// randomness, so identical requests produce identical prompts.
func BuildIdentificationPrompt(jurisdiction string) string {
	var b strings.Builder

	b.WriteString(`You are a traffic sign identification expert. Analyze this traffic sign image and provide:
1. The exact name of the sign (e.g., "Stop Sign", "Yield Sign", "Speed Limit 25")
2. The category (Warning, Regulatory, Guide, Temporary, School, Bicycle, or Informational)
3. The MUTCD code if applicable (e.g., R1-1, W1-1)
4. A brief explanation of what it means and the driver action required
5. Your confidence level (0-100)
`)

	if hint := strings.TrimSpace(jurisdiction); hint != "" {
		b.WriteString("\nFocus on variations specific to ")
		b.WriteString(hint)
		b.WriteString(".\n")
	}

	b.WriteString(`
Respond in JSON format only:
{
  "name": "Sign Name",
  "category": "Category",
  "mutcdCode": "Code",
  "explanation": "What does it mean and what action to take",
  "confidence": 95,
  "alternatives": [
    {"name": "Alternative Sign", "confidence": 20}
  ]
}`)

	return b.String()
}
