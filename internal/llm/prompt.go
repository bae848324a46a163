package llm

import (
	"strings"
)

// buildKeyPointsPrompt constructs the system and user prompts for key point extraction.
func buildKeyPointsPrompt(review string) (system string, user string) {
	system = `You extract key points from customer product reviews.

Rules:
- Return 3-5 key points as a bulleted list, one point per line, each line starting with "- "
- Keep every point concise (under 15 words)
- Cover both praise and complaints when the review mentions them
- Do not add a heading, introduction, or closing remark
- Write the points in the same language as the review`

	var sb strings.Builder
	sb.WriteString("Extract 3-5 key points from this product review as a bulleted list. Keep it concise:\n\n")
	sb.WriteString(review)
	user = sb.String()
	return
}

// cleanKeyPoints strips markdown fencing and blank lines from model output.
func cleanKeyPoints(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
