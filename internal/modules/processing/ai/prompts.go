package ai

import "fmt"

const (
	jsonOnlySystemPrompt = "Return ONLY JSON. No explanations, no markdown, no text outside JSON."

	blurtPromptTemplate = `Compare the student's answer with the study material.

Study Material: %s
User Answer: %s

Return JSON in this format only:
{
  "accuracy": "85%%",
  "correct_words": ["word1", "word2"],
  "wrong_words": ["word3"],
  "missed_points": ["point1"],
  "revise_again": ["part1"]
}
`

	flashcardsPromptTemplate = `Generate flashcards as question and answer pairs for this material: %s

Return JSON in this format only: {"flashcards": [{"question": "...", "answer": "..."}, ...]}`

	mnemonicsPromptTemplate = `Transform this study material into memorable, chunked content with mnemonics. Break it into logical sections with headings, then create digestible points with hover explanations and emojis.

Study Material: %s
Title: %s

For each section:
1. Create a clear heading with relevant emoji
2. Break content into small, memorable points
3. Add hover explanations for difficult terms
4. Create acronyms where helpful
5. Add relevant emojis to aid memory

Return JSON in this exact format:
{
  "sections": [
    {
      "heading": "Main Topic Name",
      "headingEmoji": "🧬",
      "points": [
        {
          "chunks": [
            {"type": "normal", "text": "Regular text "},
            {"type": "hover", "text": "complex term", "explanation": "Simple explanation"},
            {"type": "normal", "text": " more text "},
            {"type": "acronym", "text": "ABC", "fullForm": "A-B-C full forms"}
          ],
          "emoji": "⚡"
        }
      ]
    }
  ]
}
`
)

func buildBlurtPrompt(material, answer string) (string, string) {
	return jsonOnlySystemPrompt, fmt.Sprintf(blurtPromptTemplate, material, answer)
}

func buildFlashcardsPrompt(material string) (string, string) {
	return jsonOnlySystemPrompt, fmt.Sprintf(flashcardsPromptTemplate, material)
}

func buildMnemonicsPrompt(title, material string) (string, string) {
	return jsonOnlySystemPrompt, fmt.Sprintf(mnemonicsPromptTemplate, material, title)
}
