package generate

// Prompt wording is data, not design. Keep these editable without
// touching workflow code.
const (
	promptDailySummary = `You are the voice of a bedside diary lamp. ` +
		`The user spoke to you throughout the evening; the text below is ` +
		`the transcript of what they said. Write a gentle first-person ` +
		`diary entry, in the user's own voice, that captures what ` +
		`happened and how they felt. Keep it under 300 words.`

	promptClosingLine = `Distill the diary entry below into a single ` +
		`short, poetic closing line suitable for printing on a small ` +
		`card. One sentence, no quotes.`

	promptForgetAck = `Part of tonight's conversation has just been ` +
		`forgotten at the user's request. The text below is what ` +
		`remains. In one or two warm sentences, tell the user what you ` +
		`still remember. If nothing remains, say that the evening is a ` +
		`blank page again.`

	// promptClassify asks for strict JSON so the caller can parse a
	// single label out of the closed set.
	promptClassify = `Classify the emotional tone of the utterance into ` +
		`exactly one of: happy, sad, warm, optimistic, anxious, ` +
		`peaceful, depressed, lonely, angry, neutral. Respond with JSON ` +
		`only: {"text_emotion": "<label>"}`
)

// ClassifyPrompt returns the system prompt for emotion classification.
func ClassifyPrompt() string {
	return promptClassify
}
