package usecase

import (
	"strings"
	"text/template"

	"docqa/internal/domain"
)

// passageSeparator joins retrieved passages inside the prompt context block.
const passageSeparator = "\n\n- -\n\n"

// answerPromptTemplate is the fixed instruction template sent to the model.
// The conversation-history slot is rendered empty for now: history is folded
// into the question as a single prior answer instead.
const answerPromptTemplate = `You are a support assistant, helping users by answering questions based on provided information and following these steps:

1. Break down the question into simpler sub-questions if needed, to address each part accurately.
2. For each sub-question, identify the most relevant information from the context, taking into account conversation history if available.
3. Use the selected information to draft a response, adjusting the level of detail or conciseness based on the user's expertise:
   - Provide detailed explanations for beginners.
   - Provide concise answers without explanations for experts.
4. Remove redundant content from your response draft.
5. Finalize your response to maximize clarity and relevance.
6. Respond only with your final answer, without explaining your thought process.

If the information needed to answer the question is not present in the context, respond with 'I don't know' in the language of the user's question.

Context:
{{.Context}}

Conversation History:
{{.ConversationHistory}}

User's Question:
{{.Question}}

User's Expertise Level: {{.Expertise}}

Note: Answer in the language of the user's question.`

var answerPrompt = template.Must(template.New("answer").Parse(answerPromptTemplate))

type promptData struct {
	Context             string
	ConversationHistory string
	Question            string
	Expertise           domain.ExpertiseLevel
}

// BuildPrompt renders the instruction template. It is a pure function: the
// same inputs always produce the same prompt.
func BuildPrompt(contextText, question string, expertise domain.ExpertiseLevel, conversationHistory string) string {
	var sb strings.Builder
	// Execute on a strings.Builder cannot fail with this template.
	_ = answerPrompt.Execute(&sb, promptData{
		Context:             contextText,
		ConversationHistory: conversationHistory,
		Question:            question,
		Expertise:           expertise,
	})
	return sb.String()
}

// JoinPassages aggregates passage texts in retrieved order with a visible
// separator.
func JoinPassages(passages []domain.Passage) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, passageSeparator)
}
