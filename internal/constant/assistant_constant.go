package constant

const (
	// DocumentJobsTopic is the in-process bus topic carrying document
	// summarization job updates from workers to the consumer.
	DocumentJobsTopic = "document_jobs"

	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Greeting seeds every new conversation and survives history trims.
	AssistantGreeting = `Hello! I can help you analyze contracts. Add contracts to the context by clicking the "Add to Assistant" button on any contract.`

	// ChatFailureMessage is appended as a visible assistant message when
	// the model call fails outright.
	ChatFailureMessage = "I apologize, but I encountered an error while processing your request. Please try again."

	AssistantSystemPrompt = `You are a friendly and knowledgeable AI assistant helping to analyze government contracts.
Adapt your response style to the question:
- For simple questions, give direct, conversational answers
- For complex analyses, provide clear structure while maintaining a natural tone
- Maintain context from previous questions to avoid repetition
- Acknowledge limitations naturally without being overly formal
Remember that you're having a conversation, not writing a report.`
)

// QuickQuestions are the canned prompts surfaced next to the chat input.
var QuickQuestions = []string{
	"Compare these contracts",
	"When are these due?",
	"Which ones are set-aside?",
	"Compare requirements",
}
