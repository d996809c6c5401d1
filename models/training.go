package models

// Chat roles accepted in a training record.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn inside a training record.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TrainingRecord is one supervised fine-tuning example: a system, user and
// assistant message triple.
type TrainingRecord struct {
	Messages []Message `json:"messages"`
}

// QAPair is a single question/answer item returned by the completion API.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewTrainingRecord builds the three-message record for a question/answer pair.
func NewTrainingRecord(systemPrompt, question, answer string) TrainingRecord {
	return TrainingRecord{
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: question},
			{Role: RoleAssistant, Content: answer},
		},
	}
}
