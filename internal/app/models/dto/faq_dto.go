package dto

// Chatbot response kinds
const (
	ChatbotTypeCategory = "category"
	ChatbotTypeQuestion = "question"
	ChatbotTypeEmpty    = "empty"
)

// ChatbotOption is one selectable entry in a chatbot reply
type ChatbotOption struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Answer string `json:"answer,omitempty"`
}

// ChatbotResponse is the bot's reply for one step of the category walk
type ChatbotResponse struct {
	Type     string          `json:"type" enums:"category,question,empty"`
	Message  string          `json:"message"`
	ParentID *int64          `json:"parentId,omitempty"`
	Options  []ChatbotOption `json:"options"`
}

// FAQCategoryRequest creates a category; omit parentId for the top level
type FAQCategoryRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	ParentID  *int64 `json:"parentId"`
	SortOrder int    `json:"sortOrder"`
}

// FAQItemRequest files a question under a category
type FAQItemRequest struct {
	CategoryID int64  `json:"categoryId" binding:"required,min=1"`
	Question   string `json:"question" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
	SortOrder  int    `json:"sortOrder"`
}
