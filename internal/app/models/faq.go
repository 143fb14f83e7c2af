package models

// FAQCategory is a node in the chatbot's category tree.
type FAQCategory struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	ParentID  *int64 `json:"parentId,omitempty" db:"parent_id"`
	Depth     int    `json:"depth" db:"depth"`
	SortOrder int    `json:"sortOrder" db:"sort_order"`
}

// FAQItem is a question and answer filed under a category.
type FAQItem struct {
	ID         int64  `json:"id" db:"id"`
	CategoryID int64  `json:"categoryId" db:"category_id"`
	Question   string `json:"question" db:"question"`
	Answer     string `json:"answer" db:"answer"`
	SortOrder  int    `json:"sortOrder" db:"sort_order"`
}
