package types

// Filter - параметры списка из query-строки.
// Пример: /api/requests?search=Ленина&sort[created_at]=desc&filter[status]=assigned,in_progress&limit=20&page=2
type Filter struct {
	Search         string                 `json:"search,omitempty"`
	Sort           map[string]string      `json:"sort,omitempty"`
	Filter         map[string]interface{} `json:"filter,omitempty"`
	Limit          int                    `json:"limit"`
	Offset         int                    `json:"offset"`
	Page           int                    `json:"page"`
	WithPagination bool                   `json:"with_pagination"`
}
