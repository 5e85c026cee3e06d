package exeat

type SortField string

const (
	SortLastUpdated SortField = "last_updated"
	SortLeaveStart  SortField = "leave_start"
	SortLeaveEnd    SortField = "leave_end"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func (f SortField) Valid() bool {
	switch f {
	case SortLastUpdated, SortLeaveStart, SortLeaveEnd:
		return true
	}
	return false
}

// Window is the slice of a filtered result set a page request maps to.
type Window struct {
	TotalPages  int
	CurrentPage int
	Offset      int
	Limit       int
}

// Empty reports whether there is nothing to fetch.
func (w Window) Empty() bool {
	return w.CurrentPage == 0
}

// ComputeWindow clamps page into [1, totalPages]. An empty result set has zero
// pages and current page 0.
func ComputeWindow(total int64, page, pageSize int) Window {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		return Window{Limit: pageSize}
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return Window{
		TotalPages:  totalPages,
		CurrentPage: page,
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	}
}

type Page struct {
	TotalItems  int64  `json:"total_items"`
	TotalPages  int    `json:"total_pages"`
	PageSize    int    `json:"page_size"`
	CurrentPage int    `json:"current_page"`
	Items       []View `json:"items"`
}

func NewPage(total int64, w Window, items []*Exeat) *Page {
	views := make([]View, 0, len(items))
	for _, e := range items {
		views = append(views, e.ToView())
	}
	return &Page{
		TotalItems:  total,
		TotalPages:  w.TotalPages,
		PageSize:    w.Limit,
		CurrentPage: w.CurrentPage,
		Items:       views,
	}
}
