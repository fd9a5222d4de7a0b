package collection

// Pagination describes the visible window over an ordered result.
type Pagination struct {
	Page            int
	PageSize        int
	Total           int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// Window is one page of ids plus its metadata.
type Window struct {
	IDs  []string
	Meta Pagination
}

// Paginate slices ids into the requested page. TotalPages is at least 1 and
// an out-of-range page is clamped rather than rejected. A non-positive page
// size is treated as 1.
func Paginate(ids []string, page, pageSize int) Window {
	pageSize = max(pageSize, 1)
	total := len(ids)
	totalPages := max((total+pageSize-1)/pageSize, 1)
	page = min(max(page, 1), totalPages)

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return Window{
		IDs: ids[start:end:end],
		Meta: Pagination{
			Page:            page,
			PageSize:        pageSize,
			Total:           total,
			TotalPages:      totalPages,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}
}
