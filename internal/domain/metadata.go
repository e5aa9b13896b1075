package domain

// Metadata describes the paging state of a list response.
type Metadata struct {
	CurrentPage  int
	FirstPage    int
	LastPage     int
	PageSize     int
	TotalRecords int
}

func NewMetadata(totalRecords, page, pageSize int) *Metadata {
	lastPage := 0
	if pageSize > 0 {
		lastPage = (totalRecords + pageSize - 1) / pageSize
	}

	return &Metadata{
		CurrentPage:  page,
		FirstPage:    1,
		LastPage:     lastPage,
		PageSize:     pageSize,
		TotalRecords: totalRecords,
	}
}
