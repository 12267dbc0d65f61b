package converter

import (
	"clinical-records-api/internal/delivery/dto"
	"clinical-records-api/internal/query"
)

// ListResultToResponse wraps one page of results with its paging numbers.
func ListResultToResponse[T any](result *query.ListResult[T], pageNumber, pageSize int) *dto.ListResponse[T] {
	items := result.Items
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(result.TotalCount) / pageSize
		if int(result.TotalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return &dto.ListResponse[T]{
		Items:      items,
		TotalCount: result.TotalCount,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
