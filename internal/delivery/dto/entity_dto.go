package dto

// Response DTOs

type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type IDResponse struct {
	ID string `json:"id"`
}

type StatusResponse struct {
	Status bool `json:"status"`
}
