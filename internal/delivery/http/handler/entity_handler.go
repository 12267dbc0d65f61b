package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"clinical-records-api/internal/converter"
	"clinical-records-api/internal/delivery/dto"
	"clinical-records-api/internal/domain/repository"
	"clinical-records-api/internal/patch"
	"clinical-records-api/internal/query"
	"clinical-records-api/internal/usecase"
	"clinical-records-api/pkg/response"
	"clinical-records-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// EntityRoutes is the CRUD surface the router mounts under /api/{route}.
type EntityRoutes interface {
	Entity() string
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Patch(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type EntityHandler[T any] struct {
	entityUsecase   usecase.EntityUsecase[T]
	validator       *validator.CustomValidator
	log             *logrus.Logger
	defaultPageSize int
}

func NewEntityHandler[T any](
	entityUsecase usecase.EntityUsecase[T],
	validator *validator.CustomValidator,
	log *logrus.Logger,
	defaultPageSize int,
) *EntityHandler[T] {
	if defaultPageSize < 1 {
		defaultPageSize = query.DefaultPageSize
	}
	return &EntityHandler[T]{
		entityUsecase:   entityUsecase,
		validator:       validator,
		log:             log,
		defaultPageSize: defaultPageSize,
	}
}

func (h *EntityHandler[T]) Entity() string {
	return h.entityUsecase.Schema().Entity()
}

// Create handles POST /api/{entity}. Audit fields in the body are ignored.
func (h *EntityHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var item T
	if err := decodeBody(w, r, &item); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	id, err := h.entityUsecase.Create(r.Context(), requestContext(r), &item)
	if err != nil {
		h.writeError(w, err, "Failed to create "+h.Entity())
		return
	}

	response.Success(w, http.StatusOK, h.Entity()+" created successfully", dto.IDResponse{ID: id.String()})
}

// List handles GET /api/{entity}?filters=&searchTerm=&pageNumber=&pageSize=&sortField=&sortOrder=
func (h *EntityHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	params, err := h.listParams(r)
	if err != nil {
		h.writeError(w, err, "")
		return
	}

	result, err := h.entityUsecase.Get(r.Context(), requestContext(r), params)
	if err != nil {
		h.writeError(w, err, "Failed to get "+h.Entity())
		return
	}

	response.Success(w, http.StatusOK, h.Entity()+" retrieved successfully",
		converter.ListResultToResponse(result, params.PageNumber, params.PageSize))
}

// GetByID handles GET /api/{entity}/{id}?fields=a,b
func (h *EntityHandler[T]) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	fields := query.ParseFields(r.URL.Query().Get("fields"))
	item, err := h.entityUsecase.GetByID(r.Context(), requestContext(r), id, fields)
	if err != nil {
		h.writeError(w, err, "Failed to get "+h.Entity())
		return
	}

	response.Success(w, http.StatusOK, h.Entity()+" retrieved successfully", item)
}

// Update handles PUT /api/{entity}/{id}. The body id must equal the path id.
func (h *EntityHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var item T
	if err := decodeBody(w, r, &item); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	status, err := h.entityUsecase.Update(r.Context(), requestContext(r), id, &item)
	if err != nil {
		h.writeError(w, err, "Failed to update "+h.Entity())
		return
	}

	response.Success(w, http.StatusOK, h.Entity()+" updated successfully", dto.StatusResponse{Status: status})
}

// Patch handles PATCH /api/{entity}/{id} with a JSON Patch document.
func (h *EntityHandler[T]) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	ops, err := patch.Parse(body)
	if err != nil {
		h.writeError(w, err, "")
		return
	}

	status, err := h.entityUsecase.Patch(r.Context(), requestContext(r), id, ops)
	if err != nil {
		h.writeError(w, err, "Failed to patch "+h.Entity())
		return
	}

	response.Success(w, http.StatusOK, h.Entity()+" updated successfully", dto.StatusResponse{Status: status})
}

// Delete handles DELETE /api/{entity}/{id}. A missing id is 404.
func (h *EntityHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	status, err := h.entityUsecase.Delete(r.Context(), requestContext(r), id)
	if err != nil {
		h.writeError(w, err, "Failed to delete "+h.Entity())
		return
	}

	response.Success(w, http.StatusOK, h.Entity()+" deleted successfully", dto.StatusResponse{Status: status})
}

func (h *EntityHandler[T]) listParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()
	params := query.Params{
		SearchTerm: q.Get("searchTerm"),
		SortField:  q.Get("sortField"),
		SortOrder:  q.Get("sortOrder"),
		PageNumber: query.DefaultPageNumber,
		PageSize:   h.defaultPageSize,
	}

	if raw := q.Get("pageNumber"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, query.ErrInvalidPageNumber
		}
		params.PageNumber = n
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, query.ErrInvalidPageSize
		}
		params.PageSize = n
	}

	filters, err := query.ParseFilters(q.Get("filters"))
	if err != nil {
		return params, err
	}
	params.Filters = filters
	return params, nil
}

// writeError maps usecase errors to responses. fallback is the message of
// unexpected failures.
func (h *EntityHandler[T]) writeError(w http.ResponseWriter, err error, fallback string) {
	var (
		queryErr *query.ValidationError
		patchErr *patch.Error
	)

	switch {
	case validator.IsValidationError(err):
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
	case errors.As(err, &queryErr):
		response.BadRequest(w, queryErr.Message)
	case errors.As(err, &patchErr):
		response.Error(w, http.StatusBadRequest, "Invalid patch document", patchErr.Error())
	case errors.Is(err, patch.ErrMissingDocument):
		response.BadRequest(w, err.Error())
	case errors.Is(err, patch.ErrInvalidDocument):
		response.Error(w, http.StatusBadRequest, "Invalid patch document", err.Error())
	case errors.Is(err, usecase.ErrMismatchedID), errors.Is(err, usecase.ErrImmutableField):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrEntityNotFound):
		response.NotFound(w, h.Entity()+" not found")
	case errors.Is(err, usecase.ErrVersionConflict), errors.Is(err, repository.ErrDuplicate):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrMissingTenant):
		response.Unauthorized(w, "")
	default:
		if fallback == "" {
			fallback = "Internal server error"
		}
		h.log.Errorf("%s: %+v", fallback, err)
		response.InternalServerError(w, fallback)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func requestContext(r *http.Request) usecase.RequestContext {
	rc, _ := usecase.RequestContextFrom(r.Context())
	return rc
}
