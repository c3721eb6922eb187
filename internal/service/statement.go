package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"statementapi/internal/model"
	"statementapi/internal/repository"
	"statementapi/internal/storage"
)

// StatementListResult is the service-level DTO for paginated statements.
type StatementListResult struct {
	Items []model.Statement `json:"data"`
	Total int               `json:"total"`
}

// UploadInput carries a new statement file and its metadata.
type UploadInput struct {
	Year             int
	Title            string
	OriginalFilename string
	Size             int64
	Reader           io.Reader
}

// StatementService defines the use cases for managing financial statements.
type StatementService interface {
	// Upload stores the file under {year}/{year}_{hex}.{ext}, saves metadata to DB,
	// and rolls back storage if the DB save fails.
	Upload(ctx context.Context, in UploadInput) (*model.Statement, error)

	// List returns statements using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*StatementListResult, error)

	// ListPublic returns statement metadata without storage paths. Year 0 means all years.
	ListPublic(ctx context.Context, year int) ([]model.PublicStatement, error)

	// Get returns a single statement by its ID.
	Get(ctx context.Context, id string) (*model.Statement, error)

	// Delete removes a statement by ID from both storage and repository.
	Delete(ctx context.Context, id string) error
}

type statementService struct {
	store storage.Storage
	repo  repository.StatementRepository
}

// NewStatementService constructs a new StatementService.
func NewStatementService(store storage.Storage, repo repository.StatementRepository) StatementService {
	return &statementService{store: store, repo: repo}
}

// publicListLimit caps the public listing; the page shows every year at once.
const publicListLimit = 500

func storageKey(year int, ext string) string {
	y := strconv.Itoa(year)
	return y + "/" + y + "_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
}

func (s *statementService) Upload(ctx context.Context, in UploadInput) (*model.Statement, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if in.Year < 1000 || in.Year > 9999 {
		return nil, ErrInvalidYear
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	ext := Extension(in.OriginalFilename)
	if _, ok := contentTypes[ext]; !ok {
		return nil, ErrUnsupportedType
	}

	key := storageKey(in.Year, ext)
	contentType := ContentTypeFor(key)

	objInfo, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": in.OriginalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	st := &model.Statement{
		ID:          uuid.New().String(),
		Year:        in.Year,
		Title:       title,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, st)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *statementService) List(ctx context.Context, limit, offset int) (*StatementListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.StatementQuery{PageQuery: repository.PageQuery{Limit: limit, Offset: offset}})
	if err != nil {
		return nil, err
	}
	return &StatementListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *statementService) ListPublic(ctx context.Context, year int) ([]model.PublicStatement, error) {
	if year != 0 && (year < 1000 || year > 9999) {
		return nil, ErrInvalidYear
	}
	res, err := s.repo.List(ctx, repository.StatementQuery{
		PageQuery: repository.PageQuery{Limit: publicListLimit},
		Year:      year,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicStatement, 0, len(res.Items))
	for _, st := range res.Items {
		out = append(out, st.Public())
	}
	return out, nil
}

func (s *statementService) Get(ctx context.Context, id string) (*model.Statement, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return st, nil
}

// Delete removes the object first; the row stays if storage fails so the key is not lost.
func (s *statementService) Delete(ctx context.Context, id string) error {
	st, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, st.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
