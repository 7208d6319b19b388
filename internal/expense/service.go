package expense

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/fin-tracker/internal/dashboard"
	"github.com/zombor/fin-tracker/internal/ocr"
	"github.com/zombor/fin-tracker/internal/scanning"
)

// ErrInvalid is returned when a request is missing or has malformed fields
var ErrInvalid = errors.New("invalid request")

var (
	filenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaces = regexp.MustCompile(`\s+`)
)

// Scanner reads a base64 receipt image
type Scanner interface {
	Scan(ctx context.Context, image string) (*scanning.ScanResult, error)
}

// IDGenerator generates unique IDs for expenses
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles expense operations
type Service struct {
	db          DB
	scanner     Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
	scanTimeout time.Duration
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// SetScanTimeout bounds every OCR call. Zero means no limit beyond the caller's context.
func (s *Service) SetScanTimeout(timeout time.Duration) {
	s.scanTimeout = timeout
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = filenameUnsafe.ReplaceAllString(base, "")
	base = strings.TrimSpace(filenameSpaces.ReplaceAllString(base, " "))

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	return base + filenameUnsafe.ReplaceAllString(ext, "")
}

// ScanReceipt reads amount, date and merchant from a base64 image or data URL
func (s *Service) ScanReceipt(ctx context.Context, image string) (*scanning.ScanResult, error) {
	if s.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scanTimeout)
		defer cancel()
	}
	return s.scanner.Scan(ctx, image)
}

// ScanReceiptFile stores an uploaded receipt, normalizes it to PNG and scans it.
// The stored file is removed when the scan fails.
func (s *Service) ScanReceiptFile(ctx context.Context, filename string, data []byte, contentType string) (*ScannedReceipt, error) {
	if len(data) == 0 {
		return nil, &scanning.Error{Kind: scanning.KindInvalidInput, Err: scanning.ErrNoImage}
	}

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", s.idGenerator.Generate(), sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	png, err := ocr.PrepareImage(data, contentType)
	if err != nil {
		s.discard(savedPath)
		return nil, &scanning.Error{Kind: scanning.KindInvalidInput, Err: fmt.Errorf("preparing image: %w", err)}
	}

	result, err := s.ScanReceipt(ctx, ocr.EncodeImage(png))
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.discard(savedPath)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	return &ScannedReceipt{
		ReceiptFile: savedPath,
		ContentType: contentType,
		Scan:        result,
	}, nil
}

func (s *Service) discard(path string) {
	if err := s.storage.Delete(path); err != nil {
		slog.Warn("Failed to delete file", "filename", path, "error", err)
	}
}

// CreateExpense validates and saves an expense
func (s *Service) CreateExpense(input NewExpense) (*Expense, error) {
	if strings.TrimSpace(input.GroupID) == "" {
		return nil, fmt.Errorf("%w: group_id is required", ErrInvalid)
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalid)
	}

	amount := scanning.Cents(input.Amount)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalid)
	}
	if input.Confidence < 0 || input.Confidence > 100 {
		return nil, fmt.Errorf("%w: confidence must be between 0 and 100", ErrInvalid)
	}

	now := s.timeSource.Now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
		}
		date = parsed
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = DefaultCategory
	}

	expense := &Expense{
		ID:          s.idGenerator.Generate(),
		GroupID:     input.GroupID,
		UserID:      input.UserID,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Category:    category,
		Amount:      amount,
		Date:        date,
		Merchant:    strings.TrimSpace(input.Merchant),
		ReceiptFile: input.ReceiptFile,
		ContentType: input.ContentType,
		Confidence:  input.Confidence,
		RawText:     input.RawText,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveExpense(expense); err != nil {
		return nil, fmt.Errorf("saving expense to database: %w", err)
	}
	return expense, nil
}

// GetExpense retrieves an expense by ID
func (s *Service) GetExpense(id string) (*Expense, error) {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return nil, fmt.Errorf("getting expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns a group's expenses, most recent first
func (s *Service) ListExpenses(groupID string) ([]*Expense, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group_id is required", ErrInvalid)
	}

	all, err := s.db.ListExpenses()
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	expenses := make([]*Expense, 0, len(all))
	for _, e := range all {
		if e.GroupID == groupID {
			expenses = append(expenses, e)
		}
	}
	slices.SortFunc(expenses, func(a, b *Expense) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return expenses, nil
}

// DeleteExpense removes an expense and its receipt file
func (s *Service) DeleteExpense(id string) error {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return fmt.Errorf("getting expense for deletion: %w", err)
	}

	if err := s.db.DeleteExpense(id); err != nil {
		return fmt.Errorf("deleting expense from database: %w", err)
	}

	if expense.ReceiptFile != "" {
		s.discard(expense.ReceiptFile)
	}
	return nil
}

// GetReceiptFile retrieves the stored receipt image of an expense
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting expense: %w", err)
	}
	if expense.ReceiptFile == "" {
		return nil, "", fmt.Errorf("receipt for expense %s: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(expense.ReceiptFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	contentType := expense.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// DashboardStats aggregates a group's expenses over the requested period
func (s *Service) DashboardStats(groupID string, req dashboard.Request) (*dashboard.Stats, error) {
	if groupID == "" {
		return nil, fmt.Errorf("%w: group_id is required", ErrInvalid)
	}
	if req.Period == "" {
		return nil, fmt.Errorf("%w: period is required", ErrInvalid)
	}

	expenses, err := s.ListExpenses(groupID)
	if err != nil {
		return nil, err
	}

	entries := make([]dashboard.Entry, 0, len(expenses))
	for _, e := range expenses {
		entries = append(entries, dashboard.Entry{
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Category:    e.Category,
			Amount:      e.Amount,
			Date:        e.Date,
		})
	}

	return dashboard.Compute(entries, req, s.timeSource.Now()), nil
}

// ExportExpenses renders a group's expenses as an XLSX workbook
func (s *Service) ExportExpenses(groupID string) ([]byte, error) {
	expenses, err := s.ListExpenses(groupID)
	if err != nil {
		return nil, err
	}

	data, err := exportWorkbook(expenses)
	if err != nil {
		return nil, fmt.Errorf("exporting expenses: %w", err)
	}
	return data, nil
}
