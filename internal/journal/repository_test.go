package journal

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type mockEntryAPI struct {
	mu sync.Mutex

	listDocumentsFn  func(ctx context.Context) ([]Entry, error)
	getDocumentFn    func(ctx context.Context, id string) (*Entry, error)
	createDocumentFn func(ctx context.Context, fields EntryFields) (*Entry, error)
	deleteDocumentFn func(ctx context.Context, id string) error
	exportFn         func(ctx context.Context) (*ExportData, error)

	deletedIDs []string
}

var _ entryAPI = (*mockEntryAPI)(nil)

func (m *mockEntryAPI) ListDocuments(ctx context.Context) ([]Entry, error) {
	if m.listDocumentsFn != nil {
		return m.listDocumentsFn(ctx)
	}
	return nil, nil
}

func (m *mockEntryAPI) GetDocument(ctx context.Context, id string) (*Entry, error) {
	if m.getDocumentFn != nil {
		return m.getDocumentFn(ctx, id)
	}
	return &Entry{ID: id}, nil
}

func (m *mockEntryAPI) CreateDocument(ctx context.Context, fields EntryFields) (*Entry, error) {
	if m.createDocumentFn != nil {
		return m.createDocumentFn(ctx, fields)
	}
	return &Entry{ID: "entry-1"}, nil
}

func (m *mockEntryAPI) DeleteDocument(ctx context.Context, id string) error {
	m.mu.Lock()
	m.deletedIDs = append(m.deletedIDs, id)
	m.mu.Unlock()
	if m.deleteDocumentFn != nil {
		return m.deleteDocumentFn(ctx, id)
	}
	return nil
}

func (m *mockEntryAPI) Export(ctx context.Context) (*ExportData, error) {
	if m.exportFn != nil {
		return m.exportFn(ctx)
	}
	return &ExportData{}, nil
}

func validNewEntry() NewEntry {
	return NewEntry{
		Title: "パリ旅行",
		Place: "フランス",
		Date:  "2025-07-31",
		Notes: "最高だった",
	}
}

// --- List のテスト ---

func TestLogRepository_List_PreservesOrder(t *testing.T) {
	api := &mockEntryAPI{
		listDocumentsFn: func(ctx context.Context) ([]Entry, error) {
			return []Entry{{ID: "e2"}, {ID: "e1"}}, nil
		},
	}
	repo := NewLogRepository(api)

	entries, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "e2" || entries[1].ID != "e1" {
		t.Errorf("entries = %+v, want [e2 e1]", entries)
	}
}

func TestLogRepository_List_RemoteUnavailable(t *testing.T) {
	api := &mockEntryAPI{
		listDocumentsFn: func(ctx context.Context) ([]Entry, error) {
			return nil, ErrRemoteUnavailable
		},
	}
	repo := NewLogRepository(api)

	_, err := repo.List(context.Background())
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("error = %v, want ErrRemoteUnavailable kind", err)
	}
}

// --- Get のテスト ---

func TestLogRepository_Get_ReturnsEntry(t *testing.T) {
	api := &mockEntryAPI{
		getDocumentFn: func(ctx context.Context, id string) (*Entry, error) {
			return &Entry{ID: id, Title: "パリ旅行"}, nil
		},
	}
	repo := NewLogRepository(api)

	entry, err := repo.Get(context.Background(), "e1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if entry.ID != "e1" || entry.Title != "パリ旅行" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestLogRepository_Get_EmptyID_Rejected(t *testing.T) {
	repo := NewLogRepository(&mockEntryAPI{})

	_, err := repo.Get(context.Background(), "")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation kind", err)
	}
}

func TestLogRepository_Get_NotFound_Propagates(t *testing.T) {
	api := &mockEntryAPI{
		getDocumentFn: func(ctx context.Context, id string) (*Entry, error) {
			return nil, ErrNotFound
		},
	}
	repo := NewLogRepository(api)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound kind", err)
	}
}

// --- Create のテスト ---

func TestLogRepository_Create_MissingField_RejectedBeforeAPICall(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewEntry)
	}{
		{"EmptyTitle", func(e *NewEntry) { e.Title = "" }},
		{"WhitespaceTitle", func(e *NewEntry) { e.Title = "   " }},
		{"EmptyPlace", func(e *NewEntry) { e.Place = "" }},
		{"EmptyDate", func(e *NewEntry) { e.Date = "" }},
		{"EmptyNotes", func(e *NewEntry) { e.Notes = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiCalled := false
			api := &mockEntryAPI{
				createDocumentFn: func(ctx context.Context, fields EntryFields) (*Entry, error) {
					apiCalled = true
					return nil, nil
				},
			}
			repo := NewLogRepository(api)

			input := validNewEntry()
			tt.mutate(&input)

			_, err := repo.Create(context.Background(), input)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation kind", err)
			}
			if apiCalled {
				t.Error("API must not be called for invalid input")
			}
		})
	}
}

func TestLogRepository_Create_EncodesImageAsBase64(t *testing.T) {
	image := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}

	var captured EntryFields
	api := &mockEntryAPI{
		createDocumentFn: func(ctx context.Context, fields EntryFields) (*Entry, error) {
			captured = fields
			return &Entry{ID: "entry-1", Title: fields.Title}, nil
		},
	}
	repo := NewLogRepository(api)

	input := validNewEntry()
	input.Image = image

	if _, err := repo.Create(context.Background(), input); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := base64.StdEncoding.EncodeToString(image)
	if captured.ImageBase64 != want {
		t.Errorf("imageBase64 = %q, want %q", captured.ImageBase64, want)
	}
}

func TestLogRepository_Create_NoImage_SendsEmptyString(t *testing.T) {
	var captured EntryFields
	api := &mockEntryAPI{
		createDocumentFn: func(ctx context.Context, fields EntryFields) (*Entry, error) {
			captured = fields
			return &Entry{ID: "entry-1"}, nil
		},
	}
	repo := NewLogRepository(api)

	if _, err := repo.Create(context.Background(), validNewEntry()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if captured.ImageBase64 != "" {
		t.Errorf("imageBase64 = %q, want empty", captured.ImageBase64)
	}
}

// --- Delete のテスト ---

func TestLogRepository_Delete_EmptyID_Rejected(t *testing.T) {
	repo := NewLogRepository(&mockEntryAPI{})

	err := repo.Delete(context.Background(), "")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation kind", err)
	}
}

func TestLogRepository_Delete_NotFound_Propagates(t *testing.T) {
	api := &mockEntryAPI{
		deleteDocumentFn: func(ctx context.Context, id string) error {
			return ErrNotFound
		},
	}
	repo := NewLogRepository(api)

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound kind", err)
	}
}

// --- DeleteAll のテスト ---

func TestLogRepository_DeleteAll_DeletesEveryEntry(t *testing.T) {
	api := &mockEntryAPI{
		listDocumentsFn: func(ctx context.Context) ([]Entry, error) {
			return []Entry{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}, nil
		},
	}
	repo := NewLogRepository(api)

	if err := repo.DeleteAll(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(api.deletedIDs) != 3 {
		t.Errorf("deleted count = %d, want 3", len(api.deletedIDs))
	}
	seen := map[string]bool{}
	for _, id := range api.deletedIDs {
		seen[id] = true
	}
	for _, want := range []string{"e1", "e2", "e3"} {
		if !seen[want] {
			t.Errorf("entry %s was not deleted", want)
		}
	}
}

func TestLogRepository_DeleteAll_NoEntries_IsNoOp(t *testing.T) {
	repo := NewLogRepository(&mockEntryAPI{})

	if err := repo.DeleteAll(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

// 一部の削除が失敗しても他の削除は続行され、集約された単一エラーが返る
func TestLogRepository_DeleteAll_PartialFailure_ContinuesAndAggregates(t *testing.T) {
	api := &mockEntryAPI{
		listDocumentsFn: func(ctx context.Context) ([]Entry, error) {
			return []Entry{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}, nil
		},
		deleteDocumentFn: func(ctx context.Context, id string) error {
			if id == "e2" {
				return ErrRemoteUnavailable
			}
			return nil
		},
	}
	repo := NewLogRepository(api)

	err := repo.DeleteAll(context.Background())
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if !strings.Contains(err.Error(), "3件中1件") {
		t.Errorf("error message = %q, want failure counts", err.Error())
	}
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("error = %v, want ErrRemoteUnavailable kind wrapped", err)
	}

	// 失敗エントリ以外の削除は全て試行されている
	if len(api.deletedIDs) != 3 {
		t.Errorf("attempted deletes = %d, want 3", len(api.deletedIDs))
	}
}

func TestLogRepository_DeleteAll_ListFailure_StopsEarly(t *testing.T) {
	api := &mockEntryAPI{
		listDocumentsFn: func(ctx context.Context) ([]Entry, error) {
			return nil, ErrRemoteUnavailable
		},
	}
	repo := NewLogRepository(api)

	err := repo.DeleteAll(context.Background())
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("error = %v, want ErrRemoteUnavailable kind", err)
	}
	if len(api.deletedIDs) != 0 {
		t.Error("no deletes should be attempted when enumeration fails")
	}
}

// --- Export のテスト ---

func TestLogRepository_Export_ReturnsEntriesWithTimestamp(t *testing.T) {
	exportedAt := time.Date(2025, 7, 31, 12, 0, 0, 0, time.UTC)
	api := &mockEntryAPI{
		exportFn: func(ctx context.Context) (*ExportData, error) {
			return &ExportData{
				ExportedAt: exportedAt,
				Entries:    []Entry{{ID: "e1", Title: "パリ旅行"}},
			}, nil
		},
	}
	repo := NewLogRepository(api)

	data, err := repo.Export(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !data.ExportedAt.Equal(exportedAt) {
		t.Errorf("exportedAt = %v, want %v", data.ExportedAt, exportedAt)
	}
	if len(data.Entries) != 1 || data.Entries[0].Title != "パリ旅行" {
		t.Errorf("entries = %+v, want single パリ旅行", data.Entries)
	}
}
