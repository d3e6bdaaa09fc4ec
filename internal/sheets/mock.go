package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ValuesUpdate records one values.update call.
type ValuesUpdate struct {
	SpreadsheetID string
	Range         string
	InputOption   string
	Values        [][]any
}

// MockServer is an in-memory stand-in for the Sheets REST API, covering the
// calls Writer makes.
type MockServer struct {
	*httptest.Server
	spreadsheets map[string]*sheets.Spreadsheet

	// FailPath makes any request whose path contains it answer 500.
	FailPath string

	Created      []*sheets.Spreadsheet
	BatchUpdates []*sheets.BatchUpdateSpreadsheetRequest
	Clears       []string
	Updates      []ValuesUpdate
	nextID       int
	nextSheetID  int64
	mu           sync.Mutex
}

// NewMockServer starts a mock Sheets API. Callers must Close it.
func NewMockServer() *MockServer {
	m := &MockServer{
		spreadsheets: make(map[string]*sheets.Spreadsheet),
		nextSheetID:  100,
	}
	m.Server = httptest.NewServer(m)
	return m
}

// Service returns a Sheets client pointed at the mock.
func (m *MockServer) Service(ctx context.Context) (*sheets.Service, error) {
	return sheets.NewService(ctx,
		option.WithEndpoint(m.URL+"/"),
		option.WithHTTPClient(m.Client()))
}

// AddSpreadsheet seeds an existing spreadsheet with the given tab titles.
func (m *MockServer) AddSpreadsheet(id string, titles ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &sheets.Spreadsheet{SpreadsheetId: id, SpreadsheetUrl: "https://docs.google.com/spreadsheets/d/" + id}
	for _, title := range titles {
		s.Sheets = append(s.Sheets, m.newSheet(title))
	}
	m.spreadsheets[id] = s
}

// SheetTitles returns the tab titles of a spreadsheet.
func (m *MockServer) SheetTitles(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var titles []string
	if s, ok := m.spreadsheets[id]; ok {
		for _, sh := range s.Sheets {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles
}

func (m *MockServer) newSheet(title string) *sheets.Sheet {
	m.nextSheetID++
	return &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title, SheetId: m.nextSheetID}}
}

// ServeHTTP implements http.Handler.
func (m *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPath != "" && strings.Contains(r.URL.Path, m.FailPath) {
		writeAPIError(w, http.StatusInternalServerError, "mock failure")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets")
	id, op := splitPath(rest)

	switch {
	case r.Method == http.MethodPost && id == "":
		m.create(w, r)
	case r.Method == http.MethodGet && op == "":
		m.get(w, id)
	case r.Method == http.MethodPost && op == ":batchUpdate":
		m.batchUpdate(w, r, id)
	case r.Method == http.MethodPost && strings.HasPrefix(op, "/values/") && strings.HasSuffix(op, ":clear"):
		rng := strings.TrimSuffix(strings.TrimPrefix(op, "/values/"), ":clear")
		m.Clears = append(m.Clears, rng)
		writeJSON(w, &sheets.ClearValuesResponse{SpreadsheetId: id, ClearedRange: rng})
	case r.Method == http.MethodPut && strings.HasPrefix(op, "/values/"):
		m.update(w, r, id, strings.TrimPrefix(op, "/values/"))
	default:
		writeAPIError(w, http.StatusNotFound, fmt.Sprintf("unhandled %s %s", r.Method, r.URL.Path))
	}
}

// splitPath splits "/{id}{op}" where op starts with "/" or ":".
func splitPath(rest string) (id, op string) {
	rest = strings.TrimPrefix(rest, "/")
	if i := strings.IndexAny(rest, "/:"); i >= 0 {
		return rest[:i], rest[i:]
	}
	return rest, ""
}

func (m *MockServer) create(w http.ResponseWriter, r *http.Request) {
	var req sheets.Spreadsheet
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	m.Created = append(m.Created, &req)

	m.nextID++
	id := fmt.Sprintf("mock-spreadsheet-%d", m.nextID)
	s := &sheets.Spreadsheet{
		SpreadsheetId:  id,
		SpreadsheetUrl: "https://docs.google.com/spreadsheets/d/" + id,
		Properties:     req.Properties,
	}
	for _, sh := range req.Sheets {
		s.Sheets = append(s.Sheets, m.newSheet(sh.Properties.Title))
	}
	if len(s.Sheets) == 0 {
		s.Sheets = append(s.Sheets, m.newSheet("Sheet1"))
	}
	m.spreadsheets[id] = s
	writeJSON(w, s)
}

func (m *MockServer) get(w http.ResponseWriter, id string) {
	s, ok := m.spreadsheets[id]
	if !ok {
		writeAPIError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}
	writeJSON(w, s)
}

func (m *MockServer) batchUpdate(w http.ResponseWriter, r *http.Request, id string) {
	s, ok := m.spreadsheets[id]
	if !ok {
		writeAPIError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}

	var req sheets.BatchUpdateSpreadsheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	m.BatchUpdates = append(m.BatchUpdates, &req)

	resp := &sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: id}
	for _, rq := range req.Requests {
		reply := &sheets.Response{}
		if rq.AddSheet != nil {
			sh := m.newSheet(rq.AddSheet.Properties.Title)
			s.Sheets = append(s.Sheets, sh)
			reply.AddSheet = &sheets.AddSheetResponse{Properties: sh.Properties}
		}
		resp.Replies = append(resp.Replies, reply)
	}
	writeJSON(w, resp)
}

func (m *MockServer) update(w http.ResponseWriter, r *http.Request, id, rng string) {
	var req sheets.ValueRange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}
	values := make([][]any, len(req.Values))
	for i, row := range req.Values {
		values[i] = append([]any(nil), row...)
	}
	m.Updates = append(m.Updates, ValuesUpdate{
		SpreadsheetID: id,
		Range:         rng,
		InputOption:   r.URL.Query().Get("valueInputOption"),
		Values:        values,
	})
	writeJSON(w, &sheets.UpdateValuesResponse{SpreadsheetId: id, UpdatedRange: rng, UpdatedRows: int64(len(values))})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
}
