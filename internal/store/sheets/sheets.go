// Package sheets stores thrips counts as rows of a Google Sheets tab.
// Columns are A=id, B=createdAt (RFC3339, UTC), C=tea, D=other; row 1 is a
// header.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"thrips/internal/core"
	"thrips/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var (
	_ store.Store  = (*Client)(nil)
	_ store.Pinger = (*Client)(nil)
)

// Config selects the spreadsheet and credentials.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// valuesAPI is the subset of the Sheets values API the client needs.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]interface{}, error)
	Append(ctx context.Context, rng string, rows [][]interface{}) error
	Spreadsheet(ctx context.Context) error
}

type Client struct {
	api   valuesAPI
	sheet string
	now   func() time.Time

	// Serializes id allocation within this process. Concurrent writers in
	// other processes can still race.
	mu sync.Mutex
}

// New creates a Sheets-backed store using service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Thrips"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets store ready", "spreadsheet_id", cfg.SpreadsheetID, "sheet", sheet)
	return newClient(&serviceAPI{svc: svc, spreadsheetID: cfg.SpreadsheetID}, sheet), nil
}

func newClient(api valuesAPI, sheet string) *Client {
	return &Client{api: api, sheet: sheet, now: time.Now}
}

// newSheetsService initializes a Sheets Service from inline JSON, a key file,
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Insert appends a row with id = max(existing ids)+1.
func (c *Client) Insert(ctx context.Context, n core.NewCountRecord) (core.CountRecord, error) {
	if err := n.Validate(); err != nil {
		return core.CountRecord{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.api.Get(ctx, fmt.Sprintf("%s!A2:A", c.sheet))
	if err != nil {
		return core.CountRecord{}, &core.StoreError{Op: "read sheet ids", Err: err}
	}

	rec := core.CountRecord{
		ID:        nextID(ids),
		CreatedAt: c.now().UTC().Truncate(time.Second),
		Tea:       n.Tea,
		Other:     n.Other,
	}
	row := []interface{}{rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.Tea, rec.Other}
	if err := c.api.Append(ctx, fmt.Sprintf("%s!A:D", c.sheet), [][]interface{}{row}); err != nil {
		return core.CountRecord{}, &core.StoreError{Op: "append sheet row", Err: err}
	}

	slog.InfoContext(ctx, "Thrips count appended to sheet", "sheet", c.sheet, "id", rec.ID)
	return rec, nil
}

// ListAll reads every data row ordered by createdAt. Rows with an
// unparseable createdAt are returned with a zero CreatedAt.
func (c *Client) ListAll(ctx context.Context) ([]core.CountRecord, error) {
	values, err := c.api.Get(ctx, fmt.Sprintf("%s!A2:D", c.sheet))
	if err != nil {
		return nil, &core.StoreError{Op: "read sheet rows", Err: err}
	}

	out := make([]core.CountRecord, 0, len(values))
	for i, raw := range values {
		rec, err := parseRow(raw)
		if errors.Is(err, errBlankRow) {
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "Malformed sheet row", "sheet", c.sheet, "row", i+2, "error", err)
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Ping checks that the spreadsheet is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.Spreadsheet(ctx); err != nil {
		return &core.StoreError{Op: "ping sheets", Err: err}
	}
	return nil
}

type serviceAPI struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceAPI) Get(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (s *serviceAPI) Append(ctx context.Context, rng string, rows [][]interface{}) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

func (s *serviceAPI) Spreadsheet(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}
