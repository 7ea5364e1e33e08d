package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"studyplan/internal/core"
	"studyplan/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "Completions"

// Ensure interface conformance
var (
	_ ports.CompletionExporter       = (*Client)(nil)
	_ ports.ExportedCompletionReader = (*Client)(nil)
)

// Client appends completed study sessions to a Google Sheet, one row each:
// Date | Session | Subject | Completed at | Completion ID.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

// Settings configures a Client. Credentials are read from ServiceAccountJSON,
// then ServiceAccountFile, then GOOGLE_APPLICATION_CREDENTIALS.
type Settings struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

func New(ctx context.Context, s Settings, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(s.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	if len(opts) == 0 {
		creds, err := credentialsJSON(ctx, s)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newClient(svc, spreadsheetID, s.SheetName), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, sheet string) *Client {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = defaultSheetName
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}
}

func credentialsJSON(ctx context.Context, s Settings) ([]byte, error) {
	inline := strings.TrimSpace(s.ServiceAccountJSON)
	file := strings.TrimSpace(s.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ExportCompletion appends c to the sheet. A row already holding the same date and
// session is reused, so repeated exports do not duplicate rows.
func (c *Client) ExportCompletion(ctx context.Context, comp core.Completion) (string, error) {
	if err := comp.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rows, err := c.readRows(ctx)
	if err != nil {
		return "", err
	}
	if n := findRow(rows, comp.Date.String(), comp.SessionID); n > 0 {
		slog.InfoContext(ctx, "Completion already present in sheet", "id", comp.ID, "row", n)
		return fmt.Sprintf("%s!A%d:E%d", c.sheet, n, n), nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{completionRow(comp)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheet+"!A:E", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return c.sheet, nil
	}
	return resp.Updates.UpdatedRange, nil
}

// ListCompletions reads back the exported completions dated in year/month (1-12).
func (c *Client) ListCompletions(ctx context.Context, year, month int) ([]core.Completion, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}
	rows, err := c.readRows(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Completion
	for _, comp := range parseCompletionRows(rows) {
		if comp.Date.Year() == year && comp.Date.Month() == month {
			out = append(out, comp)
		}
	}
	return out, nil
}

func (c *Client) readRows(ctx context.Context) ([][]interface{}, error) {
	rng := c.sheet + "!A:E"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func completionRow(c core.Completion) []any {
	completedAt := ""
	if !c.CompletedAt.IsZero() {
		completedAt = c.CompletedAt.UTC().Format(time.RFC3339)
	}
	return []any{c.Date.String(), c.SessionID, c.Subject, completedAt, strconv.FormatInt(c.ID, 10)}
}
