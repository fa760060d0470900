// Package sheets persists the triage ledger in a Google spreadsheet: one
// worksheet as the source of truth, one as the derived Active Candidates view.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/jmholla/triagebot/internal/log"
	"github.com/jmholla/triagebot/internal/model"
	"github.com/jmholla/triagebot/internal/triage"
)

const (
	ledgerSheet     = "Triage Ledger"
	projectionSheet = "Active Candidates"

	// ledgerRange spans every ledger column, A through R.
	ledgerRange = ledgerSheet + "!A2:R"

	// needsRetriageColumn is the Needs Re-triage column letter.
	needsRetriageColumn = "P"
)

var ledgerHeader = []string{
	"Issue ID", "Title", "URL", "Labels", "Current Status",
	"LLM Difficulty", "LLM Skill Match", "Scope Clarity", "Test Focused",
	"Risk Flags", "Manual Confidence", "Reason", "Summary",
	"Last Checked At", "Updated At (GitHub)", "Needs Re-triage",
	"Auto Candidate", "Positive Signals",
}

var projectionHeader = []string{
	"Issue ID", "Title", "URL", "LLM Difficulty", "LLM Skill Match",
	"Summary", "Reason",
}

// statusValues populate the Current Status dropdown during Setup.
var statusValues = []model.Status{
	model.StatusNew, model.StatusCandidate, model.StatusInProgress,
	model.StatusPROpened, model.StatusCompleted, model.StatusSkipped,
	model.StatusFiltered, model.StatusRetriaged,
}

// Store implements the ledger on top of the Sheets API. It is not safe for
// concurrent use; the pipeline serializes all writes on one goroutine.
type Store struct {
	svc           *sheetsapi.Service
	spreadsheetID string

	// index maps issue number to 1-based spreadsheet row, filled lazily
	// and kept current across appends within this process.
	index map[int]int
}

var _ triage.LedgerStore = (*Store)(nil)

// Open builds a Store from a service-account credentials file. It performs no
// network calls; the first read or write surfaces auth problems.
func Open(ctx context.Context, credentialsFile, spreadsheetID string) (*Store, error) {
	svc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Setup creates the ledger and projection worksheets if they are missing,
// writes their header rows, freezes the headers, and attaches the Current
// Status dropdown. Safe to run repeatedly.
func (s *Store) Setup(ctx context.Context) error {
	spreadsheet, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("open spreadsheet: %w", err)
	}

	sheetIDs := make(map[string]int64)
	for _, sh := range spreadsheet.Sheets {
		sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
	}

	var requests []*sheetsapi.Request
	for _, title := range []string{ledgerSheet, projectionSheet} {
		if _, ok := sheetIDs[title]; ok {
			continue
		}
		requests = append(requests, &sheetsapi.Request{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		})
	}
	if len(requests) > 0 {
		resp, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("create worksheets: %w", err)
		}
		for _, r := range resp.Replies {
			if r.AddSheet != nil {
				sheetIDs[r.AddSheet.Properties.Title] = r.AddSheet.Properties.SheetId
			}
		}
	}

	headers := map[string][]string{
		ledgerSheet:     ledgerHeader,
		projectionSheet: projectionHeader,
	}
	for title, header := range headers {
		cells := make([]interface{}, len(header))
		for i, h := range header {
			cells[i] = h
		}
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, title+"!A1", &sheetsapi.ValueRange{
			Values: [][]interface{}{cells},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write %s header: %w", title, err)
		}
	}

	var format []*sheetsapi.Request
	for _, title := range []string{ledgerSheet, projectionSheet} {
		format = append(format, &sheetsapi.Request{
			UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
				Properties: &sheetsapi.SheetProperties{
					SheetId:        sheetIDs[title],
					GridProperties: &sheetsapi.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		})
	}

	statusOptions := make([]*sheetsapi.ConditionValue, len(statusValues))
	for i, v := range statusValues {
		statusOptions[i] = &sheetsapi.ConditionValue{UserEnteredValue: string(v)}
	}
	format = append(format, &sheetsapi.Request{
		SetDataValidation: &sheetsapi.SetDataValidationRequest{
			Range: &sheetsapi.GridRange{
				SheetId:          sheetIDs[ledgerSheet],
				StartRowIndex:    1,
				StartColumnIndex: 4, // Current Status
				EndColumnIndex:   5,
			},
			Rule: &sheetsapi.DataValidationRule{
				Condition: &sheetsapi.BooleanCondition{
					Type:   "ONE_OF_LIST",
					Values: statusOptions,
				},
				ShowCustomUi: true,
				Strict:       false,
			},
		},
	})

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: format,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("format worksheets: %w", err)
	}

	log.Info("spreadsheet ready", "ledger", ledgerSheet, "projection", projectionSheet)
	return nil
}

// Rows returns every ledger row in spreadsheet order. Rows whose Issue ID
// cell does not parse as an integer are skipped with a warning.
func (s *Store) Rows(ctx context.Context) ([]model.Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, ledgerRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	s.index = make(map[int]int, len(resp.Values))
	var rows []model.Row
	for i, raw := range resp.Values {
		row, err := parseRow(raw)
		if err != nil {
			log.Warn("skipping unparseable ledger row", "row", i+2, "error", err)
			continue
		}
		s.index[row.Number] = i + 2
		rows = append(rows, row)
	}
	return rows, nil
}

// Upsert writes a full row keyed by issue number, overwriting the stored row
// if one exists and appending otherwise. The Manual Confidence cell is the
// one column carried forward from the old row when the incoming row leaves it
// empty: it belongs to the human, not the pipeline.
func (s *Store) Upsert(ctx context.Context, row model.Row) error {
	if err := s.ensureIndex(ctx); err != nil {
		return err
	}

	n, exists := s.index[row.Number]
	if exists && row.ManualConfidence == "" {
		confidence, err := s.readCell(ctx, fmt.Sprintf("%s!K%d", ledgerSheet, n))
		if err != nil {
			return fmt.Errorf("read manual confidence for #%d: %w", row.Number, err)
		}
		row.ManualConfidence = confidence
	}

	values := &sheetsapi.ValueRange{Values: [][]interface{}{rowCells(row)}}

	if exists {
		rng := fmt.Sprintf("%s!A%d:R%d", ledgerSheet, n, n)
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, values).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row #%d: %w", row.Number, err)
		}
		return nil
	}

	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, ledgerRange, values).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row #%d: %w", row.Number, err)
	}
	if n, ok := appendedRowNumber(resp); ok {
		s.index[row.Number] = n
	} else {
		// Could not tell where the row landed; next Rows() rebuilds.
		s.index = nil
	}
	return nil
}

// MarkNeedsRetriage sets the Needs Re-triage cell to Yes for each given issue
// number. Unknown numbers are ignored.
func (s *Store) MarkNeedsRetriage(ctx context.Context, numbers []int) error {
	if err := s.ensureIndex(ctx); err != nil {
		return err
	}

	var data []*sheetsapi.ValueRange
	for _, number := range numbers {
		n, ok := s.index[number]
		if !ok {
			log.Warn("cannot flag unknown issue for re-triage", "issue", number)
			continue
		}
		data = append(data, &sheetsapi.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", ledgerSheet, needsRetriageColumn, n),
			Values: [][]interface{}{{"Yes"}},
		})
	}
	if len(data) == 0 {
		return nil
	}

	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("flag re-triage: %w", err)
	}
	return nil
}

// ReplaceProjection clears the Active Candidates sheet below the header and
// writes the given rows in order.
func (s *Store) ReplaceProjection(ctx context.Context, rows []model.ProjectionRow) error {
	clearRange := projectionSheet + "!A2:G"
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear projection: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = []interface{}{
			row.Number, row.Title, row.URL, row.Difficulty,
			row.SkillMatch, row.Summary, row.Reason,
		}
	}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, projectionSheet+"!A2", &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write projection: %w", err)
	}
	return nil
}

func (s *Store) ensureIndex(ctx context.Context) error {
	if s.index != nil {
		return nil
	}
	_, err := s.Rows(ctx)
	return err
}

func (s *Store) readCell(ctx context.Context, rng string) (string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return fmt.Sprint(resp.Values[0][0]), nil
}

// appendedRowNumber extracts the 1-based row the append landed on from the
// response's updated range, e.g. "Triage Ledger!A42:R42".
func appendedRowNumber(resp *sheetsapi.AppendValuesResponse) (int, bool) {
	if resp == nil || resp.Updates == nil {
		return 0, false
	}
	rng := resp.Updates.UpdatedRange
	_, ref, ok := strings.Cut(rng, "!")
	if !ok {
		return 0, false
	}
	start, _, _ := strings.Cut(ref, ":")
	digits := strings.TrimLeft(start, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// rowCells flattens a ledger row into its 18 spreadsheet cells.
func rowCells(row model.Row) []interface{} {
	return []interface{}{
		row.Number,
		row.Title,
		row.URL,
		strings.Join(row.Labels, ", "),
		string(row.Status),
		row.Difficulty,
		row.SkillMatch,
		row.ScopeClarity,
		row.TestFocused,
		row.RiskFlags,
		row.ManualConfidence,
		row.Reason,
		row.Summary,
		row.LastCheckedAt,
		row.GitHubUpdatedAt,
		yesNo(row.NeedsRetriage),
		yesNo(row.AutoCandidate),
		row.PositiveSignals,
	}
}

// parseRow converts one spreadsheet row back into a ledger row. Trailing
// empty cells are omitted by the API, so every access is bounds-checked.
func parseRow(raw []interface{}) (model.Row, error) {
	id := cell(raw, 0)
	number, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return model.Row{}, fmt.Errorf("issue id %q: %w", id, err)
	}

	row := model.Row{
		Number:           number,
		Title:            cell(raw, 1),
		URL:              cell(raw, 2),
		Labels:           splitLabels(cell(raw, 3)),
		Status:           model.Status(cell(raw, 4)),
		Difficulty:       cell(raw, 5),
		SkillMatch:       cell(raw, 6),
		ScopeClarity:     cell(raw, 7),
		TestFocused:      cell(raw, 8),
		RiskFlags:        cell(raw, 9),
		ManualConfidence: cell(raw, 10),
		Reason:           cell(raw, 11),
		Summary:          cell(raw, 12),
		LastCheckedAt:    cell(raw, 13),
		GitHubUpdatedAt:  cell(raw, 14),
		NeedsRetriage:    cell(raw, 15) == "Yes",
		AutoCandidate:    cell(raw, 16) == "Yes",
		PositiveSignals:  cell(raw, 17),
	}
	return row, nil
}

func cell(raw []interface{}, i int) string {
	if i >= len(raw) {
		return ""
	}
	return fmt.Sprint(raw[i])
}

func splitLabels(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ", ")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return ""
}
