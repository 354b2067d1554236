package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// IDHeader is the header of the optional numeric key column.
const IDHeader = "ID"

// Record is one data row keyed by the camelCase form of each header.
type Record struct {
	ID     int
	Row    int // 1-based sheet row, header is row 1
	Values map[string]string
}

// Get returns the trimmed value for a camelCase key.
func (r Record) Get(key string) string {
	return strings.TrimSpace(r.Values[key])
}

// Table is a sheet viewed through a transaction.
type Table struct {
	tx    *Tx
	sheet string
}

func (t *Table) file() *excelize.File {
	return t.tx.store.file
}

func (t *Table) rows() ([][]string, error) {
	idx, err := t.file().GetSheetIndex(t.sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, t.sheet)
	}
	return t.file().GetRows(t.sheet)
}

// Headers returns the trimmed header row.
func (t *Table) Headers() ([]string, error) {
	rows, err := t.rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, nil
}

// Keys returns the camelCase keys of the header row, in column order.
func (t *Table) Keys() ([]string, error) {
	headers, err := t.Headers()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = CamelKey(h)
	}
	return keys, nil
}

// All reads every non-blank data row.
func (t *Table) All() ([]Record, error) {
	rows, err := t.rows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	headers := rows[0]
	idCol := indexOf(headers, IDHeader)
	out := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := Record{Row: i + 2, Values: make(map[string]string, len(headers))}
		for c, h := range headers {
			rec.Values[CamelKey(h)] = cell(row, c)
		}
		rec.ID = rec.Row
		if idCol >= 0 {
			if id, ok := parseID(cell(row, idCol)); ok {
				rec.ID = id
			}
		}
		rec.Values["id"] = strconv.Itoa(rec.ID)
		out = append(out, rec)
	}
	return out, nil
}

// Find returns every record accepted by match, in sheet order.
func (t *Table) Find(match func(Record) bool) ([]Record, error) {
	all, err := t.All()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0)
	for _, r := range all {
		if match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// First returns the first record accepted by match.
func (t *Table) First(match func(Record) bool) (Record, bool, error) {
	all, err := t.All()
	if err != nil {
		return Record{}, false, err
	}
	for _, r := range all {
		if match(r) {
			return r, true, nil
		}
	}
	return Record{}, false, nil
}

func (t *Table) FindByID(id int) (Record, error) {
	rec, ok, err := t.First(func(r Record) bool { return r.ID == id })
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

// Append writes values positionally after the last used row and returns the new row number.
func (t *Table) Append(values []interface{}) (int, error) {
	rows, err := t.rows()
	if err != nil {
		return 0, err
	}
	row := len(rows) + 1
	if err := t.writeRow(row, values); err != nil {
		return 0, err
	}
	return row, nil
}

// Insert appends a record given by camelCase keys. Missing keys become empty cells.
func (t *Table) Insert(values map[string]string) (Record, error) {
	headers, err := t.Headers()
	if err != nil {
		return Record{}, err
	}
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = values[CamelKey(h)]
	}
	n, err := t.Append(row)
	if err != nil {
		return Record{}, err
	}
	return t.recordAt(n, headers, row), nil
}

// Create inserts a record with the next ID: max existing numeric ID + 1, or the next row number when the
// sheet has no numeric IDs yet.
func (t *Table) Create(values map[string]string) (Record, error) {
	rows, err := t.rows()
	if err != nil {
		return Record{}, err
	}
	if len(rows) == 0 {
		return Record{}, ErrNoIDColumn
	}
	headers := trimmed(rows[0])
	idCol := indexOf(headers, IDHeader)
	if idCol < 0 {
		return Record{}, ErrNoIDColumn
	}

	nextID := len(rows) + 1
	maxID := 0
	for _, r := range rows[1:] {
		if id, ok := parseID(cell(r, idCol)); ok && id > maxID {
			maxID = id
		}
	}
	if maxID > 0 {
		nextID = maxID + 1
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		if i == idCol {
			row[i] = nextID
			continue
		}
		row[i] = values[CamelKey(h)]
	}
	n := len(rows) + 1
	if err := t.writeRow(n, row); err != nil {
		return Record{}, err
	}
	rec := t.recordAt(n, headers, row)
	rec.ID = nextID
	rec.Values["id"] = strconv.Itoa(nextID)
	return rec, nil
}

// Update merges patch into the record with the given ID. Keys absent from patch keep their value.
func (t *Table) Update(id int, patch map[string]string) (Record, error) {
	rec, err := t.FindByID(id)
	if err != nil {
		return Record{}, err
	}
	if err := t.UpdateRow(rec.Row, patch); err != nil {
		return Record{}, err
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		rec.Values[k] = v
	}
	return rec, nil
}

// UpdateRow merges patch into the given sheet row.
func (t *Table) UpdateRow(row int, patch map[string]string) error {
	rows, err := t.rows()
	if err != nil {
		return err
	}
	if row < 2 || row > len(rows) {
		return ErrRecordNotFound
	}
	headers := trimmed(rows[0])
	existing := rows[row-1]
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		key := CamelKey(h)
		if v, ok := patch[key]; ok && h != IDHeader {
			values[i] = v
			continue
		}
		if h == IDHeader {
			if id, ok := parseID(cell(existing, i)); ok {
				values[i] = id
				continue
			}
		}
		values[i] = cell(existing, i)
	}
	return t.writeRow(row, values)
}

// Delete removes the row holding the record with the given ID.
func (t *Table) Delete(id int) error {
	rec, err := t.FindByID(id)
	if err != nil {
		return err
	}
	return t.DeleteRow(rec.Row)
}

func (t *Table) DeleteRow(row int) error {
	if row < 2 {
		return ErrRecordNotFound
	}
	if err := t.file().RemoveRow(t.sheet, row); err != nil {
		return err
	}
	t.tx.dirty = true
	return nil
}

func (t *Table) writeRow(row int, values []interface{}) error {
	cellRef, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := t.file().SetSheetRow(t.sheet, cellRef, &values); err != nil {
		return err
	}
	t.tx.dirty = true
	return nil
}

func (t *Table) recordAt(row int, headers []string, values []interface{}) Record {
	rec := Record{ID: row, Row: row, Values: make(map[string]string, len(headers))}
	for i, h := range headers {
		rec.Values[CamelKey(h)] = fmt.Sprint(values[i])
	}
	rec.Values["id"] = strconv.Itoa(row)
	return rec
}

func parseID(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func trimmed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
