package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"travel-backoffice/internal/models"
)

// Column is a writable column of a catalog table.
type Column struct {
	Name string
	Type string
}

// Table describes one CMS reference table exposed over the API.
type Table struct {
	Name     string
	Path     string
	Columns  []Column
	Required []string
	Filters  []string
	OrderBy  string

	derive func(models.Record)
}

// readOnly are columns clients may send back unchanged but never write.
var readOnly = map[string]bool{"id": true, "created_by": true, "created_at": true, "updated_at": true}

func text(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Type: "text"}
	}
	return cols
}

func cols(groups ...[]Column) []Column {
	var out []Column
	for _, g := range groups {
		out = append(out, g...)
	}
	return append(out, Column{Name: "status", Type: "text"})
}

// CatalogTables lists the CMS tables in the order the admin menu shows them.
var CatalogTables = []*Table{
	{
		Name:     "destinations",
		Path:     "destinations",
		Columns:  cols(text("name", "slug", "country", "description", "image_url")),
		Required: []string{"name"},
		Filters:  []string{"status", "country", "slug"},
		derive: func(r models.Record) {
			if name, ok := r["name"].(string); ok {
				if s, _ := r["slug"].(string); s == "" {
					r["slug"] = models.Slugify(name)
				}
			}
		},
	},
	{
		Name:     "suppliers",
		Path:     "suppliers",
		Columns:  cols(text("name", "company", "supplier_type", "destination", "phone", "email", "address")),
		Required: []string{"name"},
		Filters:  []string{"status", "supplier_type", "destination"},
	},
	{
		Name:     "meal_plans",
		Path:     "meal-plans",
		Columns:  cols(text("name", "description")),
		Required: []string{"name"},
		Filters:  []string{"status"},
	},
	{
		Name:     "room_types",
		Path:     "room-types",
		Columns:  cols(text("name", "description"), []Column{{"max_occupancy", "integer"}}),
		Required: []string{"name"},
		Filters:  []string{"status"},
	},
	{
		Name: "hotels",
		Path: "hotels",
		Columns: cols(
			text("name", "destination", "address", "contact_person", "phone", "email", "image_url"),
			[]Column{{"star_category", "integer"}, {"supplier_id", "bigint"}},
		),
		Required: []string{"name"},
		Filters:  []string{"status", "destination", "star_category", "supplier_id"},
	},
	{
		Name: "hotel_rates",
		Path: "hotel-rates",
		Columns: cols(
			[]Column{{"hotel_id", "bigint"}},
			text("room_type", "meal_plan"),
			[]Column{
				{"season_from", "date"}, {"season_to", "date"},
				{"single_rate", "numeric"}, {"double_rate", "numeric"},
				{"extra_adult_rate", "numeric"}, {"extra_child_rate", "numeric"},
			},
		),
		Required: []string{"hotel_id"},
		Filters:  []string{"status", "hotel_id", "room_type", "meal_plan"},
	},
	{
		Name: "transfers",
		Path: "transfers",
		Columns: cols(
			text("name", "destination", "vehicle_type", "description"),
			[]Column{{"capacity", "integer"}, {"supplier_id", "bigint"}},
		),
		Required: []string{"name"},
		Filters:  []string{"status", "destination", "vehicle_type", "supplier_id"},
	},
	{
		Name: "transfer_rates",
		Path: "transfer-rates",
		Columns: cols([]Column{
			{"transfer_id", "bigint"}, {"valid_from", "date"}, {"valid_to", "date"}, {"rate", "numeric"},
		}),
		Required: []string{"transfer_id"},
		Filters:  []string{"status", "transfer_id"},
	},
	{
		Name:     "activities",
		Path:     "activities",
		Columns:  cols(text("name", "destination", "description", "duration", "image_url"), []Column{{"price", "numeric"}}),
		Required: []string{"name"},
		Filters:  []string{"status", "destination"},
	},
	{
		Name:     "query_statuses",
		Path:     "query-statuses",
		Columns:  cols(text("name", "color"), []Column{{"sort_order", "integer"}}),
		Required: []string{"name"},
		Filters:  []string{"status"},
		OrderBy:  "sort_order ASC, created_at DESC",
	},
	{
		Name:     "package_themes",
		Path:     "package-themes",
		Columns:  cols(text("name", "description", "image_url")),
		Required: []string{"name"},
		Filters:  []string{"status"},
	},
	{
		Name:     "day_itineraries",
		Path:     "day-itineraries",
		Columns:  cols(text("title", "destination", "description", "meal_plan")),
		Required: []string{"title"},
		Filters:  []string{"status", "destination"},
	},
}

// CatalogTable finds a table by its URL path segment.
func CatalogTable(path string) (*Table, bool) {
	for _, t := range CatalogTables {
		if t.Path == path {
			return t, true
		}
	}
	return nil, false
}

func (t *Table) column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) orderBy() string {
	if t.OrderBy != "" {
		return t.OrderBy
	}
	return "created_at DESC"
}

// Prepare validates rec against the table, dropping read-only keys and
// deriving computed columns. Unknown keys are rejected with ErrColumn.
func (t *Table) Prepare(rec models.Record, create bool) (models.Record, error) {
	out := models.Record{}
	for k, v := range rec {
		if readOnly[k] {
			continue
		}
		if _, ok := t.column(k); !ok {
			return nil, fmt.Errorf("%w %q for %s", ErrColumn, k, t.Path)
		}
		out[k] = v
	}
	if t.derive != nil {
		t.derive(out)
	}
	if status, ok := out["status"]; ok {
		if s, _ := status.(string); !models.ValidStatus(s) {
			return nil, fmt.Errorf("%w: status must be active or inactive", ErrCheck)
		}
	}
	if create {
		for _, req := range t.Required {
			if isBlank(out[req]) {
				return nil, fmt.Errorf("%w: %s is required", ErrCheck, req)
			}
		}
	}
	return out, nil
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// textValue renders a JSON-decoded value as the text form Postgres casts
// from. Empty strings become NULL for non-text columns.
func textValue(c Column, v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if x == "" && c.Type != "text" {
			return nil, nil
		}
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	return nil, fmt.Errorf("%w: unsupported value for %s", ErrCheck, c.Name)
}

func sortedKeys(rec models.Record) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *service) ListRecords(ctx context.Context, t *Table, filters map[string]string) ([]models.Record, error) {
	var w where
	for _, name := range t.Filters {
		value := filters[name]
		if value == "" {
			continue
		}
		switch name {
		case "destination":
			w.destination(name, value)
		case "status":
			w.oneOf("status::text", value)
		default:
			w.eq(name+"::text", value)
		}
	}

	query := `SELECT * FROM ` + t.Name + w.String() + ` ORDER BY ` + t.orderBy()
	rows, err := s.db.QueryxContext(ctx, query, w.args...)
	if err != nil {
		return nil, wrap("list "+t.Name, err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		rec := map[string]any{}
		if err := rows.MapScan(rec); err != nil {
			return nil, wrap("scan "+t.Name, err)
		}
		records = append(records, normalize(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list "+t.Name, err)
	}
	return records, nil
}

func (s *service) GetRecord(ctx context.Context, t *Table, id int64) (models.Record, error) {
	row := s.db.QueryRowxContext(ctx, `SELECT * FROM `+t.Name+` WHERE id = $1`, id)
	return scanRecord("get "+t.Name, row)
}

func (s *service) CreateRecord(ctx context.Context, t *Table, rec models.Record, createdBy string) (models.Record, error) {
	rec, err := t.Prepare(rec, true)
	if err != nil {
		return nil, err
	}

	var names, placeholders []string
	var args []any
	for _, k := range sortedKeys(rec) {
		c, _ := t.column(k)
		v, err := textValue(c, rec[k])
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		names = append(names, c.Name)
		placeholders = append(placeholders, fmt.Sprintf("CAST($%d::text AS %s)", len(args), c.Type))
	}
	if createdBy != "" {
		args = append(args, createdBy)
		names = append(names, "created_by")
		placeholders = append(placeholders, fmt.Sprintf("CAST($%d::text AS uuid)", len(args)))
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING *`,
		t.Name, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return scanRecord("create "+t.Name, s.db.QueryRowxContext(ctx, query, args...))
}

// UpdateRecord writes only the columns present in rec.
func (s *service) UpdateRecord(ctx context.Context, t *Table, id int64, rec models.Record) (models.Record, error) {
	rec, err := t.Prepare(rec, false)
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return s.GetRecord(ctx, t, id)
	}

	args := []any{id}
	var sets []string
	for _, k := range sortedKeys(rec) {
		c, _ := t.column(k)
		v, err := textValue(c, rec[k])
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = CAST($%d::text AS %s)", c.Name, len(args), c.Type))
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1 RETURNING *`, t.Name, strings.Join(sets, ", "))
	return scanRecord("update "+t.Name, s.db.QueryRowxContext(ctx, query, args...))
}

func (s *service) DeleteRecord(ctx context.Context, t *Table, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+t.Name+` WHERE id = $1`, id)
	return affected("delete "+t.Name, res, err)
}

type mapScanner interface {
	MapScan(dest map[string]any) error
}

func scanRecord(op string, row mapScanner) (models.Record, error) {
	rec := map[string]any{}
	if err := row.MapScan(rec); err != nil {
		return nil, wrap(op, err)
	}
	return normalize(rec), nil
}

// normalize converts driver byte slices to strings so records encode as
// readable JSON.
func normalize(rec map[string]any) models.Record {
	for k, v := range rec {
		if b, ok := v.([]byte); ok {
			rec[k] = string(b)
		}
	}
	return models.Record(rec)
}
