package store

import (
	"context"
	"fmt"
	"strings"

	"myclaim/internal/apperr"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Filter narrows ListClaims. Nil pointers and empty strings are ignored.
type Filter struct {
	ICNumber         string
	VehicleMake      string
	ApprovalFlag     *bool
	AtFaultFlag      *bool
	ReportedToPolice *bool
	Search           string
	MinScore         *float64
	MaxScore         *float64
	MinAmount        *float64
	MaxAmount        *float64
	// Ordering is a column name, prefixed with "-" for descending.
	Ordering string
	Limit    int
	Offset   int
}

var orderings = map[string]string{
	"created_at":             "created_at ASC",
	"-created_at":            "created_at DESC",
	"damage_severity_score":  "damage_severity_score ASC",
	"-damage_severity_score": "damage_severity_score DESC",
	"repair_amount":          "repair_amount ASC",
	"-repair_amount":         "repair_amount DESC",
}

type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func buildWhere(f Filter) *where {
	w := &where{}
	if f.ICNumber != "" {
		w.add("ic_number = ?", f.ICNumber)
	}
	if f.VehicleMake != "" {
		w.add("vehicle_make = ?", f.VehicleMake)
	}
	if f.ApprovalFlag != nil {
		w.add("approval_flag = ?", *f.ApprovalFlag)
	}
	if f.AtFaultFlag != nil {
		w.add("at_fault_flag = ?", *f.AtFaultFlag)
	}
	if f.ReportedToPolice != nil {
		w.add("claim_reported_to_police_flag = ?", *f.ReportedToPolice)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		// every placeholder binds the same pattern
		w.add("(ic_number ILIKE ? OR vehicle_make ILIKE ? OR claim_description ILIKE ?)", "%"+escapeLike(s)+"%")
	}
	if f.MinScore != nil {
		w.add("damage_severity_score >= ?", *f.MinScore)
	}
	if f.MaxScore != nil {
		w.add("damage_severity_score <= ?", *f.MaxScore)
	}
	if f.MinAmount != nil {
		w.add("repair_amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		w.add("repair_amount <= ?", *f.MaxAmount)
	}
	return w
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func orderBy(ordering string) (string, error) {
	if ordering == "" {
		ordering = "-created_at"
	}
	clause, ok := orderings[ordering]
	if !ok {
		return "", apperr.Invalid("ordering", "unsupported ordering "+ordering)
	}
	return clause + ", id ASC", nil
}

// ListClaims returns one page of matching claims and the total match count.
func (s *Store) ListClaims(ctx context.Context, f Filter) ([]Claim, int, error) {
	order, err := orderBy(f.Ordering)
	if err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	w := buildWhere(f)
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM claims`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	args := append(append([]any{}, w.args...), limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM claims%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		claimColumns, w.sql(), order, len(w.args)+1, len(w.args)+2)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	out := []Claim{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
