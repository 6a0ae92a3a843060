package store

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"myclaim/internal/apperr"
	"myclaim/internal/claims"
	"myclaim/internal/derive"
)

// Claim is one persisted claim with its model inputs and scoring outcome.
type Claim struct {
	claims.Features

	ID                 string    `json:"id"`
	ICNumber           string    `json:"ic_number"`
	ApprovalFlag       *bool     `json:"approval_flag"`
	CoverageAmount     *float64  `json:"coverage_amount"`
	ClaimDescription   string    `json:"claim_description"`
	CustomerBackground string    `json:"customer_background"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

//go:embed schemas/claim.json
var claimSchemaJSON []byte

var claimSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("claim.json", bytes.NewReader(claimSchemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("claim.json")
}()

// DecodeClaim validates a request payload and builds a Claim from it. Server
// managed fields (id, timestamps) are ignored.
func DecodeClaim(payload map[string]any) (Claim, error) {
	if err := claimSchema.Validate(payload); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			leaf := verr
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			field := strings.TrimPrefix(leaf.InstanceLocation, "/")
			if field == "" {
				field = "body"
			}
			return Claim{}, apperr.Invalid(field, leaf.Message)
		}
		return Claim{}, apperr.Invalid("body", err.Error())
	}
	features, err := claims.Normalize(payload)
	if err != nil {
		return Claim{}, err
	}
	c := Claim{Features: features, ICNumber: icNumber(payload["ic_number"])}
	if v, ok := payload["approval_flag"].(bool); ok {
		c.ApprovalFlag = &v
	}
	if v, ok := payload["coverage_amount"].(float64); ok {
		c.CoverageAmount = &v
	}
	c.ClaimDescription, _ = payload["claim_description"].(string)
	c.CustomerBackground, _ = payload["customer_background"].(string)
	return c, nil
}

// icNumber accepts the digits-only integer the document extractor returns.
func icNumber(v any) string {
	switch t := v.(type) {
	case float64:
		return derive.PadIC(int64(t))
	case string:
		return strings.TrimSpace(t)
	default:
		return ""
	}
}

const claimColumns = `id, ic_number, age, months_as_customer, vehicle_age_years, vehicle_make,
	policy_expired_flag, deductible_amount, market_value, damage_severity_score, repair_amount,
	at_fault_flag, time_to_report_days, claim_reported_to_police_flag, license_type_missing_flag,
	num_third_parties, num_witnesses, approval_flag, coverage_amount, claim_description,
	customer_background, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (Claim, error) {
	var (
		c                                          Claim
		expired, atFault, reported, licenseMissing bool
		approval                                   sql.NullBool
		coverage                                   sql.NullFloat64
	)
	err := row.Scan(&c.ID, &c.ICNumber, &c.Age, &c.MonthsAsCustomer, &c.VehicleAgeYears, &c.VehicleMake,
		&expired, &c.DeductibleAmount, &c.MarketValue, &c.DamageSeverityScore, &c.RepairAmount,
		&atFault, &c.TimeToReportDays, &reported, &licenseMissing,
		&c.NumThirdParties, &c.NumWitnesses, &approval, &coverage, &c.ClaimDescription,
		&c.CustomerBackground, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Claim{}, err
	}
	c.PolicyExpiredFlag = flag(expired)
	c.AtFaultFlag = flag(atFault)
	c.ClaimReportedToPoliceFlag = flag(reported)
	c.LicenseTypeMissingFlag = flag(licenseMissing)
	if approval.Valid {
		c.ApprovalFlag = &approval.Bool
	}
	if coverage.Valid {
		c.CoverageAmount = &coverage.Float64
	}
	return c, nil
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) CreateClaim(ctx context.Context, c Claim) (Claim, error) {
	if err := c.Features.Validate(); err != nil {
		return Claim{}, err
	}
	c.ID = uuid.NewString()
	row := s.db.QueryRowContext(ctx, `INSERT INTO claims (id, ic_number, age, months_as_customer, vehicle_age_years,
		vehicle_make, policy_expired_flag, deductible_amount, market_value, damage_severity_score, repair_amount,
		at_fault_flag, time_to_report_days, claim_reported_to_police_flag, license_type_missing_flag,
		num_third_parties, num_witnesses, approval_flag, coverage_amount, claim_description, customer_background)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING `+claimColumns,
		c.ID, c.ICNumber, c.Age, c.MonthsAsCustomer, c.VehicleAgeYears,
		c.VehicleMake, c.PolicyExpiredFlag == 1, c.DeductibleAmount, c.MarketValue, c.DamageSeverityScore, c.RepairAmount,
		c.AtFaultFlag == 1, c.TimeToReportDays, c.ClaimReportedToPoliceFlag == 1, c.LicenseTypeMissingFlag == 1,
		c.NumThirdParties, c.NumWitnesses, c.ApprovalFlag, c.CoverageAmount, c.ClaimDescription, c.CustomerBackground)
	out, err := scanClaim(row)
	if err != nil {
		return Claim{}, translate(err)
	}
	return out, nil
}

func (s *Store) GetClaim(ctx context.Context, id string) (Claim, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Claim{}, errNotFound
	}
	out, err := scanClaim(s.db.QueryRowContext(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, id))
	if err != nil {
		return Claim{}, translate(err)
	}
	return out, nil
}

// UpdateClaim replaces every client-writable column of claim id.
func (s *Store) UpdateClaim(ctx context.Context, id string, c Claim) (Claim, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Claim{}, errNotFound
	}
	if err := c.Features.Validate(); err != nil {
		return Claim{}, err
	}
	row := s.db.QueryRowContext(ctx, `UPDATE claims SET ic_number = $2, age = $3, months_as_customer = $4,
		vehicle_age_years = $5, vehicle_make = $6, policy_expired_flag = $7, deductible_amount = $8,
		market_value = $9, damage_severity_score = $10, repair_amount = $11, at_fault_flag = $12,
		time_to_report_days = $13, claim_reported_to_police_flag = $14, license_type_missing_flag = $15,
		num_third_parties = $16, num_witnesses = $17, approval_flag = $18, coverage_amount = $19,
		claim_description = $20, customer_background = $21, updated_at = now()
		WHERE id = $1
		RETURNING `+claimColumns,
		id, c.ICNumber, c.Age, c.MonthsAsCustomer,
		c.VehicleAgeYears, c.VehicleMake, c.PolicyExpiredFlag == 1, c.DeductibleAmount,
		c.MarketValue, c.DamageSeverityScore, c.RepairAmount, c.AtFaultFlag == 1,
		c.TimeToReportDays, c.ClaimReportedToPoliceFlag == 1, c.LicenseTypeMissingFlag == 1,
		c.NumThirdParties, c.NumWitnesses, c.ApprovalFlag, c.CoverageAmount,
		c.ClaimDescription, c.CustomerBackground)
	out, err := scanClaim(row)
	if err != nil {
		return Claim{}, translate(err)
	}
	return out, nil
}

func (s *Store) DeleteClaim(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

// SetScoring records a scoring outcome. A nil coverage clears the column.
func (s *Store) SetScoring(ctx context.Context, id string, approved bool, coverage *float64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE claims SET approval_flag = $2, coverage_amount = $3, updated_at = now() WHERE id = $1`,
		id, approved, coverage)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

var errNotFound = apperr.New(apperr.NotFound, "claim not found")

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperr.Wrap(err, apperr.Conflict, "claim with this ic_number already exists")
		case "22P02", "23514":
			return apperr.Wrap(err, apperr.Validation, pgErr.Message)
		}
	}
	return fmt.Errorf("claims query: %w", err)
}
