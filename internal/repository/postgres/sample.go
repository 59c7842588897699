package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/service/sample"
)

// SampleRepo implements sample.Repository against the all_type_fields table.
type SampleRepo struct{ db *sql.DB }

// NewSampleRepo creates a Postgres-backed sample record repository.
func NewSampleRepo(db *sql.DB) *SampleRepo { return &SampleRepo{db: db} }

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05.999999"
)

// Temporal and network columns are read back as text or microseconds so
// scanning does not depend on driver type mapping.
const sampleSelect = `
	SELECT id, title, description, slug, email, url, code,
	       integer_num, big_number, decimal_num, float_num, positive_num, small_num,
	       created_at, only_date::text, only_time::text,
	       (EXTRACT(EPOCH FROM duration) * 1000000)::bigint,
	       is_active, is_optional, binary_data, file, image, file_path,
	       host(ip_address), json_data, array_field, mac_address,
	       status, search_vector, hash_field
	FROM all_type_fields`

// sampleWriteColumns lists the columns written on insert and update, in
// the order produced by sampleArgs. Placeholders carry casts for the
// columns sent as text.
var sampleWriteColumns = []struct{ name, cast string }{
	{"title", ""}, {"description", ""}, {"slug", ""}, {"email", ""}, {"url", ""}, {"code", ""},
	{"integer_num", ""}, {"big_number", ""}, {"decimal_num", ""}, {"float_num", ""}, {"positive_num", ""}, {"small_num", ""},
	{"only_date", "::date"}, {"only_time", "::time"}, {"duration", "::interval"},
	{"is_active", ""}, {"is_optional", ""}, {"binary_data", ""}, {"file", ""}, {"image", ""}, {"file_path", ""},
	{"ip_address", "::inet"}, {"json_data", "::jsonb"}, {"array_field", "::jsonb"}, {"mac_address", ""},
	{"status", ""}, {"search_vector", ""}, {"hash_field", ""},
}

func (r *SampleRepo) Create(ctx context.Context, rec *domain.SampleRecord) error {
	args, err := sampleArgs(rec)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(sampleWriteColumns)+1)
	holders := make([]string, 0, len(sampleWriteColumns)+1)
	names = append(names, "id")
	holders = append(holders, "$1")
	for i, c := range sampleWriteColumns {
		names = append(names, c.name)
		holders = append(holders, fmt.Sprintf("$%d%s", i+2, c.cast))
	}
	query := fmt.Sprintf(`INSERT INTO all_type_fields (%s) VALUES (%s) RETURNING created_at`,
		strings.Join(names, ", "), strings.Join(holders, ", "))

	err = r.db.QueryRowContext(ctx, query, append([]interface{}{rec.ID}, args...)...).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("create sample record: %w", err)
	}
	return nil
}

func (r *SampleRepo) Update(ctx context.Context, rec *domain.SampleRecord) error {
	args, err := sampleArgs(rec)
	if err != nil {
		return err
	}
	sets := make([]string, 0, len(sampleWriteColumns))
	for i, c := range sampleWriteColumns {
		sets = append(sets, fmt.Sprintf("%s = $%d%s", c.name, i+2, c.cast))
	}
	query := fmt.Sprintf(`UPDATE all_type_fields SET %s WHERE id = $1 RETURNING created_at`,
		strings.Join(sets, ", "))

	err = r.db.QueryRowContext(ctx, query, append([]interface{}{rec.ID}, args...)...).Scan(&rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sample.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update sample record: %w", err)
	}
	return nil
}

func (r *SampleRepo) Get(ctx context.Context, id uuid.UUID) (*domain.SampleRecord, error) {
	rec, err := scanSample(r.db.QueryRowContext(ctx, sampleSelect+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sample.ErrNotFound
	}
	return rec, err
}

func (r *SampleRepo) List(ctx context.Context, f sample.ListFilter) ([]domain.SampleRecord, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR search_vector ILIKE $%d)", len(args), len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM all_type_fields`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sample records: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = total
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`%s%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		sampleSelect, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sample records: %w", err)
	}
	defer rows.Close()

	var out []domain.SampleRecord
	for rows.Next() {
		rec, err := scanSample(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}

func (r *SampleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM all_type_fields WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sample record: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sample.ErrNotFound
	}
	return nil
}

func sampleArgs(rec *domain.SampleRecord) ([]interface{}, error) {
	jsonData := rec.JSONData
	if jsonData == nil {
		jsonData = map[string]any{}
	}
	jsonBytes, err := json.Marshal(jsonData)
	if err != nil {
		return nil, fmt.Errorf("encode json_data: %w", err)
	}
	var arrayArg interface{}
	if rec.ArrayField != nil {
		b, err := json.Marshal(rec.ArrayField)
		if err != nil {
			return nil, fmt.Errorf("encode array_field: %w", err)
		}
		arrayArg = string(b)
	}
	var binaryArg interface{}
	if rec.BinaryData != nil {
		binaryArg = rec.BinaryData
	}

	return []interface{}{
		rec.Title, rec.Description, rec.Slug, rec.Email, rec.URL, rec.Code,
		rec.IntegerNum, rec.BigNumber, rec.DecimalNum, rec.FloatNum, rec.PositiveNum, rec.SmallNum,
		rec.OnlyDate.Format(dateLayout), rec.OnlyTime.Format(timeLayout),
		fmt.Sprintf("%d microseconds", rec.Duration.Microseconds()),
		rec.IsActive, rec.IsOptional, binaryArg, rec.File, rec.Image, rec.FilePath,
		rec.IPAddress, string(jsonBytes), arrayArg, rec.MACAddress,
		string(rec.Status), rec.SearchVector, rec.HashField,
	}, nil
}

func scanSample(row rowScanner) (*domain.SampleRecord, error) {
	var (
		rec                    domain.SampleRecord
		description            sql.NullString
		onlyDate, onlyTime, ip string
		durationMicros         int64
		isOptional             sql.NullBool
		file, image, filePath  sql.NullString
		jsonData, arrayField   []byte
		status                 string
	)
	err := row.Scan(
		&rec.ID, &rec.Title, &description, &rec.Slug, &rec.Email, &rec.URL, &rec.Code,
		&rec.IntegerNum, &rec.BigNumber, &rec.DecimalNum, &rec.FloatNum, &rec.PositiveNum, &rec.SmallNum,
		&rec.CreatedAt, &onlyDate, &onlyTime, &durationMicros,
		&rec.IsActive, &isOptional, &rec.BinaryData, &file, &image, &filePath,
		&ip, &jsonData, &arrayField, &rec.MACAddress,
		&status, &rec.SearchVector, &rec.HashField,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan sample record: %w", err)
	}

	if rec.OnlyDate, err = time.Parse(dateLayout, onlyDate); err != nil {
		return nil, fmt.Errorf("parse only_date %q: %w", onlyDate, err)
	}
	if rec.OnlyTime, err = time.Parse(timeLayout, onlyTime); err != nil {
		return nil, fmt.Errorf("parse only_time %q: %w", onlyTime, err)
	}
	rec.Duration = time.Duration(durationMicros) * time.Microsecond
	rec.IPAddress = domain.NormalizeIP(ip)
	rec.Status = domain.Status(status)
	rec.Description = nullString(description)
	rec.File = nullString(file)
	rec.Image = nullString(image)
	rec.FilePath = nullString(filePath)
	if isOptional.Valid {
		b := isOptional.Bool
		rec.IsOptional = &b
	}

	if len(jsonData) > 0 {
		if err := json.Unmarshal(jsonData, &rec.JSONData); err != nil {
			return nil, fmt.Errorf("decode json_data: %w", err)
		}
	}
	if rec.JSONData == nil {
		rec.JSONData = map[string]any{}
	}
	if arrayField != nil {
		if err := json.Unmarshal(arrayField, &rec.ArrayField); err != nil {
			return nil, fmt.Errorf("decode array_field: %w", err)
		}
	}
	return &rec, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
