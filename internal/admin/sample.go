package admin

import "github.com/ignite/coreapp/internal/domain"

// SampleAdmin lists sample records newest first by their display string.
var SampleAdmin = ModelAdmin{
	Name:        "samples",
	Ordering:    []string{"-created_at"},
	ListDisplay: []string{StrField},
	Fieldsets: []Fieldset{
		{Title: "Text", Fields: []string{"title", "description", "slug", "email", "url", "code"}},
		{Title: "Numeric", Fields: []string{"integer_num", "big_number", "decimal_num", "float_num", "positive_num", "small_num"}},
		{Title: "Temporal", Fields: []string{"created_at", "only_date", "only_time", "duration"}},
		{Title: "Boolean", Fields: []string{"is_active", "is_optional"}},
		{Title: "Files", Fields: []string{"binary_data", "file", "image", "file_path"}},
		{Title: "Special", Fields: []string{"ip_address", "json_data", "array_field", "mac_address"}},
		{Title: "Status", Fields: []string{"status", "search_vector", "hash_field"}},
	},
}

// SampleFields flattens r into the admin field map. Dates, times and
// durations are rendered in their column text form.
func SampleFields(r *domain.SampleRecord) map[string]any {
	return map[string]any{
		"id":            r.ID,
		StrField:        r.String(),
		"title":         r.Title,
		"description":   r.Description,
		"slug":          r.Slug,
		"email":         r.Email,
		"url":           r.URL,
		"code":          r.Code,
		"integer_num":   r.IntegerNum,
		"big_number":    r.BigNumber,
		"decimal_num":   r.DecimalNum.StringFixed(domain.DecimalPlaces),
		"float_num":     r.FloatNum,
		"positive_num":  r.PositiveNum,
		"small_num":     r.SmallNum,
		"created_at":    r.CreatedAt,
		"only_date":     r.OnlyDate.Format("2006-01-02"),
		"only_time":     r.OnlyTime.Format("15:04:05.999999"),
		"duration":      r.Duration.String(),
		"is_active":     r.IsActive,
		"is_optional":   r.IsOptional,
		"binary_data":   r.BinaryData,
		"file":          r.File,
		"image":         r.Image,
		"file_path":     r.FilePath,
		"ip_address":    r.IPAddress,
		"json_data":     r.JSONData,
		"array_field":   r.ArrayField,
		"mac_address":   r.MACAddress,
		"status":        map[string]string{"value": string(r.Status), "label": r.Status.Label()},
		"search_vector": r.SearchVector,
		"hash_field":    r.HashField,
	}
}
