package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignite/coreapp/internal/admin"
	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/pkg/httputil"
	"github.com/ignite/coreapp/internal/service/sample"
)

// uploadField is the multipart form field carrying a file or image.
const uploadField = "upload"

// sampleInput is the writable shape of a sample record. Dates, times and
// durations travel as text; file and image are set through the upload
// endpoints only.
type sampleInput struct {
	Title        string          `json:"title"`
	Description  *string         `json:"description"`
	Slug         string          `json:"slug"`
	Email        string          `json:"email"`
	URL          string          `json:"url"`
	Code         string          `json:"code"`
	IntegerNum   int32           `json:"integer_num"`
	BigNumber    int64           `json:"big_number"`
	DecimalNum   decimal.Decimal `json:"decimal_num"`
	FloatNum     float64         `json:"float_num"`
	PositiveNum  int64           `json:"positive_num"`
	SmallNum     int16           `json:"small_num"`
	OnlyDate     string          `json:"only_date"`
	OnlyTime     string          `json:"only_time"`
	Duration     string          `json:"duration"`
	IsActive     *bool           `json:"is_active"`
	IsOptional   *bool           `json:"is_optional"`
	BinaryData   []byte          `json:"binary_data"`
	FilePath     *string         `json:"file_path"`
	IPAddress    string          `json:"ip_address"`
	JSONData     map[string]any  `json:"json_data"`
	ArrayField   []any           `json:"array_field"`
	MACAddress   string          `json:"mac_address"`
	Status       domain.Status   `json:"status"`
	SearchVector string          `json:"search_vector"`
	HashField    string          `json:"hash_field"`
}

var timeLayouts = []string{"15:04:05.999999", "15:04"}

// apply copies the input onto r. Unparseable temporal values are reported
// as field validation errors.
func (in *sampleInput) apply(r *domain.SampleRecord) error {
	fields := make(map[string]string)

	if in.OnlyDate == "" {
		fields["only_date"] = "this field is required"
	} else if d, err := time.Parse("2006-01-02", in.OnlyDate); err != nil {
		fields["only_date"] = "enter a valid date (YYYY-MM-DD)"
	} else {
		r.OnlyDate = d
	}

	if in.OnlyTime == "" {
		fields["only_time"] = "this field is required"
	} else {
		parsed := false
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, in.OnlyTime); err == nil {
				r.OnlyTime, parsed = t, true
				break
			}
		}
		if !parsed {
			fields["only_time"] = "enter a valid time (HH:MM[:SS])"
		}
	}

	if in.Duration == "" {
		fields["duration"] = "this field is required"
	} else if d, err := time.ParseDuration(in.Duration); err != nil {
		fields["duration"] = "enter a valid duration such as 1h30m"
	} else {
		r.Duration = d
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}

	r.Title = in.Title
	r.Description = in.Description
	r.Slug = in.Slug
	r.Email = in.Email
	r.URL = in.URL
	r.Code = in.Code
	r.IntegerNum = in.IntegerNum
	r.BigNumber = in.BigNumber
	r.DecimalNum = in.DecimalNum
	r.FloatNum = in.FloatNum
	r.PositiveNum = in.PositiveNum
	r.SmallNum = in.SmallNum
	r.IsActive = in.IsActive == nil || *in.IsActive
	r.IsOptional = in.IsOptional
	r.BinaryData = in.BinaryData
	r.FilePath = in.FilePath
	r.IPAddress = in.IPAddress
	r.JSONData = in.JSONData
	r.ArrayField = in.ArrayField
	r.MACAddress = in.MACAddress
	r.Status = in.Status
	r.SearchVector = in.SearchVector
	r.HashField = in.HashField
	return nil
}

// sampleDetail is the edit-form view of one sample record.
type sampleDetail struct {
	ID       uuid.UUID       `json:"id"`
	Display  string          `json:"display"`
	Sections []admin.Section `json:"sections"`
}

func (h *Handlers) sampleAdmin() admin.ModelAdmin {
	if m, err := h.site.Get(admin.SampleAdmin.Name); err == nil {
		return m
	}
	return admin.SampleAdmin
}

func (h *Handlers) sampleDetail(rec *domain.SampleRecord) sampleDetail {
	return sampleDetail{
		ID:       rec.ID,
		Display:  rec.String(),
		Sections: h.sampleAdmin().Sections(admin.SampleFields(rec)),
	}
}

func sampleID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// ListSamples returns one page of sample rows, newest first.
//
//	GET /admin/samples?page=&limit=&q=&status=
func (h *Handlers) ListSamples(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r, h.config.DefaultLimit, h.config.MaxLimit)
	status := domain.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		httputil.ValidationFailed(w, map[string]string{"status": "select a valid status"})
		return
	}

	records, total, err := h.samples.List(r.Context(), sample.ListFilter{
		Status: status,
		Search: p.Search,
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	m := h.sampleAdmin()
	rows := make([]map[string]any, 0, len(records))
	for i := range records {
		row := m.Row(admin.SampleFields(&records[i]))
		row["id"] = records[i].ID
		rows = append(rows, row)
	}
	httputil.OK(w, NewPaginatedResponse(rows, p, total))
}

// CreateSample creates a sample record. A missing slug is derived from the
// title.
//
//	POST /admin/samples
func (h *Handlers) CreateSample(w http.ResponseWriter, r *http.Request) {
	var in sampleInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	rec := &domain.SampleRecord{}
	if err := in.apply(rec); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.samples.Create(r.Context(), rec); err != nil {
		writeServiceError(w, err)
		return
	}
	logAdminAction(r, "sample created", "sample_id", rec.ID)
	httputil.Created(w, h.sampleDetail(rec))
}

// GetSample returns one sample record grouped into its fieldsets.
//
//	GET /admin/samples/{id}
func (h *Handlers) GetSample(w http.ResponseWriter, r *http.Request) {
	id, ok := sampleID(r)
	if !ok {
		httputil.NotFound(w, "sample record not found")
		return
	}
	rec, err := h.samples.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, h.sampleDetail(rec))
}

// UpdateSample replaces the writable fields of a sample record. The stored
// file, image and creation time are kept.
//
//	PUT /admin/samples/{id}
func (h *Handlers) UpdateSample(w http.ResponseWriter, r *http.Request) {
	id, ok := sampleID(r)
	if !ok {
		httputil.NotFound(w, "sample record not found")
		return
	}
	var in sampleInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	rec, err := h.samples.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := in.apply(rec); err != nil {
		writeServiceError(w, err)
		return
	}
	if rec.Status == "" {
		rec.Status = domain.StatusActive
	}
	if err := h.samples.Update(r.Context(), rec); err != nil {
		writeServiceError(w, err)
		return
	}
	logAdminAction(r, "sample updated", "sample_id", rec.ID)
	httputil.OK(w, h.sampleDetail(rec))
}

// DeleteSample removes a sample record. Stored uploads are left in place.
//
//	DELETE /admin/samples/{id}
func (h *Handlers) DeleteSample(w http.ResponseWriter, r *http.Request) {
	id, ok := sampleID(r)
	if !ok {
		httputil.NotFound(w, "sample record not found")
		return
	}
	if err := h.samples.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	logAdminAction(r, "sample deleted", "sample_id", id)
	httputil.NoContent(w)
}

// ListFilePathChoices returns the values accepted for file_path.
//
//	GET /admin/samples/file-paths
func (h *Handlers) ListFilePathChoices(w http.ResponseWriter, r *http.Request) {
	choices, err := h.samples.FilePathChoices()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if choices == nil {
		choices = []string{}
	}
	httputil.OK(w, map[string]any{"choices": choices})
}

// UploadSampleFile stores the multipart "upload" part as the record's file.
//
//	POST /admin/samples/{id}/file
func (h *Handlers) UploadSampleFile(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.samples.AttachFile)
}

// UploadSampleImage stores the multipart "upload" part as the record's
// image. The upload must decode as an image.
//
//	POST /admin/samples/{id}/image
func (h *Handlers) UploadSampleImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.samples.AttachImage)
}

type attachFunc func(ctx context.Context, id uuid.UUID, filename string, body io.Reader) (*domain.SampleRecord, error)

func (h *Handlers) upload(w http.ResponseWriter, r *http.Request, attach attachFunc) {
	id, ok := sampleID(r)
	if !ok {
		httputil.NotFound(w, "sample record not found")
		return
	}

	// Leave room for multipart framing around the part itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.ValidationFailed(w, map[string]string{uploadField: "upload is too large"})
			return
		}
		httputil.BadRequest(w, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		httputil.ValidationFailed(w, map[string]string{uploadField: "no file was submitted"})
		return
	}
	defer file.Close()

	rec, err := attach(r.Context(), id, header.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logAdminAction(r, "sample upload stored", "sample_id", rec.ID, "filename", header.Filename)
	httputil.OK(w, h.sampleDetail(rec))
}

// DownloadSampleFile serves the record's stored file as an attachment.
//
//	GET /admin/samples/{id}/file
func (h *Handlers) DownloadSampleFile(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, sample.FieldFile)
}

// DownloadSampleImage serves the record's stored image.
//
//	GET /admin/samples/{id}/image
func (h *Handlers) DownloadSampleImage(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, sample.FieldImage)
}

func (h *Handlers) download(w http.ResponseWriter, r *http.Request, field sample.UploadField) {
	id, ok := sampleID(r)
	if !ok {
		httputil.NotFound(w, "sample record not found")
		return
	}
	d, err := h.samples.Download(r.Context(), id, field)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(path.Base(d.Key)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Data)
}
