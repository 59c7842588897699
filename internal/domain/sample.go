package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// Status enumerates the lifecycle states of a SampleRecord. The stored value
// is the two-letter code.
type Status string

const (
	StatusActive   Status = "AC"
	StatusInactive Status = "IN"
	StatusPending  Status = "PE"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusPending}

// Label returns the human-readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusInactive:
		return "Inactive"
	case StatusPending:
		return "Pending"
	}
	return string(s)
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Column limits shared by validation and the schema.
const (
	TitleMaxLength        = 100
	SlugMaxLength         = 50
	EmailMaxLength        = 254
	URLMaxLength          = 200
	CodeMaxLength         = 10
	MACMaxLength          = 17
	SearchVectorMaxLength = 255
	HashLength            = 32
	PathMaxLength         = 100
	DecimalMaxDigits      = 10
	DecimalPlaces         = 2
	FloatMin              = 0
	FloatMax              = 100
)

// Upload prefixes for the file and image fields.
const (
	FileUploadDir  = "files/"
	ImageUploadDir = "images/"
)

// SampleRecord enumerates the supported field categories and constraints.
// Uniqueness of Title, Slug, Email, HashField and ID, and non-negativity of
// PositiveNum, are enforced by the database.
type SampleRecord struct {
	ID uuid.UUID `json:"id" db:"id"`

	// Text
	Title       string  `json:"title" db:"title" validate:"required,max=100"`
	Description *string `json:"description,omitempty" db:"description"`
	Slug        string  `json:"slug" db:"slug" validate:"required,max=50,slugchars"`
	Email       string  `json:"email" db:"email" validate:"required,max=254,email"`
	URL         string  `json:"url" db:"url" validate:"required,max=200,weburl"`
	Code        string  `json:"code" db:"code" validate:"required,max=10,twoupper"`

	// Numeric
	IntegerNum  int32           `json:"integer_num" db:"integer_num"`
	BigNumber   int64           `json:"big_number" db:"big_number"`
	DecimalNum  decimal.Decimal `json:"decimal_num" db:"decimal_num" validate:"decimal10_2"`
	FloatNum    float64         `json:"float_num" db:"float_num" validate:"gte=0,lte=100"`
	PositiveNum int64           `json:"positive_num" db:"positive_num"`
	SmallNum    int16           `json:"small_num" db:"small_num"`

	// Temporal
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	OnlyDate  time.Time     `json:"only_date" db:"only_date"`
	OnlyTime  time.Time     `json:"only_time" db:"only_time"`
	Duration  time.Duration `json:"duration" db:"duration"`

	// Boolean
	IsActive   bool  `json:"is_active" db:"is_active"`
	IsOptional *bool `json:"is_optional,omitempty" db:"is_optional"`

	// Binary and uploads
	BinaryData []byte  `json:"binary_data,omitempty" db:"binary_data"`
	File       *string `json:"file,omitempty" db:"file" validate:"omitempty,max=100"`
	Image      *string `json:"image,omitempty" db:"image" validate:"omitempty,max=100"`
	FilePath   *string `json:"file_path,omitempty" db:"file_path" validate:"omitempty,max=100"`

	// Special
	IPAddress  string         `json:"ip_address" db:"ip_address" validate:"required,ip"`
	JSONData   map[string]any `json:"json_data" db:"json_data"`
	ArrayField []any          `json:"array_field" db:"array_field"`
	MACAddress string         `json:"mac_address" db:"mac_address" validate:"required,max=17,hexpairmac"`

	Status       Status `json:"status" db:"status" validate:"required,status"`
	SearchVector string `json:"search_vector" db:"search_vector" validate:"max=255"`
	HashField    string `json:"hash_field" db:"hash_field" validate:"len=32"`
}

// String renders the record as "title (code)".
func (r *SampleRecord) String() string {
	return fmt.Sprintf("%s (%s)", r.Title, r.Code)
}

// ApplyDefaults fills the values a freshly constructed record starts with:
// a random identifier, Active status and an empty JSON object.
func (r *SampleRecord) ApplyDefaults() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	if r.JSONData == nil {
		r.JSONData = map[string]any{}
	}
}

// EnsureSlug derives the slug from the title when it is empty. A slug that
// is already set is never touched, even if the title changed since.
func (r *SampleRecord) EnsureSlug() {
	if r.Slug == "" {
		r.Slug = Slugify(r.Title)
	}
}

// slugWordRunes are the runes slug.Make spells out as English words.
// They are punctuation here and become separators like any other.
var slugWordRunes = strings.NewReplacer("&", " ", "@", " ")

// Slugify converts s to a lowercase, hyphen-separated ASCII slug no longer
// than SlugMaxLength.
func Slugify(s string) string {
	out := slug.Make(slugWordRunes.Replace(s))
	if len(out) > SlugMaxLength {
		out = strings.TrimRight(out[:SlugMaxLength], "-")
	}
	return out
}
