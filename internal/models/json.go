package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// JSONMap stores a small key/value bag as a JSONB column. It is reserved for
// open-ended display metadata; anything structural gets its own column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	return b, errors.WithStack(err)
}

func (m *JSONMap) Scan(src any) error {
	return scanJSON(src, m)
}

// QuoteLine is one itemized entry of a provider quote.
type QuoteLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// QuoteLines stores ordered quote line items as a JSONB column.
type QuoteLines []QuoteLine

func (l QuoteLines) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(l)
	return b, errors.WithStack(err)
}

func (l *QuoteLines) Scan(src any) error {
	return scanJSON(src, l)
}

// Photo describes one uploaded property photo.
type Photo struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

// PhotoList stores property photos as a JSONB column.
type PhotoList []Photo

func (p PhotoList) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(p)
	return b, errors.WithStack(err)
}

func (p *PhotoList) Scan(src any) error {
	return scanJSON(src, p)
}

// StringList stores a list of short strings as a JSONB column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(s)
	return b, errors.WithStack(err)
}

func (s *StringList) Scan(src any) error {
	return scanJSON(src, s)
}

func scanJSON(src, dst any) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return errors.WithStack(json.Unmarshal(v, dst))
	case string:
		return errors.WithStack(json.Unmarshal([]byte(v), dst))
	default:
		return errors.Errorf("unsupported JSON column source %T", src)
	}
}
