package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/serviceplanpro/brandcolour/internal/colour"
)

// ErrNotFound is returned when a company has no stored branding.
var ErrNotFound = errors.New("branding not found")

// Branding is a company's saved widget colour scheme.
type Branding struct {
	CompanyID uuid.UUID     `json:"companyId"`
	Scheme    colour.Scheme `json:"scheme"`
	LogoRef   string        `json:"logoRef,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// BrandingRepository stores one scheme per company.
type BrandingRepository interface {
	Get(ctx context.Context, companyID uuid.UUID) (Branding, error)
	Save(ctx context.Context, b Branding) (Branding, error)
}

// BrandingDatabase is the SQL implementation of BrandingRepository.
type BrandingDatabase struct {
	db  *DB
	now func() time.Time
}

// NewBrandingDatabase creates a repository over an open, migrated connection.
func NewBrandingDatabase(db *DB) *BrandingDatabase {
	return &BrandingDatabase{db: db, now: time.Now}
}

// Get retrieves the branding of a company.
func (r *BrandingDatabase) Get(ctx context.Context, companyID uuid.UUID) (Branding, error) {
	query := r.db.Dialect.Rebind(`
		SELECT primary_color, secondary_color, accent_color, text_color, background_color, logo_ref, updated_at
		FROM company_branding
		WHERE company_id = ?`)

	b := Branding{CompanyID: companyID}
	var updatedAt string
	err := r.db.QueryRowContext(ctx, query, companyID.String()).Scan(
		&b.Scheme.Primary,
		&b.Scheme.Secondary,
		&b.Scheme.Accent,
		&b.Scheme.Text,
		&b.Scheme.Background,
		&b.LogoRef,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Branding{}, ErrNotFound
	}
	if err != nil {
		return Branding{}, fmt.Errorf("failed to get branding for %s: %w", companyID, err)
	}

	b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Branding{}, fmt.Errorf("invalid updated_at for %s: %w", companyID, err)
	}
	return b, nil
}

// Save inserts or replaces the branding of a company and stamps UpdatedAt.
func (r *BrandingDatabase) Save(ctx context.Context, b Branding) (Branding, error) {
	if b.CompanyID == uuid.Nil {
		return Branding{}, fmt.Errorf("company id is required")
	}
	if err := b.Scheme.Validate(); err != nil {
		return Branding{}, fmt.Errorf("invalid scheme: %w", err)
	}

	b.UpdatedAt = r.now().UTC()
	query := r.db.Dialect.Rebind(`
		INSERT INTO company_branding
			(company_id, primary_color, secondary_color, accent_color, text_color, background_color, logo_ref, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company_id) DO UPDATE SET
			primary_color = excluded.primary_color,
			secondary_color = excluded.secondary_color,
			accent_color = excluded.accent_color,
			text_color = excluded.text_color,
			background_color = excluded.background_color,
			logo_ref = excluded.logo_ref,
			updated_at = excluded.updated_at`)

	_, err := r.db.ExecContext(ctx, query,
		b.CompanyID.String(),
		b.Scheme.Primary,
		b.Scheme.Secondary,
		b.Scheme.Accent,
		b.Scheme.Text,
		b.Scheme.Background,
		b.LogoRef,
		b.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Branding{}, fmt.Errorf("failed to save branding for %s: %w", b.CompanyID, err)
	}
	return b, nil
}
