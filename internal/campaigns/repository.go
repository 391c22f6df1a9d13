package campaigns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/models"
)

// Repository handles campaign, ad and assignment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a campaign repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const campaignColumns = `c.id, c.name, c.starts_at, c.ends_at, c.created_at, c.updated_at`

const adColumns = `id, campaign_id, name, kind, media_url, media_key, file_name, display_seconds, starts_at, ends_at, created_at`

func scanCampaign(row pgx.Row) (models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Window.Start, &c.Window.End, &c.CreatedAt, &c.UpdatedAt)
	c.Ads = []models.AdMedia{}
	c.AssignedTVIDs = []string{}
	return c, err
}

func scanAd(row pgx.Row) (models.AdMedia, error) {
	var (
		a          models.AdMedia
		kind       string
		start, end *time.Time
	)
	if err := row.Scan(&a.ID, &a.CampaignID, &a.Name, &kind, &a.MediaURL, &a.MediaKey, &a.FileName,
		&a.DisplaySeconds, &start, &end, &a.CreatedAt); err != nil {
		return a, err
	}
	a.Kind = models.MediaKind(kind)
	if start != nil && end != nil {
		a.Window = &models.Interval{Start: *start, End: *end}
	}
	return a, nil
}

func adWindowArgs(a *models.AdMedia) (start, end *time.Time) {
	if a.Window == nil {
		return nil, nil
	}
	return &a.Window.Start, &a.Window.End
}

// listCampaigns runs a campaign query and fills in ads and assigned TV ids.
func (r *Repository) listCampaigns(ctx context.Context, q string, args ...any) ([]models.Campaign, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Campaign, error) {
		return scanCampaign(row)
	})
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) hydrate(ctx context.Context, list []models.Campaign) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*models.Campaign, len(list))
	for i := range list {
		ids[i] = list[i].ID
		byID[list[i].ID] = &list[i]
	}

	rows, err := r.pool.Query(ctx, `SELECT `+adColumns+` FROM ads WHERE campaign_id = ANY($1) ORDER BY name, id`, ids)
	if err != nil {
		return fmt.Errorf("load ads: %w", err)
	}
	ads, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AdMedia, error) {
		return scanAd(row)
	})
	if err != nil {
		return fmt.Errorf("load ads: %w", err)
	}
	for _, a := range ads {
		c := byID[a.CampaignID]
		c.Ads = append(c.Ads, a)
	}

	rows, err = r.pool.Query(ctx, `SELECT campaign_id, tv_id FROM campaign_tvs WHERE campaign_id = ANY($1) ORDER BY tv_id`, ids)
	if err != nil {
		return fmt.Errorf("load assignments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var campaignID, tvID string
		if err := rows.Scan(&campaignID, &tvID); err != nil {
			return err
		}
		c := byID[campaignID]
		c.AssignedTVIDs = append(c.AssignedTVIDs, tvID)
	}
	return rows.Err()
}

// ListCampaignsAssignedTo returns every campaign linked to tvID, ads and TV ids populated.
func (r *Repository) ListCampaignsAssignedTo(ctx context.Context, tvID string) ([]models.Campaign, error) {
	const q = `SELECT ` + campaignColumns + ` FROM campaigns c
		JOIN campaign_tvs ct ON ct.campaign_id = c.id
		WHERE ct.tv_id = $1 ORDER BY c.id`
	return r.listCampaigns(ctx, q, tvID)
}

// ListCampaigns returns all campaigns, newest window first.
func (r *Repository) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	const q = `SELECT ` + campaignColumns + ` FROM campaigns c ORDER BY c.starts_at DESC, c.id`
	return r.listCampaigns(ctx, q)
}

// GetCampaign returns a campaign by id.
func (r *Repository) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	const q = `SELECT ` + campaignColumns + ` FROM campaigns c WHERE c.id = $1`
	list, err := r.listCampaigns(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errs.NotFound("campaign", id)
	}
	return &list[0], nil
}

// CreateCampaign inserts a campaign with a generated id.
func (r *Repository) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	const q = `INSERT INTO campaigns (id, name, starts_at, ends_at) VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	c.ID = uuid.NewString()
	if err := r.pool.QueryRow(ctx, q, c.ID, c.Name, c.Window.Start, c.Window.End).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	if c.Ads == nil {
		c.Ads = []models.AdMedia{}
	}
	if c.AssignedTVIDs == nil {
		c.AssignedTVIDs = []string{}
	}
	return nil
}

// UpdateCampaign writes name and window.
func (r *Repository) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	const q = `UPDATE campaigns SET name = $1, starts_at = $2, ends_at = $3, updated_at = NOW()
		WHERE id = $4 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, c.Name, c.Window.Start, c.Window.End, c.ID).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NotFound("campaign", c.ID)
	}
	return err
}

// DeleteCampaign removes a campaign with its ads and assignments and returns the removed ads.
func (r *Repository) DeleteCampaign(ctx context.Context, id string) ([]models.AdMedia, error) {
	var removed []models.AdMedia
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+adColumns+` FROM ads WHERE campaign_id = $1 ORDER BY name, id`, id)
		if err != nil {
			return err
		}
		removed, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AdMedia, error) {
			return scanAd(row)
		})
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errs.NotFound("campaign", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// CreateAd inserts an ad with a generated id.
func (r *Repository) CreateAd(ctx context.Context, a *models.AdMedia) error {
	const q = `INSERT INTO ads (id, campaign_id, name, kind, media_url, media_key, file_name, display_seconds, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`
	a.ID = uuid.NewString()
	start, end := adWindowArgs(a)
	err := r.pool.QueryRow(ctx, q, a.ID, a.CampaignID, a.Name, string(a.Kind), a.MediaURL, a.MediaKey, a.FileName,
		a.DisplaySeconds, start, end).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}
	return nil
}

// GetAd returns an ad of a campaign.
func (r *Repository) GetAd(ctx context.Context, campaignID, adID string) (*models.AdMedia, error) {
	const q = `SELECT ` + adColumns + ` FROM ads WHERE campaign_id = $1 AND id = $2`
	a, err := scanAd(r.pool.QueryRow(ctx, q, campaignID, adID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("ad", adID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAd writes every mutable ad field.
func (r *Repository) UpdateAd(ctx context.Context, a *models.AdMedia) error {
	const q = `UPDATE ads SET name = $1, kind = $2, media_url = $3, media_key = $4, file_name = $5,
		display_seconds = $6, starts_at = $7, ends_at = $8
		WHERE campaign_id = $9 AND id = $10`
	start, end := adWindowArgs(a)
	tag, err := r.pool.Exec(ctx, q, a.Name, string(a.Kind), a.MediaURL, a.MediaKey, a.FileName,
		a.DisplaySeconds, start, end, a.CampaignID, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("ad", a.ID)
	}
	return nil
}

// DeleteAd removes an ad and returns it.
func (r *Repository) DeleteAd(ctx context.Context, campaignID, adID string) (*models.AdMedia, error) {
	const q = `DELETE FROM ads WHERE campaign_id = $1 AND id = $2 RETURNING ` + adColumns
	a, err := scanAd(r.pool.QueryRow(ctx, q, campaignID, adID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("ad", adID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAssignment links a campaign to a TV. created is false when the edge already existed.
func (r *Repository) CreateAssignment(ctx context.Context, campaignID, tvID string) (bool, error) {
	const q = `INSERT INTO campaign_tvs (campaign_id, tv_id) VALUES ($1, $2)
		ON CONFLICT (campaign_id, tv_id) DO NOTHING`
	tag, err := r.pool.Exec(ctx, q, campaignID, tvID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteAssignment removes the edge or returns errs.ErrNotFound.
func (r *Repository) DeleteAssignment(ctx context.Context, campaignID, tvID string) error {
	const q = `DELETE FROM campaign_tvs WHERE campaign_id = $1 AND tv_id = $2`
	tag, err := r.pool.Exec(ctx, q, campaignID, tvID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("assignment", campaignID+"/"+tvID)
	}
	return nil
}

// Stats returns the dashboard counters.
func (r *Repository) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM tvs),
		(SELECT COUNT(*) FROM campaigns),
		(SELECT COUNT(*) FROM campaigns WHERE starts_at <= $1 AND ends_at >= $1)`
	var s Stats
	if err := r.pool.QueryRow(ctx, q, now).Scan(&s.TVs, &s.Campaigns, &s.ActiveCampaigns); err != nil {
		return nil, err
	}
	return &s, nil
}
