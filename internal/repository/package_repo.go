package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	domainerrors "github.com/Cheertaboi/tips-console/internal/errors"
	"github.com/Cheertaboi/tips-console/internal/models"
)

type PackageRepo struct {
	db *sql.DB
}

func NewPackageRepo(db *sql.DB) *PackageRepo {
	return &PackageRepo{db: db}
}

// ListPackages returns every package with its tip list in position order.
func (r *PackageRepo) ListPackages(ctx context.Context) ([]models.Package, error) {
	query := `
		SELECT id, name, description, price, status, revision, updated_at
		FROM packages
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	defer rows.Close()

	pkgs := []models.Package{}
	for rows.Next() {
		var p models.Package
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Status, &p.Revision, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		p.Tips = []models.Tip{}
		pkgs = append(pkgs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return pkgs, nil
	}

	ids := make([]string, len(pkgs))
	index := make(map[string]int, len(pkgs))
	for i, p := range pkgs {
		ids[i] = p.ID
		index[p.ID] = i
	}

	tips, err := r.packageTips(ctx, ids)
	if err != nil {
		return nil, err
	}
	for pkgID, list := range tips {
		if i, ok := index[pkgID]; ok {
			pkgs[i].Tips = list
		}
	}
	for i := range pkgs {
		pkgs[i].TipCount = len(pkgs[i].Tips)
	}
	return pkgs, nil
}

func (r *PackageRepo) packageTips(ctx context.Context, packageIDs []string) (map[string][]models.Tip, error) {
	query := `
		SELECT package_id, id, source_id, match_id, match_name, league,
		       prediction, odds, risk, status, tip_date
		FROM package_tips
		WHERE package_id = ANY($1)
		ORDER BY package_id, position
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(packageIDs))
	if err != nil {
		return nil, fmt.Errorf("query package tips: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Tip, len(packageIDs))
	for rows.Next() {
		var (
			pkgID string
			t     models.Tip
		)
		if err := rows.Scan(
			&pkgID,
			&t.ID,
			&t.SourceID,
			&t.MatchID,
			&t.Match,
			&t.League,
			&t.Prediction,
			&t.Odds,
			&t.Risk,
			&t.Status,
			&t.Date,
		); err != nil {
			return nil, fmt.Errorf("scan package tip: %w", err)
		}
		out[pkgID] = append(out[pkgID], t)
	}
	return out, rows.Err()
}

// ReplacePackageTips stores p's tip list and revision. Writes carrying a
// revision not newer than the stored one are ignored, so mutations delivered
// out of order never roll a package back.
func (r *PackageRepo) ReplacePackageTips(ctx context.Context, p models.Package) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		var stored int
		err := tx.QueryRowContext(ctx, `SELECT revision FROM packages WHERE id = $1 FOR UPDATE`, p.ID).Scan(&stored)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domainerrors.NotFoundf("package %s not found", p.ID)
			}
			return fmt.Errorf("get lock: %w", err)
		}
		if p.Revision <= stored {
			return nil
		}

		ids := make([]string, len(p.Tips))
		for i, t := range p.Tips {
			ids[i] = t.ID
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM package_tips WHERE package_id = $1 AND id <> ALL($2)`,
			p.ID, pq.Array(ids),
		); err != nil {
			return fmt.Errorf("delete removed package tips: %w", err)
		}

		upsert := `
			INSERT INTO package_tips (package_id, id, position, source_id, match_id, match_name,
			                          league, prediction, odds, risk, status, tip_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (package_id, id) DO UPDATE
			SET position = EXCLUDED.position,
			    source_id = EXCLUDED.source_id,
			    match_id = EXCLUDED.match_id,
			    match_name = EXCLUDED.match_name,
			    league = EXCLUDED.league,
			    prediction = EXCLUDED.prediction,
			    odds = EXCLUDED.odds,
			    risk = EXCLUDED.risk,
			    status = EXCLUDED.status,
			    tip_date = EXCLUDED.tip_date
		`
		for pos, t := range p.Tips {
			if _, err := tx.ExecContext(ctx, upsert,
				p.ID, t.ID, pos, t.SourceID, t.MatchID, t.Match,
				t.League, t.Prediction, t.Odds, t.Risk, t.Status, t.Date,
			); err != nil {
				return fmt.Errorf("upsert package tip %s: %w", t.ID, err)
			}
		}

		updatedAt := p.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		query := `
			UPDATE packages
			SET revision = $2,
			    tip_count = $3,
			    updated_at = $4
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, query, p.ID, p.Revision, len(p.Tips), updatedAt); err != nil {
			return fmt.Errorf("update package: %w", err)
		}
		return nil
	})
}

// UpsertPackage inserts or replaces a package row without touching its tips.
func (r *PackageRepo) UpsertPackage(ctx context.Context, p models.Package) error {
	query := `
		INSERT INTO packages (id, name, description, price, status, revision, tip_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    price = EXCLUDED.price,
		    status = EXCLUDED.status
	`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.Status); err != nil {
		return fmt.Errorf("upsert package %s: %w", p.ID, err)
	}
	return nil
}
