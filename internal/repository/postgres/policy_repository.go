package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pickMyBook/business/policy"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PolicyRepository keeps the shared policy table in a single versioned row.
// Writers read a snapshot, recompute, and commit only if the version they
// read is still current.
type PolicyRepository struct {
	DB *gorm.DB

	// seed is written when no policy row exists yet.
	seed policy.PolicyStore
}

func NewPolicyRepository(db *gorm.DB, seed policy.PolicyStore) *PolicyRepository {
	seed.Clamp()
	return &PolicyRepository{DB: db, seed: seed}
}

const policyRowID = 1

type policyStoreRow struct {
	ID        int       `gorm:"column:id;primaryKey"`
	StoreJSON []byte    `gorm:"column:store_json"`
	Version   int64     `gorm:"column:version"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (policyStoreRow) TableName() string {
	return "policy_store"
}

// Snapshot reads the current store and its version, bootstrapping a default
// row when none exists yet.
func (r *PolicyRepository) Snapshot(ctx context.Context) (policy.PolicyStore, int64, error) {
	if err := ctx.Err(); err != nil {
		return policy.PolicyStore{}, 0, fmt.Errorf("context error: %w", err)
	}

	var row policyStoreRow
	err := r.DB.WithContext(ctx).First(&row, "id = ?", policyRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.bootstrap(ctx, r.seed); err != nil {
			return policy.PolicyStore{}, 0, err
		}
		return r.seed.Clone(), 0, nil
	}
	if err != nil {
		return policy.PolicyStore{}, 0, fmt.Errorf("failed to query policy_store: %w", err)
	}

	var store policy.PolicyStore
	if err := json.Unmarshal(row.StoreJSON, &store); err != nil {
		return policy.PolicyStore{}, 0, fmt.Errorf("failed to unmarshal store_json: %w", err)
	}

	return store, row.Version, nil
}

// WriteIfVersion commits the store only when the row version still matches
// the version the caller read. Returns false when another writer got there
// first.
func (r *PolicyRepository) WriteIfVersion(ctx context.Context, version int64, store policy.PolicyStore) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	raw, err := json.Marshal(store)
	if err != nil {
		return false, fmt.Errorf("failed to marshal store: %w", err)
	}

	res := r.DB.WithContext(ctx).
		Model(&policyStoreRow{}).
		Where("id = ? AND version = ?", policyRowID, version).
		Updates(map[string]interface{}{
			"store_json": raw,
			"version":    version + 1,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update policy_store: %w", res.Error)
	}

	return res.RowsAffected == 1, nil
}

func (r *PolicyRepository) bootstrap(ctx context.Context, store policy.PolicyStore) error {
	raw, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	row := policyStoreRow{
		ID:        policyRowID,
		StoreJSON: raw,
		Version:   0,
	}

	// Concurrent bootstrap is harmless, first writer wins.
	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to bootstrap policy_store: %w", err)
	}

	return nil
}
