package readstore

import (
	"context"

	"scanledger/internal/infra"
	"scanledger/internal/infra/db"

	"github.com/google/uuid"
)

type BusinessReadStore struct {
	db db.DBTX
}

func NewBusinessReadStore(dbtx db.DBTX) *BusinessReadStore {
	return &BusinessReadStore{db: dbtx}
}

func (r *BusinessReadStore) OwnerByID(ctx context.Context, businessID uuid.UUID) (uuid.UUID, error) {
	const query = `SELECT owner_id FROM businesses WHERE id = $1`

	var ownerID uuid.UUID
	err := r.db.QueryRow(ctx, query, businessID).Scan(&ownerID)
	if err != nil {
		if infra.IsNoRows(err) {
			return uuid.Nil, infra.WrapRepoErr("business not found", err, infra.KindNotFound)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to find business owner", err)
	}
	return ownerID, nil
}
