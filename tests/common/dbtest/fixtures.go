//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123"
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		userID, email, testPasswordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	}

	return userID
}

func CreateTestBusiness(t *testing.T, db DBLike, ownerID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	businessID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO businesses (id, owner_id, name) VALUES ($1, $2, $3)",
		businessID, ownerID, name)
	require.NoError(t, err)

	return businessID
}

// creates a sales agent; a nil rate means the platform default applies
func CreateTestAgent(t *testing.T, db DBLike, userID uuid.UUID, referralCode string, rate *string, recruiterID *uuid.UUID) uuid.UUID {
	t.Helper()

	agentID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO sales_agents (id, user_id, referral_code, is_active, commission_rate, recruiter_id) VALUES ($1, $2, $3, true, $4, $5)",
		agentID, userID, referralCode, rate, recruiterID)
	require.NoError(t, err)

	return agentID
}

func CreateTestQRCode(t *testing.T, db DBLike, businessID uuid.UUID, codeType string, scanLimit int32) uuid.UUID {
	t.Helper()

	codeID := uuid.New()
	ctx := context.Background()

	var (
		discountPercent *float64
		pointsValue     *int32
	)
	switch codeType {
	case "discount":
		pct := 10.0
		discountPercent = &pct
	case "loyalty":
		points := int32(25)
		pointsValue = &points
	}

	_, err := db.Exec(ctx, "INSERT INTO qr_codes (id, business_id, code_type, discount_percent, points_value, is_active, scan_limit) VALUES ($1, $2, $3, $4, $5, true, $6)",
		codeID, businessID, codeType, discountPercent, pointsValue, scanLimit)
	require.NoError(t, err)

	return codeID
}

// no reference tables in the schema; kept so ResetDB has one reseed hook
func SeedReferenceData(_ *pgxpool.Pool) error {
	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
