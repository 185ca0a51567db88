//go:build unit

package qrcode_test

import (
	"testing"
	"time"

	"scanledger/internal/domain/qrcode"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }
func int32Ptr(v int32) *int32       { return &v }

type newCodeCase struct {
	name     string
	codeType qrcode.CodeType
	cfg      qrcode.Config
	errIs    error
}

func TestNew(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		businessID := uuid.New()
		actual, err := qrcode.New(uuid.New(), businessID, qrcode.TypeDiscount, qrcode.Config{
			DiscountPercent: float64Ptr(15),
			ScanLimit:       100,
		})
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.Equal(t, businessID, actual.BusinessID())
		assert.True(t, actual.IsActive())
		assert.Equal(t, int32(0), actual.CurrentScans())
		assert.Equal(t, int32(100), actual.ScanLimit())
		require.NotNil(t, actual.DiscountPercent())
		assert.Equal(t, float64(15), *actual.DiscountPercent())
		assert.Nil(t, actual.PointsValue())
	})

	t.Run("config validation", func(t *testing.T) {
		runNewCases(t, []newCodeCase{
			{
				name:     "unknown code type",
				codeType: qrcode.CodeType("coupon"),
				errIs:    qrcode.ErrInvalidCodeType,
			},
			{
				name:     "discount without percentage",
				codeType: qrcode.TypeDiscount,
				errIs:    qrcode.ErrMissingDiscountPercent,
			},
			{
				name:     "discount percentage over 100",
				codeType: qrcode.TypeDiscount,
				cfg:      qrcode.Config{DiscountPercent: float64Ptr(100.5)},
				errIs:    qrcode.ErrInvalidDiscountPercent,
			},
			{
				name:     "negative discount percentage",
				codeType: qrcode.TypeDiscount,
				cfg:      qrcode.Config{DiscountPercent: float64Ptr(-1)},
				errIs:    qrcode.ErrInvalidDiscountPercent,
			},
			{
				name:     "zero percent discount is valid",
				codeType: qrcode.TypeDiscount,
				cfg:      qrcode.Config{DiscountPercent: float64Ptr(0)},
			},
			{
				name:     "hundred percent discount is valid",
				codeType: qrcode.TypeDiscount,
				cfg:      qrcode.Config{DiscountPercent: float64Ptr(100)},
			},
			{
				name:     "loyalty without points",
				codeType: qrcode.TypeLoyalty,
				errIs:    qrcode.ErrMissingPointsValue,
			},
			{
				name:     "loyalty with negative points",
				codeType: qrcode.TypeLoyalty,
				cfg:      qrcode.Config{PointsValue: int32Ptr(-5)},
				errIs:    qrcode.ErrNegativePointsValue,
			},
			{
				name:     "loyalty with zero points is valid",
				codeType: qrcode.TypeLoyalty,
				cfg:      qrcode.Config{PointsValue: int32Ptr(0)},
			},
			{
				name:     "info needs no value fields",
				codeType: qrcode.TypeInfo,
			},
			{
				name:     "negative scan limit",
				codeType: qrcode.TypeInfo,
				cfg:      qrcode.Config{ScanLimit: -1},
				errIs:    qrcode.ErrNegativeScanLimit,
			},
		})
	})

	t.Run("type selects surviving value field", func(t *testing.T) {
		cfg := qrcode.Config{
			DiscountPercent: float64Ptr(20),
			PointsValue:     int32Ptr(50),
		}

		discount, err := qrcode.New(uuid.New(), uuid.New(), qrcode.TypeDiscount, cfg)
		require.NoError(t, err)
		assert.NotNil(t, discount.DiscountPercent())
		assert.Nil(t, discount.PointsValue())

		loyalty, err := qrcode.New(uuid.New(), uuid.New(), qrcode.TypeLoyalty, cfg)
		require.NoError(t, err)
		assert.Nil(t, loyalty.DiscountPercent())
		assert.NotNil(t, loyalty.PointsValue())

		info, err := qrcode.New(uuid.New(), uuid.New(), qrcode.TypeInfo, cfg)
		require.NoError(t, err)
		assert.Nil(t, info.DiscountPercent())
		assert.Nil(t, info.PointsValue())
	})

	t.Run("deactivate and reactivate", func(t *testing.T) {
		code, err := qrcode.New(uuid.New(), uuid.New(), qrcode.TypeInfo, qrcode.Config{})
		require.NoError(t, err)

		code.Deactivate()
		assert.False(t, code.IsActive())

		code.Reactivate()
		assert.True(t, code.IsActive())
	})
}

func TestRestore(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)
	code := qrcode.Restore(
		uuid.New(), uuid.New(), qrcode.TypeLoyalty,
		nil, int32Ptr(25), false, &expires, 10, 7,
	)

	assert.Equal(t, qrcode.TypeLoyalty, code.Type())
	assert.False(t, code.IsActive())
	assert.Equal(t, int32(7), code.CurrentScans())
	require.NotNil(t, code.ExpiresAt())
	assert.True(t, code.ExpiresAt().Equal(expires))
}

func runNewCases(t *testing.T, cases []newCodeCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := qrcode.New(uuid.New(), uuid.New(), c.codeType, c.cfg)

			if c.errIs == nil {
				require.NoError(t, err)
				require.NotNil(t, actual)
			} else {
				require.Nil(t, actual)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
