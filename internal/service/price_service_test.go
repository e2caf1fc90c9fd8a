package service

import (
	"context"
	"io"
	"testing"
	"time"

	"carcare/internal/catalog"
	"carcare/internal/domain"
	"carcare/internal/models"
	"carcare/internal/pricing"
	"carcare/internal/worker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPriceService(t *testing.T) {
	store := new(mockPrices)
	logger := zerolog.New(io.Discard)
	cat := catalog.Default()
	resolver := pricing.NewResolver(store, cat, worker.FixedRetry(0, time.Millisecond), &logger)
	svc := NewPriceService(store, resolver, cat, &logger)
	ctx := context.Background()

	store.On("ListPrices", mock.Anything).Return([]*models.ServicePrice{
		{ServiceID: "car-wash", PriceSedan: 699},
	}, nil).Once()

	p, err := svc.Quote(ctx, []string{"car-wash"}, "Sedan")
	require.NoError(t, err)
	assert.Equal(t, pricing.Price{Amount: 699, Loaded: true}, p)

	t.Run("UpdateInvalidatesResolver", func(t *testing.T) {
		row := &models.ServicePrice{ServiceID: "car-wash", PriceSedan: 799}
		store.On("UpsertPrice", ctx, row).Return(nil).Once()
		store.On("ListPrices", mock.Anything).Return([]*models.ServicePrice{row}, nil).Once()

		require.NoError(t, svc.UpdatePrice(ctx, row))
		assert.Equal(t, "Car Wash", row.ServiceName)
		assert.False(t, resolver.Loaded())

		p, err := svc.Quote(ctx, []string{"car-wash"}, "sedan")
		require.NoError(t, err)
		assert.Equal(t, int64(799), p.Amount)
	})

	t.Run("QuoteModeIsZero", func(t *testing.T) {
		p, err := svc.Quote(ctx, []string{"car-wash"}, "SUV")
		require.NoError(t, err)
		assert.True(t, p.Quoted())
	})

	t.Run("Rejects", func(t *testing.T) {
		assert.ErrorIs(t, svc.UpdatePrice(ctx, &models.ServicePrice{ServiceID: "teleport"}), domain.ErrValidation)
		assert.ErrorIs(t, svc.UpdatePrice(ctx, &models.ServicePrice{ServiceID: "car-wash", PriceSUV: -1}), domain.ErrValidation)

		_, err := svc.Quote(ctx, []string{"car-wash"}, "Truck")
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.Quote(ctx, []string{"teleport"}, "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	store.AssertExpectations(t)
}
