package grpc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rippleeffect/charity-service/internal/domain"
)

func TestAmountRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		in := &structpb.Struct{Fields: map[string]*structpb.Value{"amount": structpb.NewNumberValue(f)}}
		_, err := amount(in, "amount")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "value %v", f)
	}

	in := &structpb.Struct{Fields: map[string]*structpb.Value{"amount": structpb.NewNumberValue(4.637)}}
	got, err := amount(in, "amount")
	require.NoError(t, err)
	assert.Equal(t, "4.64", got.StringFixed(2))
}

func TestPurchaseQuantity(t *testing.T) {
	build := func(q float64) *structpb.Struct {
		return &structpb.Struct{Fields: map[string]*structpb.Value{
			"purchase": structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"price":    structpb.NewStringValue("2.50"),
				"quantity": structpb.NewNumberValue(q),
			}}),
		}}
	}

	p, err := purchase(build(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Quantity)

	for _, q := range []float64{1.5, -2, 1e19, math.NaN(), math.Inf(1)} {
		_, err := purchase(build(q))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "quantity %v", q)
	}
}
