package underwriting

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Inputs)
		wantFields []string
	}{
		{
			name:   "Reference scenario",
			mutate: func(in *Inputs) {},
		},
		{
			name:   "All zero",
			mutate: func(in *Inputs) { *in = Inputs{} },
		},
		{
			name:   "Equity at upper bound",
			mutate: func(in *Inputs) { in.EquityPercentage = 100 },
		},
		{
			name:       "Negative purchase price",
			mutate:     func(in *Inputs) { in.PurchasePrice = -1 },
			wantFields: []string{"purchasePrice"},
		},
		{
			name:       "Equity above 100",
			mutate:     func(in *Inputs) { in.EquityPercentage = 100.5 },
			wantFields: []string{"equityPercentage"},
		},
		{
			name:       "Negative equity",
			mutate:     func(in *Inputs) { in.EquityPercentage = -5 },
			wantFields: []string{"equityPercentage"},
		},
		{
			name:       "Negative unit rent",
			mutate:     func(in *Inputs) { in.UnitMonthlyRents[3] = -2500 },
			wantFields: []string{"unitMonthlyRents[3]"},
		},
		{
			name:       "NaN tax rate",
			mutate:     func(in *Inputs) { in.TaxRatePercent = math.NaN() },
			wantFields: []string{"taxRatePercent"},
		},
		{
			name:       "Infinite insurance",
			mutate:     func(in *Inputs) { in.InsuranceAnnual = math.Inf(1) },
			wantFields: []string{"insuranceAnnual"},
		},
		{
			name: "Several violations reported together",
			mutate: func(in *Inputs) {
				in.BuildingSizeSqFt = -10
				in.VacancyRatePercent = -7
				in.ManagementFeePercent = -6
			},
			wantFields: []string{"buildingSizeSqFt", "vacancyRatePercent", "managementFeePercent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInputs()
			tt.mutate(&in)

			err := in.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			errs := multierr.Errors(err)
			require.Len(t, errs, len(tt.wantFields))
			for i, e := range errs {
				var inputErr *InputError
				require.True(t, errors.As(e, &inputErr))
				assert.Equal(t, tt.wantFields[i], inputErr.Field)
			}
		})
	}
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	in := DefaultInputs()
	in.PurchasePrice = -430000

	out, err := Evaluate(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, Outputs{}, out)
	assert.Contains(t, err.Error(), "purchasePrice")
}
