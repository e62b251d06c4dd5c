package ordering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/domain-kernel-go/example/ordering"
)

func Test_NewMoney_NormalizesCurrency(t *testing.T) {
	money := ordering.NewMoney(1250, " eur ")

	assert.Equal(t, int64(1250), money.Cents())
	assert.Equal(t, "EUR", money.Currency())
	assert.Equal(t, "12.50 EUR", money.String())
}

func Test_Money_Equals(t *testing.T) {
	a := ordering.NewMoney(100, "EUR")

	assert.True(t, a.Equals(ordering.NewMoney(100, "eur")))
	assert.True(t, a.Equals(&a))
	assert.False(t, a.Equals(ordering.NewMoney(100, "USD")))
	assert.False(t, a.Equals(ordering.NewMoney(101, "EUR")))
	assert.False(t, a.Equals((*ordering.Money)(nil)))
	assert.False(t, a.Equals("100 EUR"))
}

func Test_Money_Add(t *testing.T) {
	sum, err := ordering.NewMoney(150, "EUR").Add(ordering.NewMoney(275, "EUR"))

	require.NoError(t, err)
	assert.True(t, sum.Equals(ordering.NewMoney(425, "EUR")))
}

func Test_Money_Add_CurrencyMismatch(t *testing.T) {
	_, err := ordering.NewMoney(150, "EUR").Add(ordering.NewMoney(275, "USD"))

	assert.ErrorIs(t, err, ordering.ErrCurrencyMismatch)
}

func Test_Money_Times(t *testing.T) {
	assert.Equal(t, int64(900), ordering.NewMoney(300, "EUR").Times(3).Cents())
}

func Test_Money_String_Negative(t *testing.T) {
	assert.Equal(t, "-1.05 EUR", ordering.NewMoney(-105, "EUR").String())
}
