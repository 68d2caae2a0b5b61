package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStrings_Exact(t *testing.T) {
	sum, err := AddStrings("0.10", "0.20")
	require.NoError(t, err)
	assert.Equal(t, "0.30", sum)
}

func TestSubStrings_Exact(t *testing.T) {
	diff, err := SubStrings("20.00", "0.01")
	require.NoError(t, err)
	assert.Equal(t, "19.99", diff)
}

func TestAdd_NoDriftAfterManyAdditions(t *testing.T) {
	total := Zero
	step := MustParse("0.01")
	for i := 0; i < 10000; i++ {
		total = total.Add(step)
	}
	assert.Equal(t, "100.00", total.String())
	assert.Equal(t, int64(10000), total.Cents())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{in: "12.5", want: 1250},
		{in: "-0.01", want: -1},
		{in: "1000", want: 100000},
		{in: " 3.40 ", want: 340},
		{in: "12.500", want: 1250},
		{in: "0", want: 0},
		{in: "1.005", wantErr: ErrPrecision},
		{in: "abc", wantErr: ErrInvalidAmount},
		{in: "", wantErr: ErrInvalidAmount},
		{in: "99999999999999999999", wantErr: ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Cents())
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "0.00", Zero.String())
	assert.Equal(t, "-0.05", FromCents(-5).String())
	assert.Equal(t, "1234.56", FromCents(123456).String())
	assert.Equal(t, "-45.50", FromCents(-4550).String())
}

func TestCompare(t *testing.T) {
	a := MustParse("1.00")
	b := MustParse("2.00")
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(MustParse("1")))
}

func TestEqualWithinTolerance(t *testing.T) {
	eps := MustParse("0.01")
	assert.True(t, EqualWithinTolerance(MustParse("100.00"), MustParse("100.01"), eps))
	assert.True(t, EqualWithinTolerance(MustParse("100.01"), MustParse("100.00"), eps))
	assert.False(t, EqualWithinTolerance(MustParse("100.00"), MustParse("100.02"), eps))
	assert.True(t, EqualWithinTolerance(MustParse("5.00"), MustParse("5.00"), Zero))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "$1,234.56", FromCents(123456).Display("USD"))
	assert.Equal(t, "12.00 QQQ", FromCents(1200).Display("qqq"))
	assert.Equal(t, "12.00", FromCents(1200).Display(""))
}

func TestScanAndValue(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan(int64(4550)))
	assert.Equal(t, "45.50", a.String())

	require.NoError(t, a.Scan([]byte("-120")))
	assert.Equal(t, "-1.20", a.String())

	v, err := MustParse("9.99").Value()
	require.NoError(t, err)
	assert.Equal(t, int64(999), v)

	assert.Error(t, a.Scan(1.5))
}

func TestJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Amount `json:"amount"`
	}{Amount: MustParse("45.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"45.50"}`, string(b))

	var out struct {
		Amount Amount `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"0.30"}`), &out))
	assert.Equal(t, int64(30), out.Amount.Cents())

	require.NoError(t, json.Unmarshal([]byte(`{"amount":12.25}`), &out))
	assert.Equal(t, int64(1225), out.Amount.Cents())
}
