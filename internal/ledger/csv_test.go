package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartspend-dev/smartspend/internal/model"
)

func at(y, m, d, hh, mm, ss int) time.Time {
	return time.Date(y, time.Month(m), d, hh, mm, ss, 0, time.Local)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// writeLedger writes a complete ledger file: header then records.
func writeLedger(buf *bytes.Buffer, records []model.Record) error {
	buf.WriteString(Header + "\n")
	return AppendRecords(buf, records)
}

func TestRoundTrip(t *testing.T) {
	records := []model.Record{
		{Timestamp: at(2025, 1, 3, 9, 15, 0), Kind: model.KindExpense, Category: "I bought a cow for 10 taka", Amount: dec("10")},
		{Timestamp: at(2025, 1, 4, 18, 0, 5), Kind: model.KindDeposit, Category: "received salary", Amount: dec("2500.50")},
	}

	var buf bytes.Buffer
	err := writeLedger(&buf, records)
	require.NoError(t, err)

	// Verify header is present.
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadRecords(&buf, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range records {
		assert.True(t, records[i].Timestamp.Equal(got[i].Timestamp), "timestamp mismatch row %d", i)
		assert.Equal(t, records[i].Kind, got[i].Kind)
		assert.Equal(t, records[i].Category, got[i].Category)
		assert.True(t, records[i].Amount.Equal(got[i].Amount), "amount mismatch row %d", i)
	}
}

func TestMarshalRecord(t *testing.T) {
	row := MarshalRecord(model.Record{
		Timestamp: at(2025, 2, 1, 7, 8, 9),
		Kind:      model.KindExpense,
		Category:  "coffee",
		Amount:    dec("3.5"),
	})
	assert.Equal(t, []string{"2025-02-01 07:08:09", "expense", "coffee", "3.5"}, row)
}

func TestSpecialCharactersInCategory(t *testing.T) {
	rec := model.Record{
		Timestamp: at(2025, 1, 15, 12, 0, 0),
		Kind:      model.KindExpense,
		Category:  `paid "Joe's Diner", tip included`,
		Amount:    dec("42.10"),
	}

	var buf bytes.Buffer
	err := writeLedger(&buf, []model.Record{rec})
	require.NoError(t, err)

	got, err := ReadRecords(&buf, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.Category, got[0].Category)
}

func TestAppendRecords(t *testing.T) {
	var buf bytes.Buffer

	initial := []model.Record{{Timestamp: at(2025, 1, 3, 0, 0, 0), Kind: model.KindExpense, Category: "a", Amount: dec("1")}}
	require.NoError(t, writeLedger(&buf, initial))

	extra := []model.Record{{Timestamp: at(2025, 1, 5, 0, 0, 0), Kind: model.KindDeposit, Category: "b", Amount: dec("2")}}
	require.NoError(t, AppendRecords(&buf, extra))

	assert.Equal(t, 1, strings.Count(buf.String(), Header), "header written once")

	got, err := ReadRecords(&buf, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Category)
	assert.Equal(t, "b", got[1].Category)
}

func TestReadRecords_Empty(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(Header+"\n"), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadRecords_SkipsMalformedRows(t *testing.T) {
	data := Header + "\n" +
		"2025-01-01 10:00:00,expense,food,10\n" +
		"2025-01-01 11:00:00,expense,food,ten\n" + // non-numeric amount
		"2025-01-01 12:00:00,expense,too,many,fields\n" +
		"2025-01-01 13:00:00,withdrawal,atm,20\n" + // unknown type
		"yesterday,expense,food,5\n" + // bad timestamp
		"2025-01-01 14:00:00,expense,free lunch,0\n" + // zero amount
		"2025-01-01 15:00:00,deposit,salary,100\n"

	var skipped []int
	got, err := ReadRecords(strings.NewReader(data), func(line int, err error) {
		assert.ErrorIs(t, err, ErrMalformedRecord)
		skipped = append(skipped, line)
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "food", got[0].Category)
	assert.Equal(t, "salary", got[1].Category)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, skipped)
}

func TestReadRecords_UnterminatedQuoteStaysOnItsLine(t *testing.T) {
	data := Header + "\n" +
		"2025-03-14 15:09:26,expense,coffee,3.5\n" +
		"2025-03-14 15:09:26,expense,\"I paid 5, for lun\n" +
		"2025-03-14 15:10:00,expense,tea,2\n" +
		"2025-03-14 15:11:00,deposit,salary,100\n"

	var skipped []int
	got, err := ReadRecords(strings.NewReader(data), func(line int, err error) {
		assert.ErrorIs(t, err, ErrMalformedRecord)
		skipped = append(skipped, line)
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "coffee", got[0].Category)
	assert.Equal(t, "tea", got[1].Category)
	assert.Equal(t, "salary", got[2].Category)
	assert.Equal(t, []int{3}, skipped)
}

func TestReadRecords_CRLF(t *testing.T) {
	data := Header + "\r\n2025-01-01 10:00:00,expense,food,10\r\n\r\n2025-01-01 11:00:00,deposit,gift,4\r\n"
	got, err := ReadRecords(strings.NewReader(data), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "food", got[0].Category)
	assert.Equal(t, "gift", got[1].Category)
}

func TestMarshalRecord_LineBreaksInCategory(t *testing.T) {
	rec := model.Record{
		Timestamp: at(2025, 1, 15, 12, 0, 0),
		Kind:      model.KindExpense,
		Category:  "paid 5 for\nlunch,\r\nand tip",
		Amount:    dec("5"),
	}

	var buf bytes.Buffer
	require.NoError(t, AppendRecords(&buf, []model.Record{rec}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "one record per line")

	got, err := ReadRecords(&buf, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "paid 5 for lunch, and tip", got[0].Category)
}

func TestReadRecords_NoHeader(t *testing.T) {
	got, err := ReadRecords(strings.NewReader("2025-01-01 10:00:00,expense,food,10\n"), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestUnmarshalRecord_RFC3339(t *testing.T) {
	rec, err := UnmarshalRecord([]string{"2025-01-01T10:00:00Z", "deposit", "gift", "5"})
	require.NoError(t, err)
	assert.True(t, rec.Timestamp.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestUnmarshalRecord_Errors(t *testing.T) {
	bad := [][]string{
		{"2025-01-01 10:00:00", "expense", "x"},
		{"2025-01-01 10:00:00", "expense", "x", "-3"},
		{"2025-01-01 10:00:00", "expense", "x", ""},
		{"2025-01-01 10:00:00", "", "x", "3"},
	}
	for _, row := range bad {
		_, err := UnmarshalRecord(row)
		assert.ErrorIs(t, err, ErrMalformedRecord, "row %v", row)
	}
}

func TestDecimalPrecision(t *testing.T) {
	// 0.1 + 0.2 must survive a CSV round-trip exactly.
	records := []model.Record{
		{Timestamp: at(2025, 1, 1, 0, 0, 0), Kind: model.KindExpense, Category: "a", Amount: dec("0.1")},
		{Timestamp: at(2025, 1, 1, 0, 0, 1), Kind: model.KindExpense, Category: "a", Amount: dec("0.2")},
	}

	var buf bytes.Buffer
	require.NoError(t, writeLedger(&buf, records))

	got, err := ReadRecords(&buf, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	sum := got[0].Amount.Add(got[1].Amount)
	assert.True(t, sum.Equal(dec("0.3")), "sum should be exactly 0.3, got %s", sum)
}

func TestCompleteLines(t *testing.T) {
	assert.Equal(t, "a\nb\n", string(completeLines([]byte("a\nb\npartial"))))
	assert.Equal(t, "a\n", string(completeLines([]byte("a\n"))))
	assert.Empty(t, completeLines([]byte("partial")))
}
