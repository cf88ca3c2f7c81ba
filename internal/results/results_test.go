package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"ok", StatusOK, false},
		{"empty", StatusEmpty, false},
		{"failed", StatusFailed, false},
		{"OK", "", true},
		{"success", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_AppendOrderAndCopy(t *testing.T) {
	table := NewTable()
	table.Append(RunRecord{Algorithm: "apriori", Support: 10, Status: StatusOK, Runtime: time.Second})
	table.Append(RunRecord{Algorithm: "fpgrowth", Support: 10, Status: StatusEmpty, Runtime: 2 * time.Second})

	assert.Equal(t, 2, table.Len())

	records := table.Records()
	assert.Equal(t, "apriori", records[0].Algorithm)
	assert.Equal(t, "fpgrowth", records[1].Algorithm)

	// Mutating the returned slice must not reach the table.
	records[0].Algorithm = "mutated"
	assert.Equal(t, "apriori", table.Records()[0].Algorithm)
}

func TestTable_Algorithms(t *testing.T) {
	table := NewTable()
	table.Append(RunRecord{Algorithm: "apriori", Support: 5})
	table.Append(RunRecord{Algorithm: "apriori", Support: 10})
	table.Append(RunRecord{Algorithm: "eclat", Support: 5})
	table.Append(RunRecord{Algorithm: "apriori", Support: 25})

	assert.Equal(t, []string{"apriori", "eclat"}, table.Algorithms())
}

func TestTable_CountByStatus(t *testing.T) {
	table := NewTable()
	table.Append(RunRecord{Status: StatusOK})
	table.Append(RunRecord{Status: StatusOK})
	table.Append(RunRecord{Status: StatusEmpty})
	table.Append(RunRecord{Status: StatusFailed})

	counts := table.CountByStatus()
	assert.Equal(t, 2, counts[StatusOK])
	assert.Equal(t, 1, counts[StatusEmpty])
	assert.Equal(t, 1, counts[StatusFailed])
}

func TestTable_TotalRuntime(t *testing.T) {
	table := NewTable()
	table.Append(RunRecord{Runtime: 1500 * time.Millisecond})
	table.Append(RunRecord{Runtime: 500 * time.Millisecond})

	assert.Equal(t, 2*time.Second, table.TotalRuntime())
}
