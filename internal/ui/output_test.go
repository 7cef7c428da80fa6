package ui

import (
	"strings"
	"testing"
)

func TestCenter(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{name: "shorter than width", text: "saldo", width: 15, want: "     saldo"},
		{name: "exact width", text: "saldo", width: 5, want: "saldo"},
		{name: "wider than width", text: "saldo import", width: 5, want: "saldo import"},
		{name: "odd padding rounds down", text: "ab", width: 7, want: "  ab"},
		{name: "empty text", text: "", width: 4, want: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := center(tt.text, tt.width); got != tt.want {
				t.Errorf("center(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestOutputFunctionsDoNotPanic(t *testing.T) {
	// The color library writes to stdout; these just exercise each helper.
	Header("Importing Transactions")
	Step(2, 4, "Reading raw exports")
	Success("merged 12 records")
	Info("store: data/store.csv")
	Warning("3 rows skipped")
	Error("account 16 failed")
	BlueText("detail")
	YellowText("caution")
}

func TestHeaderCentering(t *testing.T) {
	centered := center("Importing Transactions", headerWidth)
	if !strings.HasSuffix(centered, "Importing Transactions") {
		t.Errorf("centered header %q should end with the title", centered)
	}
	if len(centered) >= headerWidth {
		t.Errorf("left-padded title %q should be narrower than the banner", centered)
	}
}
