// Command generate writes a demo data directory of account folders with
// realistic bank and card CSV exports, one schema per institution, for
// exercising the ledger build pipeline end to end:
//
//	go run testdata/generators/generate.go -output-dir ./data -months 3
//
// Each account folder gets one export whose header shape matches a real
// institution: a checking export with "Posting Date" and signed amounts, a
// card export with separate debit/credit columns, and a store export with
// currency-formatted prices.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type rowSpec struct {
	description string
	amount      float64
	recurring   bool
}

var checkingRows = []rowSpec{
	{"ACME CORP PAYROLL PPD ID: 1234567", 2450.00, true},
	{"MORTGAGE PMT AUTOPAY", -1850.00, true},
	{"SO CAL EDISON BILL PAY", -142.37, true},
	{"NETFLIX.COM", -15.49, true},
	{"TRADER JOE'S #555", -87.23, false},
	{"SHELL OIL 5744", -52.80, false},
	{"ZELLE PAYMENT TO ALEX", -120.00, false},
	{"CHIPOTLE 1492", -14.85, false},
}

var cardRows = []rowSpec{
	{"AMAZON MKTPL*TY1AB23", -34.99, false},
	{"SPOTIFY USA", -11.99, true},
	{"24 HOUR FITNESS", -49.99, true},
	{"STARBUCKS STORE 10041", -7.65, false},
	{"PETCO 2210", -62.13, false},
	{"PAYMENT THANK YOU", 450.00, false},
}

var storeRows = []rowSpec{
	{"COSTCO WHSE #0412", -186.42, false},
	{"COSTCO GAS #0412", -58.11, false},
	{"COSTCO WHSE #0412", -94.77, false},
}

func main() {
	var (
		outputDir = flag.String("output-dir", "./data", "root directory to populate with account folders")
		months    = flag.Int("months", 3, "number of months of history to generate")
		seed      = flag.Int64("seed", 0, "random seed (0 uses the current time)")
	)
	flag.Parse()

	if *months < 1 {
		log.Fatal("months must be at least 1")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	accounts := []struct {
		name  string
		file  string
		write func(*os.File, *rand.Rand, int)
	}{
		{"Chase_Checking", "Chase1234_Activity.CSV", writeCheckingExport},
		{"Amex_Card", "activity.csv", writeCardExport},
		{"Costco_Card", "transactions.csv", writeStoreExport},
	}

	for _, account := range accounts {
		dir := filepath.Join(*outputDir, account.name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create %s: %v", dir, err)
		}

		path := filepath.Join(dir, account.file)
		file, err := os.Create(path)
		if err != nil {
			log.Fatalf("failed to create %s: %v", path, err)
		}
		account.write(file, rng, *months)
		if err := file.Close(); err != nil {
			log.Fatalf("failed to close %s: %v", path, err)
		}
		fmt.Printf("wrote %s\n", path)
	}

	fmt.Printf("\nDone. Build the ledger with:\n  ledger build --data-dir %s\n", *outputDir)
}

// writeCheckingExport writes a checking-style export: Posting Date header,
// signed amounts, MM/DD/YYYY dates.
func writeCheckingExport(f *os.File, rng *rand.Rand, months int) {
	fmt.Fprintln(f, "Details,Posting Date,Description,Amount,Type,Balance")
	for _, date := range monthlyDates(rng, months, len(checkingRows)) {
		row := checkingRows[rng.Intn(len(checkingRows))]
		kind := "DEBIT"
		if row.amount > 0 {
			kind = "CREDIT"
		}
		fmt.Fprintf(f, "%s,%s,%s,%.2f,%s,\n",
			kind, date.Format("01/02/2006"), row.description, jitter(rng, row), kind)
	}
}

// writeCardExport writes a card-style export with separate Debit and
// Credit columns and ISO dates.
func writeCardExport(f *os.File, rng *rand.Rand, months int) {
	fmt.Fprintln(f, "Date,Description,Debit,Credit")
	for _, date := range monthlyDates(rng, months, len(cardRows)) {
		row := cardRows[rng.Intn(len(cardRows))]
		debit, credit := "", ""
		if row.amount < 0 {
			debit = fmt.Sprintf("%.2f", -jitter(rng, row))
		} else {
			credit = fmt.Sprintf("%.2f", -jitter(rng, row))
		}
		fmt.Fprintf(f, "%s,%s,%s,%s\n", date.Format("2006-01-02"), row.description, debit, credit)
	}
}

// writeStoreExport writes a store-card export with currency-formatted
// prices and a quoted thousands separator.
func writeStoreExport(f *os.File, rng *rand.Rand, months int) {
	fmt.Fprintln(f, "Order Date,Item Description,Price")
	for _, date := range monthlyDates(rng, months, len(storeRows)) {
		row := storeRows[rng.Intn(len(storeRows))]
		amount := jitter(rng, row)
		price := fmt.Sprintf("-$%.2f", -amount)
		if amount < -1000 {
			price = fmt.Sprintf("\"-$%s\"", withComma(-amount))
		}
		fmt.Fprintf(f, "\"%s\",%s,%s\n", date.Format("January 2, 2006"), row.description, price)
	}
}

// monthlyDates spreads perMonth dates across each of the trailing months,
// newest last.
func monthlyDates(rng *rand.Rand, months, perMonth int) []time.Time {
	now := time.Now()
	var dates []time.Time
	for m := months - 1; m >= 0; m-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -m, 0)
		for i := 0; i < perMonth; i++ {
			dates = append(dates, monthStart.AddDate(0, 0, rng.Intn(28)))
		}
	}
	return dates
}

// jitter nudges discretionary amounts so runs differ; recurring charges
// keep their exact amount.
func jitter(rng *rand.Rand, row rowSpec) float64 {
	if row.recurring {
		return row.amount
	}
	return row.amount * (0.8 + rng.Float64()*0.4)
}

func withComma(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	if dot > 3 {
		s = s[:dot-3] + "," + s[dot-3:]
	}
	return s
}
