// mksample writes small demo inputs for every source kind.
// Usage: go run ./cmd/mksample --out examples --rows 30
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

type sale struct {
	ID     int     `json:"id"`
	Date   string  `json:"date"`
	Region string  `json:"region"`
	Units  int     `json:"units"`
	Amount float64 `json:"amount"`
}

var regions = []string{"north", "south", "east", "west"}

func main() {
	out := flag.String("out", "examples", "output directory")
	rows := flag.Int("rows", 30, "rows per file")
	seed := flag.Int64("seed", 1, "random seed")
	start := flag.String("start", "2024-01-01", "first date (YYYY-MM-DD)")
	flag.Parse()

	first, err := time.Parse("2006-01-02", *start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse --start: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*out, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	sales := make([]sale, *rows)
	for i := range sales {
		units := 1 + rng.Intn(20)
		sales[i] = sale{
			ID:     i + 1,
			Date:   first.AddDate(0, 0, i).Format("2006-01-02"),
			Region: regions[rng.Intn(len(regions))],
			Units:  units,
			Amount: float64(units) * (9.5 + float64(rng.Intn(400))/100),
		}
	}

	writers := []struct {
		name  string
		write func(string, []sale) error
	}{
		{"sample.csv", writeCSV},
		{"sample.json", writeJSON},
		{"sample.xlsx", writeExcel},
		{"sample.log", writeLog},
	}
	for _, w := range writers {
		path := filepath.Join(*out, w.name)
		if err := w.write(path, sales); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(sales), path)
	}
}

func header() []string {
	return []string{"id", "date", "region", "units", "amount"}
}

func (s sale) cells() []string {
	return []string{
		strconv.Itoa(s.ID),
		s.Date,
		s.Region,
		strconv.Itoa(s.Units),
		strconv.FormatFloat(s.Amount, 'f', 2, 64),
	}
}

func writeCSV(path string, sales []sale) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header()); err != nil {
		return err
	}
	for _, s := range sales {
		if err := w.Write(s.cells()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, sales []sale) error {
	data, err := json.MarshalIndent(sales, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func writeExcel(path string, sales []sale) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	hdr := header()
	row := make([]interface{}, len(hdr))
	for i, h := range hdr {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	for i, s := range sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := []interface{}{s.ID, s.Date, s.Region, s.Units, s.Amount}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeLog(path string, sales []sale) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, s := range sales {
		level := "INFO"
		if s.Units > 15 {
			level = "WARN"
		}
		if _, err := fmt.Fprintf(f, "%sT12:00:00Z %s order=%d region=%s units=%d\n", s.Date, level, s.ID, s.Region, s.Units); err != nil {
			return err
		}
	}
	return f.Close()
}
