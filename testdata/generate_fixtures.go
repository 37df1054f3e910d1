//go:build ignore

// This program generates test fixture workbooks for sheetviz.
package main

import (
	"fmt"
	"os"

	"github.com/klytics/sheetviz/internal/formats/xlsx"
	"github.com/klytics/sheetviz/internal/sheet"
)

func main() {
	if err := generateSales(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sales.xlsx: %v\n", err)
		os.Exit(1)
	}

	if err := generateSites(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sites.xlsx: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Test fixtures generated successfully.")
}

func generateSales() error {
	wb := &sheet.Workbook{
		Sheets: []sheet.Sheet{
			sheet.FromStrings("Revenue", [][]string{
				{"Product", "Revenue", "Cost", "Mes"},
				{"Enterprise", "1250000", "700000", "Enero"},
				{"SMB", "450000", "210000", "Enero"},
				{"Consumer", "320000", "150000", "Enero"},
				{"Enterprise", "1380000", "720000", "Febrero"},
				{"SMB", "520000", "230000", "Febrero"},
				{"Consumer", "350000", "160000", "Febrero"},
				{"Enterprise", "1450000", "760000", "Marzo"},
				{"SMB", "580000", "250000", "Marzo"},
				{"Consumer", "410000", "170000", "Marzo"},
			}),
			sheet.FromStrings("Summary", [][]string{
				{"Metric", "Value"},
				{"Total Revenue", "5710000"},
				{"Top Product", "Enterprise"},
			}),
		},
	}

	return xlsx.WriteFile(wb, "testdata/sales.xlsx")
}

func generateSites() error {
	wb := &sheet.Workbook{
		Sheets: []sheet.Sheet{
			sheet.FromStrings("Sites", [][]string{
				{"Nombre", "Latitud", "Longitud", "Visitas"},
				{"Bogotá", "4.711", "-74.0721", "120"},
				{"Medellín", "6.2442", "-75.5812", "85"},
				{"Cali", "3.4516", "-76.532", "64"},
				{"Cartagena", "10.391", "-75.4794", "40"},
				{"Sin ubicación", "", "", "3"},
			}),
		},
	}

	return xlsx.WriteFile(wb, "testdata/sites.xlsx")
}
