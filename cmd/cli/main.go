// fieldnotes cleans ragged field observation records.
//
// Raw lines carrying a "M/D - M/D" date range are split into fixed columns,
// short records are padded with missing values, dates are typed using an
// implied year, and the table is written as csv, json, xlsx or a database
// table.
package main

import (
	"os"

	"github.com/ccollicutt/fieldnotes/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
