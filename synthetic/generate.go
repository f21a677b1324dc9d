// Package synthetic writes sample customer files for local runs and demos.
package synthetic

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"customerstream/loader/customer"
)

// FileName is the name of the generated file inside the target directory.
const FileName = "sample-customers.csv"

var (
	firstNames = []string{"Ada", "Alan", "Grace", "Edsger", "Barbara", "Donald", "Frances", "Ken"}
	lastNames  = []string{"Lovelace", "Turing", "Hopper", "Dijkstra", "Liskov", "Knuth", "Allen", "Thompson"}
	domains    = []string{"example.com", "mail.example.org", "corp-example.net"}
)

// defects are the ways a generated row can be broken; each one trips a single rule.
// Indexes follow customer.Columns.
var defects = []func(row []string){
	func(row []string) { row[0] = " " },
	func(row []string) { row[3] = "not-an-email" },
	func(row []string) { row[5] = "-" + row[5] + "1" },
	func(row []string) { row[5] = "lots" },
	func(row []string) { row[4] = "02/30/2024" },
	func(row []string) { row[2] = "" },
}

// GenerateSyntheticData writes rows customers to dir/FileName and returns the path.
// Roughly invalidRatio of the rows carry exactly one defect. The same seed always
// produces the same file.
func GenerateSyntheticData(rows int, dir string, invalidRatio float64, seed int64) (string, error) {
	if rows < 0 {
		return "", errors.Newf("rows must be non-negative, got %d", rows)
	}
	if invalidRatio < 0 || invalidRatio > 1 {
		return "", errors.Newf("invalid ratio must be within [0, 1], got %v", invalidRatio)
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", errors.Wrapf(err, "failed to create directory '%s'", dir)
		}
	}

	filePath := filepath.Join(dir, FileName)
	file, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create file '%s'", filePath)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(customer.Columns); err != nil {
		return "", errors.Wrap(err, "failed to write header")
	}

	rng := rand.New(rand.NewSource(seed))
	epoch := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < rows; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		row := []string{
			fmt.Sprintf("cust-%06d", i+1),
			first,
			last,
			fmt.Sprintf("%s.%s%d@%s", first, last, i, domains[rng.Intn(len(domains))]),
			epoch.AddDate(0, 0, rng.Intn(5*365)).Format(customer.DateLayout),
			strconv.Itoa(rng.Intn(5000)),
		}
		if rng.Float64() < invalidRatio {
			defects[rng.Intn(len(defects))](row)
		}
		if err := writer.Write(row); err != nil {
			return "", errors.Wrap(err, "failed to write row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", errors.Wrap(err, "failed to flush rows")
	}

	return filePath, nil
}
