// Package export renders active registrations for organizers.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Eursukkul/race-registration/internal/models"
)

const (
	dateTimeLayout = "2006-01-02 15:04"
	dateLayout     = "2006-01-02"
	notSpecified   = "not specified"
)

// Header is the column row shared by the CSV and spreadsheet exports.
var Header = []string{
	"Event",
	"Race",
	"User",
	"Date of Birth",
	"Phone Number",
	"City",
	"Club",
	"T-Shirt Size",
	"Registration Date",
	"Is Active",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Rows converts registrations to export rows. Inactive registrations are skipped.
// Event, RaceType and User should be preloaded.
func Rows(regs []models.Registration) [][]string {
	rows := make([][]string, 0, len(regs))
	for i := range regs {
		r := &regs[i]
		if !r.IsActive {
			continue
		}
		rows = append(rows, []string{
			eventTitle(r),
			raceLabel(r),
			userName(r),
			birthDate(r),
			r.PhoneNumber,
			r.City,
			r.Club,
			string(r.TShirtSize),
			r.RegisteredAt.Format(dateTimeLayout),
			strconv.FormatBool(r.IsActive),
		})
	}
	return rows
}

// WriteCSV writes a semicolon separated, BOM prefixed file and returns the
// number of data rows written.
func WriteCSV(w io.Writer, regs []models.Registration) (int, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	rows := Rows(regs)
	if err := cw.Write(Header); err != nil {
		return 0, err
	}
	if err := cw.WriteAll(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func eventTitle(r *models.Registration) string {
	if r.Event == nil {
		return ""
	}
	return r.Event.Title
}

func raceLabel(r *models.Registration) string {
	if r.RaceType == nil {
		return ""
	}
	return r.RaceType.Label()
}

func userName(r *models.Registration) string {
	if r.User == nil {
		return ""
	}
	return r.User.DisplayName()
}

func birthDate(r *models.Registration) string {
	if !r.DateOfBirth.IsZero() {
		return r.DateOfBirth.Format(dateLayout)
	}
	if r.User != nil && r.User.BirthDate != nil {
		return r.User.BirthDate.Format(dateLayout)
	}
	return notSpecified
}
