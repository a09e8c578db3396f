// Package export serializes the certificate ledger for operator download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"certifica/internal/certificate/models"
	dErrors "certifica/pkg/domain-errors"
)

// header is the column contract shared by both formats.
var header = []string{
	"id",
	"subject_name",
	"event_name",
	"workload",
	"role",
	"institution",
	"city",
	"event_date",
	"issuance_date",
	"tracking_code",
	"originality_code",
	"verification_url",
}

func row(r models.CertificateRecord) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.SubjectName,
		r.EventName,
		r.Workload,
		r.Role.String(),
		r.Institution,
		r.City,
		r.EventDateDisplay(),
		r.IssuanceDateDisplay(),
		r.TrackingCode,
		r.OriginalityCode,
		r.VerificationURL,
	}
}

// CSV renders the records as UTF-8 CSV with a header row.
func CSV(records []models.CertificateRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not write csv header")
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not flush csv")
	}
	return buf.Bytes(), nil
}

const sheetName = "Certificados"

// XLSX renders the records as a single-sheet spreadsheet.
func XLSX(records []models.CertificateRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create worksheet")
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not drop default worksheet")
	}

	writeRow := func(rowIdx int, values []string) error {
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, header); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not write worksheet header")
	}
	for i, r := range records {
		if err := writeRow(i+2, row(r)); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal,
				fmt.Sprintf("could not write worksheet row %d", i+2))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not serialize worksheet")
	}
	return buf.Bytes(), nil
}
