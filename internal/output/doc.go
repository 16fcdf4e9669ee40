// Package output writes query results as flat (date, station, category,
// value) rows.
//
// Supported formats:
//   - csv: header row "Date,Station,Category,Value", then one line per row
//   - json: JSON Lines, one object per row
//   - table: an aligned ASCII table, rendered on Close
//   - arrow: an Arrow IPC file with one record batch per WriteRows call
//
// A Writer may receive several WriteRows calls; the CSV header and the table
// header appear once. Example:
//
//	w, err := output.NewWriter(output.FormatCSV, f)
//	if err != nil {
//	    return err
//	}
//	if err := w.WriteRows(report.Rows()); err != nil {
//	    return err
//	}
//	return w.Close()
package output
