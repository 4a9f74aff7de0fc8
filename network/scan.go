package network

import (
	"github.com/go-errors/errors"
)

// buildScanResults turns the driver's scan records into the argument of the
// pending scan callback. Without a pending callback nothing is read.
func (w *Wifi) buildScanResults() error {
	if !w.scan.isSet() {
		w.log.Debugf("Scan completed without a pending callback")
		return nil
	}

	num, err := w.driver.ScanAPNum()
	if err != nil {
		w.scan.clear()
		w.log.Errorf("Could not get number of scanned access points: %v", err)
		return errors.Errorf("Could not get number of scanned access points: %v", err)
	}

	records, err := w.driver.ScanAPRecords(num)
	if err != nil {
		w.scan.clear()
		w.log.Errorf("Could not get scanned access points: %v", err)
		return errors.Errorf("Could not get scanned access points: %v", err)
	}

	results := make([]*Record, 0, len(records))
	for _, ap := range records {
		results = append(results, NewRecord().
			Set("rssi", int(ap.RSSI)).
			Set("authMode", AuthModeName(ap.AuthMode)).
			Set("ssid", decodeString(ap.SSID[:])))
	}

	w.log.Debugf("Scan found %d access points", len(results))

	w.resolve(&w.scan, results)

	return nil
}
