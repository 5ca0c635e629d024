package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Load reads all grasp records from a dataset file, in file order.
func Load(path string) (records []GraspRecord, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open dataset")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	if err = gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, errors.Wrapf(err, "cannot parse dataset %s", path)
	}
	return records, nil
}

// Columns returns the header row of a dataset file.
func Columns(path string) (header []string, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open dataset")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	header, err = csv.NewReader(f).Read()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read header of %s", path)
	}
	return header, nil
}

// Append adds records to a dataset file in order, creating it (with a header)
// if needed. The records are serialized fully before anything touches the
// file, so a marshaling failure leaves no partial artifact.
func Append(path string, records []GraspRecord) error {
	if len(records) == 0 {
		return nil
	}

	_, statErr := os.Stat(path)
	exists := statErr == nil

	var body string
	if exists {
		var sb strings.Builder
		if err := gocsv.MarshalWithoutHeaders(&records, &sb); err != nil {
			return errors.Wrap(err, "cannot serialize records")
		}
		body = sb.String()
	} else {
		var err error
		body, err = gocsv.MarshalString(&records)
		if err != nil {
			return errors.Wrap(err, "cannot serialize records")
		}
	}

	//nolint:gosec
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "cannot open dataset for append")
	}
	if _, err := f.WriteString(body); err != nil {
		return multierr.Combine(errors.Wrap(err, "cannot append records"), f.Close())
	}
	return f.Close()
}

// WritePredictions writes an augmented prediction table to path via a
// temporary file and rename, so a failed write leaves no partial artifact.
func WritePredictions(path string, records []PredictionRecord) (err error) {
	body, err := gocsv.MarshalString(&records)
	if err != nil {
		return errors.Wrap(err, "cannot serialize predictions")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".predictions-*.csv")
	if err != nil {
		return errors.Wrap(err, "cannot create temp file")
	}
	defer func() {
		if err != nil {
			err = multierr.Combine(err, os.Remove(tmp.Name()))
		}
	}()
	if _, err = tmp.WriteString(body); err != nil {
		return multierr.Combine(errors.Wrap(err, "cannot write predictions"), tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadPredictions reads a prediction table back, mostly for inspection and
// tests.
func LoadPredictions(path string) (records []PredictionRecord, err error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open predictions")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	if err = gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, errors.Wrapf(err, "cannot parse predictions %s", path)
	}
	return records, nil
}
