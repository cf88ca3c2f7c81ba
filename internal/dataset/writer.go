package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Write emits transactions one per line, items separated by single spaces,
// no header and no trailing delimiter.
func Write(w io.Writer, txs []Transaction) error {
	bw := bufio.NewWriter(w)
	for _, tx := range txs {
		if _, err := bw.WriteString(tx.Line()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the dataset to path, truncating any existing file.
// A zero-transaction dataset produces an empty file, which is still a valid
// dataset.
func WriteFile(path string, txs []Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dataset file %s: %w", path, err)
	}

	if err := Write(f, txs); err != nil {
		f.Close()
		return fmt.Errorf("writing dataset file %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing dataset file %s: %w", path, err)
	}
	return nil
}
