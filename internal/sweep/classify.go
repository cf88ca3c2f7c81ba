package sweep

import (
	"io"
	"os"
	"strings"
)

// emptySignatures are the messages miners print when nothing meets the
// support threshold. A run that fails its exit code or produces no output
// is downgraded from failure to a legitimate empty result when its log
// carries one of these. The list is the single place new phrasings go;
// matching is case-insensitive substring.
var emptySignatures = []string{
	"no frequent items found",
	"no frequent itemsets found",
	"no frequent patterns found",
	"no frequent subgraphs found",
	"no frequent sequences found",
	"no patterns meet the support threshold",
}

// logHeadLimit bounds how much of a run log classification reads back.
// Miners announce empty results near the start; anything past this is
// pattern dump, not diagnostics.
const logHeadLimit = 64 * 1024

// BenignEmpty reports whether miner output announces a legitimate empty
// result.
func BenignEmpty(output string) bool {
	lower := strings.ToLower(output)
	for _, sig := range emptySignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// readLogHead returns up to logHeadLimit bytes of the run log. A missing
// or unreadable log reads as empty, which never matches a signature.
func readLogHead(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, logHeadLimit))
	if err != nil {
		return ""
	}
	return string(data)
}

// outputEmpty reports whether the output artifact is missing or has zero
// length.
func outputEmpty(path string) bool {
	info, err := os.Stat(path)
	return err != nil || info.Size() == 0
}

// ensureArtifact creates an empty output artifact when the miner left none
// behind, so every completed run has its file even when the result set is
// empty.
func ensureArtifact(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}
