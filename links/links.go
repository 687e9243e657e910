package links

import (
	"os"

	"github.com/nijaru/yt-dataset/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Entry is a link selected for the current batch together with its absolute
// position in the link file.
type Entry struct {
	Index int
	URL   string
}

// Load reads a comma or newline delimited link file. A missing file is logged
// and treated as an empty list so the run degrades to a no-op batch.
func Load(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("path", path).Error("Link file not found")
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, "error reading link file %s", path)
	}

	list := utils.SplitTokens(string(content))
	logrus.WithFields(logrus.Fields{
		"path":  path,
		"count": len(list),
	}).Info("Read links from file")
	return list, nil
}

// Batch returns the links in [start, end). Bounds outside the list are
// truncated; end <= 0 selects through the end of the list. A negative start
// is clamped to 0, it does not count back from the end of the list.
func Batch(list []string, start, end int) []Entry {
	if start < 0 {
		start = 0
	}
	if end <= 0 || end > len(list) {
		end = len(list)
	}
	if start >= end {
		return []Entry{}
	}

	entries := make([]Entry, 0, end-start)
	for i, url := range list[start:end] {
		entries = append(entries, Entry{Index: start + i, URL: url})
	}
	return entries
}
