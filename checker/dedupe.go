package checker

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	bloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/edsrzf/mmap-go"

	"github.com/lukemcguire/linkbadger/urlutil"
)

// seenTracker remembers (file, URL) pairs in a bloom filter whose bit array
// is a memory-mapped temp file, so large source trees page to disk instead of
// growing the heap. A false positive drops a pair that was never checked; the
// rate is 0.1% at the estimated capacity.
type seenTracker struct {
	mu      sync.Mutex
	filter  *bloom.BloomFilter
	region  mmap.MMap
	file    *os.File
	tmpPath string
}

func newSeenTracker(estimated uint) (*seenTracker, error) {
	if estimated < 1000 {
		estimated = 1000
	}
	m, k := bloom.EstimateParameters(estimated, 0.001)
	words := int((m + 63) / 64)

	f, err := os.CreateTemp("", "linkbadger-seen-*.bloom")
	if err != nil {
		return nil, fmt.Errorf("create bloom file: %w", err)
	}
	t := &seenTracker{file: f, tmpPath: f.Name()}

	if err := f.Truncate(int64(words) * 8); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("size bloom file: %w", err)
	}
	t.region, err = mmap.MapRegion(f, words*8, mmap.RDWR, 0, 0)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("map bloom file: %w", err)
	}

	// The filter's bit set aliases the mapping; every Add lands in the file.
	bits := unsafe.Slice((*uint64)(unsafe.Pointer(&t.region[0])), words)
	t.filter = bloom.From(bits, k)
	return t, nil
}

// firstSighting records the pair and reports whether it was new. URLs that
// differ only in case of scheme or host, fragment, or a trailing slash count
// as the same URL.
func (t *seenTracker) firstSighting(file, rawURL string) bool {
	if normalized, err := urlutil.Normalize(rawURL); err == nil {
		rawURL = normalized
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.filter.TestOrAddString(file + "\x00" + rawURL)
}

// Close unmaps the filter and removes its file. The tracker must not be used
// afterwards.
func (t *seenTracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.filter = nil
	var errs []error
	if t.region != nil {
		if err := t.region.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap bloom file: %w", err))
		}
		t.region = nil
	}
	if t.file != nil {
		if err := t.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bloom file: %w", err))
		}
		t.file = nil
	}
	if t.tmpPath != "" {
		if err := os.Remove(t.tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove bloom file: %w", err))
		}
		t.tmpPath = ""
	}
	return errors.Join(errs...)
}
