package projects

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
)

const (
	maxSlugBaseLength = 80
	fallbackSlugBase  = "project"
)

// hands out strictly increasing epoch-millisecond suffixes so two projects
// created in the same millisecond by this process never share a slug
type slugClock struct {
	mu   sync.Mutex
	last int64
}

func (s *slugClock) next(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}

	s.last = ms
	return ms
}

// slugify(name) + "-" + suffix
func MakeSlug(name string, suffix int64) string {
	base := slug.Make(name)

	if len(base) > maxSlugBaseLength {
		base = strings.TrimRight(base[:maxSlugBaseLength], "-")
	}

	if base == "" {
		base = fallbackSlugBase
	}

	return fmt.Sprintf("%s-%d", base, suffix)
}
