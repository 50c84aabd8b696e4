package cssmod

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// fileCache keeps transformed files keyed by path and content, so unchanged
// files skip parsing and rewriting on rebuilds.
type fileCache struct {
	cache *lru.Cache[uint64, *FileResult]
}

func newFileCache(size int, log *zap.Logger) (*fileCache, error) {
	cache, err := lru.NewWithEvict(size, func(_ uint64, value *FileResult) {
		log.Debug("Evicted cached file", zap.String("file", value.RelPath))
	})
	if err != nil {
		return nil, err
	}
	return &fileCache{cache: cache}, nil
}

// contentKey hashes the relative path together with the file content
func contentKey(relPath string, data []byte) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(relPath)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(data)
	return d.Sum64()
}

func (c *fileCache) get(key uint64) (*FileResult, bool) {
	cached, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	hit := *cached
	hit.Cached = true
	return &hit, true
}

func (c *fileCache) add(key uint64, result *FileResult) {
	c.cache.Add(key, result)
}

func (c *fileCache) len() int {
	return c.cache.Len()
}
