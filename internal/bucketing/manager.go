package bucketing

import (
	"hash"
	"sync"

	"github.com/spaolacci/murmur3"

	"lms-service/internal/config"
)

// BucketingManager assigns users to stable partition buckets so the users
// table spreads evenly across the cluster.
type BucketingManager struct {
	userBuckets int
	hasherPool  sync.Pool
}

func NewBucketingManager(cfg *config.Config) *BucketingManager {
	bm := &BucketingManager{
		userBuckets: cfg.Bucketing.UserBuckets,
	}
	bm.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}
	return bm
}

// GetUserBucket returns a consistent bucket in [0, userBuckets).
func (bm *BucketingManager) GetUserBucket(userID string) int {
	return bm.getBucket(userID, bm.userBuckets)
}

func (bm *BucketingManager) getBucket(id string, buckets int) int {
	if buckets <= 0 {
		return 0
	}
	h := bm.hasherPool.Get().(hash.Hash64)
	defer bm.hasherPool.Put(h)

	h.Reset()
	_, _ = h.Write([]byte(id))
	return int(h.Sum64() % uint64(buckets))
}
