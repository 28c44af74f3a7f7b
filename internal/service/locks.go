package service

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLocks 按键哈希分片的互斥锁，同一键的读改写串行执行
type stripedLocks struct {
	mu [lockStripes]sync.Mutex
}

func (l *stripedLocks) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.mu[h.Sum32()%lockStripes]
}
