package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/wire"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrStockNotCached = errors.New("stock not cached")

// setStockIfNewerScript writes a medicine's stock hash unless the cached
// version is already at least as new. Writes may arrive out of order from
// concurrent requests; the version keeps the newest.
var setStockIfNewerScript = redis.NewScript(`
	local current = tonumber(redis.call('HGET', KEYS[1], 'version') or '0')
	if current >= tonumber(ARGV[1]) then
		return 0
	end
	redis.call('HSET', KEYS[1],
		'version', ARGV[1],
		'available', ARGV[2],
		'reserved', ARGV[3],
		'status', ARGV[4],
		'pharmacy_id', ARGV[5])
	return 1
`)

const (
	RedisStockKeyPrefix = "medicine:stock:"

	// Timeout for individual Redis operations
	redisSyncTimeout = 5 * time.Second

	// Batch size for startup sync
	syncBatchSize = 500

	stockQueueSize = 1024
)

// StockSnapshot is the cached stock of one medicine.
type StockSnapshot struct {
	MedicineID int64  `json:"medicine_id"`
	PharmacyID int64  `json:"pharmacy_id"`
	Available  int    `json:"available"`
	Reserved   int    `json:"reserved"`
	Status     string `json:"status"`
	Version    int64  `json:"version"`
}

// StockCacheService mirrors medicine stock into Redis so other processes
// can read it without asking the reservation server. It receives changes
// from the store and writes them from a background goroutine.
type StockCacheService struct {
	redisClient *redis.Client
	log         *logrus.Logger

	queue chan entity.Medicine

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewStockCacheService(redisClient *redis.Client, log *logrus.Logger) *StockCacheService {
	svc := &StockCacheService{
		redisClient: redisClient,
		log:         log,
		queue:       make(chan entity.Medicine, stockQueueSize),
		stopChan:    make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.writeLoop()

	return svc
}

// Stop drains queued writes and shuts the writer down.
// Safe to call multiple times.
func (s *StockCacheService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("StockCacheService stopped")
	}
}

// StockChanged queues the medicines for writing. When the queue is full
// the change is dropped; the next change or startup sync repairs it.
func (s *StockCacheService) StockChanged(ctx context.Context, medicines []entity.Medicine) {
	if s.stopped.Load() {
		return
	}
	for _, m := range medicines {
		select {
		case s.queue <- m:
		default:
			s.log.Warnf("Stock cache queue full, dropping update for medicine %d", m.ID)
		}
	}
}

func (s *StockCacheService) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case m := <-s.queue:
			s.write(m)
		case <-s.stopChan:
			for {
				select {
				case m := <-s.queue:
					s.write(m)
				default:
					return
				}
			}
		}
	}
}

func (s *StockCacheService) write(m entity.Medicine) {
	ctx, cancel := context.WithTimeout(context.Background(), redisSyncTimeout)
	defer cancel()

	if err := setStockIfNewerScript.Run(ctx, s.redisClient, []string{stockKey(m.ID)}, stockArgs(m)...).Err(); err != nil {
		s.log.Warnf("Failed to cache stock for medicine %d: %+v", m.ID, err)
	}
}

// SyncOnStartup writes every medicine to Redis in batches, overwriting
// whatever is cached: a store restored from an older checkpoint carries
// lower versions than the hashes a previous run left behind. It should run
// after the store is loaded and before traffic is accepted.
func (s *StockCacheService) SyncOnStartup(ctx context.Context, medicines []entity.Medicine) error {
	s.log.Info("Starting Redis stock sync...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	for offset := 0; offset < len(medicines); offset += syncBatchSize {
		batch := medicines[offset:min(offset+syncBatchSize, len(medicines))]

		pipe := s.redisClient.Pipeline()
		for _, m := range batch {
			pipe.HSet(ctx, stockKey(m.ID), stockFields(m))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}
		s.log.Debugf("Synced batch: %d medicines", len(batch))

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	s.log.Infof("Redis stock sync completed: %d medicines synced in %v", len(medicines), time.Since(startTime))
	return nil
}

// Stock reads the cached stock of one medicine.
func (s *StockCacheService) Stock(ctx context.Context, medicineID int64) (StockSnapshot, error) {
	values, err := s.redisClient.HGetAll(ctx, stockKey(medicineID)).Result()
	if err != nil {
		return StockSnapshot{}, fmt.Errorf("read stock for medicine %d: %w", medicineID, err)
	}
	if len(values) == 0 {
		return StockSnapshot{}, ErrStockNotCached
	}

	return StockSnapshot{
		MedicineID: medicineID,
		PharmacyID: wire.Field(values["pharmacy_id"]).Int(0),
		Available:  int(wire.Field(values["available"]).Int(0)),
		Reserved:   int(wire.Field(values["reserved"]).Int(0)),
		Status:     values["status"],
		Version:    wire.Field(values["version"]).Int(0),
	}, nil
}

func stockKey(medicineID int64) string {
	return fmt.Sprintf("%s%d", RedisStockKeyPrefix, medicineID)
}

func stockFields(m entity.Medicine) map[string]interface{} {
	return map[string]interface{}{
		"version":     m.Version,
		"available":   m.QuantityAvailable,
		"reserved":    m.QuantityReserved,
		"status":      string(m.Status),
		"pharmacy_id": m.PharmacyID,
	}
}

func stockArgs(m entity.Medicine) []interface{} {
	return []interface{}{m.Version, m.QuantityAvailable, m.QuantityReserved, string(m.Status), m.PharmacyID}
}
