package evaluation

import (
	"context"
	"sync"
	"sync/atomic"

	"recipe-highlighter/internal/pkg/common"
)

// DefaultWorkers 預設評估並行數
const DefaultWorkers = 4

// job 單一評估工作；load 延遲到 worker 內才讀檔
type job struct {
	file string
	load func() (*common.Dataset, error)
}

// outcome 工作結果，二擇一
type outcome struct {
	result *RecipeResult
	err    *FileError
}

// PoolStatus 工作池狀態
type PoolStatus struct {
	Workers        int `json:"workers"`
	QueuedCount    int `json:"queued_count"`
	ProcessedCount int `json:"processed_count"`
}

// pool 固定數量 worker 的工作池
// 結果依工作索引寫回，輸出順序與輸入一致
type pool struct {
	workers   int
	queued    int64
	processed int64
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &pool{workers: workers}
}

// run 執行所有工作；ctx 取消時停止派發並返回 ctx.Err()，已派發的工作仍會完成
func (p *pool) run(ctx context.Context, jobs []job, process func(job) outcome) ([]outcome, error) {
	out := make([]outcome, len(jobs))
	queue := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers && w < len(jobs); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				out[i] = process(jobs[i])
				atomic.AddInt64(&p.processed, 1)
			}
		}()
	}

	var err error
dispatch:
	for i := range jobs {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case queue <- i:
			atomic.AddInt64(&p.queued, 1)
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		}
	}
	close(queue)
	wg.Wait()
	return out, err
}

// status 獲取工作池狀態
func (p *pool) status() PoolStatus {
	return PoolStatus{
		Workers:        p.workers,
		QueuedCount:    int(atomic.LoadInt64(&p.queued)),
		ProcessedCount: int(atomic.LoadInt64(&p.processed)),
	}
}
