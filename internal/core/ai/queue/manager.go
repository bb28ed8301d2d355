package queue

import (
	"sync/atomic"

	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// Status 上游併發狀態
type Status struct {
	InFlight       int   `json:"in_flight"`
	MaxConcurrent  int   `json:"max_concurrent"`
	ProcessedCount int64 `json:"processed_count"`
	RejectedCount  int64 `json:"rejected_count"`
}

// Manager 上游併發閘門，額滿時直接拒絕不排隊等待
type Manager struct {
	slots     chan struct{}
	processed int64
	rejected  int64
}

// NewManager 創建新的併發閘門
func NewManager(maxConcurrent int) *Manager {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Manager{
		slots: make(chan struct{}, maxConcurrent),
	}
}

// TryAcquire 嘗試取得一個上游呼叫名額
func (m *Manager) TryAcquire() bool {
	select {
	case m.slots <- struct{}{}:
		return true
	default:
		atomic.AddInt64(&m.rejected, 1)
		common.LogWarn("Upstream gate is full",
			zap.Int("in_flight", len(m.slots)),
			zap.Int("max_concurrent", cap(m.slots)),
		)
		return false
	}
}

// Release 歸還名額
func (m *Manager) Release() {
	select {
	case <-m.slots:
		atomic.AddInt64(&m.processed, 1)
	default:
	}
}

// Status 獲取閘門狀態
func (m *Manager) Status() Status {
	return Status{
		InFlight:       len(m.slots),
		MaxConcurrent:  cap(m.slots),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		RejectedCount:  atomic.LoadInt64(&m.rejected),
	}
}
