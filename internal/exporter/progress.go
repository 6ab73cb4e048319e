package exporter

import "fmt"

// 导出阶段
const (
	StageRecords   = "records"
	StageCustomers = "customers"
	StageDone      = "done"
)

// recordsShare 明细表占整体进度的比例
const recordsShare = 90

// ProgressEvent 导出进度：阶段、百分比与已写出的明细行数
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Rows    int    `json:"rows"`
	Total   int    `json:"total"`
}

func (e ProgressEvent) String() string {
	return fmt.Sprintf("%3d%% %s (%d/%d rows)", e.Percent, e.Stage, e.Rows, e.Total)
}

// ProgressFunc 导出进度回调，nil 表示不关心进度
type ProgressFunc func(ProgressEvent)

// progressTracker 把行数折算为百分比，每跨过 10% 通知一次
type progressTracker struct {
	notify  ProgressFunc
	total   int
	rows    int
	percent int
}

func newProgressTracker(notify ProgressFunc, total int) *progressTracker {
	return &progressTracker{notify: notify, total: total, percent: -1}
}

// row 记录一行明细写出完成
func (t *progressTracker) row() {
	t.rows++
	if t.total == 0 {
		return
	}
	p := t.rows * recordsShare / t.total
	if p/10 > t.percent/10 {
		t.emit(StageRecords, p)
	}
}

func (t *progressTracker) emit(stage string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.percent = percent
	if t.notify == nil {
		return
	}
	t.notify(ProgressEvent{Stage: stage, Percent: percent, Rows: t.rows, Total: t.total})
}
