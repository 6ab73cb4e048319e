package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"salesanalytics/internal/query"
)

// DefaultSessionTTL 明细表会话空闲过期时间
const DefaultSessionTTL = 2 * time.Hour

type tableEntry struct {
	state     query.TableState
	expiresAt time.Time
}

// tableStore 会话ID -> 明细表状态，访问时顺延过期时间
type tableStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*tableEntry
}

func newTableStore(ttl time.Duration) *tableStore {
	return &tableStore{
		ttl:   ttl,
		items: make(map[string]*tableEntry),
	}
}

// update 对会话状态执行 fn 并返回副本；会话不存在或已过期时以初始状态重建
func (s *tableStore) update(id string, fn func(*query.TableState)) query.TableState {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.purgeExpiredLocked(now)

	e, ok := s.items[id]
	if !ok {
		e = &tableEntry{state: *query.NewTableState()}
		s.items[id] = e
	}
	if fn != nil {
		fn(&e.state)
	}
	e.expiresAt = now.Add(s.ttl)
	return e.state
}

// syncPage 回写被限制后的页码；期间状态被改动过则放弃
func (s *tableStore) syncPage(id string, seen query.TableState, res query.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[id]; ok && e.state == seen {
		e.state.Sync(res)
	}
}

func (s *tableStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *tableStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *tableStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

// TableView 明细表当前视图
type TableView struct {
	SessionID string           `json:"sessionId"`
	State     query.TableState `json:"state"`
	Result    query.Result     `json:"result"`
	Columns   []string         `json:"columns"`
	Cells     [][]string       `json:"cells"` // 本页按展示列格式化后的文本
	Showing   string           `json:"showing"`
}

// NewSession 分配新的明细表会话
func (c *Controller) NewSession() string {
	id := uuid.NewString()
	c.tables.update(id, nil)
	return id
}

// EndSession 丢弃会话状态
func (c *Controller) EndSession(id string) {
	c.tables.delete(id)
}

// Table 当前会话的明细表视图
func (c *Controller) Table(ctx context.Context, id string) (*TableView, error) {
	return c.UpdateTable(ctx, id, nil)
}

// UpdateTable 修改会话状态（搜索、排序、翻页、客户筛选）后返回视图
func (c *Controller) UpdateTable(ctx context.Context, id string, fn func(*query.TableState)) (*TableView, error) {
	ds, err := c.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	state := c.tables.update(id, fn)
	res := query.Run(ds.Records, state.Request())
	c.tables.syncPage(id, state, res)
	state.Sync(res)

	cells := make([][]string, len(res.Rows))
	for i := range res.Rows {
		cells[i] = query.Project(&res.Rows[i], query.DisplayColumns)
	}
	return &TableView{
		SessionID: id,
		State:     state,
		Result:    res,
		Columns:   query.DisplayColumns,
		Cells:     cells,
		Showing:   res.Showing(),
	}, nil
}
