package orderline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/licence-store/internal/constants"

	"golang.org/x/sync/errgroup"
)

// ErrUnknownOp 操作类型无法识别
var ErrUnknownOp = errors.New("unknown line op kind")

// LineWriter 执行单条明细操作的后端协作者
type LineWriter interface {
	CreateLine(ctx context.Context, orderID uint, item Item) error
	UpdateLine(ctx context.Context, orderID, lineID uint, item Item) error
	DeleteLine(ctx context.Context, lineID uint) error
}

// Op 单条明细操作，可序列化后放入重试队列
type Op struct {
	Kind    string `json:"kind"`
	OrderID uint   `json:"order_id"`
	LineID  uint   `json:"line_id,omitempty"`
	Item    Item   `json:"item"`
}

// Run 对 writer 执行该操作
func (op Op) Run(ctx context.Context, w LineWriter) error {
	switch op.Kind {
	case constants.LineOpCreate:
		return w.CreateLine(ctx, op.OrderID, op.Item)
	case constants.LineOpUpdate:
		return w.UpdateLine(ctx, op.OrderID, op.LineID, op.Item)
	case constants.LineOpDelete:
		return w.DeleteLine(ctx, op.LineID)
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, op.Kind)
	}
}

// FailedOp 执行失败的操作
type FailedOp struct {
	Op  Op
	Err error
}

// Report 计划执行结果
type Report struct {
	Deleted int
	Created int
	Updated int
	Failed  []FailedOp
}

// OK 是否全部成功
func (r Report) OK() bool {
	return len(r.Failed) == 0
}

// ApplyOptions 执行参数
type ApplyOptions struct {
	// Concurrency 创建与更新阶段的并发上限，<=0 表示不限制
	Concurrency int
}

// Ops 按执行顺序展开计划：删除、创建、更新
func (p Plan) Ops(orderID uint) []Op {
	ops := make([]Op, 0, len(p.ToDelete)+len(p.ToCreate)+len(p.ToUpdate))
	for _, record := range p.ToDelete {
		ops = append(ops, Op{Kind: constants.LineOpDelete, OrderID: orderID, LineID: record.ID})
	}
	for _, line := range p.ToCreate {
		ops = append(ops, Op{Kind: constants.LineOpCreate, OrderID: orderID, Item: line.Item})
	}
	for _, line := range p.ToUpdate {
		ops = append(ops, Op{Kind: constants.LineOpUpdate, OrderID: orderID, LineID: line.ID, Item: line.Item})
	}
	return ops
}

// Apply 先完成全部删除，再并发执行创建与更新。
// 单条失败不会中断其余操作，失败项记录在 Report.Failed 中。
func (p Plan) Apply(ctx context.Context, orderID uint, w LineWriter, opts ApplyOptions) Report {
	var (
		mu     sync.Mutex
		report Report
	)
	record := func(op Op, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed = append(report.Failed, FailedOp{Op: op, Err: err})
			return
		}
		switch op.Kind {
		case constants.LineOpDelete:
			report.Deleted++
		case constants.LineOpCreate:
			report.Created++
		case constants.LineOpUpdate:
			report.Updated++
		}
	}

	var deletes, writes []Op
	for _, op := range p.Ops(orderID) {
		if op.Kind == constants.LineOpDelete {
			deletes = append(deletes, op)
		} else {
			writes = append(writes, op)
		}
	}

	runPhase(ctx, deletes, w, opts.Concurrency, record)
	runPhase(ctx, writes, w, opts.Concurrency, record)
	return report
}

func runPhase(ctx context.Context, ops []Op, w LineWriter, limit int, record func(Op, error)) {
	if len(ops) == 0 {
		return
	}
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, op := range ops {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				record(op, err)
				return nil
			}
			record(op, op.Run(ctx, w))
			return nil
		})
	}
	_ = g.Wait()
}
