package orderline

import "github.com/licence-store/internal/models"

// Plan 草稿明细与已持久化明细之间的差异
type Plan struct {
	ToDelete []models.ActionLine
	ToUpdate []ExistingLine
	ToCreate []NewLine
}

// Empty 是否无需任何操作
func (p Plan) Empty() bool {
	return len(p.ToDelete) == 0 && len(p.ToUpdate) == 0 && len(p.ToCreate) == 0
}

// Reconcile 计算增删改计划，不发起任何请求。
// 已存在的行总是进入更新集合，不做字段级比较。
func Reconcile(draft *Draft, persisted []models.ActionLine) Plan {
	var plan Plan
	kept := make(map[uint]struct{}, len(draft.Lines))
	for _, line := range draft.Lines {
		switch l := line.(type) {
		case ExistingLine:
			kept[l.ID] = struct{}{}
			plan.ToUpdate = append(plan.ToUpdate, l)
		case NewLine:
			plan.ToCreate = append(plan.ToCreate, l)
		}
	}
	for _, record := range persisted {
		if _, ok := kept[record.ID]; !ok {
			plan.ToDelete = append(plan.ToDelete, record)
		}
	}
	return plan
}
