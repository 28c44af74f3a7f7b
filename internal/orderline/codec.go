package orderline

import (
	"encoding/json"
	"fmt"

	"github.com/licence-store/internal/models"
)

const (
	lineKindNew      = "new"
	lineKindExisting = "existing"
)

type lineJSON struct {
	Kind string `json:"kind"`
	ID   uint   `json:"id,omitempty"`
	Item
	LineTotal models.Money `json:"line_total"`
}

type draftJSON struct {
	ID               *uint        `json:"id,omitempty"`
	Type             string       `json:"type"`
	Price            models.Money `json:"price"`
	Paid             bool         `json:"paid"`
	Delivered        bool         `json:"delivered"`
	ClientID         uint         `json:"client_id"`
	SellerID         *uint        `json:"seller_id,omitempty"`
	PaymentMethodID  uint         `json:"payment_method_id"`
	PaymentReference string       `json:"payment_reference,omitempty"`
	Comment          string       `json:"comment,omitempty"`
	Lines            []lineJSON   `json:"lines"`
}

// MarshalJSON 行带 kind 标记，区分新增与已存在
func (d Draft) MarshalJSON() ([]byte, error) {
	out := draftJSON{
		ID:               d.ID,
		Type:             d.Type,
		Price:            d.Price,
		Paid:             d.Paid,
		Delivered:        d.Delivered,
		ClientID:         d.ClientID,
		SellerID:         d.SellerID,
		PaymentMethodID:  d.PaymentMethodID,
		PaymentReference: d.PaymentReference,
		Comment:          d.Comment,
		Lines:            make([]lineJSON, 0, len(d.Lines)),
	}
	for _, line := range d.Lines {
		switch l := line.(type) {
		case NewLine:
			out.Lines = append(out.Lines, lineJSON{Kind: lineKindNew, Item: l.Item, LineTotal: l.LineTotal()})
		case ExistingLine:
			out.Lines = append(out.Lines, lineJSON{Kind: lineKindExisting, ID: l.ID, Item: l.Item, LineTotal: l.LineTotal()})
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON 解析草稿并重新计算价格
func (d *Draft) UnmarshalJSON(b []byte) error {
	var in draftJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	lines := make([]Line, 0, len(in.Lines))
	for i, l := range in.Lines {
		switch l.Kind {
		case lineKindNew:
			lines = append(lines, NewLine{Item: l.Item})
		case lineKindExisting:
			if l.ID == 0 {
				return fmt.Errorf("line %d: existing line without id", i)
			}
			lines = append(lines, ExistingLine{ID: l.ID, Item: l.Item})
		default:
			return fmt.Errorf("line %d: unknown kind %q", i, l.Kind)
		}
	}
	*d = Draft{
		ID:               in.ID,
		Type:             in.Type,
		Paid:             in.Paid,
		Delivered:        in.Delivered,
		ClientID:         in.ClientID,
		SellerID:         in.SellerID,
		PaymentMethodID:  in.PaymentMethodID,
		PaymentReference: in.PaymentReference,
		Comment:          in.Comment,
		Lines:            lines,
	}
	d.Recompute()
	return nil
}
