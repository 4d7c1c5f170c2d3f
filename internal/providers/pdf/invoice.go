// Package pdf renders invoice documents.
package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	billingdomain "github.com/mesterwork/mesterwork/internal/billing/domain"
)

type Renderer struct{}

func New() billingdomain.Renderer {
	return &Renderer{}
}

func (r *Renderer) RenderInvoice(ctx context.Context, data billingdomain.InvoiceData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Oldal {current} / {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Számla", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Számlaszám: "+data.InvoiceNumber, props.Text{Top: 0}),
			text.New("Kelt: "+data.IssuedAt, props.Text{Top: 4}),
			text.New("Munka: "+data.WorkTitle, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Kiállító", props.Text{Style: fontstyle.Bold}),
			text.New(data.TenantEmail, props.Text{Top: 5}),
		),
	)

	m.AddRow(12,
		text.NewCol(12, data.Title, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Top:   2,
		}),
	)

	m.AddRow(10,
		text.NewCol(4, "Megnevezés", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Mennyiség", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Munkadíj", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Anyagdíj", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Összesen", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(12,
			text.NewCol(4, item.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%.2f %s", item.Quantity, item.Unit), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatForint(item.WorkTotal), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatForint(item.MaterialTotal), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatForint(item.TotalPrice), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(8),
		text.NewCol(2, "Végösszeg", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, formatForint(data.TotalPrice), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func formatForint(amount float64) string {
	return fmt.Sprintf("%.0f Ft", amount)
}
