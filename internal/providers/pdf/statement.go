package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// StatementRow is one billed unit on the period statement.
type StatementRow struct {
	UnitNumber      string
	PreviousReading float64
	CurrentReading  float64
	Consumption     float64
	IndividualCost  float64
	CommonAreaCost  float64
	TotalCost       float64
}

// StatementData feeds the period statement PDF.
type StatementData struct {
	CondominiumName string
	PeriodLabel     string
	TotalVolume     float64
	TotalAmount     float64
	BilledTotal     float64
	Rows            []StatementRow
	Anomalies       []string
}

// PDFProvider renders documents with maroto.
type PDFProvider struct{}

func NewPDFProvider() *PDFProvider { return &PDFProvider{} }

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	_ = ctx

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, "Water billing statement", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(15,
		col.New(12).Add(
			text.New(data.CondominiumName, props.Text{Style: fontstyle.Bold}),
			text.New("Billing period: "+data.PeriodLabel, props.Text{Top: 5}),
		),
	)

	// Table header
	m.AddRow(10,
		text.NewCol(2, "Unit", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Previous", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Current", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "m3", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Individual", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Common", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, row := range data.Rows {
		m.AddRow(8,
			text.NewCol(2, row.UnitNumber, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%.2f", row.PreviousReading), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", row.CurrentReading), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, fmt.Sprintf("%.2f", row.Consumption), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", row.IndividualCost), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", row.CommonAreaCost), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, fmt.Sprintf("%.2f", row.TotalCost), props.Text{Size: 9, Align: align.Right}),
		)
	}

	// Footer totals
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Receipt volume", props.Text{Size: 9}),
		text.NewCol(3, fmt.Sprintf("%.2f m3", data.TotalVolume), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Receipt amount", props.Text{Size: 9}),
		text.NewCol(3, fmt.Sprintf("%.2f", data.TotalAmount), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Billed total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, fmt.Sprintf("%.2f", data.BilledTotal), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	if len(data.Anomalies) > 0 {
		m.AddRow(12,
			text.NewCol(12, "Anomalies for review", props.Text{Style: fontstyle.Bold, Size: 10, Top: 4}),
		)
		for _, anomaly := range data.Anomalies {
			m.AddRow(7,
				text.NewCol(12, "- "+anomaly, props.Text{Size: 8}),
			)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
