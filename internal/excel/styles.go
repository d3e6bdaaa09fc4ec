package excel

import (
	"fmt"

	"github.com/Veraticus/notecheck/internal/layout"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/xuri/excelize/v2"
)

type styleSet struct {
	status       map[model.DocumentStatus]int
	header       int
	clientHeader int
	date         int
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{
		Type:    "pattern",
		Pattern: 1,
		Color:   []string{color},
	}
}

func newStyleSet(f *excelize.File) (styleSet, error) {
	headerFont := &excelize.Font{Bold: true, Color: layout.HeaderFont}

	header, err := f.NewStyle(&excelize.Style{Font: headerFont, Fill: solidFill(layout.HeaderFill)})
	if err != nil {
		return styleSet{}, fmt.Errorf("failed to create header style: %w", err)
	}

	clientHeader, err := f.NewStyle(&excelize.Style{Font: headerFont, Fill: solidFill(layout.ClientNameHeaderFill)})
	if err != nil {
		return styleSet{}, fmt.Errorf("failed to create client header style: %w", err)
	}

	date, err := f.NewStyle(&excelize.Style{NumFmt: shortDateFormat})
	if err != nil {
		return styleSet{}, fmt.Errorf("failed to create date style: %w", err)
	}

	status := make(map[model.DocumentStatus]int, 3)
	for _, s := range model.AllStatuses() {
		id, err := f.NewStyle(&excelize.Style{Fill: solidFill(layout.StatusFill(s))})
		if err != nil {
			return styleSet{}, fmt.Errorf("failed to create %s style: %w", s, err)
		}
		status[s] = id
	}

	return styleSet{
		header:       header,
		clientHeader: clientHeader,
		date:         date,
		status:       status,
	}, nil
}
