package gsheets

import (
	"context"

	"google.golang.org/api/sheets/v4"
)

// valuesAPI — часть Sheets API, которой пользуется хранилище
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]interface{}, error)
	Update(ctx context.Context, rng string, values [][]interface{}) error
	Append(ctx context.Context, rng string, values [][]interface{}) error
}

type sheetValues struct {
	srv           *sheets.Service
	spreadsheetID string
}

func (v *sheetValues) Get(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := v.srv.Spreadsheets.Values.Get(v.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Update пишет значения как есть (RAW), чтобы даты и дни недели не превращались в формулы и числа
func (v *sheetValues) Update(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := v.srv.Spreadsheets.Values.Update(v.spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (v *sheetValues) Append(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := v.srv.Spreadsheets.Values.Append(v.spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
