package gsheets

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client клиент для работы с Google Sheets
type Client struct {
	sheets   *sheets.Service
	drive    *drive.Service
	folderID string
}

// LoadCredentials возвращает JSON сервисного аккаунта: из переменной окружения или из файла
func LoadCredentials(credentialsJSON, credentialsPath string) ([]byte, error) {
	if credentialsJSON != "" {
		return []byte(credentialsJSON), nil
	}
	if credentialsPath == "" {
		return nil, fmt.Errorf("не заданы GOOGLE_CREDENTIALS_JSON и GOOGLE_CREDENTIALS_PATH")
	}
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать credentials: %w", err)
	}
	return data, nil
}

// NewClient создаёт новый клиент Google Sheets по JSON сервисного аккаунта
func NewClient(ctx context.Context, credentials []byte, folderID string) (*Client, error) {
	config, err := google.JWTConfigFromJSON(credentials,
		sheets.SpreadsheetsScope,
		drive.DriveScope,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	httpClient := config.Client(ctx)

	sheetsSrv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Sheets сервиса: %w", err)
	}

	driveSrv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Drive сервиса: %w", err)
	}

	return &Client{
		sheets:   sheetsSrv,
		drive:    driveSrv,
		folderID: folderID,
	}, nil
}

// Store возвращает хранилище строк поверх таблицы spreadsheetID
func (c *Client) Store(spreadsheetID string, loc *time.Location) *Store {
	return NewStore(&sheetValues{srv: c.sheets, spreadsheetID: spreadsheetID}, loc)
}

// CreateSpreadsheet создаёт таблицу трекера и переносит её в папку Drive
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: title,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: ActivitySheet, Index: 0}},
			{Properties: &sheets.SheetProperties{Title: DailySheet, Index: 1}},
		},
	}

	created, err := c.sheets.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("ошибка создания таблицы: %w", err)
	}
	spreadsheetID := created.SpreadsheetId

	if c.folderID != "" {
		_, err = c.drive.Files.Update(spreadsheetID, nil).
			AddParents(c.folderID).
			Context(ctx).
			Do()
		if err != nil {
			log.WithError(err).Warn("Не удалось переместить таблицу в папку")
		}
	}

	log.WithField("spreadsheet_id", spreadsheetID).Info("Создана Google таблица")
	return spreadsheetID, nil
}

// EnsureStructure добавляет недостающие листы и пишет заголовки в пустые листы.
// Лист с другими заголовками не трогается: возвращается ошибка.
func (c *Client) EnsureStructure(ctx context.Context, spreadsheetID string) error {
	spreadsheet, err := c.sheets.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("ошибка получения структуры: %w", err)
	}

	existing := make(map[string]int64)
	for _, sheet := range spreadsheet.Sheets {
		existing[sheet.Properties.Title] = sheet.Properties.SheetId
	}

	values := &sheetValues{srv: c.sheets, spreadsheetID: spreadsheetID}

	for _, layout := range []sheetLayout{activityLayout, dailyLayout} {
		sheetID, ok := existing[layout.title]
		if !ok {
			sheetID, err = c.addSheet(ctx, spreadsheetID, layout.title)
			if err != nil {
				return err
			}
			log.WithField("sheet", layout.title).Info("Создан лист")
		}

		header, err := values.Get(ctx, layout.title+"!1:1")
		if err != nil {
			return fmt.Errorf("ошибка чтения заголовков %s: %w", layout.title, err)
		}
		if len(header) == 0 || len(header[0]) == 0 {
			if err := values.Update(ctx, layout.title+"!A1", [][]interface{}{layout.headerRow()}); err != nil {
				return fmt.Errorf("ошибка записи заголовков %s: %w", layout.title, err)
			}
			c.formatHeaders(ctx, spreadsheetID, sheetID, int64(len(layout.headers)))
			continue
		}
		if err := layout.checkHeader(header[0]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) addSheet(ctx context.Context, spreadsheetID, title string) (int64, error) {
	resp, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("ошибка создания листа %s: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("пустой ответ на создание листа %s", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// formatHeaders форматирует заголовки (жирный шрифт, цвет фона, закреплённая строка)
func (c *Client) formatHeaders(ctx context.Context, spreadsheetID string, sheetID, columns int64) {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: &sheets.Color{
							Red:   0.2,
							Green: 0.4,
							Blue:  0.8,
						},
						TextFormat: &sheets.TextFormat{
							Bold: true,
							ForegroundColor: &sheets.Color{
								Red:   1,
								Green: 1,
								Blue:  1,
							},
						},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		log.WithError(err).Warn("Ошибка форматирования заголовков")
	}
}

// GetSpreadsheetURL возвращает URL таблицы
func GetSpreadsheetURL(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", spreadsheetID)
}
