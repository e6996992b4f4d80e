package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/radieske/high-roller-tracker-poc/internal/tracker-service/model"
)

func betJSON(t *testing.T, b model.Bet) []byte {
	t.Helper()
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal bet: %v", err)
	}
	return raw
}

var listColumns = []string{"id", "bet_id", "amount", "currency", "status", "bet_data", "created_at"}

func TestListAll_ScansStoredRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	a := model.Bet{ID: "bet-a", Active: true, Amount: 9000, Currency: "usd", Status: "confirmed"}
	b := model.Bet{ID: "bet-b", Active: true, Amount: 0.5, Currency: "btc", Status: ""}

	rows := sqlmock.NewRows(listColumns).
		AddRow("row-1", "bet-a", 9000.0, "usd", "confirmed", betJSON(t, a), now).
		AddRow("row-2", "bet-b", 33000.0, "btc", nil, betJSON(t, b), now.Add(-time.Minute))
	mock.ExpectQuery("SELECT id, bet_id, amount, currency, status, bet_data, created_at").
		WillReturnRows(rows)

	got, err := NewPostgres(db).ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// a ordem vem do banco (created_at DESC) e é preservada
	if got[0].ID != "bet-a" || got[1].ID != "bet-b" {
		t.Errorf("ids = [%s %s], want [bet-a bet-b]", got[0].ID, got[1].ID)
	}
	if got[0].Amount != 9000 || got[0].Status != "confirmed" {
		t.Errorf("bet-a rehydrated = %+v", got[0])
	}
	// status NULL na linha não afeta a aposta embutida no bet_data
	if got[1].Currency != "btc" || got[1].Status != "" {
		t.Errorf("bet-b rehydrated = %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListAll_CorruptedPayloadFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(listColumns).
		AddRow("row-1", "bet-a", 9000.0, "usd", "confirmed", []byte("{not json"), time.Now())
	mock.ExpectQuery("SELECT id, bet_id, amount, currency, status, bet_data, created_at").
		WillReturnRows(rows)

	_, err = NewPostgres(db).ListAll(context.Background())
	var serr *StorageError
	if !errors.As(err, &serr) || serr.Op != "list" {
		t.Fatalf("err = %v, want *StorageError with op list", err)
	}
}

func TestUpsert_ReportsFirstInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	b := model.Bet{ID: "bet-a", Active: true, Amount: 9000, Currency: "usd", Status: "confirmed"}

	mock.ExpectQuery("INSERT INTO high_roller_bets").
		WithArgs(sqlmock.AnyArg(), "bet-a", 9000.0, "usd", "confirmed", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO high_roller_bets").
		WithArgs(sqlmock.AnyArg(), "bet-a", 9000.0, "usd", "confirmed", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))

	pg := NewPostgres(db)
	inserted, err := pg.Upsert(context.Background(), b, 9000)
	if err != nil || !inserted {
		t.Fatalf("first upsert: inserted=%v err=%v, want true/nil", inserted, err)
	}
	inserted, err = pg.Upsert(context.Background(), b, 9000)
	if err != nil || inserted {
		t.Fatalf("second upsert: inserted=%v err=%v, want false/nil", inserted, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsert_EmptyStatusStoredAsNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	b := model.Bet{ID: "bet-x", Active: true, Amount: 0.2, Currency: "btc", Status: ""}

	mock.ExpectQuery("INSERT INTO high_roller_bets").
		WithArgs(sqlmock.AnyArg(), "bet-x", 13200.0, "btc", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))

	if _, err := NewPostgres(db).Upsert(context.Background(), b, 13200); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
