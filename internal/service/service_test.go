package service

import (
	"fmt"
	"testing"

	"buildledger/internal/model"
	"buildledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database.
type testEnv struct {
	db        *gorm.DB
	mailer    *fakeMailer
	estimates EstimateService
	invoices  InvoiceService
	clients   ClientService
	auth      AuthService
	dashboard DashboardService
	activity  ActivityService
	tenant    uuid.UUID
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Client{},
		&model.Estimate{},
		&model.EstimateItem{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.ActivityLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	estimateRepo := repository.NewEstimateRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	fm := &fakeMailer{}

	return &testEnv{
		db:        db,
		mailer:    fm,
		estimates: NewEstimateService(estimateRepo, invoiceRepo, clientRepo, activityRepo, txManager, fm, nil),
		invoices:  NewInvoiceService(invoiceRepo, clientRepo, activityRepo, txManager, nil),
		clients:   NewClientService(clientRepo, activityRepo, txManager),
		auth:      NewAuthService(userRepo),
		dashboard: NewDashboardService(db),
		activity:  NewActivityService(activityRepo),
		tenant:    uuid.New(),
	}
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent    []sentMail
	failErr error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
