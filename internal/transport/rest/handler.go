package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"splitpay-api/internal/domain"
	"splitpay-api/internal/metrics"
	"splitpay-api/internal/service"
)

type PaymentRequestService interface {
	Create(ctx context.Context, in service.CreatePaymentRequestInput) (*domain.PaymentRequest, error)
	Decline(ctx context.Context, id string) (*domain.PaymentRequest, error)
	SetStatus(ctx context.Context, id string, status domain.PaymentRequestStatus) (*domain.PaymentRequest, error)
	MarkPaid(ctx context.Context, id string, markAsFriendCredit bool) (*domain.PaymentRequest, error)
	AddRepayment(ctx context.Context, id string, amount decimal.Decimal, notes string) (*service.RepaymentResult, error)
	ListForUser(ctx context.Context, userUUID string) ([]service.PaymentRequestView, error)
	ListAllForUser(ctx context.Context, userUUID string) ([]service.PaymentRequestView, error)
	GetDetail(ctx context.Context, id, requestingUserUUID string) (*service.PaymentRequestDetail, error)
}

type StatementExporter interface {
	ExportStatement(ctx context.Context, userUUID string) (*service.ExportResult, error)
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, in service.CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Find(ctx context.Context, userUUID, mobile string) (*domain.User, error)
	Update(ctx context.Context, id string, in service.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
}

type BillService interface {
	Create(ctx context.Context, in service.CreateBillInput) (*service.BillCreated, error)
	List(ctx context.Context) ([]service.BillView, error)
	Get(ctx context.Context, id string) (*domain.Bill, error)
}

type NotificationService interface {
	SendBetween(ctx context.Context, in service.SendBetweenInput) (*service.SendBetweenResult, error)
}

type TransactionSaver interface {
	Save(ctx context.Context, in service.SaveTransactionInput) (*domain.NotificationTransaction, error)
}

type ImageUploader interface {
	UploadImage(ctx context.Context, fileName string, data []byte) (string, error)
}

// Services groups the handler dependencies; nil members leave their routes
// unmounted.
type Services struct {
	Ledger        PaymentRequestService
	Exports       StatementExporter
	Users         UserService
	Bills         BillService
	Notifications NotificationService
	Transactions  TransactionSaver
	Uploads       ImageUploader
	Validator     StructValidator
}

type Handler struct {
	ledger        PaymentRequestService
	exports       StatementExporter
	users         UserService
	bills         BillService
	notifications NotificationService
	transactions  TransactionSaver
	uploads       ImageUploader
	validator     StructValidator
}

func NewHandler(s Services) *Handler {
	return &Handler{
		ledger:        s.Ledger,
		exports:       s.Exports,
		users:         s.Users,
		bills:         s.Bills,
		notifications: s.Notifications,
		transactions:  s.Transactions,
		uploads:       s.Uploads,
		validator:     s.Validator,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		accessLog,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
		withCORS,
		metrics.Middleware,
	)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "SplitPay API is running")
	})

	r.Route("/api", func(r chi.Router) {
		if h.ledger != nil {
			r.Route("/payment-requests", func(r chi.Router) {
				r.Post("/", h.createPaymentRequest)
				r.Get("/{userUUID}", h.listAllPaymentRequests)
				r.Get("/user/{userUUID}", h.listPaymentRequests)
				r.Get("/user/{userUUID}/export", h.exportStatement)
				r.Get("/detail/{id}", h.getPaymentRequestDetail)
				r.Put("/{id}/status", h.setPaymentRequestStatus)
				r.Put("/{id}/decline", h.declinePaymentRequest)
				r.Post("/paid/{id}", h.markPaymentRequestPaid)
				r.Post("/repay/{id}", h.addRepayment)
			})
		}

		if h.users != nil {
			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.listUsers)
				r.Post("/", h.createUser)
				r.Get("/find/by", h.findUser)
				r.Get("/{id}", h.getUser)
				r.Put("/{id}", h.updateUser)
				r.Delete("/{id}", h.deleteUser)
			})
		}

		if h.bills != nil {
			r.Route("/bills", func(r chi.Router) {
				r.Get("/", h.listBills)
				r.Post("/create", h.createBill)
				r.Get("/{id}", h.getBill)
			})
		}

		if h.notifications != nil {
			r.Post("/notifications/send-between", h.sendBetween)
		}
		if h.transactions != nil {
			r.Post("/transactions/transaction/save", h.saveTransaction)
		}
		if h.uploads != nil {
			r.Post("/upload", h.uploadImage)
		}
	})

	return r
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
