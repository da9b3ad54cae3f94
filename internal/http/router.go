package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"contracting/internal/auth"
)

func NewRouter(handler *Handler, provider *auth.Provider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/sign-in", handler.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(provider))

			r.Post("/auth/sign-out", handler.SignOut)
			r.Get("/auth/session", handler.Session)
			r.Get("/meta", handler.Meta)

			r.Get("/contracts", handler.ListContracts)
			r.Post("/contracts", handler.CreateContract)
			r.Get("/contracts/{id}", handler.GetContract)
			r.Patch("/contracts/{id}", handler.PatchContract)
			r.Delete("/contracts/{id}", handler.DeleteContract)
			r.Get("/contracts/{id}/summary", handler.ContractSummary)
			r.Get("/contracts/{id}/print", handler.PrintContract)

			r.Get("/contracts/{id}/items", handler.ListContractItems)
			r.Post("/contracts/{id}/items", handler.CreateContractItem)
			r.Post("/contracts/{id}/items/import", handler.ImportContractItems)
			r.Patch("/contract-items/{id}", handler.PatchContractItem)
			r.Delete("/contract-items/{id}", handler.DeleteContractItem)

			r.Get("/contracts/{id}/purchases", handler.ListPurchases)
			r.Post("/contracts/{id}/purchases", handler.CreatePurchase)
			r.Patch("/purchases/{id}", handler.PatchPurchase)
			r.Delete("/purchases/{id}", handler.DeletePurchase)

			r.Get("/contracts/{id}/expenses", handler.ListExpenses)
			r.Post("/contracts/{id}/expenses", handler.CreateExpense)
			r.Patch("/expenses/{id}", handler.PatchExpense)
			r.Delete("/expenses/{id}", handler.DeleteExpense)

			r.Get("/contracts/{id}/deliveries", handler.ListDeliveries)
			r.Post("/contract-items/{id}/deliveries", handler.CreateDelivery)
			r.Patch("/deliveries/{id}", handler.PatchDelivery)
			r.Delete("/deliveries/{id}", handler.DeleteDelivery)

			r.Get("/contracts/{id}/receipts", handler.ListReceipts)
			r.Post("/contracts/{id}/receipts", handler.CreateReceipt)
			r.Patch("/receipts/{id}", handler.PatchReceipt)
			r.Delete("/receipts/{id}", handler.DeleteReceipt)

			r.Get("/contracts/{id}/payments", handler.ListPayments)
			r.Post("/contracts/{id}/payments", handler.CreatePayment)
			r.Patch("/payments/{id}", handler.PatchPayment)
			r.Delete("/payments/{id}", handler.DeletePayment)

			r.Get("/contracts/{id}/attachments", handler.ListAttachments)
			r.Post("/contracts/{id}/attachments", handler.UploadAttachment)
			r.Get("/attachments/{id}/url", handler.AttachmentURL)
			r.Delete("/attachments/{id}", handler.DeleteAttachment)

			r.Get("/suppliers", handler.ListSuppliers)
			r.Post("/suppliers", handler.CreateSupplier)
			r.Get("/suppliers/{id}", handler.GetSupplier)
			r.Patch("/suppliers/{id}", handler.PatchSupplier)
			r.Delete("/suppliers/{id}", handler.DeleteSupplier)

			r.Get("/dashboard", handler.Dashboard)
			r.Get("/reports/currencies", handler.ReportCurrencies)
			r.Get("/reports/profit", handler.ProfitReport)
			r.Get("/reports/governorates", handler.GovernorateReport)
			r.Get("/reports/balances", handler.BalancesReport)
			r.Get("/reports/{kind}/export", handler.ExportReport)

			r.Get("/audit-logs", handler.ListAuditLogs)
		})
	})

	return r
}
