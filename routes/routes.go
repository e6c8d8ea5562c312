package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cambista/ledger/controllers"
	"github.com/cambista/ledger/routes/middlewares"
)

func SetupRouter() *fiber.App {
	app := fiber.New()

	api := app.Group("/api/v2/ledger", middlewares.AuthMiddleware)

	api.Post("/transactions", controllers.CreateTransaction)
	api.Get("/transactions", controllers.GetTransactions)
	api.Get("/transactions/:id", controllers.GetTransaction)
	api.Put("/transactions/:id", controllers.UpdateTransaction)
	api.Post("/transactions/:id/state", controllers.UpdateTransactionState)
	api.Delete("/transactions/:id", controllers.RemoveTransaction)
	api.Post("/transactions/:id/cancel", controllers.CancelTransaction)
	api.Post("/transactions/:id/partial", controllers.CreatePartialTransaction)
	api.Post("/transactions/:id/children", controllers.CreateChildTransaction)
	api.Post("/transactions/:id/complete", controllers.CompletePendingTransaction)

	api.Post("/reconciliations", controllers.Reconcile)
	api.Get("/reconciliations/candidates/:asset_id", controllers.GetClientsForReconciliation)

	api.Post("/immutable/conciliate", controllers.ConciliateImmutableAssets)
	api.Get("/immutable/open", controllers.GetOpenImmutableAssetTransactions)

	return app
}
