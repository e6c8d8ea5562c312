package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/cambista/ledger/controllers/entities"
	"github.com/cambista/ledger/controllers/helpers"
	"github.com/cambista/ledger/routes/middlewares"
	"github.com/cambista/ledger/services/accounting"
)

func Reconcile(c *fiber.Ctx) error {
	errors := new(helpers.Errors)
	payload := new(helpers.ReconcileParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	result, err := accounting.Reconcile(accounting.ReconcileParams{
		SourceTransactionID: payload.SourceTransactionID,
		SourceAssetID:       payload.SourceAssetID,
		Targets:             payload.Targets,
		CreatedBy:           middlewares.CurrentActor(c),
	})
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(201).JSON(result)
}

func GetClientsForReconciliation(c *fiber.Ctx) error {
	asset_id, err := strconv.ParseUint(c.Params("asset_id"), 10, 64)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.asset.invalid_id"},
		})
	}

	candidates, err := accounting.FindClientsForReconciliation(asset_id)
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(candidates)
}

func ConciliateImmutableAssets(c *fiber.Ctx) error {
	errors := new(helpers.Errors)
	payload := new(helpers.ConciliateImmutableParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	results, err := accounting.ConciliateImmutableAssets(accounting.ConciliateImmutableParams{
		Entries:   payload.Entries,
		CreatedBy: middlewares.CurrentActor(c),
	})
	if err != nil {
		return helpers.RenderError(c, err)
	}

	transactions_json := make([]entities.TransactionEntity, 0, len(results))
	for _, result := range results {
		transactions_json = append(transactions_json, entities.ResultToEntity(result))
	}

	return c.Status(201).JSON(transactions_json)
}

func GetOpenImmutableAssetTransactions(c *fiber.Ctx) error {
	transactions, err := accounting.FindOpenImmutableAssetTransactions()
	if err != nil {
		return helpers.RenderError(c, err)
	}

	transactions_json := make([]entities.TransactionEntity, 0, len(transactions))
	for _, transaction := range transactions {
		transactions_json = append(transactions_json, entities.TransactionToEntity(transaction, nil, nil))
	}

	return c.Status(200).JSON(transactions_json)
}
