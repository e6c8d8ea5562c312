package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/cambista/ledger/controllers/entities"
	"github.com/cambista/ledger/controllers/helpers"
	"github.com/cambista/ledger/controllers/queries"
	"github.com/cambista/ledger/routes/middlewares"
	"github.com/cambista/ledger/services/accounting"
)

func transactionID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

func CreateTransaction(c *fiber.Ctx) error {
	errors := new(helpers.Errors)
	payload := new(helpers.CreateTransactionParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	result, err := accounting.CreateTransaction(accounting.CreateTransactionParams{
		ClientID:  payload.ClientID,
		State:     payload.State,
		Notes:     payload.Notes,
		Details:   payload.Details,
		CreatedBy: middlewares.CurrentActor(c),
	})
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(201).JSON(entities.ResultToEntity(result))
}

func GetTransaction(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.transaction.invalid_id"},
		})
	}

	result, err := accounting.GetTransaction(id)
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(entities.ResultToEntity(result))
}

func GetTransactions(c *fiber.Ctx) error {
	params := new(queries.TransactionFilters)
	if err := c.QueryParser(params); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	transactions, err := accounting.ListTransactions(accounting.TransactionFilters{
		ClientID: params.ClientID,
		AssetID:  params.AssetID,
		State:    params.State,
		ParentID: params.ParentID,
		TimeFrom: params.TimeFrom,
		TimeTo:   params.TimeTo,
		Page:     params.Page,
		Limit:    params.Limit,
		OrderBy:  params.OrderBy,
	})
	if err != nil {
		return helpers.RenderError(c, err)
	}

	transactions_json := make([]entities.TransactionEntity, 0, len(transactions))
	for _, transaction := range transactions {
		transactions_json = append(transactions_json, entities.TransactionToEntity(transaction, nil, nil))
	}

	return c.Status(200).JSON(transactions_json)
}

func UpdateTransaction(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.transaction.invalid_id"},
		})
	}

	payload := new(accounting.UpdateTransactionParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	payload.UpdatedBy = middlewares.CurrentActor(c)

	result, err := accounting.UpdateTransaction(id, *payload)
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(entities.ResultToEntity(result))
}

func UpdateTransactionState(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.transaction.invalid_id"},
		})
	}

	errors := new(helpers.Errors)
	payload := new(helpers.UpdateStateParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	result, err := accounting.UpdateState(id, payload.State, middlewares.CurrentActor(c))
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(entities.ResultToEntity(result))
}

func RemoveTransaction(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.transaction.invalid_id"},
		})
	}

	if err := accounting.RemoveTransaction(id, middlewares.CurrentActor(c)); err != nil {
		return helpers.RenderError(c, err)
	}

	return c.SendStatus(204)
}

func CancelTransaction(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.transaction.invalid_id"},
		})
	}

	result, err := accounting.CancelTransaction(id, middlewares.CurrentActor(c))
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(200).JSON(entities.ResultToEntity(result))
}

func CreatePartialTransaction(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.transaction.invalid_id"},
		})
	}

	errors := new(helpers.Errors)
	payload := new(helpers.PartialTransactionParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	result, err := accounting.CreatePartialTransaction(id, accounting.PartialTransactionParams{
		Percentage:  payload.Percentage,
		TargetState: payload.TargetState,
		CreatedBy:   middlewares.CurrentActor(c),
	})
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(201).JSON(entities.ResultToEntity(result))
}

func CreateChildTransaction(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.transaction.invalid_id"},
		})
	}

	errors := new(helpers.Errors)
	payload := new(helpers.ChildTransactionParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	result, err := accounting.CreateChildTransaction(id, accounting.ChildTransactionParams{
		ClientID:  payload.ClientID,
		Details:   payload.Details,
		Notes:     payload.Notes,
		CreatedBy: middlewares.CurrentActor(c),
	})
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(201).JSON(entities.ResultToEntity(result))
}

func CompletePendingTransaction(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.transaction.invalid_id"},
		})
	}

	errors := new(helpers.Errors)
	payload := new(helpers.ChildTransactionParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errors)
	if errors.Size() > 0 {
		return c.Status(422).JSON(errors)
	}

	result, err := accounting.CompletePendingTransaction(id, accounting.ChildTransactionParams{
		ClientID:  payload.ClientID,
		Details:   payload.Details,
		Notes:     payload.Notes,
		CreatedBy: middlewares.CurrentActor(c),
	})
	if err != nil {
		return helpers.RenderError(c, err)
	}

	return c.Status(201).JSON(entities.ResultToEntity(result))
}
